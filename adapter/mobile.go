package adapter

import (
	"context"

	"github.com/siamauto/chatcore/core"
)

// MobileAdapter serves the staff mobile app. Traffic is always
// authenticated; the app refuses to open the chat screen otherwise.
type MobileAdapter struct {
	pipeline *Pipeline
}

// NewMobileAdapter wraps a pipeline for mobile traffic.
func NewMobileAdapter(p *Pipeline) *MobileAdapter {
	return &MobileAdapter{pipeline: p}
}

// Respond runs one mobile chat turn.
func (a *MobileAdapter) Respond(ctx context.Context, userID, sessionID, text string, user *core.User) Outcome {
	return a.pipeline.Run(ctx, Turn{
		UserID:    userID,
		SessionID: sessionID,
		Platform:  PlatformMobile,
		Text:      text,
		User:      user,
	})
}
