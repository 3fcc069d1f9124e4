package adapter

import (
	"context"

	"github.com/siamauto/chatcore/core"
)

// PlatformWeb and friends are the channel identifiers baked into prompts,
// cache keys and stored metadata.
const (
	PlatformWeb    = "web"
	PlatformMobile = "mobile"
	PlatformLine   = "line"
)

// WebAdapter serves the website chat widget. Identity arrives already
// resolved by the site's session layer.
type WebAdapter struct {
	pipeline *Pipeline
}

// NewWebAdapter wraps a pipeline for web traffic.
func NewWebAdapter(p *Pipeline) *WebAdapter {
	return &WebAdapter{pipeline: p}
}

// Respond runs one web chat turn.
func (a *WebAdapter) Respond(ctx context.Context, userID, sessionID, text string, user *core.User) Outcome {
	return a.pipeline.Run(ctx, Turn{
		UserID:    userID,
		SessionID: sessionID,
		Platform:  PlatformWeb,
		Text:      text,
		User:      user,
	})
}
