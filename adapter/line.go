package adapter

import (
	"context"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/dealer"
	"github.com/siamauto/chatcore/logging"
	"github.com/siamauto/chatcore/tool"
)

// AccountLinkMessage asks an unlinked LINE user to connect their staff
// account before any appointment operation runs.
const AccountLinkMessage = "กรุณาเชื่อมบัญชี LINE กับบัญชีพนักงานก่อนใช้งานระบบนัดหมายค่ะ พิมพ์ \"เชื่อมบัญชี\" เพื่อเริ่มได้เลยนะคะ"

// maxFlexItems bounds the carousel; the rest goes behind the deep link.
const maxFlexItems = 3

// LineOptions configure a LineAdapter.
type LineOptions struct {
	UseFlex bool
	LIFFID  string
	BaseURL string
	Logger  logging.Logger
}

// LineAdapter serves the LINE official account. LINE users arrive with an
// opaque platform id; identity resolution happens lazily when a turn needs
// it, through the collaborator's link registry.
type LineAdapter struct {
	pipeline *Pipeline
	useFlex  bool
	liffID   string
	baseURL  string
	logger   logging.Logger
}

// NewLineAdapter wraps a pipeline for LINE traffic. The pipeline should be
// constructed with LineInterceptor and the channel's shorter deadline.
func NewLineAdapter(p *Pipeline, optFns ...func(o *LineOptions)) *LineAdapter {
	opts := LineOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &LineAdapter{
		pipeline: p,
		useFlex:  opts.UseFlex,
		liffID:   opts.LIFFID,
		baseURL:  opts.BaseURL,
		logger:   opts.Logger,
	}
}

// LineInterceptor gates appointment functions on account linking. Unlinked
// users get a linking prompt and the tool never runs; linked users proceed
// with their resolved internal identity attached.
func LineInterceptor(svc dealer.Service, logger logging.Logger) ToolInterceptor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return func(ctx context.Context, turn *Turn, call *core.FunctionCall) (string, bool) {
		if !tool.IsAppointmentFunction(call.Name) {
			return "", false
		}

		link, err := svc.CheckIdentityLink(ctx, PlatformLine, turn.UserID)
		if err != nil {
			logger.Error("line.link_check_failed", "line_user_id", turn.UserID, "error", err.Error())
			return GenericErrorMessage, true
		}
		if !link.Linked {
			return AccountLinkMessage, true
		}
		turn.User = &core.User{ID: link.UserID, EmployeeID: link.EmployeeID}
		return "", false
	}
}

// Respond runs one LINE turn and renders it as sendable LINE messages:
// a flex carousel for car results when enabled, plain text otherwise.
func (a *LineAdapter) Respond(ctx context.Context, lineUserID, text string) ([]linebot.SendingMessage, Outcome) {
	// LINE has no session handshake; the user id groups stored turns.
	out := a.pipeline.Run(ctx, Turn{
		UserID:    lineUserID,
		SessionID: lineUserID,
		Platform:  PlatformLine,
		Text:      text,
	})

	if a.shouldRenderFlex(out) {
		moreURL := CarSearchURL(a.baseURL, a.liffID, out.Result.Query)
		return []linebot.SendingMessage{buildCarFlex(out.Result.RawData, out.Result.Count, moreURL)}, out
	}
	return []linebot.SendingMessage{linebot.NewTextMessage(out.Text)}, out
}

// shouldRenderFlex applies the feature flag plus a payload check: flex only
// pays off for car results that actually carry displayable rows.
func (a *LineAdapter) shouldRenderFlex(out Outcome) bool {
	if !a.useFlex || out.Result == nil {
		return false
	}
	return out.Result.Kind == core.KindCar && out.Result.Success && out.Result.Count > 0
}
