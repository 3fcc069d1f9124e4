// Package gateway wraps a single language model call for the conversation
// pipeline: it builds the system prompt, formats history, retries transient
// overloads with bounded backoff and classifies the reply as plain text or a
// function call. Unrecoverable failures come back as a typed error reply,
// never as a panic or an error crossing the adapter boundary.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/logging"
	"github.com/siamauto/chatcore/model"
)

// ReplyType discriminates the classification outcome of one model call.
type ReplyType string

const (
	// ReplyText is a plain natural-language answer.
	ReplyText ReplyType = "text"
	// ReplyFunctionCall is a structured tool invocation request.
	ReplyFunctionCall ReplyType = "function_call"
	// ReplyError signals an unrecoverable model failure.
	ReplyError ReplyType = "error"
)

// ErrEmptyHistory is returned when formatting leaves no messages to send.
var ErrEmptyHistory = errors.New("no user message in conversation history")

// Reply is the classified outcome of one gateway call.
type Reply struct {
	Type    ReplyType
	Content string             // text answer, or free text accompanying a call
	Call    *core.FunctionCall // set when Type is ReplyFunctionCall
	Raw     string             // unprocessed model text for diagnostics
	Err     error              // set when Type is ReplyError
}

// TurnContext carries the per-turn inputs that shape the system prompt.
type TurnContext struct {
	Platform  string
	Reference core.ReferenceData
}

// Options configure a Gateway.
type Options struct {
	Retry  RetryConfig
	Tools  []model.ToolDefinition
	Logger logging.Logger
	Now    func() time.Time
}

// Gateway performs classified model calls. Safe for concurrent use.
type Gateway struct {
	model  model.Model
	tools  []model.ToolDefinition
	retry  RetryConfig
	logger logging.Logger
	now    func() time.Time
}

// New constructs a Gateway around the given model.
func New(m model.Model, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Retry:  DefaultRetryConfig(),
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{
		model:  m,
		tools:  opts.Tools,
		retry:  opts.Retry,
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// Classify sends the conversation to the model and classifies the response.
//
// History formatting: everything before the first user-role message is
// dropped (providers reject assistant-first sequences); all formatted
// messages except the last are sent as history and the last as the new turn.
// When the model proposes several tool calls only the first is honored.
func (g *Gateway) Classify(ctx context.Context, messages []core.Message, turn TurnContext) Reply {
	formatted := core.TrimToFirstUser(messages)
	if len(formatted) == 0 {
		return Reply{Type: ReplyError, Err: ErrEmptyHistory}
	}

	if b := model.BudgetFrom(ctx); b != nil {
		if err := b.Increment(); err != nil {
			return Reply{Type: ReplyError, Err: err}
		}
	}

	req := model.Request{
		System:  BuildSystemPrompt(turn.Platform, g.now(), turn.Reference),
		History: formatted[:len(formatted)-1],
		Latest:  formatted[len(formatted)-1],
		Tools:   g.tools,
	}

	start := g.now()
	resp, err := withRetry(ctx, g.retry, g.logger, func() (*model.Response, error) {
		return g.model.Generate(ctx, req)
	})
	if err != nil {
		g.logger.Error("gateway.classify.failed", "platform", turn.Platform, "error", err.Error())
		return Reply{Type: ReplyError, Err: err}
	}
	g.logger.Debug("gateway.classify.done",
		"platform", turn.Platform,
		"duration_ms", time.Since(start).Milliseconds(),
		"tool_calls", len(resp.ToolCalls),
	)

	if len(resp.ToolCalls) > 0 {
		tc := resp.ToolCalls[0]
		args := map[string]any{}
		if tc.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
				g.logger.Warn("gateway.args.unparsable", "function", tc.Name, "error", err.Error())
			}
		}
		return Reply{
			Type:    ReplyFunctionCall,
			Content: resp.Text,
			Raw:     resp.Text,
			Call:    &core.FunctionCall{Name: tc.Name, Arguments: args, Text: resp.Text},
		}
	}

	return Reply{Type: ReplyText, Content: resp.Text, Raw: resp.Text}
}
