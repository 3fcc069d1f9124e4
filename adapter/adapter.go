// Package adapter runs one conversation turn per channel. Every channel
// shares the same pipeline: response-cache probe, context assembly, one
// classified model call under a deadline, tool execution, summarization and
// selective persistence. Channel adapters differ only in identity handling,
// deadlines and payload rendering.
package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/siamauto/chatcore/convo"
	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/gateway"
	"github.com/siamauto/chatcore/logging"
	"github.com/siamauto/chatcore/model"
	"github.com/siamauto/chatcore/respcache"
	"github.com/siamauto/chatcore/summarize"
	"github.com/siamauto/chatcore/tool"
)

// Fixed turn-level failure answers. The timeout variant includes sample
// questions so the customer has somewhere to go next.
const (
	GenericErrorMessage = "ขออภัยค่ะ ระบบขัดข้องชั่วคราว กรุณาลองใหม่อีกครั้งนะคะ"
	TimeoutMessage      = "ขออภัยค่ะ ระบบใช้เวลานานเกินไป ลองถามสั้นๆ อีกครั้งนะคะ เช่น \"มีรถ Toyota ไม่เกิน 500,000 ไหม\" หรือ \"ขอดูรถกระบะมือสอง\""
)

// defaultMaxModelCalls caps model calls per turn: one classification and one
// summarization, plus headroom for a retried summary.
const defaultMaxModelCalls = 3

// Turn is one incoming user message with its delivery context. User is nil
// for unauthenticated traffic.
type Turn struct {
	UserID    string
	SessionID string
	Platform  string
	Text      string
	User      *core.User
}

// Outcome is the rendered answer for one turn. Result is set when a tool
// ran, so channel adapters can build richer payloads than plain text.
type Outcome struct {
	Text         string
	FunctionName string
	Result       *core.FunctionResult
	FromCache    bool
}

// ToolInterceptor runs between classification and tool execution. Returning
// stop=true short-circuits the turn with the given text; the interceptor may
// mutate the turn, typically to attach a resolved identity.
type ToolInterceptor func(ctx context.Context, turn *Turn, call *core.FunctionCall) (text string, stop bool)

// HistoryStore is the persistence surface the pipeline needs. *convo.Store
// satisfies it.
type HistoryStore interface {
	LoadMinimalContext(ctx context.Context, userID, platform string) ([]core.Message, error)
	SaveImportant(ctx context.Context, userID string, userMsg, assistantMsg core.Message, meta convo.TurnMeta) error
	MaybeCleanup(retentionDays int)
}

// PipelineOptions configure a Pipeline.
type PipelineOptions struct {
	Cache         *convo.Cache
	Store         HistoryStore
	Heuristic     convo.HeuristicConfig
	Responses     *respcache.Cache
	Monitor       *respcache.Monitor
	Logger        logging.Logger
	Reference     core.ReferenceData
	Timeout       time.Duration
	MaxModelCalls int
	Interceptor   ToolInterceptor
}

// Pipeline executes turns. Safe for concurrent use.
type Pipeline struct {
	gateway    *gateway.Gateway
	registry   *tool.Registry
	summarizer *summarize.Summarizer
	cache      *convo.Cache
	store      HistoryStore
	heuristic  convo.HeuristicConfig
	responses  *respcache.Cache
	monitor    *respcache.Monitor
	logger     logging.Logger
	reference  core.ReferenceData
	timeout    time.Duration
	maxCalls   int
	intercept  ToolInterceptor
}

// NewPipeline wires a turn pipeline. Store and Responses are optional;
// everything else gets a working default.
func NewPipeline(gw *gateway.Gateway, reg *tool.Registry, sum *summarize.Summarizer, optFns ...func(o *PipelineOptions)) *Pipeline {
	opts := PipelineOptions{
		Cache:         convo.NewCache(),
		Heuristic:     convo.DefaultHeuristicConfig(),
		Monitor:       respcache.NewMonitor(),
		Logger:        logging.NoOpLogger{},
		Timeout:       10 * time.Second,
		MaxModelCalls: defaultMaxModelCalls,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Pipeline{
		gateway:    gw,
		registry:   reg,
		summarizer: sum,
		cache:      opts.Cache,
		store:      opts.Store,
		heuristic:  opts.Heuristic,
		responses:  opts.Responses,
		monitor:    opts.Monitor,
		logger:     opts.Logger,
		reference:  opts.Reference,
		timeout:    opts.Timeout,
		maxCalls:   opts.MaxModelCalls,
		intercept:  opts.Interceptor,
	}
}

// Monitor exposes the pipeline's counters.
func (p *Pipeline) Monitor() *respcache.Monitor { return p.monitor }

// Run executes one turn end to end and always returns a sendable answer.
func (p *Pipeline) Run(ctx context.Context, turn Turn) Outcome {
	p.monitor.RecordRequest()
	if turn.SessionID == "" {
		turn.SessionID = uuid.NewString()
	}

	key := respcache.GenerateKey(turn.Text, turn.Platform)
	if p.responses != nil {
		if cached, ok := p.responses.Get(key); ok {
			p.monitor.RecordCacheLookup(true)
			// A hit skips the model, not bookkeeping: cache and store see
			// the turn exactly as if it had been generated.
			p.finishTurn(ctx, turn, core.NewUserMessage(turn.Text), cached, "", nil)
			p.monitor.RecordOutcome(true)
			return Outcome{Text: cached, FromCache: true}
		}
		p.monitor.RecordCacheLookup(false)
	}

	if p.store != nil {
		p.store.MaybeCleanup(0)
	}

	history := p.cache.GetMessages(turn.UserID)
	if len(history) == 0 && p.store != nil && p.heuristic.NeedsHistory(turn.Text) {
		loaded, err := p.store.LoadMinimalContext(ctx, turn.UserID, turn.Platform)
		switch {
		case err != nil:
			p.logger.Warn("turn.history_load_failed", "user_id", turn.UserID, "error", err.Error())
		case len(loaded) > 0:
			p.cache.Warm(turn.UserID, loaded)
			history = loaded
		}
	}

	userMsg := core.NewUserMessage(turn.Text)
	messages := append(history, userMsg)

	ctx = model.WithBudget(ctx, model.NewCallBudget(p.maxCalls))
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	reply := p.gateway.Classify(ctx, messages, gateway.TurnContext{Platform: turn.Platform, Reference: p.reference})
	p.monitor.RecordAIDuration(time.Since(start))

	switch reply.Type {
	case gateway.ReplyError:
		p.monitor.RecordOutcome(false)
		if errors.Is(reply.Err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.monitor.RecordTimeout()
			p.logger.Warn("turn.timeout", "platform", turn.Platform, "user_id", turn.UserID)
			return Outcome{Text: TimeoutMessage}
		}
		return Outcome{Text: GenericErrorMessage}

	case gateway.ReplyFunctionCall:
		return p.runFunction(ctx, turn, userMsg, reply.Call)
	}

	p.finishTurn(ctx, turn, userMsg, reply.Content, "", nil)
	if p.responses != nil {
		p.responses.Set(key, turn.Text, reply.Content)
	}
	p.monitor.RecordOutcome(true)
	return Outcome{Text: reply.Content}
}

func (p *Pipeline) runFunction(ctx context.Context, turn Turn, userMsg core.Message, call *core.FunctionCall) Outcome {
	if p.intercept != nil {
		if text, stop := p.intercept(ctx, &turn, call); stop {
			p.finishTurn(ctx, turn, userMsg, text, "", nil)
			p.monitor.RecordOutcome(true)
			return Outcome{Text: text, FunctionName: call.Name}
		}
	}

	res := p.registry.Execute(ctx, call.Name, call.Arguments, turn.User)
	text := p.renderResult(ctx, res)

	p.finishTurn(ctx, turn, userMsg, text, call.Name, call.Arguments)
	// A domain no-result (Success false, empty Error) answered the user
	// fine; only actual errors count as failure samples.
	p.monitor.RecordOutcome(res.Success || res.Error == "")
	return Outcome{Text: text, FunctionName: call.Name, Result: res}
}

// renderResult picks the answer text for a tool result. A handler-provided
// summary always wins; populated result sets go through the summarizer;
// anything left is a system failure.
func (p *Pipeline) renderResult(ctx context.Context, res *core.FunctionResult) string {
	if res.Summary != "" {
		return res.Summary
	}
	if res.Success {
		return p.summarizer.Summarize(ctx, res.RawData, queryString(res.Query), res.Kind)
	}
	return GenericErrorMessage
}

func (p *Pipeline) finishTurn(ctx context.Context, turn Turn, userMsg core.Message, answer, functionName string, args map[string]any) {
	assistantMsg := core.NewAssistantMessage(answer)
	p.cache.AddMessage(turn.UserID, userMsg)
	p.cache.AddMessage(turn.UserID, assistantMsg)

	if p.store == nil || !p.heuristic.IsImportant(turn.Text, answer, functionName != "") {
		return
	}
	meta := convo.TurnMeta{
		Platform:     turn.Platform,
		SessionID:    turn.SessionID,
		FunctionName: functionName,
		Arguments:    args,
	}
	if err := p.store.SaveImportant(ctx, turn.UserID, userMsg, assistantMsg, meta); err != nil {
		// Persistence is best effort; the answer already exists.
		p.logger.Warn("turn.persist_failed", "user_id", turn.UserID, "error", err.Error())
	}
}

func queryString(query map[string]any) string {
	if len(query) == 0 {
		return ""
	}
	encoded, err := json.Marshal(query)
	if err != nil {
		return ""
	}
	return string(encoded)
}
