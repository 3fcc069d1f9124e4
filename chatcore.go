// Package chatcore provides a high-level façade over the conversation
// engine for the dealership chat assistant. Most applications interact with
// this package by:
//  1. Loading configuration (config.Load or explicit Options)
//  2. Creating an Engine via New()
//  3. Routing incoming messages to the matching channel adapter
//     (Web, Mobile, Line)
//
// The façade wires the model provider, the business-data collaborator, the
// tool registry and the caching/persistence layers; adapters own the per-turn
// pipeline. All defaults are safe for local development: a missing database
// URL degrades to cache-only history and a missing dealer URL only breaks
// tool execution, not plain conversation.
package chatcore

import (
	"context"
	"fmt"
	"time"

	"github.com/siamauto/chatcore/adapter"
	"github.com/siamauto/chatcore/config"
	"github.com/siamauto/chatcore/convo"
	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/dealer"
	"github.com/siamauto/chatcore/gateway"
	"github.com/siamauto/chatcore/logging"
	"github.com/siamauto/chatcore/model"
	"github.com/siamauto/chatcore/model/anthropic"
	"github.com/siamauto/chatcore/model/openai"
	"github.com/siamauto/chatcore/respcache"
	"github.com/siamauto/chatcore/summarize"
	"github.com/siamauto/chatcore/tool"
)

// Channel deadlines. LINE replies must beat the platform's webhook budget.
const (
	defaultTurnTimeout = 10 * time.Second
	lineTurnTimeout    = 8 * time.Second
)

// Options configure the Engine. Config is the only required input in
// production; Model and Dealer overrides exist for tests and embedding.
type Options struct {
	Config *config.Config

	// Model overrides the provider selected by Config.
	Model model.Model

	// Dealer overrides the HTTP collaborator client.
	Dealer dealer.Service

	// Reference data injected into every system prompt.
	Reference core.ReferenceData

	// Logger (defaults to a slog JSON logger built from Config)
	Logger logging.Logger
}

// Engine is the high-level façade aggregating the channel adapters and the
// shared caches behind them.
type Engine struct {
	opts    Options
	web     *adapter.WebAdapter
	mobile  *adapter.MobileAdapter
	line    *adapter.LineAdapter
	store   *convo.Store
	monitor *respcache.Monitor
	logger  logging.Logger
}

// New creates an Engine. The context bounds startup work, currently the
// database connection check when a DATABASE_URL is configured.
func New(ctx context.Context, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Load()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(&logging.LoggerConfig{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: cfg.LogFormat,
		})
	}

	m := opts.Model
	if m == nil {
		var err error
		m, err = buildModel(cfg)
		if err != nil {
			return nil, err
		}
	}

	svc := opts.Dealer
	if svc == nil {
		svc = dealer.NewClient(cfg.DealerAPIURL, func(o *dealer.ClientOptions) {
			o.Logger = logger
		})
	}

	registry := tool.NewRegistry(logger)
	registry.Register(tool.NewCarQueryTool(svc))
	registry.Register(tool.NewBookAppointmentTool(svc))
	registry.Register(tool.NewEditAppointmentTool(svc))
	registry.Register(tool.NewCancelAppointmentTool(svc))
	registry.Register(tool.NewQueryAppointmentsTool(svc))
	registry.Verify(tool.Declarations())

	gw := gateway.New(m, func(o *gateway.Options) {
		o.Tools = tool.Declarations()
		o.Logger = logger
	})
	sum := summarize.New(m, func(o *summarize.Options) {
		o.Logger = logger
	})

	var store *convo.Store
	if cfg.DatabaseURL != "" {
		var err error
		store, err = convo.NewStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("conversation store: %w", err)
		}
	}

	cache := convo.NewCache()
	responses := respcache.New()
	monitor := respcache.NewMonitor()

	pipeline := func(timeout time.Duration, intercept adapter.ToolInterceptor) *adapter.Pipeline {
		return adapter.NewPipeline(gw, registry, sum, func(o *adapter.PipelineOptions) {
			o.Cache = cache
			o.Responses = responses
			o.Monitor = monitor
			o.Logger = logger
			o.Reference = opts.Reference
			o.Timeout = timeout
			o.Interceptor = intercept
			if store != nil {
				o.Store = store
			}
		})
	}

	line := adapter.NewLineAdapter(
		pipeline(lineTurnTimeout, adapter.LineInterceptor(svc, logger)),
		func(o *adapter.LineOptions) {
			o.UseFlex = cfg.LineUseFlex
			o.LIFFID = cfg.LIFFID
			o.BaseURL = cfg.BaseURL
			o.Logger = logger
		},
	)

	return &Engine{
		opts:    opts,
		web:     adapter.NewWebAdapter(pipeline(defaultTurnTimeout, nil)),
		mobile:  adapter.NewMobileAdapter(pipeline(defaultTurnTimeout, nil)),
		line:    line,
		store:   store,
		monitor: monitor,
		logger:  logger,
	}, nil
}

// buildModel selects the provider from configuration.
func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.ModelProvider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.OpenAIAPIKey
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	}
	return nil, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
}

// Web returns the website chat adapter.
func (e *Engine) Web() *adapter.WebAdapter { return e.web }

// Mobile returns the staff app adapter.
func (e *Engine) Mobile() *adapter.MobileAdapter { return e.mobile }

// Line returns the LINE official-account adapter.
func (e *Engine) Line() *adapter.LineAdapter { return e.line }

// Monitor returns the shared per-process counters.
func (e *Engine) Monitor() *respcache.Monitor { return e.monitor }

// Close releases persistent resources.
func (e *Engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
}
