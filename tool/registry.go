package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/internal/util"
	"github.com/siamauto/chatcore/logging"
	"github.com/siamauto/chatcore/model"
)

// ErrUnknownFunction is the error string stamped on results for unregistered
// tool names. Kept stable because adapters and tests branch on it.
const ErrUnknownFunction = "Unknown function"

// UnknownFunctionMessage is the user-facing summary for an unrecognized command.
const UnknownFunctionMessage = "ขออภัยค่ะ ไม่เข้าใจคำสั่งนี้ กรุณาลองพิมพ์ใหม่อีกครั้งนะคะ"

// Registry maps tool names to executable handlers. It is built once at
// process start, passed explicitly into adapters, and read-mostly thereafter;
// per-test instances keep tests isolated.
type Registry struct {
	tools  map[string]Tool
	logger logging.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// Register adds a handler. A duplicate name overwrites with a warning so a
// mis-wired deployment stays available rather than crashing at startup.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; exists {
		r.logger.Warn("tool.register.duplicate", "tool", t.Name())
	}
	r.tools[t.Name()] = t
}

// Verify cross-checks registered handlers against the declarations exposed
// to the model. Mismatches in either direction are startup-time warnings,
// not hard failures: a declared tool without a handler will produce an
// unknown-function result at call time, and an orphan handler is unreachable.
func (r *Registry) Verify(declarations []model.ToolDefinition) {
	declared := make(map[string]bool, len(declarations))
	for _, d := range declarations {
		declared[d.Name] = true
		if _, ok := r.tools[d.Name]; !ok {
			r.logger.Warn("tool.verify.missing_handler", "tool", d.Name)
		}
	}
	for name := range r.tools {
		if !declared[name] {
			r.logger.Warn("tool.verify.undeclared_handler", "tool", name)
		}
	}
}

// Execute runs the named tool and always resolves to a normalized result.
// Unknown names, argument validation failures, handler errors and panics all
// become {success:false} results carrying the original args as query so
// downstream deep-linking always has something to link to.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any, user *core.User) *core.FunctionResult {
	if args == nil {
		args = map[string]any{}
	}

	t, ok := r.tools[name]
	if !ok {
		r.logger.Warn("tool.exec.unknown", "tool", name)
		res := &core.FunctionResult{
			Success: false,
			Summary: UnknownFunctionMessage,
			Error:   ErrUnknownFunction,
		}
		res.Normalize(name, args)
		return res
	}

	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		r.logger.Warn("tool.exec.validation_failed", "tool", name, "error", err.Error())
		res := &core.FunctionResult{
			Success: false,
			Summary: UnknownFunctionMessage,
			Error:   err.Error(),
		}
		res.Normalize(name, args)
		return res
	}

	start := time.Now()
	res, err := r.executeSafe(ctx, t, args, user)
	if err != nil {
		r.logger.Error("tool.exec.error", "tool", name, "error", err.Error())
		res = &core.FunctionResult{
			Success: false,
			Summary: UnknownFunctionMessage,
			Error:   err.Error(),
		}
	}
	res.Normalize(name, args)

	r.logger.Info("tool.exec.done",
		"tool", name,
		"success", res.Success,
		"count", res.Count,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// executeSafe guards handler execution against panics.
func (r *Registry) executeSafe(ctx context.Context, t Tool, args map[string]any, user *core.User) (res *core.FunctionResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool.exec.panic", "tool", t.Name(), "recover", fmt.Sprintf("%v", rec))
			res = nil
			err = NewToolError(t.Name(), fmt.Sprintf("panic: %v", rec), "EXECUTION_ERROR")
		}
	}()
	res, err = t.Execute(ctx, args, user)
	if err == nil && res == nil {
		err = NewToolError(t.Name(), "handler returned no result", "EXECUTION_ERROR")
	}
	return res, err
}
