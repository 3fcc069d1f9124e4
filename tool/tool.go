// Package tool implements the function calling subsystem: a registry mapping
// declared tool names to executable handlers, schema validation of model
// supplied arguments, and the car / appointment handlers themselves. The
// registry's Execute contract always resolves to a normalized
// core.FunctionResult; handler errors and panics never reach the caller.
package tool

import (
	"context"
	"fmt"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/internal/util"
)

// Tool is a named capability the model can invoke. Implementations must be
// safe for concurrent use and should return domain-level failures inside the
// FunctionResult rather than as errors; an error return is reserved for
// infrastructure faults and is converted to a failure result by the registry.
type Tool interface {
	// Name returns the unique identifier used in function call declarations and routing.
	Name() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Execute runs the tool. user is nil for guests.
	Execute(ctx context.Context, args map[string]any, user *core.User) (*core.FunctionResult, error)
}

// ValidationError re-exports the argument validation error type.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
