package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/siamauto/chatcore/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall represents a function call request surfaced by a model provider.
// Unified across vendors so downstream logic does not need per-provider branching.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string of arguments
}

// Request captures the normalized model input produced by the gateway.
// History holds every formatted turn except the newest; Latest is the turn
// being answered. Providers flatten the two back into their native shapes.
type Request struct {
	System  string           `json:"system,omitempty"`
	History []core.Message   `json:"history"`
	Latest  core.Message     `json:"latest"`
	Tools   []ToolDefinition `json:"tools,omitempty"`
}

// Response is the completed output of one generation call. A provider may
// return free text, one or more proposed tool calls, or both.
type Response struct {
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the gateway and summarizer need to drive
// generation. Implementations must be safe for concurrent use.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Canned
// responses are keyed by the latest message content; scripted errors are
// consumed first, one per call, which makes retry behavior observable.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]*Response
	errQueue  []error
	calls     int
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]*Response),
	}
}

// AddResponse registers a deterministic canned text completion for an input.
func (m *MockModel) AddResponse(input, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = &Response{Text: text, FinishReason: "stop"}
}

// AddToolCall registers a canned tool call response for an input.
func (m *MockModel) AddToolCall(input, name, arguments string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = &Response{
		ToolCalls:    []ToolCall{{ID: "call_1", Name: name, Arguments: arguments}},
		FinishReason: "tool_calls",
	}
}

// EnqueueError schedules an error to be returned by the next Generate call.
// Queued errors are consumed in order before canned responses apply.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errQueue = append(m.errQueue, err)
}

// Calls reports how many times Generate has been invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.errQueue) > 0 {
		err := m.errQueue[0]
		m.errQueue = m.errQueue[1:]
		return nil, err
	}
	if resp, ok := m.responses[req.Latest.Content]; ok {
		cp := *resp
		return &cp, nil
	}
	return &Response{
		Text:         fmt.Sprintf("Mock response to: %s", req.Latest.Content),
		FinishReason: "stop",
	}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
