package core

import "time"

// Result kinds route successful tool output to the matching summary template.
const (
	KindCar         = "car"
	KindAppointment = "appointment"
)

// FunctionCall describes the model's structured decision to invoke a named
// tool instead of answering in free text. It lives for a single turn; only
// its name/arguments shape is attached to importance-gated persisted records.
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	// Text carries any free text the model emitted alongside the call.
	Text string `json:"text,omitempty"`
}

// FunctionResult is the normalized output contract every tool handler
// returns. RawData is the unsummarized record list; Summary may be filled by
// the handler or left for the summarizer. Query echoes the resolved filter
// arguments so "view all results" links always have something to serialize.
type FunctionResult struct {
	Success      bool             `json:"success"`
	Summary      string           `json:"summary,omitempty"`
	RawData      []map[string]any `json:"rawData"`
	Count        int              `json:"count"`
	Query        map[string]any   `json:"query"`
	Kind         string           `json:"kind,omitempty"`
	Error        string           `json:"error,omitempty"`
	FunctionName string           `json:"functionName,omitempty"`
	ExecutedAt   time.Time        `json:"executedAt,omitzero"`
}

// Normalize stamps the result with its originating function name and
// execution time and guarantees the required fields hold usable values.
// Handlers may return sparse results; the registry calls this so downstream
// consumers never see a nil Query or RawData.
func (r *FunctionResult) Normalize(functionName string, args map[string]any) {
	r.FunctionName = functionName
	r.ExecutedAt = time.Now().UTC()
	if r.Query == nil {
		r.Query = args
	}
	if r.Query == nil {
		r.Query = map[string]any{}
	}
	if r.RawData == nil {
		r.RawData = []map[string]any{}
	}
	if r.Count == 0 {
		r.Count = len(r.RawData)
	}
}
