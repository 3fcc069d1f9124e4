package model

import (
	"context"
	"fmt"
	"sync"
)

// CallBudget enforces a maximum number of model calls within one turn.
// Adapters create a budget per request and attach it to the context; the
// gateway and summarizer increment it before each provider call so a
// misbehaving turn cannot loop the model indefinitely.
type CallBudget struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewCallBudget creates a budget allowing max calls. max == 0 means unlimited.
func NewCallBudget(max int) *CallBudget {
	return &CallBudget{max: max}
}

// Increment increases the call counter and returns an error if the limit is exceeded.
func (b *CallBudget) Increment() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.count++
	if b.max > 0 && b.count > b.max {
		return fmt.Errorf("exceeded max model calls: %d", b.max)
	}
	return nil
}

// Count returns the current number of calls made.
func (b *CallBudget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

type budgetKey struct{}

// WithBudget attaches a CallBudget to the context for the duration of a turn.
func WithBudget(ctx context.Context, b *CallBudget) context.Context {
	return context.WithValue(ctx, budgetKey{}, b)
}

// BudgetFrom extracts the turn's CallBudget, or nil when none is attached.
func BudgetFrom(ctx context.Context) *CallBudget {
	b, _ := ctx.Value(budgetKey{}).(*CallBudget)
	return b
}
