package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/logging"
	"github.com/siamauto/chatcore/model"
)

func testTurn() TurnContext {
	return TurnContext{
		Platform:  "web",
		Reference: core.ReferenceData{Categories: []string{"Sedan", "SUV"}, Branches: []string{"Bangkok"}},
	}
}

func TestClassify_Text(t *testing.T) {
	mock := model.NewMockModel("test", "mock")
	mock.AddResponse("hello", "Hi, how can I help?")
	gw := New(mock)

	reply := gw.Classify(context.Background(), []core.Message{core.NewUserMessage("hello")}, testTurn())

	assert.Equal(t, ReplyText, reply.Type)
	assert.Equal(t, "Hi, how can I help?", reply.Content)
	assert.NoError(t, reply.Err)
}

func TestClassify_FunctionCall(t *testing.T) {
	mock := model.NewMockModel("test", "mock")
	mock.AddToolCall("มีรถ Toyota ไม่เกิน 500000", "queryCarsComprehensive", `{"brand":"Toyota","max_price":500000}`)
	gw := New(mock)

	reply := gw.Classify(context.Background(), []core.Message{core.NewUserMessage("มีรถ Toyota ไม่เกิน 500000")}, testTurn())

	require.Equal(t, ReplyFunctionCall, reply.Type)
	require.NotNil(t, reply.Call)
	assert.Equal(t, "queryCarsComprehensive", reply.Call.Name)
	assert.Equal(t, "Toyota", reply.Call.Arguments["brand"])
	assert.EqualValues(t, 500000, reply.Call.Arguments["max_price"])
}

func TestClassify_DropsLeadingAssistantMessages(t *testing.T) {
	mock := model.NewMockModel("test", "mock")
	gw := New(mock)

	history := []core.Message{
		core.NewAssistantMessage("stale greeting"),
		core.NewAssistantMessage("another"),
		core.NewUserMessage("hello"),
	}
	reply := gw.Classify(context.Background(), history, testTurn())

	assert.Equal(t, ReplyText, reply.Type)
	// Only the user message survived formatting, so exactly one model call
	// happened with it as the latest turn.
	assert.Equal(t, 1, mock.Calls())
}

func TestClassify_NoUserMessage(t *testing.T) {
	mock := model.NewMockModel("test", "mock")
	gw := New(mock)

	reply := gw.Classify(context.Background(), []core.Message{core.NewAssistantMessage("orphan")}, testTurn())

	assert.Equal(t, ReplyError, reply.Type)
	assert.ErrorIs(t, reply.Err, ErrEmptyHistory)
	assert.Zero(t, mock.Calls())
}

func TestClassify_RetriesOverloadThenSucceeds(t *testing.T) {
	mock := model.NewMockModel("test", "mock")
	mock.EnqueueError(errors.New("503 service unavailable"))
	mock.EnqueueError(errors.New("model overloaded"))
	mock.AddResponse("hello", "recovered")

	gw := New(mock, func(o *Options) {
		o.Retry = RetryConfig{MaxAttempts: 3, InitialInterval: 10 * time.Millisecond, MaxInterval: 40 * time.Millisecond}
	})

	start := time.Now()
	reply := gw.Classify(context.Background(), []core.Message{core.NewUserMessage("hello")}, testTurn())
	elapsed := time.Since(start)

	assert.Equal(t, ReplyText, reply.Type)
	assert.Equal(t, "recovered", reply.Content)
	assert.Equal(t, 3, mock.Calls())
	// Two backoff waits: 10ms + 20ms.
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestClassify_FatalErrorNotRetried(t *testing.T) {
	mock := model.NewMockModel("test", "mock")
	mock.EnqueueError(errors.New("invalid api key"))
	gw := New(mock)

	reply := gw.Classify(context.Background(), []core.Message{core.NewUserMessage("hello")}, testTurn())

	assert.Equal(t, ReplyError, reply.Type)
	assert.Equal(t, 1, mock.Calls())
}

func TestClassify_RetriesExhausted(t *testing.T) {
	mock := model.NewMockModel("test", "mock")
	for i := 0; i < 3; i++ {
		mock.EnqueueError(errors.New("429 rate limit"))
	}
	gw := New(mock, func(o *Options) {
		o.Retry = RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 4 * time.Millisecond}
		o.Logger = logging.NoOpLogger{}
	})

	reply := gw.Classify(context.Background(), []core.Message{core.NewUserMessage("hello")}, testTurn())

	assert.Equal(t, ReplyError, reply.Type)
	assert.Equal(t, 3, mock.Calls())
	assert.Contains(t, reply.Err.Error(), "after 3 attempts")
}

func TestClassify_BudgetExceeded(t *testing.T) {
	mock := model.NewMockModel("test", "mock")
	gw := New(mock)

	ctx := model.WithBudget(context.Background(), model.NewCallBudget(1))
	msgs := []core.Message{core.NewUserMessage("hello")}

	assert.Equal(t, ReplyText, gw.Classify(ctx, msgs, testTurn()).Type)
	reply := gw.Classify(ctx, msgs, testTurn())
	assert.Equal(t, ReplyError, reply.Type)
	assert.Equal(t, 1, mock.Calls())
}

func TestIsOverloaded(t *testing.T) {
	assert.True(t, IsOverloaded(errors.New("anthropic api error: 529 Overloaded")))
	assert.True(t, IsOverloaded(errors.New("openai api error: 429 Too Many Requests, rate limit reached")))
	assert.True(t, IsOverloaded(errors.New("503 Service Unavailable")))
	assert.False(t, IsOverloaded(errors.New("400 bad request")))
	assert.False(t, IsOverloaded(nil))
}

func TestBuildSystemPrompt(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	prompt := BuildSystemPrompt("line", now, core.ReferenceData{Categories: []string{"Pickup"}, Branches: []string{"Chiang Mai"}})

	assert.Contains(t, prompt, "line channel")
	assert.Contains(t, prompt, "2568") // 2025 + 543
	assert.Contains(t, prompt, "Pickup")
	assert.Contains(t, prompt, "Chiang Mai")
}
