package core

import "time"

// Conversation roles. Only user and assistant messages are persisted;
// system content is assembled per turn by the gateway.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversational turn fragment. Messages are append-only:
// once added to a history they are never mutated, only truncated by cache
// eviction.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a user-authored message stamped with the current time.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// NewAssistantMessage creates an assistant-authored message stamped with the current time.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now().UTC()}
}

// TrimToFirstUser drops every message before the first user-role message.
// Model providers reject histories that open with an assistant turn, so a
// malformed prefix is discarded rather than reordered. A history with no
// user message at all yields an empty slice.
func TrimToFirstUser(messages []Message) []Message {
	for i, m := range messages {
		if m.Role == RoleUser {
			return messages[i:]
		}
	}
	return nil
}
