// Package convo manages conversation context: a bounded in-memory cache as
// the default source, a persistent store consulted only when a turn needs
// deeper history, and the keyword heuristics deciding both. Persistence is
// selective: casual chit-chat is cached but never durably stored.
package convo

import (
	"sync"

	"github.com/siamauto/chatcore/core"
)

// DefaultMaxMessagesPerUser bounds per-user cache growth. Old messages are
// truncated from the front; conversation order is insertion order.
const DefaultMaxMessagesPerUser = 20

// CacheOptions configure the in-memory conversation cache.
type CacheOptions struct {
	MaxMessagesPerUser int
}

// Cache is a volatile per-user message history safe for concurrent access.
// Returned slices are copies so callers cannot mutate internal state.
// Concurrent turns for different users never interfere; same-user turns get
// last-write-observed semantics, which the calling channel serializes anyway.
type Cache struct {
	mu         sync.RWMutex
	messages   map[string][]core.Message
	maxPerUser int
}

// NewCache constructs an empty conversation cache.
func NewCache(optFns ...func(o *CacheOptions)) *Cache {
	opts := CacheOptions{MaxMessagesPerUser: DefaultMaxMessagesPerUser}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Cache{
		messages:   make(map[string][]core.Message),
		maxPerUser: opts.MaxMessagesPerUser,
	}
}

// GetMessages returns a copy of the user's cached history in insertion order.
func (c *Cache) GetMessages(userID string) []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msgs := c.messages[userID]
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out
}

// AddMessage appends one message, evicting the oldest beyond the bound.
func (c *Cache) AddMessage(userID string, msg core.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := append(c.messages[userID], msg)
	if c.maxPerUser > 0 && len(msgs) > c.maxPerUser {
		msgs = msgs[len(msgs)-c.maxPerUser:]
	}
	c.messages[userID] = msgs
}

// Warm replaces the user's cached history with store-loaded messages so
// subsequent turns in the same session stay on the fast path.
func (c *Cache) Warm(userID string, msgs []core.Message) {
	if c.maxPerUser > 0 && len(msgs) > c.maxPerUser {
		msgs = msgs[len(msgs)-c.maxPerUser:]
	}
	cp := make([]core.Message, len(msgs))
	copy(cp, msgs)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[userID] = cp
}

// Clear drops the user's cached history.
func (c *Cache) Clear(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.messages, userID)
}
