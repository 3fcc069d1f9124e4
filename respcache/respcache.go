// Package respcache short-circuits repeated questions with previously
// generated answers, keyed by a fingerprint of the normalized question.
// Only generic, non-personalized answers are eligible.
package respcache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTTL bounds how long a cached answer stays fresh.
	DefaultTTL = 15 * time.Minute
	// DefaultMaxEntries bounds memory; least recently used entries go first.
	DefaultMaxEntries = 500
)

// CachePredicate decides whether a finished turn may be cached. It sees the
// normalized question and the final answer text.
type CachePredicate func(question, answer string) bool

// Options configure the response cache.
type Options struct {
	TTL         time.Duration
	MaxEntries  int
	ShouldCache CachePredicate
}

type entry struct {
	key       string
	response  string
	expiresAt time.Time
}

// Cache is a TTL and LRU bounded response cache safe for concurrent use.
// Entries are immutable once set; a second Set for a live key is a no-op so
// the first answer observed for a question stays canonical until it expires.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*list.Element
	order       *list.List
	ttl         time.Duration
	maxEntries  int
	shouldCache CachePredicate
}

// New constructs a response cache.
func New(optFns ...func(o *Options)) *Cache {
	opts := Options{
		TTL:         DefaultTTL,
		MaxEntries:  DefaultMaxEntries,
		ShouldCache: DefaultPredicate,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Cache{
		entries:     make(map[string]*list.Element),
		order:       list.New(),
		ttl:         opts.TTL,
		maxEntries:  opts.MaxEntries,
		shouldCache: opts.ShouldCache,
	}
}

// GenerateKey fingerprints a question in its delivery context. Two users on
// the same platform asking the same normalized question share a key; the
// platform is part of the context because channels phrase answers
// differently.
func GenerateKey(text, platform string) string {
	sum := sha256.Sum256([]byte(normalize(text) + "|" + platform))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached answer for key, if present and unexpired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return "", false
	}
	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.remove(el)
		return "", false
	}
	c.order.MoveToFront(el)
	return e.response, true
}

// Set stores an answer if the predicate allows it and the key is not already
// live. Returns whether the answer was stored.
func (c *Cache) Set(key, question, answer string) bool {
	if answer == "" || !c.shouldCache(normalize(question), answer) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		if time.Now().Before(el.Value.(*entry).expiresAt) {
			return false
		}
		c.remove(el)
	}
	el := c.order.PushFront(&entry{key: key, response: answer, expiresAt: time.Now().Add(c.ttl)})
	c.entries[key] = el
	for c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		c.remove(c.order.Back())
	}
	return true
}

// Len reports the number of live entries, expired ones included until read
// or evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) remove(el *list.Element) {
	delete(c.entries, el.Value.(*entry).key)
	c.order.Remove(el)
}

// DefaultPredicate rejects answers tied to a moment or a person: anything
// that mentions appointments, references to "now"/"today", or carries a
// booking reference would go stale or leak across users.
func DefaultPredicate(question, answer string) bool {
	blocked := []string{
		"นัด", "จอง", "ยกเลิก", "วันนี้", "พรุ่งนี้", "ตอนนี้",
		"appointment", "book", "cancel", "today", "tomorrow",
	}
	for _, kw := range blocked {
		if strings.Contains(question, kw) || strings.Contains(strings.ToLower(answer), kw) {
			return false
		}
	}
	return true
}

// normalize collapses whitespace and case so trivial rephrasings share a key.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
