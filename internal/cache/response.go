// Package cache holds the in-process caches that sit in front of the LLM:
// a FIFO response cache keyed on (message, context) and nothing else. The
// caches are disposable; a miss always falls through to the real call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

const DefaultResponseCapacity = 100

// ResponseCache memoizes LLM responses for repeated (message, context)
// pairs within a single process run. Eviction is strictly FIFO: once the
// cache is full the oldest-inserted entry goes, regardless of how recently
// it was read.
type ResponseCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]string
	order    []string
}

func NewResponseCache(capacity int) *ResponseCache {
	if capacity <= 0 {
		capacity = DefaultResponseCapacity
	}
	return &ResponseCache{
		capacity: capacity,
		entries:  make(map[string]string, capacity),
	}
}

// Get returns the cached response for the pair, if present.
func (c *ResponseCache) Get(message, context string) (string, bool) {
	key := responseKey(message, context)
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put inserts a response, evicting the single oldest entry when full.
func (c *ResponseCache) Put(message, context, response string) {
	key := responseKey(message, context)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = response
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = response
	c.order = append(c.order, key)
}

// Len reports the current number of cached responses.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func responseKey(message, context string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(message))))
	h.Write([]byte{0})
	h.Write([]byte(context))
	return hex.EncodeToString(h.Sum(nil))
}
