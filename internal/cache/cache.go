// Package cache provides an in-memory TTL cache in front of the Zabbix
// query layer, absorbing repeated requests within short windows.
package cache

import (
	"sync"
	"time"
)

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

type entry struct {
	value    interface{}
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a key→value store with per-entry TTL. Expired entries are treated
// as absent and removed lazily on read; there is no background sweeper.
// Safe for concurrent use; concurrent writes for the same key are
// last-write-wins, which is fine because entries are idempotent projections
// of the same query.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    uint64
	misses  uint64

	clock func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source. Used in tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) { c.clock = clock }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored value if present and unexpired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	if c.clock().Sub(e.storedAt) > e.ttl {
		c.mu.Lock()
		// Re-check under the write lock: the entry may have been
		// refreshed by a concurrent Set.
		if cur, still := c.entries[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.value, true
}

// Set stores value under key with an expiry of now + ttl, overwriting any
// prior entry for the same key.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.clock(), ttl: ttl}
	c.mu.Unlock()
}

// Clear removes all entries and returns how many were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return n
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns hit/miss counters and the current entry count.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}
