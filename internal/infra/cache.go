// Package infra provides shared infrastructure components used across
// the application: the snapshot cache, outbound rate limiting, and logging.
package infra

import (
	"sync"
	"time"
)

// Entry is one cached value with its write and expiry times.
type Entry struct {
	Value     any
	WrittenAt time.Time
	ExpiresAt time.Time
}

// Age returns how long ago the entry was written, relative to now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.WrittenAt)
}

// Cache is a thread-safe in-memory key/value store with a fixed TTL measured
// from the last write. Values are replaced whole on Set and never mutated in
// place, so a reader sees either the previous value or the new one.
// Entries are never deleted; an expired entry is simply reported absent.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces the time source used for write stamps and expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a new cache with the given TTL.
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the expiry horizon applied on every write.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Now returns the cache's current time.
func (c *Cache) Now() time.Time { return c.now() }

// Set stores value under key, replacing any previous entry.
func (c *Cache) Set(key string, value any) {
	now := c.now()
	c.mu.Lock()
	c.entries[key] = Entry{
		Value:     value,
		WrittenAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.mu.Unlock()
}

// Get retrieves a value from the cache. Returns nil, false if never written or expired.
func (c *Cache) Get(key string) (any, bool) {
	e, ok := c.Lookup(key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Lookup returns the full entry for key, or false if never written or expired.
func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.ExpiresAt) {
		return Entry{}, false
	}
	return e, true
}
