// Package cache memoizes backend responses for a fixed age.
//
// Keys are request signatures and values are raw response bodies. There is
// no capacity bound and no eviction policy beyond the age check on read.
package cache

import (
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// entry is one memoized response
type entry struct {
	Data     []byte    `json:"data"`
	StoredAt time.Time `json:"stored_at"`
}

// Cache is a time-keyed response cache. The zero TTL disables it.
type Cache struct {
	ttl    time.Duration
	now    func() time.Time
	store  *Store
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry
}

// Option configures a Cache
type Option func(*Cache)

// WithLogger reports disk read failures, which Get treats as misses
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces the wall clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithStore adds a persistent layer behind the memory map
func WithStore(s *Store) Option {
	return func(c *Cache) {
		c.store = s
	}
}

// New creates a cache whose entries expire ttl after they were stored
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		logger:  slog.Default(),
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the request signature for a GET. Encode sorts parameters,
// so the same request always maps to the same key.
func Key(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

// TTL returns the configured maximum age
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the value stored under key if it is younger than the TTL.
// Memory is checked first; disk hits are promoted to memory.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok && c.store != nil {
		var err error
		e, ok, err = c.store.get(key)
		if err != nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		if ok {
			c.mu.Lock()
			c.entries[key] = e
			c.mu.Unlock()
		}
	}
	if !ok {
		return nil, false
	}

	if c.expired(e) {
		if err := c.Delete(key); err != nil {
			c.logger.Warn("failed to drop expired entry", "key", key, "error", err)
		}
		return nil, false
	}
	return e.Data, true
}

// Set stores value under key, stamped with the current time
func (c *Cache) Set(key string, value []byte) error {
	if c.ttl <= 0 {
		return nil
	}

	e := entry{Data: value, StoredAt: c.now()}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.set(key, e)
}

// Delete removes key from memory and disk
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.delete(key)
}

// Purge drops every entry. Memory is always cleared; an error means the
// disk copy may still hold entries.
func (c *Cache) Purge() error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.purge()
}

// Len returns the number of entries held in memory, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(e entry) bool {
	return c.now().Sub(e.StoredAt) >= c.ttl
}
