// Package sched provides the scheduling primitives the analysis engine
// runs on: a bounded memoization cache, a keyed trailing-edge debouncer,
// source-size and timeout limits, and a soft memory tracker.
package sched

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value      V
	lastAccess time.Time
	hits       uint64
}

// Cache is a bounded map with batched eviction. When an insert would
// exceed the configured capacity, the quarter of entries with the
// fewest hits (oldest access breaking ties) is dropped in one sweep,
// so a burst of inserts does not thrash one slot at a time.
type Cache[V any] struct {
	mu      sync.Mutex
	max     int
	entries map[string]*cacheEntry[V]
}

// NewCache returns a cache holding at most max entries. A max of zero
// or less disables caching entirely: every lookup misses.
func NewCache[V any](max int) *Cache[V] {
	return &Cache[V]{
		max:     max,
		entries: make(map[string]*cacheEntry[V]),
	}
}

// Get returns the cached value for key, if present.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	e.hits++
	e.lastAccess = time.Now()
	return e.value, true
}

// Put stores value under key, evicting first if the cache is full.
func (c *Cache[V]) Put(key string, value V) {
	if c.max <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.entries[key] = &cacheEntry[V]{
		value:      value,
		lastAccess: time.Now(),
	}
}

// GetOrCompute returns the cached value for key, computing and storing
// it on a miss. The compute function runs outside the cache lock, so
// concurrent misses on the same key may compute twice; the last write
// is kept. An error from compute is returned without caching.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Put(key, v)
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops all entries.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry[V])
}

// evictLocked removes ceil(max/4) entries, fewest hits first and
// oldest access among equals. Caller holds c.mu.
func (c *Cache[V]) evictLocked() {
	n := (c.max + 3) / 4
	if n < 1 {
		n = 1
	}
	for ; n > 0 && len(c.entries) > 0; n-- {
		var victim string
		var ve *cacheEntry[V]
		for k, e := range c.entries {
			if ve == nil || e.hits < ve.hits ||
				(e.hits == ve.hits && e.lastAccess.Before(ve.lastAccess)) {
				victim, ve = k, e
			}
		}
		delete(c.entries, victim)
	}
}
