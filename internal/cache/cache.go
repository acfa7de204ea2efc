// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package cache

import (
	"sync"
	"time"
)

// Entry represents a cached item with expiration
type Entry[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-entry TTL.
//
// Expiry is lazy: an expired entry is removed by the Get that finds it (or by
// Prune). There is no background goroutine, so a Cache needs no Close.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
	ttl     time.Duration
	now     func() time.Time
	onEvict func(key string, expired bool)
	stats   Stats
}

// Stats tracks cache performance metrics
type Stats struct {
	mu        sync.RWMutex
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
	LastPrune time.Time
}

// New creates a cache whose entries live for ttl.
//
// Example:
//
//	c := cache.New[string](time.Minute)
//	c.Set("key", "value")
//	if v, ok := c.Get("key"); ok {
//	    // use v
//	}
func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithClock[V](ttl, time.Now)
}

// NewWithClock is New with an injectable clock, for tests.
func NewWithClock[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{
		entries: make(map[string]Entry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// OnEvict registers fn to be called after an entry is removed, with
// expired=false for Delete. Must be set before the cache is shared.
func (c *Cache[V]) OnEvict(fn func(key string, expired bool)) {
	c.onEvict = fn
}

// TTL returns the default time-to-live.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get retrieves a value by key. An entry is valid strictly before its
// expiry instant; at or after it the entry is removed and Get misses.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !exists {
		c.recordMiss()
		return zero, false
	}

	if !c.now().Before(entry.ExpiresAt) {
		evicted := false
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.ExpiresAt) {
			delete(c.entries, key)
			c.setTotalKeys(len(c.entries))
			evicted = true
		}
		c.mu.Unlock()
		if evicted {
			c.recordEviction()
			c.notifyEvict(key, true)
		}
		c.recordMiss()
		return zero, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{
		Data:      value,
		ExpiresAt: c.now().Add(ttl),
	}
	c.setTotalKeys(len(c.entries))
}

// Delete removes a cache entry by key. Returns true if an entry was removed.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.setTotalKeys(len(c.entries))
	c.mu.Unlock()

	if existed {
		c.recordEviction()
		c.notifyEvict(key, false)
	}
	return existed
}

// Prune removes all expired entries and returns how many were removed.
func (c *Cache[V]) Prune() int {
	now := c.now()
	c.mu.Lock()
	var removedKeys []string
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			removedKeys = append(removedKeys, key)
		}
	}
	remaining := len(c.entries)
	c.mu.Unlock()

	removed := len(removedKeys)
	for _, key := range removedKeys {
		c.notifyEvict(key, true)
	}

	c.stats.mu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.TotalKeys = int64(remaining)
	c.stats.LastPrune = now
	c.stats.mu.Unlock()
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of current cache statistics.
func (c *Cache[V]) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:      c.stats.Hits,
		Misses:    c.stats.Misses,
		Evictions: c.stats.Evictions,
		TotalKeys: c.stats.TotalKeys,
		LastPrune: c.stats.LastPrune,
	}
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache[V]) notifyEvict(key string, expired bool) {
	if c.onEvict != nil {
		c.onEvict(key, expired)
	}
}

func (c *Cache[V]) setTotalKeys(n int) {
	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(n)
	c.stats.mu.Unlock()
}

// recordHit increments the hit counter
func (c *Cache[V]) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

// recordMiss increments the miss counter
func (c *Cache[V]) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

// recordEviction increments the eviction counter
func (c *Cache[V]) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}
