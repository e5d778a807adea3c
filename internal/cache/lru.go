// Package cache provides the in-memory skeleton cache: a bounded
// recency-ordered map plus a fingerprint-validating, debouncing wrapper.
package cache

import (
	"sort"
	"sync"
)

// DefaultCapacity is the entry limit used when none is configured.
const DefaultCapacity = 5000

type entry struct {
	value       any
	fingerprint string
	touched     uint64
}

// LRU is a bounded map from string key to value + fingerprint, ordered by
// recency of access. When full, Set evicts the least-recently-touched 10%
// of capacity (at least one entry) in a single pass, bounding amortized
// eviction cost under sustained insert pressure.
//
// Operations never fail; the cache is a pure optimization layer.
type LRU struct {
	mu       sync.Mutex
	capacity int
	clock    uint64
	entries  map[string]*entry
}

// NewLRU creates a cache holding at most capacity entries. Non-positive
// capacity falls back to DefaultCapacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		entries:  make(map[string]*entry, capacity),
	}
}

// Get returns the value and stored fingerprint for key, touching its
// recency as a side effect.
func (c *LRU) Get(key string) (any, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, "", false
	}
	c.clock++
	e.touched = c.clock
	return e.value, e.fingerprint, true
}

// Set stores value under key, evicting a batch of stale entries first when
// the cache is at capacity.
func (c *LRU) Set(key string, value any, fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.evictBatch()
	}
	c.clock++
	c.entries[key] = &entry{value: value, fingerprint: fingerprint, touched: c.clock}
}

// evictBatch removes the oldest 10% of capacity (minimum 1) by recency.
// Caller holds the lock.
func (c *LRU) evictBatch() {
	n := c.capacity / 10
	if n < 1 {
		n = 1
	}
	type aged struct {
		key     string
		touched uint64
	}
	order := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		order = append(order, aged{key: k, touched: e.touched})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].touched < order[j].touched })
	if n > len(order) {
		n = len(order)
	}
	for _, a := range order[:n] {
		delete(c.entries, a.key)
	}
}

// Delete removes key and reports whether it was present.
func (c *LRU) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Clear drops every entry.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry, c.capacity)
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cap returns the fixed capacity.
func (c *LRU) Cap() int {
	return c.capacity
}
