package cache

import (
	"sync"
	"time"

	"github.com/starford/raido/internal/fingerprint"
	"github.com/starford/raido/internal/skeleton"
)

// DefaultDebounce is the quiet period applied to change-driven invalidation.
const DefaultDebounce = 500 * time.Millisecond

// SkeletonCache wraps the LRU with filesystem-fingerprint validation and
// per-path debounced invalidation. Validity is re-checked against the file's
// current content hash on every read; a previous determination is never
// trusted. Fingerprints are content hashes rather than mtimes: editors touch
// mtime without changing content often enough to make mtime unreliable both
// ways.
type SkeletonCache struct {
	mem    *LRU
	window time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	gens   map[string]uint64
}

// NewSkeletonCache creates a SkeletonCache with the given LRU capacity and
// debounce window. Non-positive arguments fall back to the defaults.
func NewSkeletonCache(capacity int, window time.Duration) *SkeletonCache {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &SkeletonCache{
		mem:    NewLRU(capacity),
		window: window,
		timers: make(map[string]*time.Timer),
		gens:   make(map[string]uint64),
	}
}

// GetIfValid returns the cached skeleton for path if the file's current
// content still matches the stored fingerprint. A changed, missing, or
// unreadable file evicts the entry and reports a miss.
func (c *SkeletonCache) GetIfValid(path string) *skeleton.Skeleton {
	v, fp, ok := c.mem.Get(path)
	if !ok {
		return nil
	}
	current, err := fingerprint.File(path)
	if err != nil || current != fp {
		c.mem.Delete(path)
		return nil
	}
	sk, ok := v.(*skeleton.Skeleton)
	if !ok {
		c.mem.Delete(path)
		return nil
	}
	return sk
}

// Set fingerprints the file now and stores the skeleton. If the file
// vanished between parse and store, the entry is silently skipped.
func (c *SkeletonCache) Set(path string, sk *skeleton.Skeleton) {
	fp, err := fingerprint.File(path)
	if err != nil {
		return
	}
	c.mem.Set(path, sk, fp)
}

// SetWithFingerprint stores the skeleton under an already-known fingerprint
// without touching the disk. Used when warming the cache from the durable
// store, where the stored hash is trusted as-is.
func (c *SkeletonCache) SetWithFingerprint(path string, sk *skeleton.Skeleton, fp string) {
	c.mem.Set(path, sk, fp)
}

// Invalidate removes path immediately and cancels any pending debounce timer.
func (c *SkeletonCache) Invalidate(path string) {
	c.mu.Lock()
	c.supersedeLocked(path)
	c.mu.Unlock()
	c.mem.Delete(path)
}

// supersedeLocked cancels the pending timer for path and advances its
// generation. Stop cannot un-fire a timer whose callback is already in
// flight; the generation bump makes such a callback a no-op. Caller holds
// c.mu.
func (c *SkeletonCache) supersedeLocked(path string) {
	if t, ok := c.timers[path]; ok {
		t.Stop()
		delete(c.timers, path)
	}
	c.gens[path]++
}

// InvalidateDebounced schedules invalidation of path after the quiet period.
// A call for the same path before the timer fires restarts it, so a burst of
// rapid change events (format-on-save storms) collapses into one effect
// timed from the last event. onInvalidated, if non-nil, runs after the entry
// is removed. At most one invalidation is pending per path at any time; a
// timer that fired across the restart boundary checks its generation under
// the lock and does nothing once superseded.
func (c *SkeletonCache) InvalidateDebounced(path string, onInvalidated func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[path]; ok {
		t.Stop()
	}
	c.gens[path]++
	gen := c.gens[path]
	c.timers[path] = time.AfterFunc(c.window, func() {
		c.mu.Lock()
		if c.gens[path] != gen {
			c.mu.Unlock()
			return
		}
		delete(c.timers, path)
		c.mu.Unlock()
		c.mem.Delete(path)
		if onInvalidated != nil {
			onInvalidated()
		}
	})
}

// Close cancels all pending invalidation timers.
func (c *SkeletonCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.timers {
		c.supersedeLocked(p)
	}
}

// Clear drops every cached entry. Pending timers are left alone; firing on
// an absent key is a no-op.
func (c *SkeletonCache) Clear() { c.mem.Clear() }

// Len returns the number of cached entries.
func (c *SkeletonCache) Len() int { return c.mem.Len() }

// Cap returns the cache capacity.
func (c *SkeletonCache) Cap() int { return c.mem.Cap() }
