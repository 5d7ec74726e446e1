package sim

import (
	"context"
	"sync"

	"rtsched/internal/task"
)

// Cache stores run results by RunKey.
//
// Runs are deterministic, so a stored result is exactly what re-running would
// produce. Cached schedules are shared and must be treated as read-only.
type Cache interface {
	Get(key RunKey) (*Result, bool)
	Put(key RunKey, res *Result)
}

// MemoryCache is a concurrency-safe in-memory Cache holding at most Capacity
// results. The oldest entry is evicted first.
type MemoryCache struct {
	Capacity int

	mu      sync.Mutex
	entries map[RunKey]*Result
	order   []RunKey
}

// NewMemoryCache creates a cache for up to capacity results. A non-positive
// capacity means unbounded.
func NewMemoryCache(capacity int) *MemoryCache {
	return &MemoryCache{Capacity: capacity, entries: make(map[RunKey]*Result)}
}

func (c *MemoryCache) Get(key RunKey) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return res.clone(), true
}

func (c *MemoryCache) Put(key RunKey, res *Result) {
	if res == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[RunKey]*Result)
	}
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = res.clone()
	for c.Capacity > 0 && len(c.order) > c.Capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of stored results.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// clone copies the outcome slice so callers cannot reorder or replace
// cached outcomes.
func (r *Result) clone() *Result {
	out := &Result{Outcomes: make([]Outcome, len(r.Outcomes))}
	copy(out.Outcomes, r.Outcomes)
	return out
}

// RunCached is Run behind a cache. hit reports whether the result came from
// the cache. A nil cache always runs.
func RunCached(ctx context.Context, cache Cache, set *task.Set, opts Options) (res *Result, hit bool, err error) {
	if cache == nil {
		res, err = Run(ctx, set, opts)
		return res, false, err
	}
	if err := set.Validate(); err != nil {
		return nil, false, err
	}
	key := ComputeKey(set, opts)
	if cached, ok := cache.Get(key); ok {
		return cached, true, nil
	}
	res, err = Run(ctx, set, opts)
	if err != nil {
		return nil, false, err
	}
	cache.Put(key, res)
	return res, false, nil
}
