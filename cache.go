package jitasm

import "sync"

// PipelineCache is a content-addressed cache of materialized function
// handles, keyed by a caller-supplied string (spec §4.7 Pipeline cache).
// It owns an internal mutex covering every map access, so a single
// PipelineCache may be shared across threads without an external lock
// (spec §4.7 Scheduling model: "an internal mutex covering add/add_cached
// /release").
type PipelineCache struct {
	rt *Runtime

	mu      sync.Mutex
	handles map[string]*FunctionHandle
}

// NewPipelineCache returns an empty cache backed by rt for materializing
// cache misses.
func NewPipelineCache(rt *Runtime) *PipelineCache {
	return &PipelineCache{rt: rt, handles: make(map[string]*FunctionHandle)}
}

// AddCached returns key's existing handle if one is already cached,
// otherwise materializes h and stores the result under key (spec §4.7:
// "add_cached(key, holder) returns an existing handle if present and
// produces and stores a new one otherwise"). Two calls with the same key
// — even from different holders that happen to finalize to the same
// bytes — return the pointer-identical handle (spec §8 testable property
// 5: key-idempotence); the holder passed on a cache hit is simply
// discarded without being finalized.
func (c *PipelineCache) AddCached(key string, h *CodeHolder) (*FunctionHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.handles[key]; ok {
		return existing, nil
	}
	handle, err := c.rt.Materialize(h)
	if err != nil {
		return nil, err
	}
	c.handles[key] = handle
	return handle, nil
}

// Lookup returns key's cached handle, if any, without materializing
// anything on a miss.
func (c *PipelineCache) Lookup(key string) (*FunctionHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[key]
	return h, ok
}

// Drop releases key's cached handle and removes it from the cache. Once
// dropped, a later AddCached with the same key materializes and caches a
// fresh handle (spec §4.7: "drop(key) releases the cached handle").
func (c *PipelineCache) Drop(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[key]
	if !ok {
		return nil
	}
	delete(c.handles, key)
	return h.Release()
}
