package cachemanager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Stats counts how ReadThroughCache lookups were served.
type Stats struct {
	Hits   int64
	Loads  int64
	Shared int64
}

type inflight[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// ReadThroughCache computes values with load on a miss and stores them.
// Concurrent misses for one key share a single load. Failed loads are not
// cached.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache CacheManager[K, V]
	load  func(ctx context.Context, input I) (V, error)

	mu      sync.Mutex
	pending map[K]*inflight[V]

	hits, loads, shared atomic.Int64
}

// NewReadThroughCache wraps cache with the loader.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	load func(ctx context.Context, input I) (V, error),
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:   cache,
		load:    load,
		pending: make(map[K]*inflight[V]),
	}
}

// Get returns the cached value for key or loads it from input.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if value, ok := r.cache.Get(ctx, key); ok {
		r.hits.Add(1)
		return value, nil
	}

	r.mu.Lock()
	if call, ok := r.pending[key]; ok {
		r.mu.Unlock()
		r.shared.Add(1)
		select {
		case <-call.done:
			return call.value, call.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	call := &inflight[V]{done: make(chan struct{})}
	r.pending[key] = call
	r.mu.Unlock()

	r.loads.Add(1)
	call.value, call.err = r.load(ctx, input)
	if call.err == nil {
		r.cache.Set(ctx, key, call.value, ttl)
	}

	r.mu.Lock()
	delete(r.pending, key)
	r.mu.Unlock()
	close(call.done)

	return call.value, call.err
}

// Forget drops key so the next Get loads it again.
func (r *ReadThroughCache[K, V, I]) Forget(ctx context.Context, key K) error {
	return r.cache.Delete(ctx, key)
}

// Stats returns the lookup counters.
func (r *ReadThroughCache[K, V, I]) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Loads: r.loads.Load(), Shared: r.shared.Load()}
}
