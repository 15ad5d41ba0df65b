// Package cachemanager provides typed in-process caches.
//
// hues keeps two process-lifetime memos here: compiled matchers keyed by
// color table digest, and synthesized icon paths keyed by icon file name.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-entry TTL.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
