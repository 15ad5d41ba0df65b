package matcher

import (
	"context"

	"github.com/zjrosen/hues/internal/cachemanager"
)

// Cache hands out compiled matchers keyed by table digest, so recompiling an
// unchanged table is a cache hit.
type Cache struct {
	cache cachemanager.CacheManager[string, *Compiled]
}

// NewCache creates a matcher cache on top of cm.
func NewCache(cm cachemanager.CacheManager[string, *Compiled]) *Cache {
	return &Cache{cache: cm}
}

// Get returns the compiled matcher for t, compiling it on a miss.
func (c *Cache) Get(ctx context.Context, t Table) *Compiled {
	digest := t.Digest()
	if compiled, ok := c.cache.Get(ctx, digest); ok {
		return compiled
	}
	compiled := Compile(t)
	c.cache.Set(ctx, digest, compiled, cachemanager.NoExpiration)
	return compiled
}
