package imagery

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedProvider wraps an ImageryProvider with an in-memory LRU cache of
// window statistics.
type CachedProvider struct {
	inner   domain.ImageryProvider
	cache   *lru.Cache[string, domain.WindowStats]
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.ImageryProvider, maxEntries int, metrics *observability.Metrics) (*CachedProvider, error) {
	cache, err := lru.New[string, domain.WindowStats](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create imagery cache: %w", err)
	}
	return &CachedProvider{inner: inner, cache: cache, metrics: metrics}, nil
}

// WindowNDVI implements domain.ImageryProvider.
func (c *CachedProvider) WindowNDVI(ctx context.Context, q domain.WindowQuery) (domain.WindowStats, error) {
	key := cacheKey(q)
	if stats, ok := c.cache.Get(key); ok {
		c.metrics.ImageryCache.WithLabelValues("hit").Inc()
		return stats, nil
	}
	c.metrics.ImageryCache.WithLabelValues("miss").Inc()

	stats, err := c.inner.WindowNDVI(ctx, q)
	if err != nil {
		return stats, err
	}
	// Only usable windows are cached so an empty window is asked again next time.
	if stats.SceneCount > 0 && stats.NDVI != nil {
		c.cache.Add(key, stats)
	}
	return stats, nil
}

// Len reports the number of cached windows.
func (c *CachedProvider) Len() int { return c.cache.Len() }

func cacheKey(q domain.WindowQuery) string {
	return fmt.Sprintf("%s|%s|%.5f,%.5f|%.1f|%.1f",
		q.From.UTC().Format(time.DateOnly),
		q.To.UTC().Format(time.DateOnly),
		q.Center.Lat, q.Center.Lon,
		q.RadiusM,
		q.MaxCloudPct,
	)
}
