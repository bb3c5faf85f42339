package report

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/zip-coverage/internal/observability"
)

// stampResolution is the precision of the "Generated" header. Renders within
// the same window produce identical documents and share a cache entry.
const stampResolution = time.Minute

// CachedRenderer wraps a Renderer with an in-memory LRU cache keyed by brand,
// data version and generation stamp.
type CachedRenderer struct {
	inner   Renderer
	cache   *lru.Cache[string, []byte]
	metrics *observability.Metrics
}

// NewCachedRenderer creates a cache decorator around a renderer.
func NewCachedRenderer(inner Renderer, maxEntries int, metrics *observability.Metrics) *CachedRenderer {
	if maxEntries < 1 {
		maxEntries = 1
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, []byte](maxEntries)
	return &CachedRenderer{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}
}

func (c *CachedRenderer) Render(in Input) ([]byte, error) {
	in.GeneratedAt = in.GeneratedAt.UTC().Truncate(stampResolution)
	key := cacheKey(in)
	if doc, ok := c.cache.Get(key); ok {
		c.metrics.ReportCache.WithLabelValues("hit").Inc()
		return doc, nil
	}
	c.metrics.ReportCache.WithLabelValues("miss").Inc()

	doc, err := c.inner.Render(in)
	if err != nil {
		return nil, err
	}
	// Unversioned inputs are never cached.
	if in.Version != "" {
		c.cache.Add(key, doc)
	}
	return doc, nil
}

func (c *CachedRenderer) len() int { return c.cache.Len() }

func cacheKey(in Input) string {
	return string(in.Brand.Code) + "|" + in.Version + "|" + in.GeneratedAt.Format(time.RFC3339)
}
