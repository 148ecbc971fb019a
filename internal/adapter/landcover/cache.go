package landcover

import (
	"context"
	"fmt"
	"sync"

	"github.com/gustmaps/windshear-service/internal/domain"
	"github.com/gustmaps/windshear-service/internal/observability"
)

// CachedEstimator wraps a RoughnessEstimator with an in-memory LRU cache.
// Land cover is effectively static, so cached values never expire; the cache
// is bounded by entry count only.
type CachedEstimator struct {
	inner   domain.RoughnessEstimator
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedEstimator creates a cache decorator around an estimator.
func NewCachedEstimator(inner domain.RoughnessEstimator, maxEntries int, metrics *observability.Metrics) *CachedEstimator {
	return &CachedEstimator{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedEstimator) EstimateRoughness(ctx context.Context, loc domain.Location) (float64, error) {
	// Five decimals is roughly a meter of coordinate resolution, far below
	// the land cover raster's cell size.
	key := fmt.Sprintf("%.5f,%.5f", loc.Lon, loc.Lat)
	if z0, ok := c.cache.get(key); ok {
		c.metrics.RoughnessCache.WithLabelValues("hit").Inc()
		return z0, nil
	}
	c.metrics.RoughnessCache.WithLabelValues("miss").Inc()

	z0, err := c.inner.EstimateRoughness(ctx, loc)
	if err != nil {
		return 0, err
	}
	c.cache.put(key, z0)
	return z0, nil
}

func (c *CachedEstimator) EstimateRoughnessBatch(ctx context.Context, locs []domain.Location) ([]float64, error) {
	out := make([]float64, len(locs))
	for i, loc := range locs {
		z0, err := c.EstimateRoughness(ctx, loc)
		if err != nil {
			return nil, err
		}
		out[i] = z0
	}
	return out, nil
}

// lruCache is a simple thread-safe LRU cache for roughness lengths.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value float64
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
