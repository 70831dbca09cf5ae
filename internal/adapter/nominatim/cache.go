package nominatim

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
	"github.com/couchcryptid/relief-geocoder-service/internal/observability"
)

// sharedCallTimeout bounds an upstream call once it no longer belongs to a
// single caller.
const sharedCallTimeout = 30 * time.Second

// CachedProvider wraps a Provider with an in-memory LRU cache. Concurrent
// lookups of the same query share one upstream call; a caller that gives up
// leaves the call running for the others.
type CachedProvider struct {
	inner   domain.Provider
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.Provider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) Search(ctx context.Context, query string) ([]domain.Candidate, error) {
	if result, ok := c.cache.get(query); ok {
		c.metrics.ProviderCache.WithLabelValues("hit").Inc()
		return result, nil
	}

	ch := c.group.DoChan(query, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()

		result, err := c.inner.Search(callCtx, query)
		if err != nil {
			return nil, err
		}
		// Only cache matches so "not found" can succeed once the map data improves.
		if len(result) > 0 {
			c.cache.put(query, result)
			c.metrics.ProviderCacheEntries.Set(float64(c.cache.len()))
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.metrics.ProviderCache.WithLabelValues("shared").Inc()
		} else {
			c.metrics.ProviderCache.WithLabelValues("miss").Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Candidate), nil
	}
}

// lruCache is a simple thread-safe LRU cache of provider candidates keyed by query.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.Candidate
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.Candidate) {
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

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
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
