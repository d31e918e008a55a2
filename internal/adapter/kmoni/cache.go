package kmoni

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
)

// CachedFetcher wraps a FrameFetcher with an in-memory LRU cache so a
// retry after a downstream failure never refetches a frame. A published
// frame is immutable, which makes every successful fetch cacheable.
type CachedFetcher struct {
	inner   domain.FrameFetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a frame fetcher.
func NewCachedFetcher(inner domain.FrameFetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchFrame(ctx context.Context, t time.Time, kind domain.DataKind, borehole bool) (domain.Frame, error) {
	key := frameKey{kind: kind, borehole: borehole, second: t.Unix()}
	if frame, ok := c.cache.get(key); ok {
		c.metrics.FrameCache.WithLabelValues("hit").Inc()
		return frame, nil
	}
	c.metrics.FrameCache.WithLabelValues("miss").Inc()

	frame, err := c.inner.FetchFrame(ctx, t, kind, borehole)
	if err != nil {
		return frame, err
	}
	c.cache.put(key, frame)
	return frame, nil
}

// frameKey identifies one published frame; timestamps are keyed at second
// granularity because that is the monitor's publication cadence.
type frameKey struct {
	kind     domain.DataKind
	borehole bool
	second   int64
}

// lruCache is a simple thread-safe LRU cache for fetched frames.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[frameKey]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   frameKey
	value domain.Frame
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[frameKey]*entry),
	}
}

func (c *lruCache) get(key frameKey) (domain.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Frame{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key frameKey, value domain.Frame) {
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
