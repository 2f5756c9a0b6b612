package memorycache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asakaida/unicatalog/pkg/cache"
)

// entryOverhead approximates the bookkeeping cost of one entry in bytes
const entryOverhead = 100

type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time
	size      int64
}

// Cache is a size-bounded LRU cache with per-entry TTL.
type Cache struct {
	mu        sync.Mutex
	items     map[string]*list.Element
	evictList *list.List // front = most recently used

	maxSize     int64
	ttl         time.Duration
	sizeOf      func(key string, value interface{}) int64
	currentSize int64
	now         func() time.Time

	metrics *counters
}

type counters struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	keysAdded   atomic.Uint64
	keysEvicted atomic.Uint64
	keysExpired atomic.Uint64
}

// Config holds configuration for the memory cache.
type Config struct {
	// MaxSizeBytes bounds the estimated total size of cached entries.
	// Least recently used entries are evicted beyond it.
	MaxSizeBytes int64

	// DefaultTTL applies when Set is called with a zero ttl.
	DefaultTTL time.Duration

	// SizeOf estimates the size of an entry. Defaults to a fixed overhead
	// plus the key length.
	SizeOf func(key string, value interface{}) int64

	EnableMetrics bool
}

// New creates a new memory cache with the given configuration.
// MaxSizeBytes must be positive.
func New(config *Config) (*Cache, error) {
	if config.MaxSizeBytes <= 0 {
		return nil, fmt.Errorf("memorycache: MaxSizeBytes must be positive, got %d", config.MaxSizeBytes)
	}
	c := &Cache{
		items:     make(map[string]*list.Element),
		evictList: list.New(),
		maxSize:   config.MaxSizeBytes,
		ttl:       config.DefaultTTL,
		sizeOf:    config.SizeOf,
		now:       time.Now,
	}
	if c.sizeOf == nil {
		c.sizeOf = func(key string, _ interface{}) int64 {
			return int64(entryOverhead + len(key))
		}
	}
	if config.EnableMetrics {
		c.metrics = &counters{}
	}
	return c, nil
}

// Get retrieves a value and marks it most recently used.
func (c *Cache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.count(func(m *counters) { m.misses.Add(1) })
		return nil, false
	}

	ent := elem.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.removeElement(elem)
		c.count(func(m *counters) {
			m.keysExpired.Add(1)
			m.misses.Add(1)
		})
		return nil, false
	}

	c.evictList.MoveToFront(elem)
	c.count(func(m *counters) { m.hits.Add(1) })
	return ent.value, true
}

// Set stores a value; a zero ttl uses the configured default.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	size := c.sizeOf(key, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		c.currentSize += size - ent.size
		ent.value = value
		ent.expiresAt = c.now().Add(ttl)
		ent.size = size
		c.evictList.MoveToFront(elem)
	} else {
		elem := c.evictList.PushFront(&entry{
			key:       key,
			value:     value,
			expiresAt: c.now().Add(ttl),
			size:      size,
		})
		c.items[key] = elem
		c.currentSize += size
		c.count(func(m *counters) { m.keysAdded.Add(1) })
	}

	for c.currentSize > c.maxSize && c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
		c.count(func(m *counters) { m.keysEvicted.Add(1) })
	}

	return nil
}

// Delete removes a value from cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Clear removes all entries from cache.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	c.currentSize = 0
	return nil
}

// Close is a no-op for the memory cache.
func (c *Cache) Close() error {
	return nil
}

// Metrics returns cache statistics.
func (c *Cache) Metrics() *cache.Metrics {
	if c.metrics == nil {
		return &cache.Metrics{}
	}
	return &cache.Metrics{
		Hits:        c.metrics.hits.Load(),
		Misses:      c.metrics.misses.Load(),
		KeysAdded:   c.metrics.keysAdded.Load(),
		KeysEvicted: c.metrics.keysEvicted.Load(),
		KeysExpired: c.metrics.keysExpired.Load(),
	}
}

// Len returns the current number of items in cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Size returns the current estimated size in bytes.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

func (c *Cache) count(fn func(m *counters)) {
	if c.metrics != nil {
		fn(c.metrics)
	}
}

// removeElement must be called with c.mu held.
func (c *Cache) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	ent := elem.Value.(*entry)
	delete(c.items, ent.key)
	c.currentSize -= ent.size
}
