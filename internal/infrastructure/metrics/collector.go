package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/asakaida/unicatalog/pkg/cache"
)

// sizedCache is implemented by caches that can report their occupancy
type sizedCache interface {
	Len() int
	Size() int64
}

// Collector aggregates per-method request statistics and exposes the
// attribute cache counters.
type Collector struct {
	requests sync.Map // method -> *uint64
	errors   sync.Map // method -> *uint64
	duration sync.Map // method -> *durationValue

	cache cache.Cache
}

type durationValue struct {
	mu           sync.Mutex
	totalSeconds float64
}

// CacheMetrics is a snapshot of the attribute cache.
type CacheMetrics struct {
	Hits        uint64
	Misses      uint64
	HitRate     float64
	KeysCurrent int64
	MemoryBytes int64
	Evictions   uint64
	Expirations uint64
}

// APIMetrics is a snapshot of request statistics keyed by method.
type APIMetrics struct {
	RequestCounts        map[string]uint64
	ErrorCounts          map[string]uint64
	TotalDurationSeconds map[string]float64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetCache attaches the attribute cache whose counters are reported.
func (c *Collector) SetCache(cache cache.Cache) {
	c.cache = cache
}

// RecordRequest records a request for method.
func (c *Collector) RecordRequest(method string) {
	atomic.AddUint64(counter(&c.requests, method), 1)
}

// RecordError records a failed request for method.
func (c *Collector) RecordError(method string) {
	atomic.AddUint64(counter(&c.errors, method), 1)
}

// RecordDuration adds durationSeconds to the total for method.
func (c *Collector) RecordDuration(method string, durationSeconds float64) {
	val, _ := c.duration.LoadOrStore(method, &durationValue{})
	dv := val.(*durationValue)

	dv.mu.Lock()
	dv.totalSeconds += durationSeconds
	dv.mu.Unlock()
}

// GetCacheMetrics returns a snapshot of the attribute cache, or zeroes when
// no cache is attached.
func (c *Collector) GetCacheMetrics() *CacheMetrics {
	if c.cache == nil {
		return &CacheMetrics{}
	}

	m := c.cache.Metrics()
	if m == nil {
		return &CacheMetrics{}
	}

	result := &CacheMetrics{
		Hits:        m.Hits,
		Misses:      m.Misses,
		HitRate:     m.HitRate(),
		Evictions:   m.KeysEvicted,
		Expirations: m.KeysExpired,
	}
	if sc, ok := c.cache.(sizedCache); ok {
		result.KeysCurrent = int64(sc.Len())
		result.MemoryBytes = sc.Size()
	}

	return result
}

// GetAPIMetrics returns a snapshot of request statistics.
func (c *Collector) GetAPIMetrics() *APIMetrics {
	result := &APIMetrics{
		RequestCounts:        make(map[string]uint64),
		ErrorCounts:          make(map[string]uint64),
		TotalDurationSeconds: make(map[string]float64),
	}

	c.requests.Range(func(key, value interface{}) bool {
		result.RequestCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})
	c.errors.Range(func(key, value interface{}) bool {
		result.ErrorCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})
	c.duration.Range(func(key, value interface{}) bool {
		dv := value.(*durationValue)
		dv.mu.Lock()
		result.TotalDurationSeconds[key.(string)] = dv.totalSeconds
		dv.mu.Unlock()
		return true
	})

	return result
}

func counter(m *sync.Map, key string) *uint64 {
	val, _ := m.LoadOrStore(key, new(uint64))
	return val.(*uint64)
}
