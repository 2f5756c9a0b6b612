package memorycache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/asakaida/unicatalog/internal/entities"
)

func newTestCache(t *testing.T, maxSize int64) *Cache {
	t.Helper()
	c, err := New(&Config{
		MaxSizeBytes:  maxSize,
		DefaultTTL:    time.Minute,
		EnableMetrics: true,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t, 1024*1024)
	ctx := context.Background()

	attr := entities.Attribute{ID: 7, Name: "credits", DataType: entities.DataTypeNumber}
	if err := c.Set(ctx, "attribute:credits", attr, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get(ctx, "attribute:credits")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.(entities.Attribute).ID != 7 {
		t.Errorf("expected ID 7, got %v", got)
	}

	if _, ok := c.Get(ctx, "attribute:room"); ok {
		t.Error("expected cache miss for unknown key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := newTestCache(t, 1024*1024)
	ctx := context.Background()

	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", "v", 10*time.Second)
	_ = c.Set(ctx, "default", "v", 0)

	now = now.Add(30 * time.Second)

	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("expected short-lived entry to expire")
	}
	if _, ok := c.Get(ctx, "default"); !ok {
		t.Error("expected entry with default TTL to survive")
	}

	m := c.Metrics()
	if m.KeysExpired != 1 {
		t.Errorf("expected 1 expired key, got %d", m.KeysExpired)
	}
	if c.Len() != 1 {
		t.Errorf("expected expired entry to be removed, got %d items", c.Len())
	}
}

func TestCache_LRUEviction(t *testing.T) {
	// Room for exactly three entries with single-character keys
	c := newTestCache(t, 3*(entryOverhead+1))
	ctx := context.Background()

	_ = c.Set(ctx, "a", 1, 0)
	_ = c.Set(ctx, "b", 2, 0)
	_ = c.Set(ctx, "c", 3, 0)

	// Touch "a" so "b" becomes the least recently used
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Fatal("expected hit for a")
	}

	_ = c.Set(ctx, "d", 4, 0)

	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(ctx, key); !ok {
			t.Errorf("expected %s to remain cached", key)
		}
	}
	if got := c.Metrics().KeysEvicted; got != 1 {
		t.Errorf("expected 1 eviction, got %d", got)
	}
	if c.Size() > 3*(entryOverhead+1) {
		t.Errorf("size %d exceeds bound", c.Size())
	}
}

func TestCache_CustomSizeOf(t *testing.T) {
	c, err := New(&Config{
		MaxSizeBytes: 10,
		DefaultTTL:   time.Minute,
		SizeOf:       func(string, interface{}) int64 { return 4 },
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), i, 0)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 items, got %d", c.Len())
	}
	if c.Size() != 8 {
		t.Errorf("expected size 8, got %d", c.Size())
	}
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t, 1024*1024)
	ctx := context.Background()

	_ = c.Set(ctx, "attribute:room", "room", 0)
	if err := c.Delete(ctx, "attribute:room"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := c.Get(ctx, "attribute:room"); ok {
		t.Error("expected deleted key to be gone")
	}
	if c.Size() != 0 {
		t.Errorf("expected size 0 after delete, got %d", c.Size())
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "attribute:missing"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(t, 1024*1024)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%d", i), i, 0)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", c.Len())
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if c.Len() != 0 || c.Size() != 0 {
		t.Errorf("expected empty cache, got %d items / %d bytes", c.Len(), c.Size())
	}
}

func TestCache_UpdateExisting(t *testing.T) {
	c := newTestCache(t, 1024*1024)
	ctx := context.Background()

	_ = c.Set(ctx, "key", "first", 0)
	_ = c.Set(ctx, "key", "second", 0)

	got, ok := c.Get(ctx, "key")
	if !ok || got != "second" {
		t.Errorf("expected second, got %v", got)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}
	if added := c.Metrics().KeysAdded; added != 1 {
		t.Errorf("expected 1 key added, got %d", added)
	}
}

func TestCache_Metrics(t *testing.T) {
	c := newTestCache(t, 1024*1024)
	ctx := context.Background()

	_ = c.Set(ctx, "key", "value", 0)
	c.Get(ctx, "key")
	c.Get(ctx, "key")
	c.Get(ctx, "other")

	m := c.Metrics()
	if m.Hits != 2 || m.Misses != 1 {
		t.Errorf("expected 2 hits / 1 miss, got %d / %d", m.Hits, m.Misses)
	}
	if rate := m.HitRate(); rate < 0.66 || rate > 0.67 {
		t.Errorf("unexpected hit rate %f", rate)
	}

	disabled, _ := New(&Config{MaxSizeBytes: 1024, DefaultTTL: time.Minute})
	disabled.Get(ctx, "x")
	if disabled.Metrics().Misses != 0 {
		t.Error("expected no metrics when disabled")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := newTestCache(t, 1024*1024)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("attribute:%d", i%20)
				_ = c.Set(ctx, key, g, 0)
				c.Get(ctx, key)
				if i%10 == 0 {
					_ = c.Delete(ctx, key)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 20 {
		t.Errorf("expected at most 20 keys, got %d", c.Len())
	}
}

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int64{0, -1} {
		c, err := New(&Config{MaxSizeBytes: size, DefaultTTL: time.Minute})
		if err == nil {
			t.Errorf("New(MaxSizeBytes=%d) expected error, got cache %v", size, c)
		}
	}
}
