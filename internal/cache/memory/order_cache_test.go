package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func newOrder(id string) *domain.Order {
	itemID := int64(7)
	return &domain.Order{
		OrderUID: id,
		Items:    []domain.Item{{ID: &itemID, Name: "x"}},
	}
}

func TestSetGet_HitMiss(t *testing.T) {
	c := NewOrderCache(2, 5*time.Minute)
	ctx := context.Background()

	if _, err := c.Get(ctx, "id-1"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected miss before Set, got %v", err)
	}

	_ = c.Set(ctx, newOrder("id-1"))
	got, err := c.Get(ctx, "id-1")
	if err != nil || got.OrderUID != "id-1" {
		t.Fatalf("expected hit for id-1, got %v", err)
	}
}

func TestTTL_Expiry(t *testing.T) {
	c := NewOrderCache(2, 100*time.Millisecond)
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("ttl"))
	if _, err := c.Get(ctx, "ttl"); err != nil {
		t.Fatalf("expected hit right after Set, got %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if _, err := c.Get(ctx, "ttl"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected miss after TTL expires, got %v", err)
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewOrderCache(2, 0)
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("A"))
	_ = c.Set(ctx, newOrder("B"))
	// A сделать "свежим"
	if _, err := c.Get(ctx, "A"); err != nil {
		t.Fatalf("expected hit for A")
	}
	// C вытеснит B
	_ = c.Set(ctx, newOrder("C"))

	if _, err := c.Get(ctx, "B"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected B to be evicted")
	}
	if _, err := c.Get(ctx, "A"); err != nil || c.Len() != 2 {
		t.Fatalf("expected A & C to stay in cache")
	}
}

func TestCloneImmutability(t *testing.T) {
	c := NewOrderCache(1, 0)
	ctx := context.Background()
	orig := newOrder("Z")
	_ = c.Set(ctx, orig)

	// изменения исходного значения после Set не видны в кэше
	orig.Items[0].Name = "changed-before"
	*orig.Items[0].ID = 100

	o1, _ := c.Get(ctx, "Z")
	if o1.Items[0].Name != "x" || *o1.Items[0].ID != 7 {
		t.Fatalf("cache must keep its own copy, got %+v", o1.Items[0])
	}

	// изменения того, что вернул Get, тоже не видны
	o1.Items[0].Name = "changed"
	o2, _ := c.Get(ctx, "Z")
	if o2.Items[0].Name == "changed" {
		t.Fatalf("cache should return clones, not pointers to internal value")
	}
}

func TestSet_RejectsEmptyOrder(t *testing.T) {
	c := NewOrderCache(2, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, nil); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("Set(nil): want ErrInvalidValue, got %v", err)
	}
	if err := c.Set(ctx, &domain.Order{}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("Set(empty uid): want ErrInvalidValue, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("nothing should be stored, len=%d", c.Len())
	}
}

// withGauge подменяет общий metrics.CacheSize собственным счётчиком теста.
func withGauge(c *OrderCache) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_order_cache_size"})
	c.size = g
	return g
}

func TestSizeGauge_AddUpdateEvict(t *testing.T) {
	c := NewOrderCache(2, 0)
	g := withGauge(c)
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("A"))
	_ = c.Set(ctx, newOrder("A")) // обновление той же записи
	_ = c.Set(ctx, newOrder("B"))
	if got := promtest.ToFloat64(g); got != 2 {
		t.Fatalf("size after A, A, B: got %v, want 2", got)
	}

	_ = c.Set(ctx, newOrder("C")) // вытесняет A
	if got := promtest.ToFloat64(g); got != 2 {
		t.Fatalf("size after eviction: got %v, want 2", got)
	}
}

func TestSizeGauge_DropsAfterExpiry(t *testing.T) {
	c := NewOrderCache(4, 50*time.Millisecond)
	g := withGauge(c)
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("A"))
	_ = c.Set(ctx, newOrder("B"))
	if got := promtest.ToFloat64(g); got != 2 {
		t.Fatalf("size after Set: got %v, want 2", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for promtest.ToFloat64(g) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("size not updated after expiry: %v", promtest.ToFloat64(g))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
