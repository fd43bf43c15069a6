// Package memory - in-process бэкенд кэша заказов (LRU с фиксированным TTL).
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/Gunvolt24/wb_orders/pkg/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
)

// Проверка, что OrderCache удовлетворяет интерфейсу OrderCache.
var _ ports.OrderCache = (*OrderCache)(nil)

// OrderCache хранит копии агрегатов. Срок жизни записи отсчитывается от Set
// и не продлевается чтением; при переполнении вытесняется самая старая по доступу.
type OrderCache struct {
	lru *expirable.LRU[string, *domain.Order]

	// mu делает пару Contains+Add атомарной для учёта размера
	mu   sync.Mutex
	size prometheus.Gauge
}

// NewOrderCache - capacity <= 0 означает 1, ttl <= 0 - записи без срока.
// Размер кэша отражается в metrics.CacheSize, в том числе после вытеснения
// и истечения TTL.
func NewOrderCache(capacity int, ttl time.Duration) *OrderCache {
	if capacity <= 0 {
		capacity = 1
	}
	c := &OrderCache{size: metrics.CacheSize}
	c.lru = expirable.NewLRU[string, *domain.Order](capacity, func(string, *domain.Order) {
		c.size.Dec()
	}, ttl)
	return c
}

func (c *OrderCache) Get(_ context.Context, orderUID string) (*domain.Order, error) {
	order, ok := c.lru.Get(orderUID)
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return cloneOrder(order), nil
}

func (c *OrderCache) Set(_ context.Context, order *domain.Order) error {
	if order == nil || order.OrderUID == "" {
		return fmt.Errorf("%w: order_uid is required", domain.ErrInvalidValue)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Contains видит и просроченную, ещё не удалённую запись: Add обновит её
	// на месте без вызова onEvict, поэтому размер не меняется.
	if !c.lru.Contains(order.OrderUID) {
		c.size.Inc()
	}
	c.lru.Add(order.OrderUID, cloneOrder(order))
	return nil
}

// Len - количество записей, включая просроченные, которые ещё не вычищены.
func (c *OrderCache) Len() int { return c.lru.Len() }
