// Package redis - бэкенд кэша заказов на Redis. Значение - JSON агрегата
// в публичном представлении (без суррогатных id), ключ - "order" + order_uid.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/internal/ports"
	goredis "github.com/redis/go-redis/v9"
)

// Проверка, что OrderCache удовлетворяет интерфейсу OrderCache.
var _ ports.OrderCache = (*OrderCache)(nil)

const (
	keyPrefix = "order"
	// DefaultTTL - срок жизни записи, если не задан явно.
	DefaultTTL = 60 * time.Second
)

// OrderCache - cache-aside хранилище заказов в Redis.
type OrderCache struct {
	client    goredis.Cmdable
	ttl       time.Duration
	opTimeout time.Duration
}

// NewOrderCache: ttl <= 0 заменяется на DefaultTTL, чтобы запись не жила вечно.
// opTimeout > 0 ограничивает каждую команду.
func NewOrderCache(client goredis.Cmdable, ttl, opTimeout time.Duration) *OrderCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &OrderCache{client: client, ttl: ttl, opTimeout: opTimeout}
}

// OrderKey - ключ записи заказа.
func OrderKey(orderUID string) string {
	return keyPrefix + orderUID
}

func (c *OrderCache) Get(ctx context.Context, orderUID string) (*domain.Order, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.client.Get(ctx, OrderKey(orderUID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("decode cached order %s: %w", orderUID, err)
	}
	return &order, nil
}

// Set пишет значение и TTL одной командой SET ... EX, поэтому запись
// без срока жизни не появляется даже при обрыве соединения.
func (c *OrderCache) Set(ctx context.Context, order *domain.Order) error {
	if order == nil || order.OrderUID == "" {
		return fmt.Errorf("%w: order_uid is required", domain.ErrInvalidValue)
	}

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.OrderUID, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Set(ctx, OrderKey(order.OrderUID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *OrderCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// NewClient создаёт клиент и проверяет соединение PING-ом (fail-fast при старте).
func NewClient(ctx context.Context, addr, password string, db, poolSize int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
