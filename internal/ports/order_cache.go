package ports

import (
	"context"
	"errors"

	"github.com/Gunvolt24/wb_orders/internal/domain"
)

// ErrCacheMiss - ключа нет в кэше или срок записи истёк.
var ErrCacheMiss = errors.New("cache miss")

// OrderCache - необязательный кэш полных агрегатов, ключ - order_uid.
// Каждая запись живёт ограниченное время (TTL задаёт реализация).
type OrderCache interface {
	// Get возвращает ErrCacheMiss при промахе; любая другая ошибка
	// означает недоступность или повреждённую запись.
	Get(ctx context.Context, orderUID string) (*domain.Order, error)
	// Set записывает значение вместе со сроком жизни одной операцией.
	Set(ctx context.Context, order *domain.Order) error
}
