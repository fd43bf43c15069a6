package ports

import (
	"context"

	"github.com/Gunvolt24/wb_orders/internal/domain"
)

// OrderValidator - проверка заказа перед записью.
type OrderValidator interface {
	Validate(ctx context.Context, order *domain.Order) error
}
