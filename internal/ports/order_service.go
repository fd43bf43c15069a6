package ports

import (
	"context"

	"github.com/Gunvolt24/wb_orders/internal/domain"
)

// OrderService - прикладные операции над заказами для транспорта.
type OrderService interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderUID string) (*domain.Order, error)
	GetDelivery(ctx context.Context, orderUID string) (*domain.Delivery, error)
	GetPayment(ctx context.Context, orderUID string) (*domain.Payment, error)
	GetItems(ctx context.Context, orderUID string) ([]domain.Item, error)
}
