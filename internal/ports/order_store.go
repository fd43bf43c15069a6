package ports

import (
	"context"

	"github.com/Gunvolt24/wb_orders/internal/domain"
)

// OrderStore - авторитетное хранилище агрегата заказа.
//
// Отсутствие заказа возвращается как domain.ErrOrderNotFound, повторная
// запись того же order_uid как domain.ErrOrderExists.
type OrderStore interface {
	// CreateOrder атомарно сохраняет заказ со всеми частями.
	CreateOrder(ctx context.Context, order *domain.Order) error
	// GetOrder собирает полный агрегат.
	GetOrder(ctx context.Context, orderUID string) (*domain.Order, error)
	GetDelivery(ctx context.Context, orderUID string) (*domain.Delivery, error)
	GetPayment(ctx context.Context, orderUID string) (*domain.Payment, error)
	// GetItems возвращает позиции в исходном порядке. Для существующего
	// заказа без позиций - пустой срез, не ошибка.
	GetItems(ctx context.Context, orderUID string) ([]domain.Item, error)
}
