package memory

import "github.com/Gunvolt24/wb_orders/internal/domain"

// cloneOrder возвращает глубокую копию заказа, чтобы внешние изменения
// не отражались на данных внутри кэша.
func cloneOrder(order *domain.Order) *domain.Order {
	if order == nil {
		return nil
	}
	clonedOrder := *order
	clonedOrder.Delivery.ID = cloneID(order.Delivery.ID)
	if order.Items != nil {
		clonedOrder.Items = make([]domain.Item, len(order.Items))
		for i, item := range order.Items {
			item.ID = cloneID(item.ID)
			clonedOrder.Items[i] = item
		}
	}
	return &clonedOrder
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
