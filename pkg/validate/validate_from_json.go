package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/internal/ports"
)

// DecodeOrder разбирает один JSON-объект заказа. Значения проверяются уже
// при разборе (locale, currency, проценты, статус, телефон). Неизвестные поля
// игнорируются, суррогатные id во входе отбрасываются. Данные после объекта
// считаются ошибкой.
func DecodeOrder(raw []byte) (*domain.Order, error) {
	var order domain.Order
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %w", ErrInvalidOrder, err)
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: invalid json: trailing data", ErrInvalidOrder)
	}
	return &order, nil
}

// ValidateOrderFromJSON - разбор и валидация заказа из JSON.
func ValidateOrderFromJSON(ctx context.Context, validator ports.OrderValidator, raw []byte) (*domain.Order, error) {
	order, err := DecodeOrder(raw)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
