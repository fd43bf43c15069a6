package validate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/go-playground/validator/v10"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder - базовая (sentinel error) ошибка валидации.
var ErrInvalidOrder = errors.New("order validation failed")

// OrderValidator проверяет заказ по тегам validate доменных структур.
type OrderValidator struct {
	v *validator.Validate
}

// NewOrderValidator - конструктор OrderValidator. В сообщениях об ошибках
// поля называются так же, как в JSON (delivery.phone, items[0].sale).
func NewOrderValidator() *OrderValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &OrderValidator{v: v}
}

// Validate возвращает ErrInvalidOrder с обёрнутой причиной при первой найденной проблеме.
// Пустой список позиций допустим.
func (ov *OrderValidator) Validate(_ context.Context, order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order is nil", ErrInvalidOrder)
	}

	err := ov.v.Struct(order)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s failed on %q", ErrInvalidOrder, fieldPath(fe.Namespace()), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
}

// fieldPath убирает имя корневой структуры: "Order.delivery.phone" -> "delivery.phone".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
