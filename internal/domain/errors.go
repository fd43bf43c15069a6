package domain

import "errors"

var (
	// ErrOrderNotFound - заказа с таким order_uid нет.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists - заказ с таким order_uid (или оплата с такой транзакцией) уже сохранён.
	ErrOrderExists = errors.New("order already exists")
	// ErrIntegrity - строка заказа ссылается на отсутствующую доставку или оплату.
	ErrIntegrity = errors.New("order integrity violated")
	// ErrInvalidValue - значение не проходит проверку при конструировании
	// или отвергнуто хранилищем. Повтор с теми же данными не поможет.
	ErrInvalidValue = errors.New("invalid value")
)
