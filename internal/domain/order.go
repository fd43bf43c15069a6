// Package domain описывает агрегат заказа и его составные части.
package domain

import "time"

// Order - корневой агрегат заказа. Идентифицируется order_uid.
// Значение считается неизменяемым после создания: слои хранения и кэша
// только читают его.
type Order struct {
	OrderUID          string    `json:"order_uid" validate:"required"`
	TrackNumber       string    `json:"track_number" validate:"required"`
	Entry             string    `json:"entry" validate:"required"`
	Delivery          Delivery  `json:"delivery"`
	Payment           Payment   `json:"payment"`
	Items             []Item    `json:"items" validate:"dive"`
	Locale            Locale    `json:"locale" validate:"required,oneof=en ru zh"`
	InternalSignature string    `json:"internal_signature"`
	CustomerID        string    `json:"customer_id" validate:"required"`
	DeliveryService   string    `json:"delivery_service"`
	ShardKey          string    `json:"shardkey"`
	SmID              int64     `json:"sm_id" validate:"gte=0"`
	DateCreated       time.Time `json:"date_created" validate:"required"`
	OofShard          string    `json:"oof_shard"`
}

// Delivery - данные получателя. ID - суррогатный ключ хранилища,
// во внешнем JSON-представлении не участвует.
type Delivery struct {
	ID      *int64 `json:"-"`
	Name    string `json:"name" validate:"required"`
	Phone   Phone  `json:"phone" validate:"required,startswith=+"`
	Zip     string `json:"zip" validate:"required"`
	City    string `json:"city" validate:"required"`
	Address string `json:"address" validate:"required"`
	Region  string `json:"region" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// Payment - оплата заказа. Transaction - естественный ключ оплаты.
type Payment struct {
	Transaction  string   `json:"transaction" validate:"required"`
	RequestID    string   `json:"request_id"`
	Currency     Currency `json:"currency" validate:"required,oneof=USD RU"`
	Provider     string   `json:"provider" validate:"required"`
	Amount       Money    `json:"amount" validate:"gte=0"`
	PaymentDT    int64    `json:"payment_dt" validate:"gt=0"`
	Bank         string   `json:"bank" validate:"required"`
	DeliveryCost Money    `json:"delivery_cost" validate:"gte=0"`
	GoodsTotal   Money    `json:"goods_total" validate:"gte=0"`
	CustomFee    Percent  `json:"custom_fee" validate:"gte=0,lte=100"`
}

// Item - позиция заказа. Позиция в Order.Items значима и сохраняется
// хранилищем. ID - суррогатный ключ, во внешнем представлении скрыт.
type Item struct {
	ID          *int64     `json:"-"`
	ChrtID      int64      `json:"chrt_id" validate:"gt=0"`
	TrackNumber string     `json:"track_number" validate:"required"`
	Price       Money      `json:"price" validate:"gte=0"`
	RID         string     `json:"rid" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Sale        Percent    `json:"sale" validate:"gte=0,lte=100"`
	Size        string     `json:"size"`
	TotalPrice  Money      `json:"total_price" validate:"gte=0"`
	NmID        int64      `json:"nm_id" validate:"gt=0"`
	Brand       string     `json:"brand" validate:"required"`
	Status      ItemStatus `json:"status" validate:"required,oneof=202"`
}
