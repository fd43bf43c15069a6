package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// MakeOrder - генератор заказа, проходящего валидацию. Транзакция оплаты
// совпадает с order_uid, как в реальных сообщениях.
func MakeOrder(opts ...func(*domain.Order)) *domain.Order {
	uid := "ord-" + UniqSuffix()
	now := time.Now().UTC().Truncate(time.Second)

	o := &domain.Order{
		OrderUID:        uid,
		TrackNumber:     "TR-" + UniqSuffix(),
		Entry:           "WBIL",
		Locale:          domain.LocaleEN,
		CustomerID:      "cust-" + UniqSuffix(),
		DeliveryService: "meest",
		ShardKey:        "9",
		SmID:            99,
		DateCreated:     now,
		OofShard:        "1",

		Delivery: domain.Delivery{
			Name:    "John Smith",
			Phone:   "+1-202-555-01",
			Zip:     "000000",
			City:    "Metropolis",
			Address: "Main st 1",
			Region:  "NA",
			Email:   "john@example.com",
		},
		Payment: domain.Payment{
			Transaction:  uid,
			Currency:     domain.CurrencyUSD,
			Provider:     "test",
			Amount:       123,
			PaymentDT:    now.Unix(),
			Bank:         "TC-BANK",
			DeliveryCost: 10,
			GoodsTotal:   113,
			CustomFee:    0,
		},
	}
	WithItems(1)(o)

	for _, fn := range opts {
		fn(o)
	}
	return o
}

func WithUID(uid string) func(*domain.Order) {
	return func(o *domain.Order) {
		o.OrderUID = uid
		o.Payment.Transaction = uid
	}
}

func WithCustomer(cust string) func(*domain.Order) {
	return func(o *domain.Order) { o.CustomerID = cust }
}

// WithItems заменяет позиции на n различимых (nm_id = 1..n).
func WithItems(n int) func(*domain.Order) {
	return func(o *domain.Order) {
		o.Items = make([]domain.Item, 0, n)
		for i := 0; i < n; i++ {
			o.Items = append(o.Items, domain.Item{
				ChrtID:      int64(1000 + i),
				TrackNumber: o.TrackNumber,
				Price:       domain.Money(10 * (i + 1)),
				RID:         fmt.Sprintf("RID-%d-%s", i, UniqSuffix()),
				Name:        fmt.Sprintf("Item %d", i),
				Sale:        domain.Percent(i % 101),
				Size:        "M",
				TotalPrice:  domain.Money(10 * (i + 1)),
				NmID:        int64(i + 1),
				Brand:       "brand",
				Status:      domain.ItemStatusAccepted,
			})
		}
	}
}

// DemoOrder - эталонный заказ b563feb7b2b84b6test.
func DemoOrder() *domain.Order {
	return &domain.Order{
		OrderUID:    "b563feb7b2b84b6test",
		TrackNumber: "WBILMTESTTRACK",
		Entry:       "WBIL",
		Delivery: domain.Delivery{
			Name:    "Test Testov",
			Phone:   "+9720000000",
			Zip:     "2639809",
			City:    "Kiryat Mozkin",
			Address: "Ploshad Mira 15",
			Region:  "Kraiot",
			Email:   "test@gmail.com",
		},
		Payment: domain.Payment{
			Transaction:  "b563feb7b2b84b6test",
			Currency:     domain.CurrencyUSD,
			Provider:     "wbpay",
			Amount:       1817,
			PaymentDT:    1637907727,
			Bank:         "alpha",
			DeliveryCost: 1500,
			GoodsTotal:   317,
			CustomFee:    0,
		},
		Items: []domain.Item{{
			ChrtID:      9934930,
			TrackNumber: "WBILMTESTTRACK",
			Price:       453,
			RID:         "ab4219087a764ae0btest",
			Name:        "Mascaras",
			Sale:        30,
			Size:        "0",
			TotalPrice:  317,
			NmID:        2389212,
			Brand:       "Vivienne Sabo",
			Status:      domain.ItemStatusAccepted,
		}},
		Locale:          domain.LocaleEN,
		CustomerID:      "test",
		DeliveryService: "meest",
		ShardKey:        "9",
		SmID:            99,
		DateCreated:     time.Date(2021, 11, 26, 6, 22, 19, 0, time.UTC),
		OofShard:        "1",
	}
}
