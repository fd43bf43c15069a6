package validate

import (
	"fmt"
	"strings"
)

// minimalValidOrderJSON - заказ, проходящий и разбор, и валидацию.
// phone без "+" делает его невалидным.
func minimalValidOrderJSON(uid, txn, phone string) string {
	return fmt.Sprintf(`{
	  "order_uid": %q, "track_number": "TN", "entry": "WBIL",
	  "delivery": {"name": "N", "phone": %q, "zip": "1", "city": "C", "address": "A", "region": "R", "email": "u@e.com"},
	  "payment": {"transaction": %q, "request_id": "", "currency": "USD", "provider": "wbpay", "amount": 10,
	              "payment_dt": 1637907727, "bank": "alpha", "delivery_cost": 5, "goods_total": 5, "custom_fee": 0},
	  "items": [{"chrt_id": 1, "track_number": "TN", "price": 5, "rid": "r1", "name": "I", "sale": 0,
	             "size": "0", "total_price": 5, "nm_id": 2, "brand": "B", "status": 202}],
	  "locale": "en", "internal_signature": "", "customer_id": "c1", "delivery_service": "meest",
	  "shardkey": "9", "sm_id": 99, "date_created": "2021-11-26T06:22:19Z", "oof_shard": "1"
	}`, uid, phone, txn)
}

func oneLineJSON(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
