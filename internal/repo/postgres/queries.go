package postgres

import (
	"fmt"
	"strings"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	sq "github.com/Masterminds/squirrel"
)

// maxBindParams - предел плейсхолдеров в одном запросе протокола Postgres.
const maxBindParams = 65535

// psql - построитель запросов с плейсхолдерами $N.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	selectOrderSQL = `
		SELECT order_uid, track_number, entry, delivery_id, payment_id, locale, internal_signature,
			customer_id, delivery_service, shardkey, sm_id, date_created, oof_shard
		FROM orders WHERE order_uid = $1`

	selectDeliveryByIDSQL = `
		SELECT id, name, phone, zip, city, address, region, email
		FROM deliveries WHERE id = $1`

	selectDeliveryByOrderSQL = `
		SELECT d.id, d.name, d.phone, d.zip, d.city, d.address, d.region, d.email
		FROM deliveries d
		JOIN orders o ON o.delivery_id = d.id
		WHERE o.order_uid = $1`

	selectPaymentByTransactionSQL = `
		SELECT transaction, request_id, currency, provider, amount, payment_dt, bank,
			delivery_cost, goods_total, custom_fee
		FROM payments WHERE transaction = $1`

	selectPaymentByOrderSQL = `
		SELECT p.transaction, p.request_id, p.currency, p.provider, p.amount, p.payment_dt, p.bank,
			p.delivery_cost, p.goods_total, p.custom_fee
		FROM payments p
		JOIN orders o ON o.payment_id = p.transaction
		WHERE o.order_uid = $1`

	selectItemsByOrderSQL = `
		SELECT i.id, i.chrt_id, i.track_number, i.price, i.rid, i.name, i.sale, i.size,
			i.total_price, i.nm_id, i.brand, i.status
		FROM items_to_order io
		JOIN items i ON i.id = io.item_id
		WHERE io.order_id = $1
		ORDER BY io.position`

	countOrdersSQL = `SELECT count(*) FROM orders WHERE order_uid = $1`
)

func buildDeliveryInsert(d *domain.Delivery) (string, []any, error) {
	return psql.Insert("deliveries").
		Columns("name", "phone", "zip", "city", "address", "region", "email").
		Values(d.Name, string(d.Phone), d.Zip, d.City, d.Address, d.Region, d.Email).
		Suffix("RETURNING id").
		ToSql()
}

func buildPaymentInsert(p *domain.Payment) (string, []any, error) {
	return psql.Insert("payments").
		Columns("transaction", "request_id", "currency", "provider", "amount", "payment_dt",
			"bank", "delivery_cost", "goods_total", "custom_fee").
		Values(p.Transaction, p.RequestID, string(p.Currency), p.Provider, int64(p.Amount), p.PaymentDT,
			p.Bank, int64(p.DeliveryCost), int64(p.GoodsTotal), int16(p.CustomFee)).
		Suffix("RETURNING transaction").
		ToSql()
}

func buildOrderInsert(o *domain.Order, deliveryID int64, paymentID string) (string, []any, error) {
	return psql.Insert("orders").
		Columns("order_uid", "track_number", "entry", "delivery_id", "payment_id", "locale",
			"internal_signature", "customer_id", "delivery_service", "shardkey", "sm_id",
			"date_created", "oof_shard").
		Values(o.OrderUID, o.TrackNumber, o.Entry, deliveryID, paymentID, string(o.Locale),
			o.InternalSignature, o.CustomerID, o.DeliveryService, o.ShardKey, o.SmID,
			o.DateCreated, o.OofShard).
		ToSql()
}

// buildLinksInsert связывает заказ с позициями одним многострочным INSERT.
// position равен индексу позиции во входном срезе.
func buildLinksInsert(orderUID string, itemIDs []int64) (string, []any, error) {
	if len(itemIDs)*3 > maxBindParams {
		return "", nil, fmt.Errorf("%w: too many items (%d)", domain.ErrInvalidValue, len(itemIDs))
	}
	q := psql.Insert("items_to_order").Columns("order_id", "item_id", "position")
	for pos, id := range itemIDs {
		q = q.Values(orderUID, id, pos)
	}
	return q.ToSql()
}

// itemInputColumns - колонки VALUES-таблицы для вставки позиций. Первая (ord)
// несёт индекс позиции, чтобы сопоставить сгенерированные id с входом.
var itemInputColumns = []struct{ name, cast string }{
	{"ord", "int"},
	{"chrt_id", "bigint"},
	{"track_number", "text"},
	{"price", "bigint"},
	{"rid", "text"},
	{"name", "text"},
	{"sale", "smallint"},
	{"size", "text"},
	{"total_price", "bigint"},
	{"nm_id", "bigint"},
	{"brand", "text"},
	{"status", "smallint"},
}

// buildItemsInsert вставляет все позиции одним запросом и возвращает
// пары (ord, id) по возрастанию ord. Идентификаторы берутся из sequence
// заранее в MATERIALIZED CTE, поэтому их соответствие входу не зависит от
// порядка, в котором Postgres выполнит INSERT.
func buildItemsInsert(items []domain.Item) (string, []any, error) {
	width := len(itemInputColumns)
	if len(items)*width > maxBindParams {
		return "", nil, fmt.Errorf("%w: too many items (%d)", domain.ErrInvalidValue, len(items))
	}

	names := make([]string, 0, width)
	for _, c := range itemInputColumns {
		names = append(names, c.name)
	}
	itemCols := strings.Join(names[1:], ", ")

	var sb strings.Builder
	args := make([]any, 0, len(items)*width)

	sb.WriteString("WITH input AS MATERIALIZED (\n")
	sb.WriteString("\tSELECT nextval(pg_get_serial_sequence('items', 'id')) AS id, v.*\n\tFROM (VALUES ")
	for i := range items {
		it := &items[i]
		row := []any{
			i, it.ChrtID, it.TrackNumber, int64(it.Price), it.RID, it.Name, int16(it.Sale),
			it.Size, int64(it.TotalPrice), it.NmID, it.Brand, int16(it.Status),
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, v)
			fmt.Fprintf(&sb, "$%d::%s", len(args), itemInputColumns[j].cast)
		}
		sb.WriteByte(')')
	}
	fmt.Fprintf(&sb, ") AS v(%s)\n), inserted AS (\n", strings.Join(names, ", "))
	fmt.Fprintf(&sb, "\tINSERT INTO items (id, %s)\n\tSELECT id, %s FROM input\n\tRETURNING id\n)\n", itemCols, itemCols)
	sb.WriteString("SELECT input.ord, input.id FROM input JOIN inserted USING (id) ORDER BY input.ord")

	return sb.String(), args, nil
}
