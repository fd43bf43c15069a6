package postgres

import (
	"fmt"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/jackc/pgx/v5"
)

// orderRow - строка orders вместе с внешними ключами на части агрегата.
type orderRow struct {
	order      domain.Order
	deliveryID int64
	paymentID  string
}

// Значения из БД проходят те же конструкторы, что и входной JSON: строка,
// не прошедшая проверку, считается нарушением целостности.

func scanOrderRow(row pgx.Row) (orderRow, error) {
	var (
		res         orderRow
		locale      string
		dateCreated time.Time
	)
	o := &res.order
	if err := row.Scan(
		&o.OrderUID, &o.TrackNumber, &o.Entry, &res.deliveryID, &res.paymentID, &locale,
		&o.InternalSignature, &o.CustomerID, &o.DeliveryService, &o.ShardKey, &o.SmID,
		&dateCreated, &o.OofShard,
	); err != nil {
		return res, err
	}

	l, err := domain.ParseLocale(locale)
	if err != nil {
		return res, fmt.Errorf("%w: %w", domain.ErrIntegrity, err)
	}
	o.Locale = l
	o.DateCreated = dateCreated.UTC()
	return res, nil
}

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var (
		d     domain.Delivery
		id    int64
		phone string
	)
	if err := row.Scan(&id, &d.Name, &phone, &d.Zip, &d.City, &d.Address, &d.Region, &d.Email); err != nil {
		return nil, err
	}

	p, err := domain.NewPhone(phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIntegrity, err)
	}
	d.ID = &id
	d.Phone = p
	return &d, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		p                                domain.Payment
		currency                         string
		amount, deliveryCost, goodsTotal int64
		customFee                        int16
	)
	if err := row.Scan(
		&p.Transaction, &p.RequestID, &currency, &p.Provider, &amount, &p.PaymentDT, &p.Bank,
		&deliveryCost, &goodsTotal, &customFee,
	); err != nil {
		return nil, err
	}

	c, err := domain.ParseCurrency(currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIntegrity, err)
	}
	fee, err := domain.NewPercent(int(customFee))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIntegrity, err)
	}
	p.Currency = c
	p.Amount = domain.Money(amount)
	p.DeliveryCost = domain.Money(deliveryCost)
	p.GoodsTotal = domain.Money(goodsTotal)
	p.CustomFee = fee
	return &p, nil
}

// scanItem - pgx.RowToFunc для pgx.CollectRows.
func scanItem(row pgx.CollectableRow) (domain.Item, error) {
	var (
		it                domain.Item
		id                int64
		price, totalPrice int64
		sale, status      int16
	)
	if err := row.Scan(
		&id, &it.ChrtID, &it.TrackNumber, &price, &it.RID, &it.Name, &sale, &it.Size,
		&totalPrice, &it.NmID, &it.Brand, &status,
	); err != nil {
		return it, err
	}

	s, err := domain.NewPercent(int(sale))
	if err != nil {
		return it, fmt.Errorf("%w: %w", domain.ErrIntegrity, err)
	}
	st, err := domain.ParseItemStatus(int(status))
	if err != nil {
		return it, fmt.Errorf("%w: %w", domain.ErrIntegrity, err)
	}
	it.ID = &id
	it.Price = domain.Money(price)
	it.TotalPrice = domain.Money(totalPrice)
	it.Sale = s
	it.Status = st
	return it, nil
}
