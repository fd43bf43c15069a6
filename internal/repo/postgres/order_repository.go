package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/Gunvolt24/wb_orders/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderStore.
var _ ports.OrderStore = (*OrderRepository)(nil)

const (
	// uniqueViolation - SQLSTATE нарушения уникального ключа.
	uniqueViolation = "23505"
	// Классы SQLSTATE, при которых повтор той же записи даст ту же ошибку.
	classDataException       = "22"
	classIntegrityConstraint = "23"
)

// OrderRepository - хранилище агрегата заказа на Postgres (pgxpool).
// Агрегат разложен на пять таблиц: orders, deliveries, payments, items, items_to_order.
type OrderRepository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// Option - необязательная настройка OrderRepository.
type Option func(*OrderRepository)

// WithQueryTimeout ограничивает время одной операции хранилища. 0 - без ограничения.
func WithQueryTimeout(d time.Duration) Option {
	return func(r *OrderRepository) { r.queryTimeout = d }
}

// NewOrderRepository - конструктор OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool, opts ...Option) *OrderRepository {
	r := &OrderRepository{pool: pool}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateOrder сохраняет заказ в одной транзакции:
//  1. доставка, оплата и позиции одним пайплайном (pgx.Batch);
//  2. строка заказа и связи с позициями вторым пайплайном;
//  3. commit.
//
// Любая ошибка откатывает транзакцию целиком.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) (err error) {
	if order == nil || order.OrderUID == "" {
		return fmt.Errorf("%w: order is empty or order_uid is required", domain.ErrInvalidValue)
	}
	defer observe("create_order", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed, игнорируем.
		if rbErr := transaction.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	keys, err := insertParts(ctx, transaction, order)
	if err != nil {
		return mapWriteError(err)
	}
	if err := insertOrderRow(ctx, transaction, order, keys); err != nil {
		return mapWriteError(err)
	}

	if err := transaction.Commit(ctx); err != nil {
		return mapWriteError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// partKeys - ключи, сгенерированные при вставке частей заказа.
type partKeys struct {
	deliveryID int64
	paymentID  string
	itemIDs    []int64 // itemIDs[i] - id позиции order.Items[i]
}

func insertParts(ctx context.Context, tx pgx.Tx, order *domain.Order) (partKeys, error) {
	keys := partKeys{itemIDs: make([]int64, len(order.Items))}
	batch := &pgx.Batch{}

	deliverySQL, deliveryArgs, err := buildDeliveryInsert(&order.Delivery)
	if err != nil {
		return keys, fmt.Errorf("build delivery insert: %w", err)
	}
	batch.Queue(deliverySQL, deliveryArgs...).QueryRow(func(row pgx.Row) error {
		if err := row.Scan(&keys.deliveryID); err != nil {
			return fmt.Errorf("insert delivery: %w", err)
		}
		return nil
	})

	paymentSQL, paymentArgs, err := buildPaymentInsert(&order.Payment)
	if err != nil {
		return keys, fmt.Errorf("build payment insert: %w", err)
	}
	batch.Queue(paymentSQL, paymentArgs...).QueryRow(func(row pgx.Row) error {
		if err := row.Scan(&keys.paymentID); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return nil
	})

	if len(order.Items) > 0 {
		itemsSQL, itemsArgs, err := buildItemsInsert(order.Items)
		if err != nil {
			return keys, err
		}
		batch.Queue(itemsSQL, itemsArgs...).Query(func(rows pgx.Rows) error {
			return scanItemIDs(rows, keys.itemIDs)
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return keys, err
	}
	return keys, nil
}

// scanItemIDs раскладывает пары (ord, id) по позициям и проверяет, что каждая позиция получила id.
func scanItemIDs(rows pgx.Rows, dst []int64) error {
	defer rows.Close()

	seen := 0
	for rows.Next() {
		var ord int32
		var id int64
		if err := rows.Scan(&ord, &id); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
		if ord < 0 || int(ord) >= len(dst) {
			return fmt.Errorf("insert items: unexpected position %d", ord)
		}
		dst[ord] = id
		seen++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	if seen != len(dst) {
		return fmt.Errorf("insert items: got %d ids for %d items", seen, len(dst))
	}
	return nil
}

func insertOrderRow(ctx context.Context, tx pgx.Tx, order *domain.Order, keys partKeys) error {
	batch := &pgx.Batch{}

	orderSQL, orderArgs, err := buildOrderInsert(order, keys.deliveryID, keys.paymentID)
	if err != nil {
		return fmt.Errorf("build order insert: %w", err)
	}
	batch.Queue(orderSQL, orderArgs...)

	if len(keys.itemIDs) > 0 {
		linksSQL, linksArgs, err := buildLinksInsert(order.OrderUID, keys.itemIDs)
		if err != nil {
			return err
		}
		batch.Queue(linksSQL, linksArgs...).Exec(func(tag pgconn.CommandTag) error {
			if tag.RowsAffected() != int64(len(keys.itemIDs)) {
				return fmt.Errorf("insert items_to_order: affected %d of %d", tag.RowsAffected(), len(keys.itemIDs))
			}
			return nil
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// mapWriteError превращает нарушение уникальности в domain.ErrOrderExists,
// а отказ Postgres принять сами данные (классы 22 и 23) - в domain.ErrInvalidValue.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == uniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrOrderExists, pgErr.ConstraintName)
	case strings.HasPrefix(pgErr.Code, classDataException),
		strings.HasPrefix(pgErr.Code, classIntegrityConstraint):
		return fmt.Errorf("%w: rejected by store: %s (sqlstate %s)", domain.ErrInvalidValue, pgErr.Message, pgErr.Code)
	}
	return err
}

// GetOrder собирает агрегат: сначала строка заказа, затем доставка, оплата и позиции
// параллельно на отдельных соединениях пула.
func (r *OrderRepository) GetOrder(ctx context.Context, orderUID string) (_ *domain.Order, err error) {
	defer observe("get_order", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row, err := scanOrderRow(r.pool.QueryRow(ctx, selectOrderSQL, orderUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	var (
		delivery *domain.Delivery
		payment  *domain.Payment
		items    []domain.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := scanDelivery(r.pool.QueryRow(gctx, selectDeliveryByIDSQL, row.deliveryID))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: delivery %d of order %s is missing", domain.ErrIntegrity, row.deliveryID, orderUID)
		}
		if err != nil {
			return fmt.Errorf("select delivery: %w", err)
		}
		delivery = d
		return nil
	})
	g.Go(func() error {
		p, err := scanPayment(r.pool.QueryRow(gctx, selectPaymentByTransactionSQL, row.paymentID))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: payment %s of order %s is missing", domain.ErrIntegrity, row.paymentID, orderUID)
		}
		if err != nil {
			return fmt.Errorf("select payment: %w", err)
		}
		payment = p
		return nil
	})
	g.Go(func() error {
		list, err := r.selectItems(gctx, orderUID)
		if err != nil {
			return err
		}
		items = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := row.order
	order.Delivery = *delivery
	order.Payment = *payment
	order.Items = items
	return &order, nil
}

// GetDelivery - доставка заказа одним запросом через внешний ключ orders.delivery_id.
func (r *OrderRepository) GetDelivery(ctx context.Context, orderUID string) (_ *domain.Delivery, err error) {
	defer observe("get_delivery", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	d, err := scanDelivery(r.pool.QueryRow(ctx, selectDeliveryByOrderSQL, orderUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select delivery: %w", err)
	}
	return d, nil
}

// GetPayment - оплата заказа одним запросом через внешний ключ orders.payment_id.
func (r *OrderRepository) GetPayment(ctx context.Context, orderUID string) (_ *domain.Payment, err error) {
	defer observe("get_payment", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	p, err := scanPayment(r.pool.QueryRow(ctx, selectPaymentByOrderSQL, orderUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select payment: %w", err)
	}
	return p, nil
}

// GetItems отличает "заказа нет" от "заказ без позиций": проверка существования
// и выборка позиций идут параллельно.
func (r *OrderRepository) GetItems(ctx context.Context, orderUID string) (_ []domain.Item, err error) {
	defer observe("get_items", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		count int64
		items []domain.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.pool.QueryRow(gctx, countOrdersSQL, orderUID).Scan(&count); err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		list, err := r.selectItems(gctx, orderUID)
		if err != nil {
			return err
		}
		items = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return items, nil
}

func (r *OrderRepository) selectItems(ctx context.Context, orderUID string) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, selectItemsByOrderSQL, orderUID)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (r *OrderRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// observe пишет длительность операции в гистограмму с исходом ok|not_found|error.
func observe(op string, start time.Time, errp *error) {
	result := "ok"
	switch {
	case *errp == nil:
	case errors.Is(*errp, domain.ErrOrderNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.StoreOpDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}
