package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/Gunvolt24/wb_orders/pkg/metrics"
	"github.com/Gunvolt24/wb_orders/pkg/validate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Проверка, что OrderService удовлетворяет интерфейсу OrderService.
var _ ports.OrderService = (*OrderService)(nil)

// DefaultPopulateTimeout - предел фоновой записи в кэш после чтения из хранилища.
const DefaultPopulateTimeout = 2 * time.Second

// OrderService - прикладная логика работы с заказами (без знаний о транспорте).
// Полный заказ читается по схеме cache-aside; части заказа и запись идут
// напрямую в хранилище.
type OrderService struct {
	store     ports.OrderStore
	cache     ports.OrderCache // nil - кэш не настроен
	log       ports.Logger
	validator ports.OrderValidator

	populateTimeout time.Duration
	tracer          trace.Tracer
}

// Option - необязательная настройка OrderService.
type Option func(*OrderService)

// WithPopulateTimeout задаёт предел фоновой записи в кэш.
func WithPopulateTimeout(d time.Duration) Option {
	return func(s *OrderService) {
		if d > 0 {
			s.populateTimeout = d
		}
	}
}

// NewOrderService - DI-конструктор. cache может быть nil.
func NewOrderService(
	store ports.OrderStore,
	cache ports.OrderCache,
	log ports.Logger,
	validator ports.OrderValidator,
	opts ...Option,
) *OrderService {
	s := &OrderService{
		store:           store,
		cache:           cache,
		log:             log,
		validator:       validator,
		populateTimeout: DefaultPopulateTimeout,
		tracer:          otel.Tracer("github.com/Gunvolt24/wb_orders/internal/usecase"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrder - полный заказ по UID.
//
// Попадание в кэш возвращается без обращения к хранилищу. Промах или ошибка
// кэша ведут в хранилище; найденный заказ записывается в кэш в фоне, и ответ
// не ждёт этой записи. Отсутствие заказа не кэшируется.
func (s *OrderService) GetOrder(ctx context.Context, orderUID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder",
		trace.WithAttributes(attribute.String("order.uid", orderUID)))
	defer span.End()

	if s.cache != nil {
		if order, ok := s.lookup(ctx, orderUID); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return order, nil
		}
	}

	start := time.Now()
	order, err := s.store.GetOrder(ctx, orderUID)
	if err != nil {
		s.recordStoreError(ctx, span, "store.GetOrder", orderUID, err)
		return nil, err
	}
	s.log.Infof(ctx, "db fetch order_uid=%s took=%s", orderUID, time.Since(start))

	if s.cache != nil {
		s.populate(ctx, order)
	}
	return order, nil
}

// lookup читает кэш. Ошибка кэша логируется и трактуется как промах.
func (s *OrderService) lookup(ctx context.Context, orderUID string) (*domain.Order, bool) {
	order, err := s.cache.Get(ctx, orderUID)
	switch {
	case err == nil && order != nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return order, true
	case err == nil, errors.Is(err, ports.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.log.Warnf(ctx, "cache.Get failed order_uid=%s err=%v (falling back to store)", orderUID, err)
	}
	return nil, false
}

// populate пишет заказ в кэш в отдельной горутине. Контекст запроса отвязан
// от отмены: запись переживает ответ клиенту, но ограничена populateTimeout.
// Ошибки и паники только логируются.
func (s *OrderService) populate(ctx context.Context, order *domain.Order) {
	bg := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				metrics.CachePopulations.WithLabelValues("error").Inc()
				s.log.Errorf(bg, "cache populate panic order_uid=%s: %v", order.OrderUID, r)
			}
		}()

		pctx, cancel := context.WithTimeout(bg, s.populateTimeout)
		defer cancel()

		if err := s.cache.Set(pctx, order); err != nil {
			metrics.CachePopulations.WithLabelValues("error").Inc()
			s.log.Warnf(bg, "cache.Set failed order_uid=%s err=%v", order.OrderUID, err)
			return
		}
		metrics.CachePopulations.WithLabelValues("ok").Inc()
	}()
}

// GetDelivery - доставка заказа, напрямую из хранилища.
func (s *OrderService) GetDelivery(ctx context.Context, orderUID string) (*domain.Delivery, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetDelivery",
		trace.WithAttributes(attribute.String("order.uid", orderUID)))
	defer span.End()

	delivery, err := s.store.GetDelivery(ctx, orderUID)
	if err != nil {
		s.recordStoreError(ctx, span, "store.GetDelivery", orderUID, err)
		return nil, err
	}
	return delivery, nil
}

// GetPayment - оплата заказа, напрямую из хранилища.
func (s *OrderService) GetPayment(ctx context.Context, orderUID string) (*domain.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetPayment",
		trace.WithAttributes(attribute.String("order.uid", orderUID)))
	defer span.End()

	payment, err := s.store.GetPayment(ctx, orderUID)
	if err != nil {
		s.recordStoreError(ctx, span, "store.GetPayment", orderUID, err)
		return nil, err
	}
	return payment, nil
}

// GetItems - позиции заказа в исходном порядке, напрямую из хранилища.
func (s *OrderService) GetItems(ctx context.Context, orderUID string) ([]domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetItems",
		trace.WithAttributes(attribute.String("order.uid", orderUID)))
	defer span.End()

	items, err := s.store.GetItems(ctx, orderUID)
	if err != nil {
		s.recordStoreError(ctx, span, "store.GetItems", orderUID, err)
		return nil, err
	}
	return items, nil
}

// CreateOrder валидирует и сохраняет заказ. Кэш не трогается: он
// заполняется только при чтении.
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := s.validator.Validate(ctx, order); err != nil {
		uid := ""
		if order != nil {
			uid = order.OrderUID
		}
		s.log.Warnf(ctx, "validation failed order_uid=%s err=%v", uid, err)
		return fmt.Errorf("validation failed: %w", err)
	}
	span.SetAttributes(attribute.String("order.uid", order.OrderUID))

	if err := s.store.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, domain.ErrOrderExists) {
			s.log.Warnf(ctx, "order already exists order_uid=%s", order.OrderUID)
			return err
		}
		if errors.Is(err, domain.ErrInvalidValue) {
			s.log.Warnf(ctx, "order rejected by store order_uid=%s err=%v", order.OrderUID, err)
			return fmt.Errorf("failed to save order: %w", err)
		}
		s.recordStoreError(ctx, span, "store.CreateOrder", order.OrderUID, err)
		return fmt.Errorf("failed to save order: %w", err)
	}

	s.log.Infof(ctx, "order saved uid=%s items=%d", order.OrderUID, len(order.Items))
	return nil
}

// SaveFromMessage - сохранить заказ, пришедший из Kafka (raw JSON).
// Ошибки разбора и валидации оборачивают validate.ErrInvalidOrder,
// повтор уже сохранённого заказа - domain.ErrOrderExists.
func (s *OrderService) SaveFromMessage(ctx context.Context, raw []byte) error {
	order, err := validate.DecodeOrder(raw)
	if err != nil {
		s.log.Warnf(ctx, "invalid message err=%v", err)
		return err
	}
	return s.CreateOrder(ctx, order)
}

// recordStoreError логирует ошибку хранилища. Отсутствие заказа - штатный исход.
func (s *OrderService) recordStoreError(ctx context.Context, span trace.Span, op, orderUID string, err error) {
	if errors.Is(err, domain.ErrOrderNotFound) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	s.log.Errorf(ctx, "%s failed order_uid=%s err=%v", op, orderUID, err)
}
