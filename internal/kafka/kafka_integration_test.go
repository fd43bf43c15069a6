//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/wb_orders/internal/cache/memory"
	"github.com/Gunvolt24/wb_orders/internal/domain"
	ikafka "github.com/Gunvolt24/wb_orders/internal/kafka"
	"github.com/Gunvolt24/wb_orders/internal/ports"
	pgrepo "github.com/Gunvolt24/wb_orders/internal/repo/postgres"
	"github.com/Gunvolt24/wb_orders/internal/testutil"
	"github.com/Gunvolt24/wb_orders/internal/usecase"
	"github.com/Gunvolt24/wb_orders/pkg/logger"
	"github.com/Gunvolt24/wb_orders/pkg/validate"
)

var reUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safe(t *testing.T) string { return reUnsafe.ReplaceAllString(t.Name(), "-") }

// 1) Мусор и невалидный заказ пропускаются, валидный после них сохраняется
func TestKafka_SkipInvalid_Then_SaveValid_TC(t *testing.T) {
	st := newStack(t)

	topic, group := testutil.UniqueTopicAndGroup(st.kf.BaseTopic + "-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(st.ctx, st.kf.Brokers[0], topic))

	st.startConsumer(t, topic, group, "first", st.svc)

	bad := testutil.MakeOrder()
	bad.Entry = "" // триггер валидатора
	braw, _ := json.Marshal(bad)

	ok := testutil.MakeOrder(testutil.WithItems(2))
	raw, _ := json.Marshal(ok)

	require.NoError(t, testutil.ProduceOrders(st.ctx, st.kf.Brokers, topic, []byte("not-a-json"), braw, raw))

	got := waitOrder(t, st.ctx, st.repo, ok.OrderUID, 20*time.Second)
	require.Len(t, got.Items, 2)

	_, err := st.repo.GetOrder(st.ctx, bad.OrderUID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// 2) Дважды опубликованный заказ сохраняется один раз, второй коммитится как повтор
func TestKafka_DuplicateMessage_StoredOnce_TC(t *testing.T) {
	st := newStack(t)

	topic, group := testutil.UniqueTopicAndGroup(st.kf.BaseTopic + "-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(st.ctx, st.kf.Brokers[0], topic))

	st.startConsumer(t, topic, group, "first", st.svc)

	ord := testutil.MakeOrder(testutil.WithItems(3))
	raw, _ := json.Marshal(ord)
	next := testutil.MakeOrder()
	nraw, _ := json.Marshal(next)

	require.NoError(t, testutil.ProduceOrders(st.ctx, st.kf.Brokers, topic, raw, raw, nraw))

	// следующий заказ сохранён - значит повтор не застрял в ретраях
	waitOrder(t, st.ctx, st.repo, next.OrderUID, 20*time.Second)

	got, err := st.repo.GetOrder(st.ctx, ord.OrderUID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
}

// 3) StartOffset="last": сообщения, опубликованные до старта консьюмера, игнорируются
func TestKafka_StartOffset_Last_IgnoresOld_TC(t *testing.T) {
	st := newStack(t)

	topic, group := testutil.UniqueTopicAndGroup(st.kf.BaseTopic + "-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(st.ctx, st.kf.Brokers[0], topic))

	old := testutil.MakeOrder()
	rold, _ := json.Marshal(old)
	require.NoError(t, testutil.ProduceOrders(st.ctx, st.kf.Brokers, topic, rold))

	st.startConsumer(t, topic, group, "last", st.svc)

	// Публикуем новое несколько раз до появления в БД - так одно из сообщений
	// гарантированно окажется после позиции, с которой читает консьюмер.
	fresh := testutil.MakeOrder()
	rnew, _ := json.Marshal(fresh)

	deadline := time.Now().Add(20 * time.Second)
	for {
		require.NoError(t, testutil.ProduceOrders(st.ctx, st.kf.Brokers, topic, rnew))

		_, err := st.repo.GetOrder(st.ctx, fresh.OrderUID)
		if err == nil {
			break
		}
		require.ErrorIs(t, err, domain.ErrOrderNotFound)
		if time.Now().After(deadline) {
			t.Fatalf("new order %s not saved in time", fresh.OrderUID)
		}
		time.Sleep(300 * time.Millisecond)
	}

	_, err := st.repo.GetOrder(st.ctx, old.OrderUID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// 4) At-least-once через рестарт: без коммита сообщение передоставляется той же группе
func TestKafka_Redelivery_AfterRestart_NoCommit_TC(t *testing.T) {
	st := newStack(t)

	topic, group := testutil.UniqueTopicAndGroup(st.kf.BaseTopic + "-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(st.ctx, st.kf.Brokers[0], topic))

	ord := testutil.MakeOrder()
	raw, _ := json.Marshal(ord)
	require.NoError(t, testutil.ProduceOrders(st.ctx, st.kf.Brokers, topic, raw))

	// Фаза 1: хранилище "лежит" - оффсет не коммитится
	failing := &alwaysTempFailSaver{called: make(chan struct{}, 1)}
	runCtx1, cancelRun1 := context.WithCancel(st.ctx)
	consumerFail := ikafka.NewConsumer(consumerConfig(st.kf.Brokers, topic, group, "first"), failing, st.log)
	done := make(chan struct{})
	go func() { _ = consumerFail.Run(runCtx1); close(done) }()

	select {
	case <-failing.called:
	case <-time.After(20 * time.Second):
		t.Fatal("message was not fetched by the failing consumer")
	}
	cancelRun1()
	<-done
	require.NoError(t, consumerFail.Close())

	// Фаза 2: нормальный сервис в той же группе получает некоммиченное сообщение
	st.startConsumer(t, topic, group, "first", st.svc)

	waitOrder(t, st.ctx, st.repo, ord.OrderUID, 25*time.Second)
}

// -----------------функции-помощники-----------------

type stack struct {
	ctx  context.Context
	repo *pgrepo.OrderRepository
	svc  *usecase.OrderService
	log  ports.Logger
	kf   *testutil.KafkaEnv
}

func newStack(t *testing.T) *stack {
	t.Helper()

	// Длинный контекст - на контейнеры
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })
	require.NoError(t, testutil.ApplyMigrationsGoose(context.Background(), pg.DSN))

	kf, stopKF, err := testutil.StartKafkaTC(ctxStart, "orders-itc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopKF(context.Background()) })

	// Короткий контекст - сам тест
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	logg, closer, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })

	repo := pgrepo.NewOrderRepository(pg.Pool)
	svc := usecase.NewOrderService(repo, cachemem.NewOrderCache(100, time.Minute), logg, validate.NewOrderValidator())

	return &stack{ctx: ctx, repo: repo, svc: svc, log: logg, kf: kf}
}

func consumerConfig(brokers []string, topic, group, offset string) *ikafka.ConsumerConfig {
	return &ikafka.ConsumerConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        group,
		StartOffset:    offset,
		ProcessTimeout: 3 * time.Second,
		RetryInitial:   100 * time.Millisecond,
		RetryMax:       500 * time.Millisecond,
	}
}

type saver interface {
	SaveFromMessage(ctx context.Context, raw []byte) error
}

func (s *stack) startConsumer(t *testing.T, topic, group, offset string, svc saver) *ikafka.Consumer {
	t.Helper()
	c := ikafka.NewConsumer(consumerConfig(s.kf.Brokers, topic, group, offset), svc, s.log)
	// Cleanup выполняется в обратном порядке: сначала отмена Run, затем Close.
	t.Cleanup(func() { _ = c.Close() })

	runCtx, cancelRun := context.WithCancel(s.ctx)
	t.Cleanup(cancelRun)
	go func() { _ = c.Run(runCtx) }()
	return c
}

func waitOrder(t *testing.T, ctx context.Context, repo *pgrepo.OrderRepository, uid string, timeout time.Duration) *domain.Order {
	t.Helper()
	var got *domain.Order
	require.Eventually(t, func() bool {
		o, err := repo.GetOrder(ctx, uid)
		if err != nil {
			if !errors.Is(err, domain.ErrOrderNotFound) {
				t.Errorf("unexpected error: %v", err)
			}
			return false
		}
		got = o
		return true
	}, timeout, 200*time.Millisecond, "order %s not saved in time", uid)
	return got
}

// временная "сетеподобная" ошибка
type tempNetErr struct{}

func (tempNetErr) Error() string   { return "temporary failure" }
func (tempNetErr) Temporary() bool { return true }
func (tempNetErr) Timeout() bool   { return true }

// alwaysTempFailSaver всегда возвращает временную ошибку (оффсет не коммитится).
type alwaysTempFailSaver struct{ called chan struct{} }

func (s *alwaysTempFailSaver) SaveFromMessage(context.Context, []byte) error {
	select {
	case s.called <- struct{}{}:
	default:
	}
	return tempNetErr{}
}
