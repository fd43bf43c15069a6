//go:build integration

package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cacheredis "github.com/Gunvolt24/wb_orders/internal/cache/redis"
	"github.com/Gunvolt24/wb_orders/internal/domain"
	pgrepo "github.com/Gunvolt24/wb_orders/internal/repo/postgres"
	"github.com/Gunvolt24/wb_orders/internal/testutil"
	rest "github.com/Gunvolt24/wb_orders/internal/transport/http"
	"github.com/Gunvolt24/wb_orders/internal/usecase"
	"github.com/Gunvolt24/wb_orders/pkg/logger"
	"github.com/Gunvolt24/wb_orders/pkg/validate"
)

// Полный путь: POST /order -> Postgres; GET /orders/:id -> Redis cache-aside;
// части заказа читаются из Postgres.
func TestHTTP_OrderLifecycle_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pg, stopPG, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(context.Background(), pg.DSN))

	rd, stopRedis, err := testutil.StartRedisTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stopRedis(context.Background()) }()

	client, err := cacheredis.NewClient(ctx, rd.Addr, "", 0, 5)
	require.NoError(t, err)
	defer client.Close()

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	repo := pgrepo.NewOrderRepository(pg.Pool)
	cache := cacheredis.NewOrderCache(client, time.Minute, time.Second)
	svc := usecase.NewOrderService(repo, cache, logg, validate.NewOrderValidator())

	ts := httptest.NewServer(rest.NewRouter(rest.NewHandler(svc, logg, 5*time.Second), ""))
	defer ts.Close()

	ord := testutil.MakeOrder(testutil.WithItems(3))
	raw, err := json.Marshal(ord)
	require.NoError(t, err)

	// create
	resp, err := http.Post(ts.URL+"/order", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// повтор - 409
	resp, err = http.Post(ts.URL+"/order", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// запись не кладёт заказ в кэш
	_, err = client.Get(ctx, cacheredis.OrderKey(ord.OrderUID)).Result()
	require.Error(t, err)

	// read-through: первый GET из Postgres, кэш заполняется в фоне
	var got domain.Order
	getJSON(t, ts.URL+"/orders/"+ord.OrderUID, http.StatusOK, &got)
	require.Equal(t, ord.OrderUID, got.OrderUID)
	require.Len(t, got.Items, 3)
	for i := range got.Items {
		require.Equal(t, ord.Items[i].RID, got.Items[i].RID)
	}

	require.Eventually(t, func() bool {
		n, err := client.Exists(ctx, cacheredis.OrderKey(ord.OrderUID)).Result()
		return err == nil && n == 1
	}, 3*time.Second, 50*time.Millisecond, "order must be populated into redis")

	ttl, err := client.TTL(ctx, cacheredis.OrderKey(ord.OrderUID)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Minute)

	// части
	var delivery domain.Delivery
	getJSON(t, ts.URL+"/orders/"+ord.OrderUID+"/delivery", http.StatusOK, &delivery)
	require.Equal(t, ord.Delivery.Phone, delivery.Phone)

	var payment domain.Payment
	getJSON(t, ts.URL+"/orders/"+ord.OrderUID+"/payment", http.StatusOK, &payment)
	require.Equal(t, ord.Payment, payment)

	var items []domain.Item
	getJSON(t, ts.URL+"/orders/"+ord.OrderUID+"/items", http.StatusOK, &items)
	require.Len(t, items, 3)
}

// GET /orders/:id - 404 когда заказа нет, и отсутствие не кэшируется.
func TestHTTP_GetOrder_NotFound_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stop(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(context.Background(), pg.DSN))

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	repo := pgrepo.NewOrderRepository(pg.Pool)
	svc := usecase.NewOrderService(repo, nil, logg, validate.NewOrderValidator())

	ts := httptest.NewServer(rest.NewRouter(rest.NewHandler(svc, logg, 2*time.Second), ""))
	defer ts.Close()

	for _, suffix := range []string{"", "/delivery", "/payment", "/items"} {
		var got map[string]any
		getJSON(t, ts.URL+"/orders/not-existing-uid"+suffix, http.StatusNotFound, &got)
		require.Equal(t, "order not found", got["error"], suffix)
	}
}

// /ping, /metrics, 404 на неизвестный маршрут, 405 с Allow
func TestHTTP_Health_Metrics_And_Routing_TC(t *testing.T) {
	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	ts := httptest.NewServer(rest.NewRouter(rest.NewHandler(noOpService{}, logg, 2*time.Second), ""))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "pong", string(readAll(t, resp.Body)))

	respM, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, respM.StatusCode)
	require.NotEmpty(t, readAll(t, respM.Body))

	var got map[string]any
	getJSON(t, ts.URL+"/no/such/route", http.StatusNotFound, &got)
	require.Equal(t, "route not found", got["error"])

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/orders/some-id", nil)
	resp405, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp405.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp405.StatusCode)
	require.Equal(t, "GET", resp405.Header.Get("Allow"))
}

// --- функции помощники ---

// noOpService - заглушка для роутера, где неважно, что вернёт бизнес-логика.
type noOpService struct{}

func (noOpService) CreateOrder(context.Context, *domain.Order) error { return nil }
func (noOpService) GetOrder(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}
func (noOpService) GetDelivery(context.Context, string) (*domain.Delivery, error) {
	return nil, domain.ErrOrderNotFound
}
func (noOpService) GetPayment(context.Context, string) (*domain.Payment, error) {
	return nil, domain.ErrOrderNotFound
}
func (noOpService) GetItems(context.Context, string) ([]domain.Item, error) {
	return nil, domain.ErrOrderNotFound
}

func getJSON(t *testing.T, url string, wantStatus int, dst any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode, url)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// readAll - прочитать и закрыть тело.
func readAll(t *testing.T, r io.ReadCloser) []byte {
	t.Helper()
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}
