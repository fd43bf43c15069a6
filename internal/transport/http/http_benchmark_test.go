//go:build !integration

package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/internal/testutil"
)

// --- Бенчмарки ---

// Базовый бенч: GetOrder - сравниваем LEAN vs FULL пайплайн
func BenchmarkHTTP_GetOrder(b *testing.B) {
	ord := testutil.MakeOrder(testutil.WithItems(5))
	h := NewHandler(svcOne{o: ord}, nopLogger{}, 2*time.Second)

	lean := makeLeanRouter(h)
	full := makeFullRouter(h)

	b.Run("lean/no-mw", func(b *testing.B) {
		benchServeGET(b, lean, "/orders/"+ord.OrderUID)
	})
	b.Run("full/prod-mw", func(b *testing.B) {
		benchServeGET(b, full, "/orders/"+ord.OrderUID)
	})
}

// Потолок без маршалинга: тот же заказ, но заранее закодированный JSON.
// Показывает, сколько «ест» encoding/json в хендлере.
func BenchmarkHTTP_GetOrder_PreMarshaledBytes(b *testing.B) {
	ord := testutil.MakeOrder(testutil.WithItems(5))
	raw, _ := json.Marshal(ord)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/orders/:order_id", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", raw)
	})

	benchServeGET(b, r, "/orders/"+ord.OrderUID)
}

// Позиции заказа: 10/50/100 - рост аллокаций и времени с размером ответа
func BenchmarkHTTP_GetItems(b *testing.B) {
	for _, n := range []int{10, 50, 100} {
		b.Run("N="+strconv.Itoa(n), func(b *testing.B) {
			ord := testutil.MakeOrder(testutil.WithItems(n))
			h := NewHandler(svcOne{o: ord}, nopLogger{}, 2*time.Second)

			benchServeGET(b, makeLeanRouter(h), "/orders/"+ord.OrderUID+"/items")
		})
	}
}

// Ошибочный путь (404): "цена" роутера и 404-хендлера
func BenchmarkHTTP_404(b *testing.B) {
	h := NewHandler(svcOne{o: testutil.MakeOrder()}, nopLogger{}, 2*time.Second)
	r := makeFullRouter(h)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			_, _ = io.Copy(io.Discard, w.Body)
			if w.Code != http.StatusNotFound {
				b.Fatalf("status=%d", w.Code)
			}
		}
	})
}

// --- nopLogger - логгер, который не делает ничего. ---

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// --- Стабы ---

// svcOne всегда отдаёт один и тот же заказ (без аллокаций на каждом вызове).
type svcOne struct{ o *domain.Order }

func (s svcOne) CreateOrder(context.Context, *domain.Order) error { return nil }
func (s svcOne) GetOrder(context.Context, string) (*domain.Order, error) {
	return s.o, nil
}
func (s svcOne) GetDelivery(context.Context, string) (*domain.Delivery, error) {
	return &s.o.Delivery, nil
}
func (s svcOne) GetPayment(context.Context, string) (*domain.Payment, error) {
	return &s.o.Payment, nil
}
func (s svcOne) GetItems(context.Context, string) ([]domain.Item, error) {
	return s.o.Items, nil
}

// --- функции-помощники ---

func makeLeanRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New() // без Recovery/otel/logger - получаем меньшую аллокацию
	r.GET("/orders/:order_id", h.getOrder)
	r.GET("/orders/:order_id/items", h.getItems)
	return r
}

func makeFullRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	// prod пайплайн из NewRouter
	return NewRouter(h, "")
}

func benchServeGET(b *testing.B, r *gin.Engine, path string) {
	b.Helper()
	b.ReportAllocs()
	b.ResetTimer()

	// Параллельный режим ближе к реальности без TCP
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req, _ := http.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			// вычитываем тело
			_, _ = io.Copy(io.Discard, w.Body)
			if w.Code != http.StatusOK {
				b.Fatalf("status=%d", w.Code)
			}
		}
	})
}
