package rest

import (
	"net/http"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/Gunvolt24/wb_orders/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Handler - HTTP-обработчики заказов.
type Handler struct {
	service    ports.OrderService
	log        ports.Logger
	reqTimeout time.Duration // 0 - без ограничения
}

// NewHandler - конструктор обработчиков; reqTimeout ограничивает каждый запрос к /order(s).
func NewHandler(service ports.OrderService, log ports.Logger, reqTimeout time.Duration) *Handler {
	return &Handler{service: service, log: log, reqTimeout: reqTimeout}
}

// NewRouter собирает gin.Engine. serviceName включает otelgin; пустое значение - без трейсинга.
func NewRouter(h *Handler, serviceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if serviceName != "" {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/", httpx.RequestTimeout(h.reqTimeout))
	api.POST("/order", h.createOrder)

	orders := api.Group("/orders/:order_id")
	orders.GET("", h.getOrder)
	orders.GET("/delivery", h.getDelivery)
	orders.GET("/payment", h.getPayment)
	orders.GET("/items", h.getItems)

	return r
}
