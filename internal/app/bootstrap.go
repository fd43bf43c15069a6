package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/wb_orders/config"
	cachemem "github.com/Gunvolt24/wb_orders/internal/cache/memory"
	cacheredis "github.com/Gunvolt24/wb_orders/internal/cache/redis"
	"github.com/Gunvolt24/wb_orders/internal/kafka"
	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/Gunvolt24/wb_orders/internal/repo/postgres"
	rest "github.com/Gunvolt24/wb_orders/internal/transport/http"
	"github.com/Gunvolt24/wb_orders/internal/usecase"
	"github.com/Gunvolt24/wb_orders/pkg/logger"
	"github.com/Gunvolt24/wb_orders/pkg/metrics"
	"github.com/Gunvolt24/wb_orders/pkg/telemetry"
	"github.com/Gunvolt24/wb_orders/pkg/validate"
	"github.com/gin-gonic/gin"
)

// App - собранное приложение и его внешние интерфейсы (HTTP, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер
	KafkaConsumer   ports.MessageConsumer // консьюмер сообщений; nil - Kafka выключена
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup - функция освобождения ресурсов.
type Cleanup func()

// applyGinMode - устанавливает режим Gin по строке;
// неизвестное значение -> debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// newOrderCache собирает кэш по cfg.Backend. Для "none" возвращает nil-интерфейс:
// оркестратор тогда сразу идёт в хранилище.
func newOrderCache(ctx context.Context, cfg *config.Config, log ports.Logger) (ports.OrderCache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		client, err := cacheredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			return nil, func() {}, err
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.Warnf(ctx, "redis close: %v", err)
			}
		}
		log.Infof(ctx, "order cache: redis addr=%s ttl=%s", cfg.Redis.Addr, cfg.Cache.TTL)
		return cacheredis.NewOrderCache(client, cfg.Cache.TTL, cfg.Redis.OpTimeout), closeClient, nil
	case config.CacheMemory:
		log.Infof(ctx, "order cache: memory capacity=%d ttl=%s", cfg.Cache.Capacity, cfg.Cache.TTL)
		return cachemem.NewOrderCache(cfg.Cache.Capacity, cfg.Cache.TTL), func() {}, nil
	case config.CacheNone:
		log.Infof(ctx, "order cache: disabled")
		return nil, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// Bootstrap - собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Освобождение уже созданного при ошибке на следующих шагах (в обратном порядке).
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	}
	fail := func(err error) (*App, Cleanup, error) {
		logg.Errorf(ctx, "bootstrap failed: %v", err)
		cleanup()
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию - no-op.
	if cfg.Tracing.Enabled {
		shutdownTrace, tErr := telemetry.SetupTracing(ctx, telemetry.Config{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			closers = append(closers, func() {
				if terr := shutdownTrace(context.Background()); terr != nil {
					logg.Warnf(ctx, "shutdown tracing: %v", terr)
				}
			})
		}
	}

	// Пул подключений Postgres; SQL-лог по флагу конфигурации.
	var queryLog ports.Logger
	if cfg.Postgres.LogQueries {
		queryLog = logg
	}
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, queryLog)
	if err != nil {
		return fail(fmt.Errorf("postgres: %w", err))
	}
	closers = append(closers, pool.Close)

	orderCache, closeCache, err := newOrderCache(ctx, cfg, logg)
	if err != nil {
		return fail(fmt.Errorf("cache: %w", err))
	}
	closers = append(closers, closeCache)

	// Сборка зависимостей доменного слоя.
	orderRepo := postgres.NewOrderRepository(pool, postgres.WithQueryTimeout(cfg.Postgres.QueryTimeout))
	orderValidator := validate.NewOrderValidator()
	orderService := usecase.NewOrderService(orderRepo, orderCache, logg, orderValidator,
		usecase.WithPopulateTimeout(cfg.Cache.PopulateTimeout))

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(orderService, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Консьюмер Kafka (интерфейс присваиваем только при включённой Kafka,
	// чтобы не получить typed nil).
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}, orderService, logg)
		app.KafkaConsumer = consumer
		closers = append(closers, func() {
			if err := consumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		})
	} else {
		logg.Infof(ctx, "kafka consumer disabled")
	}

	return app, cleanup, nil
}

// Run - запускает HTTP-сервер и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Запуск консьюмера.
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Errorf(ctx, "background error: %v", err)
			runErr = err
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return runErr
}
