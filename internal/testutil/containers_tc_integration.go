//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Общий логгер жизненного цикла контейнеров.
var tcLogger = log.New(os.Stdout, "[tc] ", log.LstdFlags)

func shortID(c tc.Container) string {
	id := c.GetContainerID()
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// lifecycleHooks пишет в tcLogger создание, готовность и остановку контейнера.
func lifecycleHooks(l *log.Logger) tc.ContainerLifecycleHooks {
	stage := func(name string) tc.ContainerHook {
		return func(_ context.Context, c tc.Container) error {
			l.Printf("%s id=%s", name, shortID(c))
			return nil
		}
	}
	return tc.ContainerLifecycleHooks{
		PreCreates: []tc.ContainerRequestHook{
			func(_ context.Context, req tc.ContainerRequest) error {
				l.Printf("creating image=%s", req.Image)
				return nil
			},
		},
		PostStarts:     []tc.ContainerHook{stage("started")},
		PostReadies:    []tc.ContainerHook{stage("ready")},
		PostTerminates: []tc.ContainerHook{stage("terminated")},
	}
}

// ----------------------------------------------------------------------------
// Postgres
// ----------------------------------------------------------------------------

type PGContainer struct {
	Container *tcpostgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC поднимает Postgres и открывает пул тем же конструктором,
// что и сервис.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tc.WithLifecycleHooks(lifecycleHooks(tcLogger)),
		tc.WithExposedPorts("5432/tcp"),
		tcpostgres.WithDatabase("orders"),
		tcpostgres.WithUsername("app"),
		tcpostgres.WithPassword("app"),
		tc.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				// Postgres в образе перезапускается после init-скриптов
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run postgres: %w", err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, nil, fmt.Errorf("conn string: %w", err)
	}

	pool, err := postgres.NewPool(ctx, dsn, 5, nil)
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, nil, fmt.Errorf("new pool: %w", err)
	}

	stop := func(c context.Context) error {
		pool.Close()
		return pg.Terminate(c)
	}

	return &PGContainer{Container: pg, DSN: dsn, Pool: pool}, stop, nil
}

// TruncateOrders очищает все таблицы заказов между подтестами.
func TruncateOrders(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx,
		`TRUNCATE items_to_order, orders, items, payments, deliveries RESTART IDENTITY CASCADE`)
	return err
}

// ----------------------------------------------------------------------------
// Redis
// ----------------------------------------------------------------------------

type RedisContainer struct {
	Container tc.Container
	Addr      string
}

// StartRedisTC поднимает Redis через GenericContainer: отдельный модуль
// testcontainers для него не нужен.
func StartRedisTC(ctx context.Context) (*RedisContainer, func(context.Context) error, error) {
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:          "redis:7-alpine",
			ExposedPorts:   []string{"6379/tcp"},
			LifecycleHooks: []tc.ContainerLifecycleHooks{lifecycleHooks(tcLogger)},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("6379/tcp"),
				wait.ForLog("Ready to accept connections"),
			).WithDeadline(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("run redis: %w", err)
	}

	addr, err := c.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		_ = tc.TerminateContainer(c)
		return nil, nil, fmt.Errorf("redis endpoint: %w", err)
	}

	stop := func(_ context.Context) error { return tc.TerminateContainer(c) }
	return &RedisContainer{Container: c, Addr: addr}, stop, nil
}

// ----------------------------------------------------------------------------
// Kafka
// ----------------------------------------------------------------------------

type KafkaEnv struct {
	Container *redpanda.Container
	Brokers   []string
	BaseTopic string
}

func StartKafkaTC(ctx context.Context, baseTopic string) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(
		ctx,
		"docker.redpanda.com/redpandadata/redpanda:v23.3.8",
		tc.WithLifecycleHooks(lifecycleHooks(tcLogger)),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run redpanda: %w", err)
	}

	seed, err := rp.KafkaSeedBroker(ctx) // вернёт "host:port" для клиента
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("seed broker: %w", err)
	}

	env := &KafkaEnv{
		Container: rp,
		Brokers:   []string{seed},
		BaseTopic: baseTopic,
	}
	stop := func(_ context.Context) error { return tc.TerminateContainer(rp) }
	return env, stop, nil
}
