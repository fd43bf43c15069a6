package postgres

import (
	"context"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
)

// NewPool создаёт пул соединений к Postgres на базе DSN и проверяет его Ping-ом.
// Если maxConns > 0, переопределяем размер пула. Если queryLog не nil,
// каждый запрос пишется в лог через pgx tracelog.
func NewPool(ctx context.Context, dsn string, maxConns int32, queryLog ports.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	if queryLog != nil {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   &queryLogger{log: queryLog},
			LogLevel: tracelog.LogLevelInfo,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if connErr := pool.Ping(ctx); connErr != nil {
		pool.Close()
		return nil, connErr
	}

	return pool, nil
}

// queryLogger переводит события pgx в ports.Logger.
type queryLogger struct {
	log ports.Logger
}

func (l *queryLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	switch level {
	case tracelog.LogLevelError:
		l.log.Errorf(ctx, "pgx %s sql=%v time=%v err=%v", msg, data["sql"], data["time"], data["err"])
	case tracelog.LogLevelWarn:
		l.log.Warnf(ctx, "pgx %s sql=%v time=%v", msg, data["sql"], data["time"])
	default:
		// Аргументы не пишем: в них персональные данные получателя.
		l.log.Infof(ctx, "pgx %s sql=%v time=%v", msg, data["sql"], data["time"])
	}
}
