package logger

import (
	"context"

	"github.com/Gunvolt24/wb_orders/pkg/ctxmeta"
	"go.uber.org/zap"
)

// ZapLogger - реализация ports.Logger поверх zap. К каждой записи
// добавляются request_id и trace_id из контекста, если они там есть.
type ZapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	isProd bool
}

// NewZapLogger - production (JSON) или development (консоль) конфигурация.
// Вторым значением возвращается Sync для отложенного вызова.
func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if isProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, nil, err
	}

	loggerWrap := NewFromZap(logger)
	loggerWrap.isProd = isProd

	cleanup := func() error { return loggerWrap.base.Sync() }
	return loggerWrap, cleanup, nil
}

// NewFromZap оборачивает готовый *zap.Logger (например, zaptest или zap.NewNop).
func NewFromZap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{base: l, sugar: l.Sugar()}
}

func (z *ZapLogger) with(ctx context.Context) *zap.SugaredLogger {
	if fields := ctxmeta.LogFields(ctx); len(fields) > 0 {
		return z.sugar.With(fields...)
	}
	return z.sugar
}

func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.with(ctx).Infof(format, args...)
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Warnf(format, args...)
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Errorf(format, args...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }
func (z *ZapLogger) IsProd() bool                { return z.isProd }
