package ports

import "context"

// Logger - минимальный контракт логгера. Реализация сама достаёт
// request_id и trace_id из контекста.
type Logger interface {
	Infof(ctx context.Context, format string, args ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Errorf(ctx context.Context, format string, args ...any)
}
