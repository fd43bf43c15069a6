// Пакет ctxmeta - метаданные запроса, которые прокидываются через context.Context:
// request_id из HTTP-слоя и trace/span активного спана OpenTelemetry.
// HTTP-слой и логгер зависят от этого пакета, но не друг от друга.
package ctxmeta

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

// KeyRequestID - ключ request_id в контексте.
const KeyRequestID ctxKey = "request_id"

// WithRequestID кладёт request_id в контекст (если пусто, ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(KeyRequestID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

func TraceIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.TraceID().String(), true
}

func SpanIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

// LogFields возвращает пары ключ-значение для структурного логгера.
// Пустые значения пропускаются.
func LogFields(ctx context.Context) []any {
	fields := make([]any, 0, 6)
	if id, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", id)
	}
	if id, ok := TraceIDFromContext(ctx); ok {
		fields = append(fields, "trace_id", id)
	}
	if id, ok := SpanIDFromContext(ctx); ok {
		fields = append(fields, "span_id", id)
	}
	return fields
}
