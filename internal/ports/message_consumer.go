package ports

import "context"

// MessageConsumer - фоновый источник заказов (Kafka).
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
