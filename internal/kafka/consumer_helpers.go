package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/domain"
	"github.com/Gunvolt24/wb_orders/pkg/metrics"
	"github.com/Gunvolt24/wb_orders/pkg/validate"
	"github.com/segmentio/kafka-go"
)

// commitTimeout - предел CommitMessages; коммит не отменяется вместе с Run,
// чтобы уже сохранённый заказ не пришёл повторно после остановки.
const commitTimeout = 5 * time.Second

// handleMessage обрабатывает одно сообщение и определяет, нужно ли коммитить оффсет.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	ctxTimeout, cancel := context.WithTimeout(ctx, c.processTimeout)
	err := c.service.SaveFromMessage(ctxTimeout, msg.Value)
	cancel()

	switch {
	case err == nil:
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	case errors.Is(err, validate.ErrInvalidOrder), errors.Is(err, domain.ErrInvalidValue):
		// Невалидные данные (в том числе отвергнутые хранилищем): повтор даст
		// ту же ошибку, поэтому логируем и коммитим
		metrics.KafkaMessagesSkipped.WithLabelValues(topic, "invalid").Inc()
		c.log.Warnf(ctx, "invalid message offset=%d: %v (skipped)", msg.Offset, err)
		return true
	case errors.Is(err, domain.ErrOrderExists):
		// Повтор уже сохранённого заказа: запись не меняется, сообщение пропускаем
		metrics.KafkaMessagesSkipped.WithLabelValues(topic, "duplicate").Inc()
		c.log.Infof(ctx, "duplicate order offset=%d (skipped)", msg.Offset)
		return true
	default:
		// Временная ошибка (БД/сеть/таймаут): НЕ коммитим - будем обрабатывать повторно
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "process failed offset=%d: %v (will retry without commit)", msg.Offset, err)
		return false
	}
}

// commitSafely пытается закоммитить оффсет и логирует ошибку.
func (c *Consumer) commitSafely(ctx context.Context, msg *kafka.Message) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	if commitErr := c.reader.CommitMessages(cctx, *msg); commitErr != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, commitErr)
	}
}

// messageID - идентификатор сообщения для корреляции логов.
func messageID(msg *kafka.Message) string {
	return fmt.Sprintf("kafka-%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
}

// sleepWithBackoff ждет backoff или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// nextBackoff возвращает следующее время ожидания повтора с учетом retryMax.
func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.retryMax {
		return c.retryMax
	}
	return current
}

// withJitterEqual - умеренная случайность: половина задержки фиксирована,
// вторая половина случайна.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}
