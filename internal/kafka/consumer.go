package kafka

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_orders/internal/ports"
	"github.com/Gunvolt24/wb_orders/pkg/ctxmeta"
	"github.com/Gunvolt24/wb_orders/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer)(nil)

// reader - минимальный контракт над источником (kafka.Reader),
// чтобы легко подменять его моками в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// messageSaver - зависимость на бизнес-логику, которая разбирает, валидирует
// и сохраняет заказ из сообщения.
type messageSaver interface {
	SaveFromMessage(ctx context.Context, raw []byte) error
}

// Consumer - обёртка над kafka.Reader: сообщение -> заказ в хранилище.
type Consumer struct {
	reader         reader
	service        messageSaver
	log            ports.Logger
	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	jitterRand     *rand.Rand
	closeOnce      sync.Once
}

// NewConsumer - конструктор. ReaderConfig() настроен на ручной коммит оффсетов.
func NewConsumer(cfg *ConsumerConfig, service messageSaver, log ports.Logger) *Consumer {
	c := cfg.withDefaults()

	return &Consumer{
		reader:         kafka.NewReader(c.ReaderConfig()),
		service:        service,
		log:            log,
		processTimeout: c.ProcessTimeout,
		retryInitial:   c.RetryInitial,
		retryMax:       c.RetryMax,
		// jitterRand - источник случайности, чтобы рассинхронизировать экспоненциальный backoff.
		jitterRand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run - основной цикл:
// 1) читаем сообщение без авто-коммита;
// 2) заказ сохранён -> CommitMessages;
// 3) невалидные данные или повтор заказа -> лог и CommitMessages (пропускаем навсегда);
// 4) временная ошибка -> без коммита повторяем то же сообщение с паузой,
//    пока оно не обработается или не отменится контекст (at-least-once).
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	// Экспоненциальный backoff на ошибках FetchMessage с equal-jitter
	retry := c.retryInitial

	for {
		// Читаем сообщение (без автокоммита)
		msg, fetchErr := c.reader.FetchMessage(ctx)
		if fetchErr != nil {
			// Если контекст отменен -> выходим
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Иначе - временная ошибка брокера/сети. Ожидаем и повторяем
			sleep := c.withJitterEqual(retry)
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", fetchErr, sleep)
			if !c.sleepWithBackoff(ctx, sleep) {
				return ctx.Err()
			}
			retry = c.nextBackoff(retry)
			continue
		}

		// Успешный FetchMessage -> сбрасываем интервал ожидания и инкрементим метрики
		retry = c.retryInitial
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if err := c.process(ctx, rc.Topic, &msg); err != nil {
			return err
		}
	}
}

// process доводит одно сообщение до коммита. Ошибка возвращается только
// при отмене контекста.
func (c *Consumer) process(ctx context.Context, topic string, msg *kafka.Message) error {
	msgCtx := ctxmeta.WithRequestID(ctx, messageID(msg))
	pause := c.retryInitial

	for {
		if c.handleMessage(msgCtx, topic, msg) {
			c.commitSafely(msgCtx, msg)
			return nil
		}
		// Пауза с джиттером после временной ошибки, чтобы разнести повторные
		// попытки во времени и снизить нагрузку на хранилище.
		if !c.sleepWithBackoff(ctx, c.withJitterEqual(pause)) {
			return ctx.Err()
		}
		pause = c.nextBackoff(pause)
	}
}

// Close - закрывает reader. Вызывается при остановке приложения.
func (c *Consumer) Close() (retErr error) {
	c.closeOnce.Do(func() {
		retErr = c.reader.Close()
	})
	return retErr
}
