package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig - параметры подписки и обработки сообщений с заказами.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // first|last, регистр и пробелы не важны

	ProcessTimeout time.Duration // предел обработки одного сообщения
	RetryInitial   time.Duration // первая пауза после ошибки
	RetryMax       time.Duration // верхняя граница паузы
}

const (
	defaultProcessTimeout = 5 * time.Second
	defaultRetryInitial   = time.Second
	defaultRetryMax       = 30 * time.Second
)

// withDefaults возвращает копию с заполненными таймаутами. RetryMax не может
// быть меньше RetryInitial.
func (c *ConsumerConfig) withDefaults() ConsumerConfig {
	out := *c
	if out.ProcessTimeout <= 0 {
		out.ProcessTimeout = defaultProcessTimeout
	}
	if out.RetryInitial <= 0 {
		out.RetryInitial = defaultRetryInitial
	}
	if out.RetryMax <= 0 {
		out.RetryMax = defaultRetryMax
	}
	if out.RetryMax < out.RetryInitial {
		out.RetryMax = out.RetryInitial
	}
	return out
}

// ReaderConfig - конфигурация kafka.Reader с ручным коммитом оффсетов.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		CommitInterval: 0,
	}

	switch strings.ToLower(strings.TrimSpace(c.StartOffset)) {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	return rc
}
