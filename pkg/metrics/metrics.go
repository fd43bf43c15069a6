package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of order messages stored successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_skipped_total",
			Help: "Number of messages committed without storing (invalid or duplicate)",
		},
		[]string{"topic", "reason"}, // invalid|duplicate
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
)

var (
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_cache_lookups_total",
			Help: "Order cache lookups by result",
		},
		[]string{"result"}, // hit|miss|error
	)
	CachePopulations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_cache_populations_total",
			Help: "Background cache populations after a store read",
		},
		[]string{"result"}, // ok|error
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "order_cache_size",
			Help: "Number of orders currently in the in-memory cache",
		},
	)
)

var StoreOpDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "order_store_operation_duration_seconds",
		Help:    "Duration of order store operations",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op", "result"}, // result: ok|not_found|error
)

var registerOnce sync.Once

// MustRegister регистрирует метрики в prometheus.DefaultRegisterer один раз за процесс.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesSkipped, KafkaMessagesFailed,
			CacheLookups, CachePopulations, CacheSize,
			StoreOpDuration,
		)
	})
}
