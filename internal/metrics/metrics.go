package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat pipeline metrics for production monitoring
var (
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zabbix_chat_requests_total",
			Help: "Total number of chat messages processed",
		},
		[]string{"outcome"}, // answered/declined/degraded/invalid
	)

	ChatRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zabbix_chat_request_duration_seconds",
			Help:    "End-to-end chat request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)

	// Data-fetch metrics
	SQLQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zabbix_chat_sql_queries_total",
			Help: "Total number of SQL operations executed",
		},
		[]string{"operation", "status"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zabbix_chat_cache_hits_total",
			Help: "Total number of cache hits during plan execution",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zabbix_chat_cache_misses_total",
			Help: "Total number of cache misses during plan execution",
		},
	)

	// LLM metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zabbix_chat_llm_requests_total",
			Help: "Total number of completion-service requests",
		},
		[]string{"model", "status"},
	)

	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zabbix_chat_llm_request_duration_seconds",
			Help:    "Completion-service request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1min
		},
	)
)
