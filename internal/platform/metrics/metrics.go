// Package metrics registers the Prometheus collectors shared by the features.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	externalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trader",
			Name:      "external_api_calls_total",
			Help:      "Calls to third-party market and news APIs",
		},
		[]string{"provider", "outcome"},
	)
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trader",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)
	backtestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trader",
			Name:      "backtest_runs_total",
			Help:      "Completed sentiment strategy backtests",
		},
		[]string{"signals"},
	)
	backtestTrades = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trader",
			Name:      "backtest_transactions",
			Help:      "Number of transactions produced per backtest",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
	)
	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trader",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveExternalCall records the outcome ("ok" or "error") of a provider call.
func ObserveExternalCall(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	externalCalls.WithLabelValues(provider, outcome).Inc()
}

// ObserveCache records a cache hit or miss.
func ObserveCache(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(namespace, result).Inc()
}

func ObserveBacktest(signals string, transactions int) {
	backtestRuns.WithLabelValues(signals).Inc()
	backtestTrades.Observe(float64(transactions))
}

func ObserveHTTP(method, route, status string, seconds float64) {
	httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
