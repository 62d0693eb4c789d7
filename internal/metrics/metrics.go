package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	LogEntriesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_log_entries_total",
			Help: "Total number of warning and error log entries by level.",
		},
		[]string{"level"},
	)
	APIRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_api_requests_total",
			Help: "Total number of requests sent to the job search API.",
		},
		[]string{"endpoint", "status"},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobfinder_api_request_duration_seconds",
			Help:    "Duration of job search API requests in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
	CacheLookupsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfinder_cache_lookups_total",
			Help: "Total number of query cache lookups by result.",
		},
		[]string{"result"},
	)
	FavoritesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobfinder_favorites",
			Help: "Number of jobs stored in favorites.",
		},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(LogEntriesCounter)
		prometheus.MustRegister(APIRequestsCounter)
		prometheus.MustRegister(APIRequestDuration)
		prometheus.MustRegister(CacheLookupsCounter)
		prometheus.MustRegister(FavoritesGauge)
	})
}
