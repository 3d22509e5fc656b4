package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stocksense",
			Subsystem: "upstream",
			Name:      "latency_seconds",
			Help:      "Latency of calls to external dependencies",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "op"},
	)

	UpstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stocksense",
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Failed calls to external dependencies",
		},
		[]string{"service", "op"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(UpstreamLatency, UpstreamErrors)
	})
}

// Observe records one upstream call started at start. Use with defer:
//
//	defer func() { metrics.Observe("model", "predict", start, err) }()
func Observe(service, op string, start time.Time, err error) {
	Register()
	UpstreamLatency.WithLabelValues(service, op).Observe(time.Since(start).Seconds())
	if err != nil {
		UpstreamErrors.WithLabelValues(service, op).Inc()
	}
}
