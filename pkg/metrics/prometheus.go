package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	errorsTotal      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	forecastDuration *prometheus.HistogramVec
	forecastTickers  *prometheus.GaugeVec
	recommendations  *prometheus.CounterVec
	cacheResults     *prometheus.CounterVec
}

// New registers collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksense_errors_total",
				Help: "Errors by kind",
			},
			[]string{"kind"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocksense_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		forecastDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocksense_forecast_duration_seconds",
				Help:    "Duration of a full forecast rollout",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"universe"},
		),
		forecastTickers: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocksense_forecast_tickers",
				Help: "Tickers covered by the last forecast",
			},
			[]string{"universe"},
		),
		recommendations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksense_recommendations_total",
				Help: "Recommendations issued by action",
			},
			[]string{"action"},
		),
		cacheResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksense_cache_requests_total",
				Help: "Cache lookups by result",
			},
			[]string{"cache", "result"},
		),
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordForecast(universeVersion string, tickers int, seconds float64) {
	r.forecastDuration.WithLabelValues(universeVersion).Observe(seconds)
	r.forecastTickers.WithLabelValues(universeVersion).Set(float64(tickers))
}

func (r *Recorder) RecordRecommendation(action string) {
	r.recommendations.WithLabelValues(action).Inc()
}

func (r *Recorder) RecordCacheResult(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheResults.WithLabelValues(cache, result).Inc()
}
