package corkboard

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the request pipeline:
// physical requests, throttling, backoff and call outcomes. It is safe for
// concurrent use and every method is a no-op on a nil receiver.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal *prometheus.CounterVec

	waitsTotal       *prometheus.CounterVec
	throttleRejected *prometheus.CounterVec
	backoffUnits     prometheus.Gauge

	outcomesTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(registry)
	mc := &MetricsCollector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corkboard_requests_total",
				Help: "Total number of physical HTTP requests sent",
			},
			[]string{"endpoint", "status_code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corkboard_request_duration_seconds",
				Help:    "Duration of physical HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status_code"},
		),
		requestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "corkboard_calls_in_flight",
				Help: "Number of logical calls not yet resolved",
			},
			[]string{"endpoint"},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corkboard_retries_total",
				Help: "Total number of backoff retries sent after a 429",
			},
			[]string{"endpoint", "attempt"},
		),
		waitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corkboard_waits_total",
				Help: "Total number of waits imposed on callers",
			},
			[]string{"endpoint", "reason"},
		),
		throttleRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corkboard_throttle_rejections_total",
				Help: "Total number of calls rejected for being issued too soon",
			},
			[]string{"endpoint"},
		),
		backoffUnits: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "corkboard_backoff_units",
				Help: "Current value of the 429 backoff scalar",
			},
		),
		outcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corkboard_outcomes_total",
				Help: "Total number of successful calls by outcome kind",
			},
			[]string{"endpoint", "kind"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corkboard_errors_total",
				Help: "Total number of calls resolved with an error, by type",
			},
			[]string{"type", "endpoint"},
		),
	}
	if reg, ok := registry.(*prometheus.Registry); ok {
		mc.registry = reg
	}

	return mc
}

// RecordRequest records one physical request.
func (mc *MetricsCollector) RecordRequest(endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(endpoint, statusCodeStr).Inc()
	mc.requestDuration.WithLabelValues(endpoint, statusCodeStr).Observe(duration.Seconds())
}

// RecordCallStart increments in-flight gauge.
func (mc *MetricsCollector) RecordCallStart(endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(endpoint).Inc()
}

// RecordCallEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordCallEnd(endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(endpoint).Dec()
}

// RecordRetry increments retry counter for an attempt.
func (mc *MetricsCollector) RecordRetry(endpoint string, attempt int) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordWait counts a deferred admission or a backoff wait.
func (mc *MetricsCollector) RecordWait(endpoint string, reason WaitReason) {
	if mc == nil {
		return
	}

	mc.waitsTotal.WithLabelValues(endpoint, reason.String()).Inc()
}

// RecordThrottleRejection counts a TooSoon rejection.
func (mc *MetricsCollector) RecordThrottleRejection(endpoint string) {
	if mc == nil {
		return
	}

	mc.throttleRejected.WithLabelValues(endpoint).Inc()
}

// RecordBackoffUnits sets the backoff gauge.
func (mc *MetricsCollector) RecordBackoffUnits(units float64) {
	if mc == nil {
		return
	}

	mc.backoffUnits.Set(units)
}

// RecordOutcome counts a successful call.
func (mc *MetricsCollector) RecordOutcome(endpoint string, kind OutcomeKind) {
	if mc == nil {
		return
	}

	mc.outcomesTotal.WithLabelValues(endpoint, kind.String()).Inc()
}

// RecordError increments error counter by type.
func (mc *MetricsCollector) RecordError(errorType, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// GetRegistry exposes the underlying prometheus registry, or nil when the
// collector was built on a plain Registerer.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	if mc == nil {
		return nil
	}
	return mc.registry
}
