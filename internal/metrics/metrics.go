// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the engine's prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	operationCounter  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	breakerTrips      prometheus.Counter

	totalAllocated  prometheus.Gauge
	totalDeposited  prometheus.Gauge
	accPerShare     prometheus.Gauge
	investmentsOpen prometheus.Gauge
}

// NewCollector creates a collector with a private registry.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.operationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchpool",
		Name:      "operations_total",
		Help:      "Engine operations by kind and status.",
	}, []string{"operation", "status"})

	c.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "launchpool",
		Name:      "operation_duration_seconds",
		Help:      "Engine operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	c.breakerTrips = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "launchpool",
		Name:      "breaker_trips_total",
		Help:      "Circuit breaker trips.",
	})

	c.totalAllocated = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "launchpool",
		Name:      "total_allocated_tokens",
		Help:      "Sum of all token quantities allocated via sales.",
	})

	c.totalDeposited = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "launchpool",
		Name:      "total_deposited_reward",
		Help:      "Running sum of deposited reward funds.",
	})

	c.accPerShare = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "launchpool",
		Name:      "accumulated_reward_per_share",
		Help:      "Accumulator value, PRECISION-scaled, as float64.",
	})

	c.investmentsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "launchpool",
		Name:      "open_investment_lots",
		Help:      "Lots neither claimed nor refunded.",
	})

	c.registry.MustRegister(
		c.operationCounter,
		c.operationDuration,
		c.breakerTrips,
		c.totalAllocated,
		c.totalDeposited,
		c.accPerShare,
		c.investmentsOpen,
	)
	return c
}

// RecordOperation records one engine operation outcome.
func (c *Collector) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	c.operationCounter.WithLabelValues(operation, status).Inc()
	c.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBreakerTrip counts a circuit breaker latch.
func (c *Collector) RecordBreakerTrip() {
	c.breakerTrips.Inc()
}

// UpdatePoolState refreshes the reward pool gauges.
func (c *Collector) UpdatePoolState(totalAllocated, totalDeposited, accPerShare float64) {
	c.totalAllocated.Set(totalAllocated)
	c.totalDeposited.Set(totalDeposited)
	c.accPerShare.Set(accPerShare)
}

// SetOpenLots refreshes the open lot gauge.
func (c *Collector) SetOpenLots(n int) {
	c.investmentsOpen.Set(float64(n))
}

// Handler exposes the registry for a /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
