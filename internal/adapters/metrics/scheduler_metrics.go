package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// SchedulerMetricsCollector handles build scheduling metrics. It also observes
// the build order ledger so order churn is counted where it happens.
type SchedulerMetricsCollector struct {
	builderActions      *prometheus.CounterVec
	ordersCreated       *prometheus.CounterVec
	ordersAssigned      prometheus.Counter
	ordersRemoved       *prometheus.CounterVec
	ordersQueued        *prometheus.GaugeVec
	attributions        *prometheus.CounterVec
	invariantViolations prometheus.Counter
	updateDuration      *prometheus.HistogramVec
}

// NewSchedulerMetricsCollector creates a new scheduler metrics collector
func NewSchedulerMetricsCollector() *SchedulerMetricsCollector {
	return &SchedulerMetricsCollector{
		builderActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "builder_actions_total",
				Help:      "Idle-builder decisions by resulting action",
			},
			[]string{"action"},
		),

		ordersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Build orders opened by kind and build list",
			},
			[]string{"kind", "category"},
		),

		ordersAssigned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_assigned_total",
				Help:      "Builder assignments to build orders",
			},
		),

		ordersRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_removed_total",
				Help:      "Build orders removed by kind and reason",
			},
			[]string{"kind", "reason"},
		),

		ordersQueued: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_queued",
				Help:      "Build orders currently in the ledger by kind",
			},
			[]string{"kind"},
		),

		attributions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "attributions_total",
				Help:      "New units matched to build orders by outcome",
			},
			[]string{"outcome"},
		),

		invariantViolations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invariant_violations_total",
				Help:      "Failed ledger consistency checks",
			},
		),

		updateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "update_duration_seconds",
				Help:      "Wall time spent in periodic update phases",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"phase"},
		),
	}
}

// Register registers all scheduler metrics with the Prometheus registry
func (c *SchedulerMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.builderActions,
		c.ordersCreated,
		c.ordersAssigned,
		c.ordersRemoved,
		c.ordersQueued,
		c.attributions,
		c.invariantViolations,
		c.updateDuration,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordBuilderAction counts one idle-builder decision
func (c *SchedulerMetricsCollector) RecordBuilderAction(action string) {
	c.builderActions.WithLabelValues(action).Inc()
}

// RecordAttribution counts one attribution outcome
func (c *SchedulerMetricsCollector) RecordAttribution(outcome string) {
	c.attributions.WithLabelValues(outcome).Inc()
}

// RecordInvariantViolation counts one failed consistency check
func (c *SchedulerMetricsCollector) RecordInvariantViolation() {
	c.invariantViolations.Inc()
}

// RecordUpdate observes one periodic update phase
func (c *SchedulerMetricsCollector) RecordUpdate(phase string, durationSeconds float64) {
	c.updateDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// OrderCreated implements build.Observer
func (c *SchedulerMetricsCollector) OrderCreated(order build.OrderView) {
	category := order.Category
	if category == "" {
		category = "none"
	}
	c.ordersCreated.WithLabelValues(order.Kind.String(), category).Inc()
	c.ordersQueued.WithLabelValues(order.Kind.String()).Inc()
}

// OrderAssigned implements build.Observer
func (c *SchedulerMetricsCollector) OrderAssigned(order build.OrderView, previous shared.UnitID) {
	if order.Builder.IsValid() {
		c.ordersAssigned.Inc()
	}
}

// OrderRemoved implements build.Observer
func (c *SchedulerMetricsCollector) OrderRemoved(order build.OrderView, reason build.RemovalReason) {
	c.ordersRemoved.WithLabelValues(order.Kind.String(), string(reason)).Inc()
	c.ordersQueued.WithLabelValues(order.Kind.String()).Dec()
}
