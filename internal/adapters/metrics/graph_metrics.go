package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
)

// GraphMetricsCollector handles site graph construction metrics
type GraphMetricsCollector struct {
	buildDuration prometheus.Histogram
	links         *prometheus.GaugeVec
	oracleCalls   prometheus.Counter
	incomplete    prometheus.Counter
	cacheLookups  *prometheus.CounterVec
}

// NewGraphMetricsCollector creates a new site graph metrics collector
func NewGraphMetricsCollector() *GraphMetricsCollector {
	return &GraphMetricsCollector{
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_build_duration_seconds",
				Help:      "Site graph construction duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),

		links: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_links",
				Help:      "Links accepted by the last site graph build per phase",
			},
			[]string{"phase"},
		),

		oracleCalls: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_oracle_calls_total",
				Help:      "Path queries issued while building site graphs",
			},
		),

		incomplete: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_builds_incomplete_total",
				Help:      "Site graph builds whose densification ran out of budget",
			},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_cache_lookups_total",
				Help:      "Site graph cache lookups by tier and result",
			},
			[]string{"tier", "result"},
		),
	}
}

// Register registers all graph metrics with the Prometheus registry
func (c *GraphMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.buildDuration,
		c.links,
		c.oracleCalls,
		c.incomplete,
		c.cacheLookups,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordGraphBuild records the figures of one graph build
func (c *GraphMetricsCollector) RecordGraphBuild(report resource.GraphReport) {
	c.buildDuration.Observe(report.Elapsed.Seconds())
	c.links.WithLabelValues("nearest").Set(float64(report.Phase1Links))
	c.links.WithLabelValues("densify").Set(float64(report.Phase2Links))
	c.oracleCalls.Add(float64(report.OracleCalls))
	if !report.Completed {
		c.incomplete.Inc()
	}
}

// RecordGraphCacheLookup records one cache tier lookup
func (c *GraphMetricsCollector) RecordGraphCacheLookup(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(tier, result).Inc()
}
