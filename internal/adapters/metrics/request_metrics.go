package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
)

// requestBuckets spans store lookups of a few milliseconds up to realtime
// matches of several minutes
var requestBuckets = []float64{0.005, 0.05, 0.25, 1, 2.5, 10, 30, 120, 600}

// RequestMetricsCollector times the commands and queries the CLI dispatches
// through the mediator
type RequestMetricsCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	inFlight prometheus.Gauge
}

func NewRequestMetricsCollector() *RequestMetricsCollector {
	return &RequestMetricsCollector{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Wall-clock time of match runs, graph builds and journal queries",
				Buckets:   requestBuckets,
			},
			[]string{"kind", "request", "status"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Mediator requests handled, by kind, name and status",
			},
			[]string{"kind", "request", "status"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_in_flight",
			Help:      "Mediator requests still running",
		}),
	}
}

// Register is a no-op until InitRegistry has run
func (c *RequestMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{c.duration, c.total, c.inFlight} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordRequest books one finished request
func (c *RequestMetricsCollector) RecordRequest(kind, name string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.duration.WithLabelValues(kind, name, status).Observe(seconds)
	c.total.WithLabelValues(kind, name, status).Inc()
}

// PrometheusMiddleware times every request passing through the mediator. A nil
// collector turns it into a pass-through.
func PrometheusMiddleware(collector *RequestMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		kind, name := describeRequest(request)
		collector.inFlight.Inc()
		defer collector.inFlight.Dec()

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordRequest(kind, name, time.Since(start).Seconds(), err)
		return response, err
	}
}

// describeRequest splits "*commands.RunMatchCommand" into ("command", "RunMatchCommand")
func describeRequest(request common.Request) (string, string) {
	if request == nil {
		return "unknown", "UnknownRequest"
	}
	full := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	pkg, name, found := strings.Cut(full, ".")
	if !found {
		return "unknown", full
	}
	switch {
	case strings.HasSuffix(name, "Query") || strings.HasSuffix(pkg, "queries"):
		return "query", name
	case strings.HasSuffix(name, "Command") || strings.HasSuffix(pkg, "commands"):
		return "command", name
	default:
		return "unknown", name
	}
}
