package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
)

const (
	// Namespace for all metrics
	namespace = "skirmish"
	// Subsystem for economy metrics
	subsystem = "economy"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalSchedulerCollector is the singleton scheduler metrics collector
	// Set by SetGlobalSchedulerCollector() when metrics are enabled
	globalSchedulerCollector SchedulerMetricsRecorder

	// globalGraphCollector is the singleton site graph metrics collector
	// Set by SetGlobalGraphCollector() when metrics are enabled
	globalGraphCollector GraphMetricsRecorder
)

// SchedulerMetricsRecorder defines the interface for recording scheduling events
// This interface is used by application code to record metrics
type SchedulerMetricsRecorder interface {
	RecordBuilderAction(action string)
	RecordAttribution(outcome string)
	RecordInvariantViolation()
	RecordUpdate(phase string, durationSeconds float64)
}

// GraphMetricsRecorder defines the interface for recording site graph builds
type GraphMetricsRecorder interface {
	RecordGraphBuild(report resource.GraphReport)
	RecordGraphCacheLookup(tier string, hit bool)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalSchedulerCollector sets the global scheduler metrics collector
func SetGlobalSchedulerCollector(collector SchedulerMetricsRecorder) {
	globalSchedulerCollector = collector
}

// RecordBuilderAction records the outcome of an idle-builder decision globally
func RecordBuilderAction(action string) {
	if globalSchedulerCollector != nil {
		globalSchedulerCollector.RecordBuilderAction(action)
	}
}

// RecordAttribution records how a newly created unit was matched to an order
func RecordAttribution(outcome string) {
	if globalSchedulerCollector != nil {
		globalSchedulerCollector.RecordAttribution(outcome)
	}
}

// RecordInvariantViolation records a failed consistency check globally
func RecordInvariantViolation() {
	if globalSchedulerCollector != nil {
		globalSchedulerCollector.RecordInvariantViolation()
	}
}

// RecordUpdate records the duration of one periodic update phase
func RecordUpdate(phase string, durationSeconds float64) {
	if globalSchedulerCollector != nil {
		globalSchedulerCollector.RecordUpdate(phase, durationSeconds)
	}
}

// SetGlobalGraphCollector sets the global site graph metrics collector
func SetGlobalGraphCollector(collector GraphMetricsRecorder) {
	globalGraphCollector = collector
}

// RecordGraphBuild records a completed site graph build globally
func RecordGraphBuild(report resource.GraphReport) {
	if globalGraphCollector != nil {
		globalGraphCollector.RecordGraphBuild(report)
	}
}

// RecordGraphCacheLookup records a hit or miss of one graph cache tier
func RecordGraphCacheLookup(tier string, hit bool) {
	if globalGraphCollector != nil {
		globalGraphCollector.RecordGraphCacheLookup(tier, hit)
	}
}
