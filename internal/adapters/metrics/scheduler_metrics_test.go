package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
)

func withRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	metrics.InitRegistry()
	t.Cleanup(func() {
		metrics.Registry = nil
		metrics.SetGlobalSchedulerCollector(nil)
		metrics.SetGlobalGraphCollector(nil)
	})
	return metrics.GetRegistry()
}

func TestSchedulerMetricsCollector_TracksLedgerChurn(t *testing.T) {
	// Arrange
	reg := withRegistry(t)
	collector := metrics.NewSchedulerMetricsCollector()
	require.NoError(t, collector.Register())
	view := build.OrderView{UnitType: 10, Category: "extractors", Kind: build.MetalOrder}

	// Act
	collector.OrderCreated(view)
	collector.OrderCreated(view)
	collector.OrderRemoved(view, build.RemovalExpired)

	// Assert
	count, err := testutil.GatherAndCount(reg, "skirmish_economy_orders_created_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "skirmish_economy_orders_queued" {
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestRecordBuilderAction_IsANoOpWithoutCollector(t *testing.T) {
	metrics.SetGlobalSchedulerCollector(nil)

	assert.NotPanics(t, func() {
		metrics.RecordBuilderAction("wait")
		metrics.RecordAttribution("matched")
		metrics.RecordGraphCacheLookup("memory", true)
	})
}

func TestRecordBuilderAction_ReachesTheGlobalCollector(t *testing.T) {
	// Arrange
	reg := withRegistry(t)
	collector := metrics.NewSchedulerMetricsCollector()
	require.NoError(t, collector.Register())
	metrics.SetGlobalSchedulerCollector(collector)

	// Act
	metrics.RecordBuilderAction("build")
	metrics.RecordBuilderAction("build")
	metrics.RecordBuilderAction("wait")

	// Assert
	count, err := testutil.GatherAndCount(reg, "skirmish_economy_builder_actions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGraphMetricsCollector_SplitsCacheLookupsByResult(t *testing.T) {
	// Arrange
	reg := withRegistry(t)
	collector := metrics.NewGraphMetricsCollector()
	require.NoError(t, collector.Register())
	metrics.SetGlobalGraphCollector(collector)

	// Act
	metrics.RecordGraphBuild(resource.GraphReport{Phase1Links: 12, Phase2Links: 3, OracleCalls: 40, Completed: false})
	metrics.RecordGraphCacheLookup("disk", false)
	metrics.RecordGraphCacheLookup("disk", true)
	metrics.RecordGraphCacheLookup("disk", true)

	// Assert
	count, err := testutil.GatherAndCount(reg, "skirmish_economy_graph_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	links, err := testutil.GatherAndCount(reg, "skirmish_economy_graph_links")
	require.NoError(t, err)
	assert.Equal(t, 2, links)
}
