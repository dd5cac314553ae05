package simulation_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/simulation"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// orderLog keeps the created orders in creation order
type orderLog struct {
	created []build.OrderView
}

func (l *orderLog) OrderCreated(v build.OrderView)                    { l.created = append(l.created, v) }
func (l *orderLog) OrderAssigned(build.OrderView, shared.UnitID)      {}
func (l *orderLog) OrderRemoved(build.OrderView, build.RemovalReason) {}

func (l *orderLog) firstOf(kind build.OrderKind) int {
	for i, v := range l.created {
		if v.Kind == kind {
			return i
		}
	}
	return -1
}

func TestRunner_EveryBuildListReachesItsQuotaAndKeepsIt(t *testing.T) {
	// Arrange
	log := &orderLog{}
	w, bot, counter := newMatch(t, log)
	catalog := bot.Catalog()

	reached := make(map[string]shared.Frame)
	var drops []string
	runner := simulation.NewRunner(w, bot, nil)
	runner.OnFrame = func(frame shared.Frame) {
		for _, cat := range catalog.Categories() {
			if cat.Min() == 0 {
				continue
			}
			if at, ok := reached[cat.Name()]; ok {
				if cat.Active() < cat.Min() && len(drops) < 5 {
					drops = append(drops, fmt.Sprintf("%s at frame %d, quota met at %d", cat, frame, at))
				}
				continue
			}
			finished := 0
			for _, t := range cat.Types() {
				finished += catalog.Finished(t)
			}
			if finished >= cat.Min() {
				reached[cat.Name()] = frame
			}
		}
	}

	// Act
	_, err := runner.Run(context.Background(), 15000)

	// Assert
	require.NoError(t, err)
	for _, name := range []string{"extractors", "energy", "builders"} {
		assert.Contains(t, reached, name, "%s never finished its quota", name)
	}
	assert.Empty(t, drops)
	assert.Less(t, counter.removed[build.RemovalInfeasible], 20)
	assert.NoError(t, bot.Ledger().CheckInvariants())
}

func TestRunner_ProducersAreOrderedBeforeTheFirstBuilder(t *testing.T) {
	// Arrange
	log := &orderLog{}
	w, bot, _ := newMatch(t, log)

	// Act
	_, err := simulation.NewRunner(w, bot, nil).Run(context.Background(), 6000)

	// Assert - the commander asks for an extractor and a solar before it commits to a factory
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(log.created), 3)
	assert.Equal(t, build.MetalOrder, log.created[0].Kind)
	assert.Equal(t, build.EnergyOrder, log.created[1].Kind)

	firstBuilder := log.firstOf(build.BuilderOrder)
	require.GreaterOrEqual(t, firstBuilder, 0, "no builder was ever ordered")
	assert.Greater(t, firstBuilder, log.firstOf(build.MetalOrder))
	assert.Greater(t, firstBuilder, log.firstOf(build.EnergyOrder))
}
