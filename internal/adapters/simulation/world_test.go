package simulation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/simulation"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const (
	commander = shared.UnitID(1)
	extractor = shared.UnitTypeID(10)
	solar     = shared.UnitTypeID(20)
	factory   = shared.UnitTypeID(40)
)

func loadDuel(t *testing.T) *simulation.Scenario {
	t.Helper()
	s, err := simulation.LoadScenario("testdata/duel.yaml")
	require.NoError(t, err)
	return s
}

func startWorld(t *testing.T, s *simulation.Scenario) *simulation.World {
	t.Helper()
	w := simulation.NewWorld(s)
	w.Begin()
	return w
}

// stepUntil steps from frame first until an event of kind shows up and
// returns the batch holding it
func stepUntil(t *testing.T, w *simulation.World, first, limit shared.Frame, kind simulation.EventKind) []simulation.Event {
	t.Helper()
	for frame := first; frame < first+limit; frame++ {
		events := w.Step(frame)
		for _, e := range events {
			if e.Kind == kind {
				return events
			}
		}
	}
	t.Fatalf("no %s event within %d frames", kind, limit)
	return nil
}

func kinds(events []simulation.Event) []simulation.EventKind {
	out := make([]simulation.EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestWorld_BeginReportsStartingUnits(t *testing.T) {
	// Arrange
	w := simulation.NewWorld(loadDuel(t))

	// Act
	events := w.Begin()

	// Assert
	require.Len(t, events, 2)
	assert.Equal(t, []simulation.EventKind{simulation.EventCreated, simulation.EventFinished}, kinds(events))
	state, ok := w.Unit(commander)
	require.True(t, ok)
	assert.True(t, state.Own)
	assert.False(t, state.BeingBuilt)
	assert.Equal(t, 3000.0, state.MaxHealth)
}

func TestWorld_BuildRaisesAndFinishesAConstruction(t *testing.T) {
	// Arrange
	w := startWorld(t, loadDuel(t))
	site := shared.NewPosition(200, 100)
	w.Issue(commander, ports.Build(extractor, site, ports.NoFacing))

	// Act
	created := w.Step(0)

	// Assert
	require.Len(t, created, 1)
	assert.Equal(t, simulation.EventCreated, created[0].Kind)
	assert.Equal(t, extractor, created[0].Type)
	assert.Equal(t, site, created[0].Position)
	queue := w.Commands(commander)
	require.Len(t, queue, 1)
	assert.Equal(t, ports.CommandBuild, queue[0].Kind)

	// Act
	finished := stepUntil(t, w, 1, 1000, simulation.EventFinished)

	// Assert
	assert.Equal(t, []simulation.EventKind{simulation.EventFinished, simulation.EventIdle}, kinds(finished))
	assert.Equal(t, created[0].Unit, finished[0].Unit)
	assert.Equal(t, commander, finished[1].Unit)
	state, ok := w.Unit(created[0].Unit)
	require.True(t, ok)
	assert.False(t, state.BeingBuilt)
	assert.Equal(t, state.MaxHealth, state.Health)

	// Act
	w.Step(finished[0].Frame + 1)

	// Assert
	assert.InDelta(t, 12.0, w.Snapshot().Metal.Income, 1e-9)
	assert.Equal(t, 1, w.Stats().Finished)
}

func TestWorld_StopReportsIdleOnTheNextFrame(t *testing.T) {
	// Arrange
	w := startWorld(t, loadDuel(t))
	w.Issue(commander, ports.Wait())

	// Act
	waiting := w.Step(0)
	w.Issue(commander, ports.Stop())
	stopped := w.Step(1)

	// Assert
	assert.Empty(t, waiting)
	require.Len(t, stopped, 1)
	assert.Equal(t, simulation.EventIdle, stopped[0].Kind)
	assert.Equal(t, commander, stopped[0].Unit)
	assert.Equal(t, 1, w.Stats().Commands["stop"])
}

func TestWorld_BlockingFeatureFailsTheMove(t *testing.T) {
	// Arrange
	w := startWorld(t, loadDuel(t))
	w.Issue(commander, ports.Move(shared.NewPosition(100, 400)))

	// Act
	events := stepUntil(t, w, 0, 200, simulation.EventMoveFailed)

	// Assert
	assert.Equal(t, commander, events[0].Unit)
	assert.Empty(t, w.Commands(commander))
	assert.Equal(t, 1, w.Stats().MoveFailures)
	state, _ := w.Unit(commander)
	assert.Less(t, state.Position.Z, 165.0)
}

func TestWorld_MoveArrives(t *testing.T) {
	// Arrange
	w := startWorld(t, loadDuel(t))
	dest := shared.NewPosition(300, 100)
	w.Issue(commander, ports.Move(dest))

	// Act
	events := stepUntil(t, w, 0, 500, simulation.EventIdle)

	// Assert
	assert.Equal(t, commander, events[0].Unit)
	state, _ := w.Unit(commander)
	assert.InDelta(t, 8.0, state.Position.Distance2D(dest), 1e-6)
}

func TestWorld_ReclaimAreaEmptiesTheWreck(t *testing.T) {
	// Arrange
	w := startWorld(t, loadDuel(t))
	wreck := shared.NewPosition(150, 130)
	w.Issue(commander, ports.ReclaimArea(wreck, 40))

	// Act
	events := stepUntil(t, w, 0, 300, simulation.EventIdle)

	// Assert
	assert.Equal(t, commander, events[0].Unit)
	assert.InDelta(t, 200.0, w.Stats().MetalReclaimed, 1e-6)
	_, exists := w.Feature(1)
	assert.False(t, exists)
	_, rock := w.Feature(2)
	assert.True(t, rock)
}

func TestWorld_ResurrectRaisesAnOwnUnit(t *testing.T) {
	// Arrange
	w := startWorld(t, loadDuel(t))
	w.Issue(commander, ports.Resurrect(shared.NewPosition(700, 700), 50))

	// Act
	events := stepUntil(t, w, 0, 3000, simulation.EventCreated)

	// Assert
	require.Len(t, events, 2)
	assert.Equal(t, simulation.EventFinished, events[1].Kind)
	assert.Equal(t, shared.UnitTypeID(60), events[0].Type)
	state, ok := w.Unit(events[0].Unit)
	require.True(t, ok)
	assert.True(t, state.Own)
	_, exists := w.Feature(3)
	assert.False(t, exists)
}

func TestWorld_RaidDamagesAndDestroys(t *testing.T) {
	t.Run("damage", func(t *testing.T) {
		// Arrange
		s := loadDuel(t)
		s.Raids = []simulation.Raid{{Frame: 2, X: 100, Z: 100, Radius: 50, Damage: 100}}
		w := startWorld(t, s)

		// Act
		events := stepUntil(t, w, 0, 5, simulation.EventDamaged)

		// Assert
		assert.Equal(t, shared.Frame(2), events[0].Frame)
		state, _ := w.Unit(commander)
		assert.Equal(t, 2900.0, state.Health)
	})

	t.Run("destroy", func(t *testing.T) {
		// Arrange
		s := loadDuel(t)
		s.Raids = []simulation.Raid{{Frame: 0, X: 100, Z: 100, Radius: 50, Damage: 5000}}
		w := startWorld(t, s)

		// Act
		events := w.Step(0)

		// Assert
		require.Len(t, events, 1)
		assert.Equal(t, simulation.EventDestroyed, events[0].Kind)
		_, alive := w.Unit(commander)
		assert.False(t, alive)
		assert.Equal(t, 1, w.Stats().Destroyed)
	})
}

func TestWorld_EnemyStructures(t *testing.T) {
	setup := func(t *testing.T) (*simulation.World, shared.UnitID) {
		s := loadDuel(t)
		s.Enemies = []simulation.TimedUnit{{Frame: 0, Type: int(extractor), X: 300, Z: 100}}
		w := startWorld(t, s)
		events := w.Step(0)
		require.Len(t, events, 1)
		require.Equal(t, simulation.EventEnemySeen, events[0].Kind)
		return w, events[0].Unit
	}

	t.Run("reclaim", func(t *testing.T) {
		// Arrange
		w, enemy := setup(t)
		state, _ := w.Unit(enemy)
		require.False(t, state.Own)
		w.Issue(commander, ports.ReclaimUnit(enemy))

		// Act
		events := stepUntil(t, w, 1, 2000, simulation.EventEnemyDestroyed)

		// Assert
		assert.Equal(t, []simulation.EventKind{simulation.EventEnemyDestroyed, simulation.EventIdle}, kinds(events))
		assert.InDelta(t, 50.0, w.Stats().MetalReclaimed, 1e-6)
		_, exists := w.Unit(enemy)
		assert.False(t, exists)
	})

	t.Run("capture", func(t *testing.T) {
		// Arrange
		w, enemy := setup(t)
		w.Issue(commander, ports.Capture(enemy))

		// Act
		events := stepUntil(t, w, 1, 2000, simulation.EventEnemyDestroyed)

		// Assert
		assert.Equal(t, []simulation.EventKind{
			simulation.EventEnemyDestroyed, simulation.EventCreated, simulation.EventFinished, simulation.EventIdle,
		}, kinds(events))
		state, ok := w.Unit(enemy)
		require.True(t, ok)
		assert.True(t, state.Own)
	})
}

func TestWorld_Placement(t *testing.T) {
	// Arrange
	s := loadDuel(t)
	s.Units = append(s.Units, simulation.PlacedUnit{Type: int(factory), X: 500, Z: 500})
	w := startWorld(t, s)
	yard := shared.NewPosition(500, 500)

	// Act
	pos := w.ClosestBuildSite(solar, yard, 200, 2)

	// Assert
	require.True(t, pos.IsValid())
	assert.GreaterOrEqual(t, pos.Distance2D(yard), 32.0)
	assert.False(t, w.CanBuildAt(solar, yard))
	assert.True(t, w.CanBuildAt(solar, shared.NewPosition(600, 600)))
	assert.False(t, w.CanBuildAt(extractor, shared.NewPosition(600, 600)), "extractors need a metal site")
	assert.True(t, w.CanBuildAt(extractor, shared.NewPosition(300, 100)))
	assert.Equal(t, shared.InvalidPosition, w.ClosestBuildSite(extractor, shared.NewPosition(1000, 1000), 30, 0))
	assert.False(t, w.CanBuildAt(solar, shared.NewPosition(3000, 10)), "off the map")
}

func TestWorld_Terrain(t *testing.T) {
	// Arrange
	w := startWorld(t, loadDuel(t))
	base := shared.NewPosition(100, 100)

	// Act
	island := w.PathDistance(base, shared.NewPosition(1800, 1800), 0)
	mainland := w.PathDistance(base, shared.NewPosition(400, 400), 0)

	// Assert
	assert.Equal(t, 1, w.AreaOf(0, base))
	assert.Equal(t, 2, w.AreaOf(0, shared.NewPosition(1800, 1800)))
	assert.Equal(t, 0, w.AreaOf(0, shared.NewPosition(3000, 10)))
	assert.False(t, island.Found)
	require.True(t, mainland.Found)
	assert.InDelta(t, 424.264, mainland.Length(), 1e-3)
	require.Len(t, w.MovementClasses(), 1)
	assert.Equal(t, "tank", w.MovementClasses()[0].Name)
}

func TestWorld_AlliesAreSeenButNotOwned(t *testing.T) {
	// Arrange
	s := loadDuel(t)
	s.Allies = []simulation.PlacedUnit{{Type: int(extractor), X: 300, Z: 100}}
	w := startWorld(t, s)

	// Act
	allied := w.AlliedResourceUnits()

	// Assert
	require.Len(t, allied, 1)
	assert.Equal(t, extractor, allied[0].Type)
	state, ok := w.Unit(allied[0].ID)
	require.True(t, ok)
	assert.False(t, state.Own)
	assert.NotContains(t, w.OwnUnitsNear(shared.NewPosition(300, 100), 10), allied[0].ID)
}

func TestWorld_FeaturesNearAreSortedByDistance(t *testing.T) {
	// Arrange
	w := startWorld(t, loadDuel(t))

	// Act
	near := w.FeaturesNear(shared.NewPosition(100, 100), 100, 10)

	// Assert
	require.Len(t, near, 2)
	assert.Equal(t, 1, near[0].ID)
	assert.Equal(t, 2, near[1].ID)
	assert.Len(t, w.FeaturesNear(shared.NewPosition(100, 100), 100, 1), 1)
}
