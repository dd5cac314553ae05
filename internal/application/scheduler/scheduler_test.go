package scheduler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/scheduler"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

func TestBuilderIdle_QueuesOrdersAndBuildsOnNearestSite(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 1, 100)

	// Assert - one order per builder plus one, the under-quota extractor list first
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionBuild, action)
	assert.Equal(t, 2, env.ledger.Len())
	assert.Equal(t, 1, env.ledger.Count(build.MetalOrder))
	assert.Equal(t, 1, env.ledger.Count(build.EnergyOrder))

	o, ok := env.ledger.OrderOf(1)
	require.True(t, ok)
	assert.Equal(t, extractor, o.UnitType())
	site, ok := o.Site()
	require.True(t, ok)
	assert.Equal(t, 0, site)

	last := env.world.last()
	assert.Equal(t, shared.UnitID(1), last.unit)
	assert.Equal(t, ports.CommandBuild, last.cmd.Kind)
	assert.Equal(t, extractor, last.cmd.UnitType)
	assert.Equal(t, shared.NewPosition(100, 0), last.cmd.Position)
	require.NoError(t, env.ledger.CheckInvariants())
}

func TestBuilderIdle_ResumesStartedConstruction(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	h := env.assignOrder(t, solar, 1)
	require.NoError(t, env.ledger.AttachSpawn(h, 500))
	env.world.units[500] = ports.UnitState{ID: 500, Type: solar, Health: 10, MaxHealth: 100, BeingBuilt: true, Own: true}

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 1, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionResume, action)
	assert.Equal(t, ports.Repair(500), env.world.last().cmd)
	o, _ := env.ledger.OrderOf(1)
	assert.Equal(t, 0, o.Retries())
}

func TestBuilderIdle_DropsOrderAfterTooManyFailedAttempts(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	h := env.assignOrder(t, solar, 1)

	// Act - four attempts are tolerated
	for frame := shared.Frame(10); frame <= 40; frame += 10 {
		action, err := env.sched.BuilderIdle(context.Background(), 1, frame)
		require.NoError(t, err)
		assert.Equal(t, scheduler.ActionBuild, action)
	}
	_, err := env.sched.BuilderIdle(context.Background(), 1, 50)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, env.removed.reasons, build.RemovalRetries)
	_, live := env.ledger.Get(h)
	assert.False(t, live)
}

func TestBuilderIdle_ExpiresStaleUnassignedOrders(t *testing.T) {
	// Arrange - an order nobody picked up, past its lease
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	stale, err := env.ledger.Create(solar, nil, build.GeneralOrder, 0)
	require.NoError(t, err)

	// Act
	_, err = env.sched.BuilderIdle(context.Background(), 1, 5000)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, env.removed.reasons, build.RemovalExpired)
	_, live := env.ledger.Get(stale)
	assert.False(t, live)
}

func TestBuilderIdle_RepairQueueComesFirst(t *testing.T) {
	// Arrange - 77 is gone, 78 is damaged
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	env.assignOrder(t, solar, 1)
	env.world.units[78] = ports.UnitState{ID: 78, Type: tank, Health: 50, MaxHealth: 100, Own: true}
	require.True(t, env.roster.QueueRepair(1, 77))
	require.True(t, env.roster.QueueRepair(1, 78))

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 1, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionRepair, action)
	assert.Equal(t, ports.Repair(78), env.world.last().cmd)
	assert.Equal(t, []shared.UnitID{78}, env.roster.Repairs(1))
}

func TestBuilderIdle_EnemyOnTheSiteIsReclaimed(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	env.assignOrder(t, extractor, 1)
	builder, ok := env.registry.EnemyResourceSeen(900, extractor, shared.NewPosition(100, 0))
	require.True(t, ok)
	require.Equal(t, shared.UnitID(1), builder)

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 1, 100)

	// Assert - the commander cannot capture, so it reclaims
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionReclaimUnit, action)
	assert.Equal(t, ports.ReclaimUnit(900), env.world.last().cmd)
}

func TestContestSite_UnassignsBuildersThatCannotFight(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 2, constructor, shared.NewPosition(0, 0))
	h := env.assignOrder(t, extractor, 2)

	// Act
	action, err := env.sched.ContestSite(context.Background(), 2, 900, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionOrderUnassigned, action)
	o, ok := env.ledger.Get(h)
	require.True(t, ok)
	assert.False(t, o.HasBuilder())
}

func TestBuilderIdle_UnplaceableOrderLosesItsBuilder(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	h := env.assignOrder(t, solar, 1)
	env.world.blocked[solar] = true

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 1, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionOrderUnassigned, action)
	o, ok := env.ledger.Get(h)
	require.True(t, ok)
	assert.False(t, o.HasBuilder())
	at, pending := env.sched.Rechecks().Pending(1)
	require.True(t, pending)
	assert.Equal(t, scheduler.Now, at)
}

func TestBuilderIdle_UnreachableSiteOpensNoExtractorOrders(t *testing.T) {
	// Arrange - the only metal site lies in another terrain area
	env := newTestEnvWithSites(t, zeroRandom(), 300)
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	env.world.split = true
	env.world.splitX = 250

	// Act
	for frame := shared.Frame(100); frame <= 400; frame += 15 {
		_, err := env.sched.BuilderIdle(context.Background(), 1, frame)
		require.NoError(t, err)
	}

	// Assert
	assert.NotContains(t, env.removed.reasons, build.RemovalInfeasible)
	for _, o := range env.ledger.Orders() {
		assert.NotEqual(t, extractor, o.UnitType())
	}
	assert.True(t, env.catalog.Enabled(extractor))
	require.NoError(t, env.ledger.CheckInvariants())
}

func TestBuilderIdle_OrderFillingTheLastSiteIsKeptWhenUnplaceable(t *testing.T) {
	// Arrange - the order alone makes its type unit-limited
	env := newTestEnvWithSites(t, zeroRandom(), 300)
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	env.world.split = true
	env.world.splitX = 250
	h := env.assignOrder(t, extractor, 1)
	require.False(t, env.catalog.Enabled(extractor))

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 1, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionOrderUnassigned, action)
	assert.NotContains(t, env.removed.reasons, build.RemovalInfeasible)
	o, ok := env.ledger.Get(h)
	require.True(t, ok)
	assert.False(t, o.HasBuilder())
}

func TestBuilderIdle_UnreachableOrderIsNotClaimed(t *testing.T) {
	// Arrange
	env := newTestEnvWithSites(t, zeroRandom(), 300)
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	env.world.split = true
	env.world.splitX = 250
	h, err := env.ledger.Create(extractor, nil, build.MetalOrder, 0)
	require.NoError(t, err)

	// Act
	_, err = env.sched.BuilderIdle(context.Background(), 1, 100)

	// Assert
	require.NoError(t, err)
	held, ok := env.ledger.OrderOf(1)
	require.True(t, ok)
	assert.NotEqual(t, h, held.Handle())
	o, ok := env.ledger.Get(h)
	require.True(t, ok)
	assert.False(t, o.HasBuilder())
}

func TestBuilderIdle_MobileBuilderWithoutWorkWaits(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 7, engineer, shared.NewPosition(0, 0))

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 7, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionWait, action)
	assert.Equal(t, ports.CommandWait, env.world.last().cmd.Kind)
	at, pending := env.sched.Rechecks().Pending(7)
	require.True(t, pending)
	assert.Equal(t, shared.Frame(700), at)
}

func TestBuilderIdle_AssistsTheNearestReachableBuilder(t *testing.T) {
	tests := []struct {
		name     string
		split    bool
		expected shared.UnitID
	}{
		{name: "nearest", split: false, expected: 2},
		{name: "nearest is across water", split: true, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t, zeroRandom())
			env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
			env.addUnit(t, 2, constructor, shared.NewPosition(500, 0))
			env.addUnit(t, 7, engineer, shared.NewPosition(400, 0))
			env.assignOrder(t, solar, 1)
			env.assignOrder(t, solar, 2)
			env.world.split = tt.split
			env.world.splitX = 450

			// Act
			action, err := env.sched.BuilderIdle(context.Background(), 7, 100)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, scheduler.ActionAssist, action)
			assert.Equal(t, ports.Guard(tt.expected), env.world.last().cmd)
			at, _ := env.sched.Rechecks().Pending(7)
			assert.Equal(t, shared.Frame(700), at)
		})
	}
}

func TestBuilderIdle_ResurrectsTheNearestWreck(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 8, salvager, shared.NewPosition(0, 0))
	env.world.features[5] = ports.Feature{ID: 5, Position: shared.NewPosition(300, 0), Metal: 10, Reclaimable: true, Resurrectable: true}
	env.world.features[9] = ports.Feature{ID: 9, Position: shared.NewPosition(100, 0), Metal: 10, Reclaimable: true, Resurrectable: true}

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 8, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionResurrect, action)
	assert.Equal(t, ports.Resurrect(shared.NewPosition(100, 0), 25), env.world.last().cmd)
	at, _ := env.sched.Rechecks().Pending(8)
	assert.Equal(t, shared.Frame(100+1500+3000), at)
}

func TestBuilderIdle_ReclaimsMetalWhenShort(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 8, salvager, shared.NewPosition(0, 0))
	env.world.snapshot.Metal.Stock = 50
	env.world.features[3] = ports.Feature{ID: 3, Position: shared.NewPosition(200, 0), Metal: 100, Reclaimable: true}

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 8, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionReclaimMetal, action)
	assert.Equal(t, ports.ReclaimArea(shared.NewPosition(200, 0), 25), env.world.last().cmd)
}

func TestBuilderIdle_ReclaimsDecommissionedStructures(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 8, salvager, shared.NewPosition(0, 0))
	env.addUnit(t, 300, extractor, shared.NewPosition(50, 0))
	env.roster.Decommission(301)
	env.roster.Decommission(300)

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 8, 100)

	// Assert - 301 no longer exists and is dropped
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionReclaimUnit, action)
	assert.Equal(t, ports.ReclaimUnit(300), env.world.last().cmd)
	assert.Equal(t, []shared.UnitID{300}, env.roster.Decommissioned())
}

func TestMoveFailed_ObstacleIsClearedByAReclaimer(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 7, engineer, shared.NewPosition(10, 0))
	env.addUnit(t, 8, salvager, shared.NewPosition(0, 0))
	env.world.features[4] = ports.Feature{ID: 4, Position: shared.NewPosition(20, 0), Reclaimable: true}

	// Act
	handled := env.sched.MoveFailed(context.Background(), 7, 100)
	action, err := env.sched.BuilderIdle(context.Background(), 8, 110)

	// Assert
	assert.False(t, handled)
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionClearObstacle, action)
	assert.Equal(t, ports.ReclaimArea(shared.NewPosition(10, 0), 80), env.world.last().cmd)
}

func TestMoveFailed_ReclaimerClearsItsOwnWay(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 8, salvager, shared.NewPosition(0, 0))
	env.world.features[4] = ports.Feature{ID: 4, Position: shared.NewPosition(30, 0), Reclaimable: true}

	// Act
	handled := env.sched.MoveFailed(context.Background(), 8, 100)

	// Assert
	assert.True(t, handled)
	assert.Equal(t, ports.ReclaimArea(shared.NewPosition(0, 0), 90), env.world.last().cmd)
	at, _ := env.sched.Rechecks().Pending(8)
	assert.Equal(t, shared.Frame(1300), at)
}

func TestBuilderIdle_ImmobileBuilderFallsBackToItsOwnPosition(t *testing.T) {
	// Arrange - only the tank list is reachable from a lone yard
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 9, yard, shared.NewPosition(0, 0))

	// Act
	action, err := env.sched.BuilderIdle(context.Background(), 9, 100)

	// Assert - zero jitter pushes the anchor off the map, so the yard drops the tank at its own position
	require.NoError(t, err)
	assert.Equal(t, scheduler.ActionBuild, action)
	o, ok := env.ledger.OrderOf(9)
	require.True(t, ok)
	assert.Equal(t, tank, o.UnitType())
	assert.Equal(t, ports.Build(tank, shared.NewPosition(0, 0), ports.NoFacing), env.world.last().cmd)
}

func TestBuilderIdle_MilitaryFallbackNeedsGroundAtTheBuilder(t *testing.T) {
	tests := []struct {
		name       string
		impassable bool
		wantTank   bool
	}{
		{name: "open ground makes a tank", wantTank: true},
		{name: "tanks cannot stand at the yard", impassable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange - the ledger is full of solar orders the yard cannot build
			env := newTestEnv(t, zeroRandom())
			env.addUnit(t, 9, yard, shared.NewPosition(0, 0))
			for i := 0; i < 2; i++ {
				_, err := env.ledger.Create(solar, nil, build.GeneralOrder, 0)
				require.NoError(t, err)
			}
			env.world.impassable[0] = tt.impassable

			// Act
			action, err := env.sched.BuilderIdle(context.Background(), 9, 100)

			// Assert
			require.NoError(t, err)
			o, ok := env.ledger.OrderOf(9)
			if !tt.wantTank {
				assert.False(t, ok)
				assert.Equal(t, 2, env.ledger.Len())
				assert.Equal(t, scheduler.ActionWait, action)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tank, o.UnitType())
			assert.Equal(t, build.GeneralOrder, o.Kind())
		})
	}
}

func TestBuilderIdle_ReleasedBuilderKeepsItsUpkeepInTheForecast(t *testing.T) {
	tests := []struct {
		name      string
		activated bool
		cloaked   bool
		wantTank  bool
	}{
		{name: "a switched off builder frees all of its usage", wantTank: true},
		{name: "upkeep and cloak keep burning", activated: true, cloaked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange - the military fallback only fires once the infiltrator's build drain is discounted
			env := newTestEnv(t, zeroRandom())
			env.addUnit(t, 9, yard, shared.NewPosition(0, 0))
			env.world.snapshot.Energy = economy.ResourceState{Stock: 1000, Income: 50, Usage: 100, Storage: 1000}
			env.world.units[7] = ports.UnitState{ID: 7, Type: infiltrator, Position: shared.NewPosition(50, 0),
				Health: 100, MaxHealth: 100, Own: true, EnergyUse: 80, Activated: tt.activated, Cloaked: tt.cloaked}

			released, err := env.ledger.Create(solar, nil, build.GeneralOrder, 0)
			require.NoError(t, err)
			require.NoError(t, env.ledger.AssignBuilder(released, build.BuilderRef{ID: 7, Position: shared.NewPosition(50, 0)}, 0))
			_, err = env.ledger.Remove(released, 90, build.RemovalRetries)
			require.NoError(t, err)
			for i := 0; i < 2; i++ {
				_, err := env.ledger.Create(solar, nil, build.GeneralOrder, 90)
				require.NoError(t, err)
			}

			// Act
			_, err = env.sched.BuilderIdle(context.Background(), 9, 100)

			// Assert
			require.NoError(t, err)
			o, ok := env.ledger.OrderOf(9)
			if !tt.wantTank {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tank, o.UnitType())
		})
	}
}

func TestBuilderDestroyed_ReleasesTheOrder(t *testing.T) {
	// Arrange
	env := newTestEnv(t, zeroRandom())
	env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
	h := env.assignOrder(t, extractor, 1)
	env.sched.Rechecks().Schedule(1, 500)

	// Act
	env.sched.BuilderDestroyed(context.Background(), 1, commander, 200)

	// Assert
	o, ok := env.ledger.Get(h)
	require.True(t, ok)
	assert.False(t, o.HasBuilder())
	_, site := o.Site()
	assert.False(t, site)
	_, pending := env.sched.Rechecks().Pending(1)
	assert.False(t, pending)
}

func TestBuilderIdle_SameSeedSameDecisions(t *testing.T) {
	run := func() []issuedCommand {
		env := newTestEnv(t, shared.NewSeededRandom(42))
		env.addUnit(t, 1, commander, shared.NewPosition(0, 0))
		env.addUnit(t, 2, constructor, shared.NewPosition(50, 0))
		env.addUnit(t, 3, constructor, shared.NewPosition(-50, 0))
		for frame := shared.Frame(100); frame <= 300; frame += 100 {
			for _, id := range []shared.UnitID{1, 2, 3} {
				_, err := env.sched.BuilderIdle(context.Background(), id, frame)
				require.NoError(t, err)
			}
		}
		require.NoError(t, env.ledger.CheckInvariants())
		return env.world.issued
	}

	assert.Equal(t, run(), run())
}

func TestBuilderIdle_RejectsUnknownUnits(t *testing.T) {
	env := newTestEnv(t, zeroRandom())

	_, err := env.sched.BuilderIdle(context.Background(), 42, 100)

	assert.Error(t, err)
}
