package fleet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/fleet"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

var (
	constructor = build.UnitType{ID: 50, Name: "constructor", BuildSpeed: 10, BuildDistance: 100, Speed: 2, MovementClass: 0, BuildOptions: []shared.UnitTypeID{20}}
	solar       = build.UnitType{ID: 20, Name: "solar", MovementClass: -1}
)

func TestRoster_ListsMembersByAscendingID(t *testing.T) {
	// Arrange
	r := fleet.NewRoster()
	r.Add(30, constructor, 0, false)
	r.Add(10, solar, 0, false)
	r.Add(20, constructor, 0, true)

	// Act
	members := r.Members()

	// Assert
	require.Len(t, members, 3)
	assert.Equal(t, shared.UnitID(10), members[0].ID)
	assert.Equal(t, shared.UnitID(20), members[1].ID)
	assert.Equal(t, shared.UnitID(30), members[2].ID)
}

func TestRoster_BuildersAreFinishedAndControlled(t *testing.T) {
	r := fleet.NewRoster()
	r.Add(1, constructor, 0, false)
	r.Add(2, constructor, 0, true)
	r.Add(3, constructor, 0, false)
	r.Add(4, solar, 0, false)
	for _, id := range []shared.UnitID{1, 2, 4} {
		r.Finish(id)
	}

	builders := r.Builders()

	require.Len(t, builders, 1)
	assert.Equal(t, shared.UnitID(1), builders[0].ID)
	assert.Equal(t, 3, r.FinishedCount())
}

func TestRoster_RemoveKeepsCounts(t *testing.T) {
	r := fleet.NewRoster()
	r.Add(1, constructor, 0, false)
	r.Finish(1)
	r.Decommission(1)

	_, ok := r.Remove(1)

	assert.True(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.FinishedCount())
	assert.Empty(t, r.Decommissioned())
	_, ok = r.Remove(1)
	assert.False(t, ok)
}

func TestRoster_AcceptIdleThrottles(t *testing.T) {
	r := fleet.NewRoster()
	r.Add(1, constructor, 0, false)

	assert.True(t, r.AcceptIdle(1, 100, 15))
	assert.False(t, r.AcceptIdle(1, 110, 15))
	assert.True(t, r.AcceptIdle(1, 115, 15))
	assert.False(t, r.AcceptIdle(99, 115, 15))
}

func TestRoster_IdleLongerThan(t *testing.T) {
	// Arrange
	r := fleet.NewRoster()
	r.Add(1, constructor, 0, false)
	r.Add(2, constructor, 0, false)
	r.Finish(1)
	r.Finish(2)
	r.SetIdle(1, 100)
	r.SetIdle(2, 500)
	r.SetIdle(1, 400)

	// Act
	stale := r.IdleLongerThan(600, 450)

	// Assert - the first idle frame is kept until the member gets work
	require.Len(t, stale, 1)
	assert.Equal(t, shared.UnitID(1), stale[0].ID)
	r.SetBusy(1)
	assert.Empty(t, r.IdleLongerThan(600, 450))
}

func TestRoster_RepairQueue(t *testing.T) {
	r := fleet.NewRoster()
	r.Add(1, constructor, 0, false)

	assert.True(t, r.QueueRepair(1, 7))
	assert.False(t, r.QueueRepair(1, 7))
	assert.False(t, r.QueueRepair(1, 1))
	assert.True(t, r.QueueRepair(1, 8))
	r.DropRepair(1, 7)

	assert.Equal(t, []shared.UnitID{8}, r.Repairs(1))
}

func TestRoster_DecommissionIsOrderedAndUnique(t *testing.T) {
	r := fleet.NewRoster()

	r.Decommission(5)
	r.Decommission(3)
	r.Decommission(5)

	assert.Equal(t, []shared.UnitID{5, 3}, r.Decommissioned())
	r.Recommission(5)
	assert.Equal(t, []shared.UnitID{3}, r.Decommissioned())
}
