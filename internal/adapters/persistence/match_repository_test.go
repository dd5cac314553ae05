package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
	"github.com/andrescamacho/skirmish-economy-go/test/helpers"
)

func recordedMatch(t *testing.T, scenario string, started time.Time) *journal.Match {
	t.Helper()
	m, err := journal.NewMatch(scenario, "delta", 1<<63+5, started)
	require.NoError(t, err)
	require.NoError(t, m.Record(journal.OrderEvent{Frame: 15, Kind: journal.EventCreated, Order: "order(0#1)", UnitType: 10, Category: "extractors", Builder: -1, Site: 2}))
	require.NoError(t, m.Record(journal.OrderEvent{Frame: 30, Kind: journal.EventAssigned, Order: "order(0#1)", UnitType: 10, Builder: 1, Site: 2}))
	require.NoError(t, m.Record(journal.OrderEvent{Frame: 900, Kind: journal.EventRemoved, Order: "order(0#1)", UnitType: 10, Builder: 1, Site: 2, Reason: build.RemovalCompleted}))
	require.NoError(t, m.Finish(1000, started.Add(time.Minute)))
	return m
}

func TestMatchRepository_SaveAndFind(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormMatchRepository(helpers.NewTestDB(t))
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := recordedMatch(t, "duel", started)

	// Act
	require.NoError(t, repo.Save(ctx, m))
	found, err := repo.FindByID(ctx, m.ID())

	// Assert
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, m.Seed(), found.Seed())
	assert.Equal(t, journal.StatusFinished, found.Status())
	assert.Equal(t, m.Events(), found.Events())
	assert.Equal(t, 1, found.Summarize().Removed[build.RemovalCompleted])
}

func TestMatchRepository_SaveTwiceKeepsOneCopyOfTheEvents(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormMatchRepository(helpers.NewTestDB(t))
	m := recordedMatch(t, "duel", time.Now().UTC())
	require.NoError(t, repo.Save(ctx, m))

	// Act
	require.NoError(t, repo.Save(ctx, m))

	// Assert
	found, err := repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	assert.Len(t, found.Events(), 3)
}

func TestMatchRepository_FindMissingReturnsNil(t *testing.T) {
	// Arrange
	repo := persistence.NewGormMatchRepository(helpers.NewTestDB(t))

	// Act
	found, err := repo.FindByID(context.Background(), journal.NewMatchID())

	// Assert
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMatchRepository_ListNewestFirst(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormMatchRepository(helpers.NewTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := recordedMatch(t, "duel", base)
	newer := recordedMatch(t, "duel", base.Add(time.Hour))
	other := recordedMatch(t, "ffa", base.Add(2*time.Hour))
	for _, m := range []*journal.Match{older, newer, other} {
		require.NoError(t, repo.Save(ctx, m))
	}
	scenario := "duel"

	// Act
	list, err := repo.List(ctx, journal.QueryOptions{Scenario: &scenario, Limit: 10})

	// Assert
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID(), list[0].ID())
	assert.Equal(t, older.ID(), list[1].ID())
	assert.Empty(t, list[0].Events())
}
