package simulation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/simulation"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

type orderCounter struct {
	created int
	removed map[build.RemovalReason]int
}

func (c *orderCounter) OrderCreated(build.OrderView)                 { c.created++ }
func (c *orderCounter) OrderAssigned(build.OrderView, shared.UnitID) {}
func (c *orderCounter) OrderRemoved(_ build.OrderView, reason build.RemovalReason) {
	c.removed[reason]++
}

// newMatch sets up the duel with seed 7; extra observers see every ledger change
func newMatch(t *testing.T, extra ...build.Observer) (*simulation.World, *ai.Instance, *orderCounter) {
	t.Helper()
	s := loadDuel(t)
	w := simulation.NewWorld(s)
	setup, err := simulation.BotSetup(s, w, 7)
	require.NoError(t, err)
	counter := &orderCounter{removed: make(map[build.RemovalReason]int)}
	setup.Observers = append(setup.Observers, counter)
	setup.Observers = append(setup.Observers, extra...)

	bot, err := ai.New(context.Background(), ai.DefaultConfig(), setup)
	require.NoError(t, err)
	return w, bot, counter
}

func TestRunner_BotBuildsOnTheWorld(t *testing.T) {
	// Arrange
	w, bot, counter := newMatch(t)
	var frames int
	runner := simulation.NewRunner(w, bot, nil)
	runner.OnFrame = func(shared.Frame) { frames++ }

	// Act
	res, err := runner.Run(context.Background(), 3000)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, shared.Frame(3000), res.Frames)
	assert.Equal(t, 3000, frames)
	assert.True(t, bot.Initiated())
	assert.GreaterOrEqual(t, res.Stats.Commands["build"], 1)
	assert.GreaterOrEqual(t, res.Stats.Created, 1)
	assert.GreaterOrEqual(t, counter.created, 1)
	assert.NoError(t, bot.Ledger().CheckInvariants())
	assert.Equal(t, 4, bot.Registry().Len())
}

func TestRunner_CancelledContextStopsBeforeTheFirstFrame(t *testing.T) {
	// Arrange
	w, bot, _ := newMatch(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	res, err := simulation.NewRunner(w, bot, nil).Run(ctx, 100)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, shared.Frame(0), res.Frames)
}

func TestRealtimeLimiter(t *testing.T) {
	assert.Nil(t, simulation.RealtimeLimiter(0))
	limiter := simulation.RealtimeLimiter(2)
	require.NotNil(t, limiter)
	assert.InDelta(t, 60.0, float64(limiter.Limit()), 1e-9)
}
