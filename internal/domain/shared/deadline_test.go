package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

func TestRunWithDeadline_CompletesWhenWorkRunsOut(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Time{})
	remaining := 3

	// Act
	result := shared.RunWithDeadline(clock, 2500*time.Millisecond, func() bool {
		if remaining == 0 {
			return false
		}
		remaining--
		return true
	})

	// Assert
	assert.True(t, result.Completed)
	assert.Equal(t, 3, result.Steps)
	assert.Equal(t, time.Duration(0), result.Elapsed)
}

func TestRunWithDeadline_StopsBetweenStepsOnceBudgetIsSpent(t *testing.T) {
	// Arrange - every clock read costs one second
	clock := shared.NewSteppingMockClock(time.Second)
	calls := 0

	// Act
	result := shared.RunWithDeadline(clock, 2500*time.Millisecond, func() bool {
		calls++
		return true
	})

	// Assert
	assert.False(t, result.Completed)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, result.Steps)
	assert.GreaterOrEqual(t, result.Elapsed, 2500*time.Millisecond)
}

func TestRunWithDeadline_ZeroBudgetRunsNothing(t *testing.T) {
	clock := shared.NewMockClock(time.Time{})
	calls := 0

	result := shared.RunWithDeadline(clock, 0, func() bool {
		calls++
		return true
	})

	assert.False(t, result.Completed)
	assert.Zero(t, calls)
}
