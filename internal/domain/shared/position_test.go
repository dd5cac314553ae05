package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

func TestPosition_Distances(t *testing.T) {
	a := shared.Position{X: 0, Y: 10, Z: 0}
	b := shared.Position{X: 3, Y: 10, Z: 4}

	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.InDelta(t, 5.0, a.Distance2D(b), 1e-9)
}

func TestPosition_WithinBox(t *testing.T) {
	center := shared.NewPosition(100, 100)

	assert.True(t, center.WithinBox(shared.NewPosition(400, 399), 300))
	assert.False(t, center.WithinBox(shared.NewPosition(401, 100), 300))
}

func TestPosition_InvalidSentinel(t *testing.T) {
	assert.False(t, shared.InvalidPosition.IsValid())
	assert.True(t, shared.NewPosition(0, 0).IsValid())
}
