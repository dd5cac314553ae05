package fleet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/fleet"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

func TestSelector_SelectNearest(t *testing.T) {
	tests := []struct {
		name        string
		candidates  []fleet.Candidate
		maxDistance float64
		wantID      int
		wantErr     bool
	}{
		{
			name: "closest reachable wins",
			candidates: []fleet.Candidate{
				{ID: 1, Position: shared.NewPosition(50, 0), Reachable: false},
				{ID: 2, Position: shared.NewPosition(80, 0), Reachable: true},
				{ID: 3, Position: shared.NewPosition(120, 0), Reachable: true},
			},
			wantID: 2,
		},
		{
			name: "ties keep input order",
			candidates: []fleet.Candidate{
				{ID: 4, Position: shared.NewPosition(0, 60), Reachable: true},
				{ID: 5, Position: shared.NewPosition(60, 0), Reachable: true},
			},
			wantID: 4,
		},
		{
			name:        "distance cap",
			candidates:  []fleet.Candidate{{ID: 6, Position: shared.NewPosition(300, 0), Reachable: true}},
			maxDistance: 200,
			wantErr:     true,
		},
		{
			name:    "empty",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := fleet.NewSelector().SelectNearest(tt.candidates, shared.NewPosition(0, 0), tt.maxDistance)
			if tt.wantErr {
				assert.ErrorIs(t, err, fleet.ErrNoCandidates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, result.ID)
		})
	}
}
