package fleet

import (
	"errors"
	"fmt"
	"math"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// ErrNoCandidates is returned when nothing could be selected
var ErrNoCandidates = errors.New("no reachable candidates")

// Candidate is something a builder could walk to: another unit, a feature or an order's builder
type Candidate struct {
	ID        int
	Position  shared.Position
	Reachable bool
}

// SelectionResult contains the result of a selection
type SelectionResult struct {
	ID       int
	Distance float64
	Reason   string // Why this candidate was selected (e.g., "closest")
}

// Selector picks targets for builders that have nothing to construct
type Selector struct{}

// NewSelector creates a new selector
func NewSelector() *Selector {
	return &Selector{}
}

// SelectNearest selects the closest reachable candidate to origin.
//
// Business Rules:
//  1. Unreachable candidates are excluded
//  2. Candidates farther than maxDistance are excluded when maxDistance > 0
//  3. Ties keep the earlier candidate, so input order decides
//
// Returns:
//   - SelectionResult with the selected candidate and its 2-D distance
//   - ErrNoCandidates if nothing qualifies
func (s *Selector) SelectNearest(candidates []Candidate, origin shared.Position, maxDistance float64) (*SelectionResult, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	best := -1
	minDistance := math.MaxFloat64
	for i, c := range candidates {
		if !c.Reachable {
			continue
		}
		d := origin.Distance2D(c.Position)
		if maxDistance > 0 && d > maxDistance {
			continue
		}
		if d < minDistance {
			minDistance = d
			best = i
		}
	}

	if best < 0 {
		return nil, fmt.Errorf("select among %d candidates: %w", len(candidates), ErrNoCandidates)
	}
	return &SelectionResult{
		ID:       candidates[best].ID,
		Distance: minDistance,
		Reason:   fmt.Sprintf("closest by distance (%.2f units)", minDistance),
	}, nil
}
