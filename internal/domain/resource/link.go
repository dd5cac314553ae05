package resource

import (
	"math"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const (
	// DistanceUnknown marks a best distance that has not been established
	DistanceUnknown = 0.0
	// DistanceNoPath is cached when the oracle found no path for a class
	DistanceNoPath = -1.0
	// DistanceUnreachable is cached when the two sites lie in different areas of a class
	DistanceUnreachable = -2.0

	// NoClass is the best class of a link accepted without any movement class
	NoClass = -1

	// coincidentDistance stands in for the zero distance between sites sharing a position
	coincidentDistance = 0.001
)

// Link is the symmetric relationship between two sites. The same *Link is
// shared by both directions.
type Link struct {
	straight  float64
	best      float64
	bestClass int
	probed    map[int]float64
	waypoints []shared.Position
}

func newLink(a, b shared.Position) *Link {
	return &Link{
		straight:  a.Distance2D(b),
		bestClass: NoClass,
		probed:    make(map[int]float64),
	}
}

// StraightLine returns the ground-plane distance between the sites
func (l *Link) StraightLine() float64 { return l.straight }

// Best returns the best known traversal distance, or DistanceUnknown
func (l *Link) Best() float64 { return l.best }

// BestClass returns the movement class that produced Best, or NoClass
func (l *Link) BestClass() int { return l.bestClass }

// HasBest reports whether a best distance has been established
func (l *Link) HasBest() bool { return l.best != DistanceUnknown }

// Waypoints returns the path that produced Best, when one was recorded
func (l *Link) Waypoints() []shared.Position { return l.waypoints }

// Probed returns the cached distance for a class and whether it was ever probed or pre-marked
func (l *Link) Probed(classID int) (float64, bool) {
	d, ok := l.probed[classID]
	return d, ok
}

// Estimate returns the distance used when comparing candidate links for a class:
// the cached class distance when known, else the best distance, else the straight line.
func (l *Link) Estimate(classID int) float64 {
	if classID != NoClass {
		if d, ok := l.probed[classID]; ok {
			return d
		}
	}
	if l.best != DistanceUnknown {
		return l.best
	}
	return l.straight
}

func (l *Link) markUnreachable(classID int) {
	l.probed[classID] = DistanceUnreachable
}

// record stores a probe result. The first successful probe fixes Best.
func (l *Link) record(classID int, result PathResult) float64 {
	distance := DistanceNoPath
	if result.Found {
		distance = result.Length()
		if distance <= 0 {
			distance = DistanceNoPath
		}
	}
	l.probed[classID] = distance
	if distance > 0 && l.best == DistanceUnknown {
		l.best = distance
		l.bestClass = classID
		l.waypoints = result.Waypoints
	}
	return distance
}

// settleStraight accepts the straight-line distance when no class produced a path
func (l *Link) settleStraight() {
	if l.best == DistanceUnknown {
		l.best = math.Max(l.straight, coincidentDistance)
		l.bestClass = NoClass
	}
}
