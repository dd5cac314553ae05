package shared

import (
	"fmt"
	"math"
)

// Position is a point in world coordinates. Y is height; the ground plane is X/Z.
type Position struct {
	X float64
	Y float64
	Z float64
}

// InvalidPosition is returned by placement searches that found nothing
var InvalidPosition = Position{X: -1, Y: 0, Z: -1}

func NewPosition(x, z float64) Position {
	return Position{X: x, Z: z}
}

// IsValid reports whether p lies on the map
func (p Position) IsValid() bool {
	return p.X >= 0 && p.Z >= 0
}

// Distance returns the 3-D euclidean distance between two positions
func (p Position) Distance(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Distance2D returns the distance on the ground plane
func (p Position) Distance2D(other Position) float64 {
	dx := p.X - other.X
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Offset returns p moved by dx, dz
func (p Position) Offset(dx, dz float64) Position {
	return Position{X: p.X + dx, Y: p.Y, Z: p.Z + dz}
}

// WithinBox reports whether other lies inside the axis-aligned square of the given half-width around p
func (p Position) WithinBox(other Position, margin float64) bool {
	return math.Abs(p.X-other.X) <= margin && math.Abs(p.Z-other.Z) <= margin
}

func (p Position) String() string {
	return fmt.Sprintf("(%.0f, %.0f)", p.X, p.Z)
}
