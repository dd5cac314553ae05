package resource

import "github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"

// MovementClass is a traversal capability known to the terrain oracle
type MovementClass struct {
	ID                 int
	Name               string
	LargestAreaPercent float64
	MaxSlope           float64
}

// PathResult is the outcome of one path query. Waypoints start at the origin.
type PathResult struct {
	Found     bool
	Waypoints []shared.Position
}

// Length sums the segment lengths of the waypoint sequence
func (p PathResult) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.Waypoints); i++ {
		total += p.Waypoints[i].Distance(p.Waypoints[i-1])
	}
	return total
}

// TerrainOracle answers movement questions about the map.
//
// AreaOf returns the connected-area identifier of pos for the given class;
// zero means the class cannot stand there. PathDistance may be expensive and
// is called synchronously.
type TerrainOracle interface {
	MovementClasses() []MovementClass
	AreaOf(classID int, pos shared.Position) int
	PathDistance(from, to shared.Position, classID int) PathResult
}

// PlacementOracle answers construction-placement questions
type PlacementOracle interface {
	// ClosestBuildSite returns shared.InvalidPosition when nothing was found
	ClosestBuildSite(unitType shared.UnitTypeID, anchor shared.Position, searchRadius float64, spacing int) shared.Position
	CanBuildAt(unitType shared.UnitTypeID, pos shared.Position) bool
}

// TypeTraits are the unit-type figures that decide whether one occupant outranks another
type TypeTraits struct {
	ExtractsMetal float64
	MetalCost     float64
	TechLevel     int
	NeedsGeo      bool
}

// TypeCatalog resolves unit-type traits
type TypeCatalog interface {
	Traits(unitType shared.UnitTypeID) TypeTraits
}

// UnitHealth reports the current health of a unit; zero or less means dead
type UnitHealth interface {
	Health(unit shared.UnitID) float64
}

// ObservedUnit is a resource structure seen on the map that the bot does not own
type ObservedUnit struct {
	ID       shared.UnitID
	Type     shared.UnitTypeID
	Position shared.Position
}

// AllyScanner lists resource structures owned by allied teams
type AllyScanner interface {
	AlliedResourceUnits() []ObservedUnit
}
