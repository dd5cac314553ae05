package ports

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Host groups the interfaces through which the bot reads and drives the
// simulation it is embedded in.
//
// The interfaces live in the domain layer so that the application layer can
// depend on them while adapters implement them:
//
//	┌─────────────────────────┐
//	│  Application Layer      │
//	│  (scheduler, ai)        │
//	└───────────┬─────────────┘
//	            │ depends on
//	            ↓
//	┌─────────────────────────┐
//	│  Domain Ports           │  ← These interfaces
//	│  (interfaces)           │
//	└───────────┬─────────────┘
//	            ↑
//	            │ implements
//	┌─────────────────────────┐
//	│  Adapters               │
//	│  (simulation, engine)   │
//	└─────────────────────────┘
//
// Every call is synchronous and happens inside the tick that triggered it.
type Host struct {
	Units     UnitOracle
	Features  FeatureOracle
	Commands  CommandIssuer
	Economy   economy.Telemetry
	Terrain   resource.TerrainOracle
	Placement resource.PlacementOracle
	Allies    resource.AllyScanner
}

// UnitState is the host's current view of one unit
type UnitState struct {
	ID         shared.UnitID
	Type       shared.UnitTypeID
	Position   shared.Position
	Health     float64
	MaxHealth  float64
	BeingBuilt bool
	// Own is false for allied and enemy units
	Own bool
	// MetalUse and EnergyUse are the unit's current resource consumption
	MetalUse  float64
	EnergyUse float64
	Activated bool
	Cloaked   bool
}

// Alive reports whether the unit still has health left
func (u UnitState) Alive() bool {
	return u.Health > 0
}

// UnitHealth adapts a UnitOracle to the health readers of the registry and the ledger
type UnitHealth struct {
	Units UnitOracle
}

// Health returns zero for units that no longer exist
func (h UnitHealth) Health(id shared.UnitID) float64 {
	u, ok := h.Units.Unit(id)
	if !ok {
		return 0
	}
	return u.Health
}

// UnitOracle answers questions about units the bot can see
type UnitOracle interface {
	// Unit returns ok=false for units that no longer exist
	Unit(id shared.UnitID) (UnitState, bool)

	// Commands returns the queued commands of an own unit, front first
	Commands(id shared.UnitID) []Command

	// OwnUnitsNear lists own units within radius of pos, ascending by ID
	OwnUnitsNear(pos shared.Position, radius float64) []shared.UnitID
}

// Feature is a map object such as a wreck, a tree or a rock
type Feature struct {
	ID            int
	Position      shared.Position
	Metal         float64
	Energy        float64
	Reclaimable   bool
	Resurrectable bool
}

// FeatureOracle answers questions about map features
type FeatureOracle interface {
	// FeaturesNear returns at most limit features within radius of pos, nearest first
	FeaturesNear(pos shared.Position, radius float64, limit int) []Feature

	// Feature returns ok=false once the feature is gone
	Feature(id int) (Feature, bool)
}

// CommandIssuer hands commands to own units
type CommandIssuer interface {
	Issue(unit shared.UnitID, cmd Command)
}
