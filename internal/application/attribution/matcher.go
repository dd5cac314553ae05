package attribution

import (
	"context"
	"fmt"
	"math"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/fleet"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Outcome says how a new unit was explained
type Outcome string

const (
	// OutcomeMatched means the unit was spawned for a build order
	OutcomeMatched Outcome = "matched"
	// OutcomeHuman means another player's command to one of our units produced it
	OutcomeHuman Outcome = "human"
	// OutcomeUnattributed covers starting units, resurrected and captured units
	OutcomeUnattributed Outcome = "unattributed"
)

// Config holds the position tolerances of the matcher
type Config struct {
	// OrderMargin is added to the builder's build distance for order matches
	OrderMargin float64
	// HumanMargin is added to the build distance of a unit following a human command
	HumanMargin float64
	// MinimumMargin is the smallest tolerance ever used
	MinimumMargin float64
}

// DefaultConfig returns the standard tolerances
func DefaultConfig() Config {
	return Config{OrderMargin: 50, HumanMargin: 150, MinimumMargin: 300}
}

// Result describes the attribution of one new unit
type Result struct {
	Outcome Outcome
	Order   build.Handle
	Builder shared.UnitID
	// AIDisabled is set for human-made units the bot must leave alone
	AIDisabled bool
	// Conflicts counts the orders that also matched but lost to the first one
	Conflicts int
}

// Matcher guesses which build order spawned a new unit.
//
// The host does not say which command created a unit, so the matcher compares
// the unit's type and position against the front command of every builder
// that holds an order.
type Matcher struct {
	cfg     Config
	units   ports.UnitOracle
	catalog *build.Catalog
	ledger  *build.Ledger
	roster  *fleet.Roster
}

// NewMatcher creates a matcher over the shared bot state
func NewMatcher(cfg Config, units ports.UnitOracle, catalog *build.Catalog, ledger *build.Ledger, roster *fleet.Roster) *Matcher {
	return &Matcher{cfg: cfg, units: units, catalog: catalog, ledger: ledger, roster: roster}
}

// Attribute explains unit, a unit of type t that appeared at pos. A matched
// unit is attached to its order as a spawn.
func (m *Matcher) Attribute(ctx context.Context, unit shared.UnitID, t shared.UnitTypeID, pos shared.Position) (Result, error) {
	logger := common.LoggerFromContext(ctx)

	result := Result{Outcome: OutcomeUnattributed, Order: build.NoHandle, Builder: shared.NoUnit}
	for _, o := range m.ledger.Orders() {
		if o.UnitType() != t || !o.HasBuilder() {
			continue
		}
		if !m.builtBy(o.Builder(), t, pos) {
			continue
		}
		if result.Outcome == OutcomeMatched {
			result.Conflicts++
			logger.Log("WARNING", fmt.Sprintf("[Attribution] %s also matches %s, keeping %s", unit, o, result.Order), map[string]interface{}{
				"unit":      unit.String(),
				"unit_type": int(t),
			})
			continue
		}
		result.Outcome = OutcomeMatched
		result.Order = o.Handle()
		result.Builder = o.Builder()
	}

	if result.Outcome == OutcomeMatched {
		if err := m.ledger.AttachSpawn(result.Order, unit); err != nil {
			return Result{}, fmt.Errorf("failed to attach %s to its order: %w", unit, err)
		}
		logger.Log("DEBUG", fmt.Sprintf("[Attribution] %s spawned by %s", unit, result.Builder), nil)
		metrics.RecordAttribution(string(result.Outcome))
		return result, nil
	}

	if creator, ok := m.humanCreator(t, pos); ok {
		def, _ := m.catalog.Type(t)
		result.Outcome = OutcomeHuman
		result.Builder = creator
		result.AIDisabled = def.IsMobile() || len(def.BuildOptions) == 0
		logger.Log("INFO", fmt.Sprintf("[Attribution] %s was ordered by another player through %s", unit, creator), map[string]interface{}{
			"ai_disabled": result.AIDisabled,
		})
	}
	metrics.RecordAttribution(string(result.Outcome))
	return result, nil
}

// builtBy reports whether builder's front command is a positioned build of t
// close enough to pos, or the builder itself stands close enough
func (m *Matcher) builtBy(builder shared.UnitID, t shared.UnitTypeID, pos shared.Position) bool {
	state, ok := m.units.Unit(builder)
	if !ok || !state.Alive() {
		return false
	}
	cmds := m.units.Commands(builder)
	if len(cmds) == 0 {
		return false
	}
	front := cmds[0]
	if front.Kind != ports.CommandBuild || front.UnitType != t || !front.HasPosition() {
		return false
	}
	margin := m.margin(builder, state.Type, m.cfg.OrderMargin)
	return pos.WithinBox(front.Position, margin) || pos.WithinBox(state.Position, margin)
}

// humanCreator finds an own unit working on a build of t that carries no
// position, which is how commands from other players show up
func (m *Matcher) humanCreator(t shared.UnitTypeID, pos shared.Position) (shared.UnitID, bool) {
	creator := shared.NoUnit
	for _, member := range m.roster.Members() {
		cmds := m.units.Commands(member.ID)
		if len(cmds) == 0 {
			continue
		}
		front := cmds[0]
		if front.Kind != ports.CommandBuild || front.UnitType != t || front.HasPosition() {
			continue
		}
		state, ok := m.units.Unit(member.ID)
		if !ok {
			continue
		}
		if pos.WithinBox(state.Position, m.margin(member.ID, state.Type, m.cfg.HumanMargin)) {
			creator = member.ID
		}
	}
	return creator, creator.IsValid()
}

func (m *Matcher) margin(unit shared.UnitID, t shared.UnitTypeID, extra float64) float64 {
	distance := 0.0
	if member, ok := m.roster.Get(unit); ok {
		distance = member.Type.BuildDistance
	} else if def, ok := m.catalog.Type(t); ok {
		distance = def.BuildDistance
	}
	return math.Max(distance+extra, m.cfg.MinimumMargin)
}
