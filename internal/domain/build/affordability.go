package build

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Unlimited is the cost limit used once income no longer constrains a resource
const Unlimited = 9.9e8

// AffordabilityConfig holds the cost gating thresholds
type AffordabilityConfig struct {
	// IncomeThreshold lifts the metal limit entirely above this income
	// (scaled by the energy-to-metal ratio for energy)
	IncomeThreshold float64
	// Hysteresis is the multiple of the limit above which a type is blocked
	Hysteresis float64
}

// DefaultAffordabilityConfig returns the standard thresholds
func DefaultAffordabilityConfig() AffordabilityConfig {
	return AffordabilityConfig{IncomeThreshold: 110, Hysteresis: 1.5}
}

// AffordabilityResult lists what a recompute changed
type AffordabilityResult struct {
	MetalLimit  float64
	EnergyLimit float64
	Unblocked   []shared.UnitTypeID
	Blocked     []shared.UnitTypeID
}

// Changed reports whether any type switched state
func (r AffordabilityResult) Changed() bool {
	return len(r.Unblocked) > 0 || len(r.Blocked) > 0
}

// RecomputeAffordability re-derives which types are too expensive for the
// current income. A type is unblocked when both pressure costs are under the
// limits and blocked when either exceeds the hysteresis multiple; in between
// it keeps its state. Every build list with a quota that has a disabled
// member keeps its cheapest candidate unblocked.
func (c *Catalog) RecomputeAffordability(cfg AffordabilityConfig, snap economy.Snapshot) AffordabilityResult {
	producers := c.Producers()
	metalLimit := snap.Metal.Income + snap.Power.EtoMIncome
	if metalLimit > cfg.IncomeThreshold || !producers.Metal {
		metalLimit = Unlimited
	}
	energyLimit := snap.Energy.Income
	if energyLimit > cfg.IncomeThreshold*c.ratio || !producers.Energy {
		energyLimit = Unlimited
	}

	before := make(map[shared.UnitTypeID]bool, len(c.ids))
	for _, id := range c.ids {
		e := c.entries[id]
		before[id] = e.costBlocked
		p := e.profile
		if p.MetalPCost < metalLimit && p.EnergyPCost < energyLimit {
			e.costBlocked = false
		} else if p.MetalPCost > cfg.Hysteresis*metalLimit || p.EnergyPCost > cfg.Hysteresis*energyLimit {
			e.costBlocked = true
		}
	}

	for _, cat := range c.categories {
		if cat.min <= 0 || len(cat.types) == 0 || len(c.EnabledTypes(cat)) == len(cat.types) {
			continue
		}
		if best, ok := c.cheapest(cat); ok {
			c.entries[best].costBlocked = false
		}
	}

	res := AffordabilityResult{MetalLimit: metalLimit, EnergyLimit: energyLimit}
	for _, id := range c.ids {
		now := c.entries[id].costBlocked
		switch {
		case before[id] && !now:
			res.Unblocked = append(res.Unblocked, id)
		case !before[id] && now:
			res.Blocked = append(res.Blocked, id)
		}
	}
	return res
}

// cheapest picks the member of cat with a satisfied prerequisite and room
// under its limits, preferring types that can build constructors, then the
// lowest combined pressure cost.
func (c *Catalog) cheapest(cat *Category) (shared.UnitTypeID, bool) {
	best := shared.NoUnitType
	bestCost := 0.0
	bestBuildsConstructors := false
	for _, t := range cat.types {
		if !c.HasPrerequisite(t) || c.UnitLimited(t) {
			continue
		}
		p := c.entries[t].profile
		cost := p.MetalPCost + p.EnergyPCost*c.ratio
		buildsConstructors := c.CanBuildConstructors(t)
		if best == shared.NoUnitType ||
			(buildsConstructors && !bestBuildsConstructors) ||
			(cost < bestCost && (buildsConstructors || !bestBuildsConstructors)) {
			best, bestCost, bestBuildsConstructors = t, cost, buildsConstructors
		}
	}
	return best, best != shared.NoUnitType
}

// AbandonUnaffordable removes every queued order whose type is cost blocked
// and returns the removed orders.
func (l *Ledger) AbandonUnaffordable(frame shared.Frame) []OrderView {
	var removed []OrderView
	for i := 0; i < len(l.live); {
		o := l.live[i]
		if !l.catalog.CostBlocked(o.unitType) {
			i++
			continue
		}
		v, err := l.Remove(o.handle, frame, RemovalCostBlocked)
		if err != nil {
			i++
			continue
		}
		removed = append(removed, v)
	}
	return removed
}
