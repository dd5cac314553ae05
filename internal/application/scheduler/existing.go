package scheduler

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

func weightOf(w economy.OrderWeights, kind build.OrderKind) float64 {
	switch kind {
	case build.EnergyOrder:
		return w.Energy
	case build.MetalOrder:
		return w.Metal
	case build.BuilderOrder:
		return w.Builder
	case build.EnergyStorageOrder:
		return w.EnergyStorage
	case build.MetalStorageOrder:
		return w.MetalStorage
	case build.PrerequisiteOrder:
		return w.Prerequisite
	default:
		return w.General
	}
}

// claimExistingOrder assigns the builder to the most pressing unassigned order
// it can build. The pending prerequisite always wins.
func (s *Scheduler) claimExistingOrder(b builder, p pass) (bool, error) {
	bothFavorable := p.metalFavorable(s.cfg.Tuning, 0.75, 1.0) && p.energyFavorable(s.cfg.Tuning, 0.75, 1.0)
	weights := economy.ExistingOrderWeights(p.snap, bothFavorable, s.roster.FinishedCount())
	prerequisite, _ := s.ledger.Prerequisite()

	var best *build.Order
	for _, o := range s.ledger.Orders() {
		if o.HasBuilder() || !b.def.CanBuild(o.UnitType()) {
			continue
		}
		if _, started := o.FirstSpawned(); !started && !s.siteReachable(b, o.UnitType()) {
			continue
		}
		if best == nil || o == prerequisite {
			best = o
			continue
		}
		if best == prerequisite {
			continue
		}
		ow, bw := weightOf(weights, o.Kind()), weightOf(weights, best.Kind())
		if ow > bw {
			best = o
			continue
		}
		if o.Kind() == best.Kind() &&
			s.catalog.Profile(best.UnitType()).HighEnergyDemand &&
			!s.catalog.Profile(o.UnitType()).HighEnergyDemand {
			best = o
		}
	}
	if best == nil {
		return false, nil
	}
	if err := s.assign(b, best.Handle(), p.frame); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Scheduler) assign(b builder, h build.Handle, frame shared.Frame) error {
	ref := build.BuilderRef{ID: b.id(), Position: b.position(), MovementClass: b.def.MovementClass}
	if err := s.ledger.AssignBuilder(h, ref, frame); err != nil {
		return fmt.Errorf("failed to assign builder: %w", err)
	}
	return nil
}

// openMilitaryOrder spends surplus on a combat unit the builder can make
func (s *Scheduler) openMilitaryOrder(b builder, p pass) (bool, error) {
	if s.ledger.Len() >= s.cfg.MilitaryCap {
		return false, nil
	}
	if !p.metalFavorable(s.cfg.Tuning, 0.35, 0.94) || !p.energyFavorable(s.cfg.Tuning, 0.70, 0.94) {
		return false, nil
	}

	options := append([]shared.UnitTypeID(nil), b.def.BuildOptions...)
	sort.Slice(options, func(i, j int) bool { return options[i] < options[j] })

	var military []shared.UnitTypeID
	for _, t := range options {
		if !s.catalog.Enabled(t) || !s.placeableNear(b, t) {
			continue
		}
		for _, cat := range s.catalog.CategoriesOf(t) {
			if cat.Kind() == build.MilitaryCategory {
				military = append(military, t)
				break
			}
		}
	}
	if len(military) == 0 {
		return false, nil
	}

	t := military[s.rng.Intn(len(military))]
	h, err := s.ledger.Create(t, nil, build.GeneralOrder, p.frame)
	if err != nil {
		return false, fmt.Errorf("failed to create military order: %w", err)
	}
	if err := s.assign(b, h, p.frame); err != nil {
		return false, err
	}
	return true, nil
}

// placeableNear reports whether t can come out of b where it stands: a mobile
// unit needs ground its movement class can use at the builder, a structure
// needs a free spot within reach. Aircraft always pass.
func (s *Scheduler) placeableNear(b builder, t shared.UnitTypeID) bool {
	def, ok := s.catalog.Type(t)
	if !ok {
		return false
	}
	if def.IsMobile() {
		if def.MovementClass < 0 || s.host.Terrain == nil {
			return true
		}
		return s.host.Terrain.AreaOf(def.MovementClass, b.position()) > 0
	}
	if s.host.Placement == nil {
		return true
	}
	radius := b.def.BuildDistance + 25
	if b.def.IsMobile() {
		radius = 1000
	}
	return s.host.Placement.ClosestBuildSite(t, b.position(), radius, 1).IsValid()
}
