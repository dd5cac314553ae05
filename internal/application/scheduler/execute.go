package scheduler

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const (
	// factoryClearance is how far in front of and behind a factory the exit is probed
	factoryClearance = 48
	// facingNorth turns a factory exit towards decreasing z
	facingNorth = 2
)

// execute issues the command that advances the builder's order
func (s *Scheduler) execute(ctx context.Context, b builder, o *build.Order, frame shared.Frame) (Action, error) {
	logger := common.LoggerFromContext(ctx)

	if first, ok := o.FirstSpawned(); ok {
		s.issue(b.id(), ports.Repair(first))
		return ActionResume, nil
	}

	def, ok := s.catalog.Type(o.UnitType())
	if !ok {
		return ActionNone, &build.ErrUnknownUnitType{Type: o.UnitType(), Context: "order execution"}
	}

	site := s.orderSite(o)
	if site != nil {
		if site.Occupancy() == resource.EnemyOccupant && site.Occupant().IsValid() {
			return s.contest(ctx, b, o, site.Occupant(), frame)
		}
		if opt, ok := site.Option(o.UnitType()); ok && opt.Ranked {
			if _, err := s.ledger.Remove(o.Handle(), frame, build.RemovalOutranked); err != nil {
				return ActionNone, fmt.Errorf("failed to remove outranked order: %w", err)
			}
			s.rechecks.Schedule(b.id(), Now)
			return ActionOrderAbandoned, nil
		}
	}

	pos := s.buildPosition(b, def, site)
	if !pos.IsValid() || !s.host.Placement.CanBuildAt(def.ID, pos) {
		switch {
		case !b.def.IsMobile() && def.IsMobile():
			// factories drop mobile units at their own position
			pos = b.position()
		case site != nil && site.Occupancy() == resource.OwnOccupant && site.Occupant().IsValid() && b.def.CanReclaim:
			s.issue(b.id(), ports.ReclaimUnit(site.Occupant()))
			return ActionReclaimUnit, nil
		default:
			action, err := s.giveUp(ctx, b, o, def, frame)
			return action, err
		}
	}

	facing := ports.NoFacing
	if def.IsFactory() {
		ahead := pos.Offset(0, factoryClearance)
		behind := pos.Offset(0, -factoryClearance)
		if s.host.Placement.CanBuildAt(def.ID, behind) && !s.host.Placement.CanBuildAt(def.ID, ahead) {
			facing = facingNorth
		}
	}

	if b.def.BuildSpeed <= 0 {
		s.rechecks.Schedule(b.id(), frame+s.cfg.NoBuildPowerRetry)
	}
	s.issue(b.id(), ports.Build(def.ID, pos, facing))
	logger.Log("DEBUG", fmt.Sprintf("[Scheduler] %s builds type %d at %s", b.id(), def.ID, pos), nil)
	return ActionBuild, nil
}

// giveUp drops an order that cannot be placed. Orders for types that would not
// be enabled even without this order leave the ledger; the rest only lose
// their builder.
func (s *Scheduler) giveUp(ctx context.Context, b builder, o *build.Order, def build.UnitType, frame shared.Frame) (Action, error) {
	logger := common.LoggerFromContext(ctx)
	action := ActionOrderUnassigned
	if !s.catalog.EnabledExcluding(def.ID, 1) {
		if _, err := s.ledger.Remove(o.Handle(), frame, build.RemovalInfeasible); err != nil {
			return ActionNone, fmt.Errorf("failed to remove infeasible order: %w", err)
		}
		action = ActionOrderAbandoned
	} else {
		logger.Log("WARNING", fmt.Sprintf("[Scheduler] No build position for %s near %s", def.Name, b.position()), map[string]interface{}{
			"builder":   b.id().String(),
			"unit_type": int(def.ID),
		})
		if err := s.ledger.Unassign(o.Handle(), frame); err != nil {
			return ActionNone, fmt.Errorf("failed to unassign order: %w", err)
		}
	}
	s.rechecks.Schedule(b.id(), Now)
	return action, nil
}

// contest deals with an enemy structure sitting on the order's site
func (s *Scheduler) contest(ctx context.Context, b builder, o *build.Order, enemy shared.UnitID, frame shared.Frame) (Action, error) {
	switch {
	case b.def.CanCapture:
		s.issue(b.id(), ports.Capture(enemy))
		return ActionCapture, nil
	case b.def.CanReclaim:
		s.issue(b.id(), ports.ReclaimUnit(enemy))
		return ActionReclaimUnit, nil
	}
	common.LoggerFromContext(ctx).Log("WARNING", fmt.Sprintf("[Scheduler] %s can neither capture nor reclaim %s", b.id(), enemy), nil)
	if err := s.ledger.Unassign(o.Handle(), frame); err != nil {
		return ActionNone, fmt.Errorf("failed to unassign order: %w", err)
	}
	return ActionOrderUnassigned, nil
}

// ContestSite reacts to an enemy structure appearing on a site the builder had
// reserved
func (s *Scheduler) ContestSite(ctx context.Context, unit, enemy shared.UnitID, frame shared.Frame) (Action, error) {
	b, ok := s.lookup(unit)
	if !ok {
		return ActionNone, nil
	}
	o, has := s.ledger.OrderOf(unit)
	if !has {
		return ActionNone, nil
	}
	action, err := s.contest(ctx, b, o, enemy, frame)
	if err != nil {
		return ActionNone, err
	}
	return s.done(action), nil
}

func (s *Scheduler) orderSite(o *build.Order) *resource.Site {
	idx, ok := o.Site()
	if !ok || s.registry == nil {
		return nil
	}
	site, err := s.registry.Site(idx)
	if err != nil {
		return nil
	}
	return site
}

// buildPosition asks the placement oracle for a spot for def. Site-bound types
// only go on their reserved site; everything else searches around a jittered
// anchor near the builder.
func (s *Scheduler) buildPosition(b builder, def build.UnitType, site *resource.Site) shared.Position {
	placement := s.host.Placement
	if site != nil {
		return placement.ClosestBuildSite(def.ID, site.Position(), site.SearchRadius(), site.Spacing())
	}
	if def.NeedsSite() {
		return shared.InvalidPosition
	}

	reach := b.def.BuildDistance * 0.45
	if !b.def.IsMobile() {
		reach = b.def.BuildDistance * 0.9
	}
	anchor := b.position().Offset((2*s.rng.Float64()-1)*reach, (2*s.rng.Float64()-1)*reach)

	if !b.def.IsMobile() {
		pos := placement.ClosestBuildSite(def.ID, anchor, b.def.BuildDistance, 5)
		if !pos.IsValid() {
			pos = placement.ClosestBuildSite(def.ID, anchor, b.def.BuildDistance+25, 1)
		}
		return pos
	}

	spacing := 10
	switch {
	case def.IsMobile():
		spacing = 5
	case def.IsFactory():
		spacing = 15
	}
	for _, radius := range []float64{1000, 2500} {
		if pos := placement.ClosestBuildSite(def.ID, anchor, radius, spacing); pos.IsValid() {
			return pos
		}
	}
	return b.position()
}
