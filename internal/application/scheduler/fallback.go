package scheduler

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/fleet"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// repairQueued sends the builder to the first damaged unit it was asked to fix
func (s *Scheduler) repairQueued(b builder) bool {
	for _, target := range s.roster.Repairs(b.id()) {
		state, ok := s.host.Units.Unit(target)
		if !ok || !state.Alive() || state.Health >= state.MaxHealth {
			s.roster.DropRepair(b.id(), target)
			continue
		}
		s.issue(b.id(), ports.Repair(target))
		return true
	}
	return false
}

// scavenge tries the resurrect and reclaim fallbacks of a builder without an order
func (s *Scheduler) scavenge(b builder, p pass) (Action, bool) {
	if !b.def.IsMobile() {
		return ActionNone, false
	}

	if b.def.CanResurrect {
		s.debris.scan(s.host.Features, b.position())
		if id, pos, dist, ok := s.nearestDebris(b, s.debris.Resurrect); ok {
			s.issue(b.id(), ports.Resurrect(pos, s.cfg.DebrisRadius))
			s.rechecks.Schedule(b.id(), p.frame+1500+travelFrames(b, dist))
			s.debris.Resurrect.remove(id)
			return ActionResurrect, true
		}
	}

	if !b.def.CanReclaim || b.def.IsCommander {
		return ActionNone, false
	}

	if action, ok := s.reclaimDecommissioned(b); ok {
		return action, true
	}
	if action, ok := s.clearObstacle(b, p.frame); ok {
		return action, true
	}

	snap := p.snap
	if snap.Metal.Stock < 0.15*snap.Metal.Storage || !p.metalFavorable(s.cfg.Tuning, 0.5, 1.0) {
		s.debris.scan(s.host.Features, b.position())
		if id, pos, dist, ok := s.nearestDebris(b, s.debris.Metal); ok {
			s.issue(b.id(), ports.ReclaimArea(pos, s.cfg.DebrisRadius))
			s.rechecks.Schedule(b.id(), p.frame+1500+travelFrames(b, dist))
			s.debris.Metal.remove(id)
			return ActionReclaimMetal, true
		}
	}
	if snap.Energy.Stock < 0.15*snap.Energy.Storage || !p.energyFavorable(s.cfg.Tuning, 0.5, 1.0) {
		s.debris.scan(s.host.Features, b.position())
		if id, pos, dist, ok := s.nearestDebris(b, s.debris.Energy); ok {
			s.issue(b.id(), ports.ReclaimArea(pos, s.cfg.DebrisRadius))
			s.rechecks.Schedule(b.id(), p.frame+1500+travelFrames(b, dist))
			s.debris.Energy.remove(id)
			return ActionReclaimEnergy, true
		}
	}
	return ActionNone, false
}

// nearestDebris picks the closest reachable entry of list
func (s *Scheduler) nearestDebris(b builder, list debrisList) (int, shared.Position, float64, bool) {
	if list.len() == 0 {
		return 0, shared.InvalidPosition, 0, false
	}
	ids := list.ids()
	candidates := make([]fleet.Candidate, 0, len(ids))
	for _, id := range ids {
		pos := list.positions[id]
		candidates = append(candidates, fleet.Candidate{ID: id, Position: pos, Reachable: s.reachable(b, pos)})
	}
	res, err := s.selector.SelectNearest(candidates, b.position(), 0)
	if err != nil {
		return 0, shared.InvalidPosition, 0, false
	}
	return res.ID, list.positions[res.ID], res.Distance, true
}

// reclaimDecommissioned recycles the oldest outranked structure
func (s *Scheduler) reclaimDecommissioned(b builder) (Action, bool) {
	for _, unit := range s.roster.Decommissioned() {
		state, ok := s.host.Units.Unit(unit)
		if !ok || !state.Alive() {
			s.roster.Recommission(unit)
			continue
		}
		if s.reachable(b, state.Position) {
			s.issue(b.id(), ports.ReclaimUnit(unit))
			return ActionReclaimUnit, true
		}
		return ActionNone, false
	}
	return ActionNone, false
}

// clearObstacle reclaims the lowest-numbered feature that blocked a move
func (s *Scheduler) clearObstacle(b builder, frame shared.Frame) (Action, bool) {
	ids := s.debris.Obstacles.ids()
	if len(ids) == 0 {
		return ActionNone, false
	}
	id := ids[0]
	pos := s.debris.Obstacles.positions[id]
	if !s.reachable(b, pos) {
		return ActionNone, false
	}
	s.debris.Obstacles.remove(id)
	if s.host.Features == nil {
		return ActionNone, false
	}
	if _, exists := s.host.Features.Feature(id); !exists {
		return ActionNone, false
	}
	s.issue(b.id(), ports.ReclaimArea(pos, s.cfg.ClearingRadius))
	s.rechecks.Schedule(b.id(), frame+150+travelFrames(b, b.position().Distance(pos)))
	return ActionClearObstacle, true
}

// assist guards a builder that is busy with an order
func (s *Scheduler) assist(b builder, frame shared.Frame) (Action, bool) {
	if !b.def.CanAssist {
		return ActionNone, false
	}

	target := shared.NoUnit
	if b.def.IsMobile() {
		var candidates []fleet.Candidate
		for _, o := range s.ledger.Orders() {
			if !o.HasBuilder() || o.Builder() == b.id() {
				continue
			}
			state, ok := s.host.Units.Unit(o.Builder())
			if !ok {
				continue
			}
			candidates = append(candidates, fleet.Candidate{
				ID:        int(o.Builder()),
				Position:  state.Position,
				Reachable: s.reachable(b, state.Position),
			})
		}
		if res, err := s.selector.SelectNearest(candidates, b.position(), 0); err == nil {
			target = shared.UnitID(res.ID)
		}
	} else {
		for _, unit := range s.host.Units.OwnUnitsNear(b.position(), b.def.BuildDistance) {
			if unit == b.id() {
				continue
			}
			if _, has := s.ledger.OrderOf(unit); has {
				target = unit
				break
			}
		}
	}
	if !target.IsValid() {
		return ActionNone, false
	}
	s.issue(b.id(), ports.Guard(target))
	s.rechecks.Schedule(b.id(), frame+s.cfg.AssistTimeout)
	return ActionAssist, true
}

// wait parks the builder until the next recheck
func (s *Scheduler) wait(b builder, frame shared.Frame) {
	s.rechecks.Schedule(b.id(), frame+s.cfg.WaitTimeout)
	if b.def.IsMobile() {
		s.issue(b.id(), ports.Wait())
		return
	}
	s.roster.SetIdle(b.id(), frame)
}
