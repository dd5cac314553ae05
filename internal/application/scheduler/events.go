package scheduler

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// BuilderFinished reacts to a new builder coming online. The first builder of
// a type can unlock new types, so affordability is recomputed.
func (s *Scheduler) BuilderFinished(ctx context.Context, unit shared.UnitID, t shared.UnitTypeID, frame shared.Frame) {
	s.rechecks.Schedule(unit, Now)
	if s.catalog.Finished(t) == 1 {
		s.RecomputeAffordability(ctx, frame)
	}
}

// BuilderDestroyed releases whatever the builder held
func (s *Scheduler) BuilderDestroyed(ctx context.Context, unit shared.UnitID, t shared.UnitTypeID, frame shared.Frame) {
	s.ledger.UnassignBuilder(unit, frame)
	s.rechecks.Cancel(unit)
	if s.catalog.Finished(t) == 0 {
		s.RecomputeAffordability(ctx, frame)
	}
}

// MoveFailed clears whatever feature stopped the builder. A builder that cannot
// reclaim records the feature so another builder clears it later. Reports
// whether the builder was given a command.
func (s *Scheduler) MoveFailed(ctx context.Context, unit shared.UnitID, frame shared.Frame) bool {
	b, ok := s.lookup(unit)
	if !ok || s.host.Features == nil {
		return false
	}

	for _, f := range s.host.Features.FeaturesNear(b.position(), s.cfg.MoveFailedRadius, 10) {
		if !f.Reclaimable {
			continue
		}
		if b.def.CanReclaim {
			s.issue(unit, ports.ReclaimArea(b.position(), s.cfg.MoveFailedRadius))
			s.rechecks.Schedule(unit, frame+s.cfg.MoveFailedRetry)
			s.done(ActionClearObstacle)
			return true
		}
		s.debris.Obstacles.add(f.ID, b.position())
		common.LoggerFromContext(ctx).Log("DEBUG", fmt.Sprintf("[Scheduler] Feature %d blocks %s", f.ID, unit), nil)
		return false
	}
	return false
}

// RecomputeAffordability refreshes the cost gating of every unit type and
// drops queued orders for types that just became unaffordable.
func (s *Scheduler) RecomputeAffordability(ctx context.Context, frame shared.Frame) build.AffordabilityResult {
	logger := common.LoggerFromContext(ctx)

	result := s.catalog.RecomputeAffordability(s.cfg.Affordability, s.host.Economy.Snapshot())
	if result.Changed() {
		logger.Log("INFO", fmt.Sprintf("[Scheduler] Affordability changed: %d blocked, %d unblocked", len(result.Blocked), len(result.Unblocked)), nil)
	}
	for _, view := range s.ledger.AbandonUnaffordable(frame) {
		logger.Log("INFO", fmt.Sprintf("[Scheduler] Order for type %d removed (Low Resources)", view.UnitType), map[string]interface{}{
			"reason": string(build.RemovalCostBlocked),
		})
		if view.Builder.IsValid() {
			s.rechecks.Schedule(view.Builder, Now)
		}
	}
	return result
}
