package ai

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// UnitCreated registers a new own unit, still under construction, and works
// out which order spawned it
func (i *Instance) UnitCreated(ctx context.Context, unit shared.UnitID, t shared.UnitTypeID, pos shared.Position, frame shared.Frame) {
	logger := common.LoggerFromContext(ctx)

	def, ok := i.catalog.Type(t)
	if !ok {
		logger.Log("WARNING", fmt.Sprintf("[AI] %s", &build.ErrUnknownUnitType{Type: t, Context: "unit created"}), map[string]interface{}{
			"unit": unit.String(),
		})
		return
	}
	if _, known := i.roster.Get(unit); known {
		return
	}

	result, err := i.matcher.Attribute(ctx, unit, t, pos)
	if err != nil {
		logger.Log("ERROR", fmt.Sprintf("[Attribution] %v", err), nil)
	}
	i.roster.Add(unit, def, frame, result.AIDisabled)
	if !result.AIDisabled {
		i.catalog.ConstructionStarted(t)
	}
	if i.registry.ResourceCreated(unit, t, pos, result.AIDisabled) {
		logger.Log("INFO", fmt.Sprintf("[AI] %s sits on a site it is outranked on, decommissioning", unit), nil)
		i.roster.Decommission(unit)
	}
}

// UnitFinished completes a unit: it closes the order that spawned it and joins
// a build list
func (i *Instance) UnitFinished(ctx context.Context, unit shared.UnitID, frame shared.Frame) {
	m, ok := i.roster.Get(unit)
	if !ok {
		// finished without a creation event, for instance when a queued build was cancelled
		state, exists := i.host.Units.Unit(unit)
		if !exists {
			return
		}
		i.UnitCreated(ctx, unit, state.Type, state.Position, frame)
		if m, ok = i.roster.Get(unit); !ok {
			return
		}
	}
	i.roster.Finish(unit)
	if m.AIDisabled {
		return
	}
	t := m.Type.ID

	if i.initiated {
		i.closeOrder(ctx, unit, frame)
	}

	i.catalog.ConstructionEnded(t)
	i.catalog.UnitFinished(t)
	m.Category = i.catalog.AssignCategory(t, nil)
	if m.Category == nil {
		common.LoggerFromContext(ctx).Log("WARNING", fmt.Sprintf("[AI] %s of type %s is in no build list", unit, m.Type.Name), nil)
	}

	if m.Type.IsBuilder() {
		i.scheduler.BuilderFinished(ctx, unit, t, frame)
	}
	if !m.Type.IsMobile() {
		i.UnitIdle(ctx, unit, frame)
	}
}

// closeOrder removes the order a finished unit was built for and moves the
// unit off the pad of an immobile builder
func (i *Instance) closeOrder(ctx context.Context, unit shared.UnitID, frame shared.Frame) {
	c, ok := i.ledger.ConstructionFinished(unit)
	if !ok || c.Abandoned {
		return
	}
	o, live := i.ledger.Get(c.Order)
	if !live {
		return
	}

	builder := o.Builder()
	if i.commands(unit) == 0 && builder.IsValid() {
		if m, ok := i.roster.Get(builder); ok && !m.Type.IsMobile() {
			if state, ok := i.host.Units.Unit(unit); ok {
				dest := state.Position.Offset(float64(i.rng.Intn(201)-100), float64(150+i.rng.Intn(201)))
				i.host.Commands.Issue(unit, ports.Move(dest))
				i.scheduler.Rechecks().Schedule(unit, frame+i.cfg.ProductClearance)
			}
		}
	}

	if _, err := i.ledger.Remove(c.Order, frame, build.RemovalCompleted); err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", fmt.Sprintf("[AI] failed to close order of %s: %v", unit, err), nil)
	}
}

// UnitDestroyed forgets a unit, finished or not
func (i *Instance) UnitDestroyed(ctx context.Context, unit shared.UnitID, frame shared.Frame) {
	m, ok := i.roster.Get(unit)
	if !ok {
		return
	}
	i.scheduler.Rechecks().Cancel(unit)
	t := m.Type.ID

	if !m.AIDisabled {
		if !m.Finished {
			i.ledger.ConstructionDestroyed(unit)
			i.catalog.ConstructionEnded(t)
		} else {
			i.catalog.UnitDestroyed(t)
			i.catalog.ReleaseCategory(m.Category)
			if m.Type.IsBuilder() {
				i.scheduler.BuilderDestroyed(ctx, unit, t, frame)
			}
		}
	}
	i.registry.ResourceDestroyed(unit, t)
	i.roster.Remove(unit)
}

// UnitIdle hands an idle builder to the scheduler. Repeats within the idle
// throttle are deferred to a recheck.
func (i *Instance) UnitIdle(ctx context.Context, unit shared.UnitID, frame shared.Frame) {
	m, ok := i.roster.Get(unit)
	if !ok || m.AIDisabled || !m.Finished {
		return
	}
	state, ok := i.host.Units.Unit(unit)
	if !ok || state.BeingBuilt || i.commands(unit) > 0 {
		return
	}
	if !i.initiated {
		return
	}
	if !i.roster.AcceptIdle(unit, frame, i.cfg.IdleThrottle) {
		i.scheduler.Rechecks().Schedule(unit, frame+i.cfg.IdleThrottle)
		return
	}
	i.scheduler.Rechecks().Cancel(unit)
	i.roster.SetIdle(unit, frame)

	if !m.IsBuilder() {
		return
	}
	if _, err := i.scheduler.BuilderIdle(ctx, unit, frame); err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", fmt.Sprintf("[Scheduler] %v", err), map[string]interface{}{
			"unit": unit.String(),
		})
	}
}

// UnitDamaged asks nearby immobile builders to repair a damaged structure
func (i *Instance) UnitDamaged(ctx context.Context, unit shared.UnitID, frame shared.Frame) {
	m, ok := i.roster.Get(unit)
	if !ok || m.Type.IsMobile() {
		return
	}
	state, ok := i.host.Units.Unit(unit)
	if !ok || state.BeingBuilt || !state.Alive() {
		return
	}
	for _, b := range i.roster.Builders() {
		if b.ID == unit || b.Type.IsMobile() {
			continue
		}
		bs, ok := i.host.Units.Unit(b.ID)
		if !ok || bs.Position.Distance2D(state.Position) >= b.Type.BuildDistance {
			continue
		}
		idle := len(i.roster.Repairs(b.ID)) == 0
		if !i.roster.QueueRepair(b.ID, unit) {
			continue
		}
		if idle {
			i.host.Commands.Issue(b.ID, ports.Repair(unit))
			i.roster.SetBusy(b.ID)
		}
	}
}

// UnitMoveFailed gives a stuck unit a chance to clear its way, or parks it
func (i *Instance) UnitMoveFailed(ctx context.Context, unit shared.UnitID, frame shared.Frame) {
	m, ok := i.roster.Get(unit)
	if !ok || m.AIDisabled || !m.Type.IsMobile() {
		return
	}
	if i.scheduler.MoveFailed(ctx, unit, frame) || i.commands(unit) > 0 {
		return
	}
	i.host.Commands.Issue(unit, ports.Wait())
	i.scheduler.Rechecks().Schedule(unit, frame+i.cfg.MoveFailedWait)
}

// EnemyEnteredLOS records enemy resource structures. When one sits on a site
// one of our builders reserved, that builder contests it.
func (i *Instance) EnemyEnteredLOS(ctx context.Context, enemy shared.UnitID, t shared.UnitTypeID, pos shared.Position, frame shared.Frame) {
	if state, ok := i.host.Units.Unit(enemy); ok && !state.Alive() {
		common.LoggerFromContext(ctx).Log("WARNING", fmt.Sprintf("[AI] %s entered sight but is dead", enemy), nil)
		return
	}
	builder, ok := i.registry.EnemyResourceSeen(enemy, t, pos)
	if !ok {
		return
	}
	if _, err := i.scheduler.ContestSite(ctx, builder, enemy, frame); err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", fmt.Sprintf("[Scheduler] %v", err), nil)
	}
}

// EnemyDestroyed frees the site an enemy resource structure was holding
func (i *Instance) EnemyDestroyed(ctx context.Context, enemy shared.UnitID, t shared.UnitTypeID, frame shared.Frame) {
	i.registry.ResourceDestroyed(enemy, t)
	common.LoggerFromContext(ctx).Log("DEBUG", fmt.Sprintf("[AI] Enemy %s of type %d gone at frame %d", enemy, t, frame), nil)
}
