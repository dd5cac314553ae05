package ai

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Update runs the periodic work of frame. Only every MinimalInterval-th frame
// does anything.
func (i *Instance) Update(ctx context.Context, frame shared.Frame) {
	if i.cfg.MinimalInterval > 0 && frame%i.cfg.MinimalInterval != 0 {
		return
	}
	start := i.clock.Now()
	power := i.every(frame, i.cfg.PowerInterval)

	if power && i.initiated {
		i.sweepIdle(ctx, frame)
	}
	i.runRechecks(ctx, frame)
	if !i.initiated && i.ready(frame) {
		i.initiate(ctx, frame)
	}
	if power {
		i.registry.CheckBlockedAvailable()
		if i.every(frame, i.cfg.BuildListInterval) {
			i.scheduler.RecomputeAffordability(ctx, frame)
		}
	}

	if err := i.ledger.CheckInvariants(); err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", fmt.Sprintf("[AI] Ledger invariant violated: %v", err), map[string]interface{}{
			"frame": int(frame),
		})
		metrics.RecordInvariantViolation()
	}
	metrics.RecordUpdate("update", i.clock.Since(start).Seconds())
}

func (i *Instance) every(frame, interval shared.Frame) bool {
	return interval > 0 && frame%interval == 0
}

// sweepIdle re-idles units that have been sitting without commands for too long
func (i *Instance) sweepIdle(ctx context.Context, frame shared.Frame) {
	for _, m := range i.roster.IdleLongerThan(frame, i.cfg.UnitsInterval) {
		if _, pending := i.scheduler.Rechecks().Pending(m.ID); pending {
			continue
		}
		if i.commands(m.ID) == 0 {
			i.UnitIdle(ctx, m.ID, frame)
		}
	}
}

// runRechecks handles the rechecks due at frame. Immobile units are idled
// directly; mobile units are stopped so the host reports them idle.
func (i *Instance) runRechecks(ctx context.Context, frame shared.Frame) {
	for _, unit := range i.scheduler.Rechecks().Due(frame) {
		m, ok := i.roster.Get(unit)
		if !ok || m.AIDisabled {
			continue
		}
		if _, alive := i.host.Units.Unit(unit); !alive {
			continue
		}
		if m.Type.IsMobile() {
			i.host.Commands.Issue(unit, ports.Stop())
			continue
		}
		i.UnitIdle(ctx, unit, frame)
	}
}

// ready reports whether the economy has settled enough to start scheduling
func (i *Instance) ready(frame shared.Frame) bool {
	if frame >= i.cfg.InitFrame {
		return true
	}
	snap := i.host.Economy.Snapshot()
	metal := snap.Metal.Income > 0 && snap.Metal.Income < 0.9*snap.Metal.Storage
	energy := snap.Energy.Income > 0 && snap.Energy.Income < 0.9*snap.Energy.Storage
	return metal || energy
}

// initiate computes affordability and idles every unit without commands
func (i *Instance) initiate(ctx context.Context, frame shared.Frame) {
	snap := i.host.Economy.Snapshot()
	common.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("[AI] Initiated at frame %d", frame), map[string]interface{}{
		"metal_income":  snap.Metal.Income,
		"energy_income": snap.Energy.Income,
	})
	i.initiated = true
	i.scheduler.RecomputeAffordability(ctx, frame)
	for _, m := range i.roster.Members() {
		if m.AIDisabled || !m.Finished {
			continue
		}
		if i.commands(m.ID) == 0 {
			i.UnitIdle(ctx, m.ID, frame)
		}
	}
}
