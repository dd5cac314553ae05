package scheduler

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/fleet"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Action names the outcome of one idle-builder decision
type Action string

const (
	ActionNone            Action = "none"
	ActionBuild           Action = "build"
	ActionResume          Action = "resume"
	ActionRepair          Action = "repair"
	ActionResurrect       Action = "resurrect"
	ActionReclaimUnit     Action = "reclaim_unit"
	ActionClearObstacle   Action = "clear_obstacle"
	ActionReclaimMetal    Action = "reclaim_metal"
	ActionReclaimEnergy   Action = "reclaim_energy"
	ActionCapture         Action = "capture"
	ActionAssist          Action = "assist"
	ActionWait            Action = "wait"
	ActionRecheck         Action = "recheck"
	ActionOrderAbandoned  Action = "order_abandoned"
	ActionOrderUnassigned Action = "order_unassigned"
)

// Dependencies are the collaborators a Scheduler works on. The scheduler does
// not own them; the AI instance shares them with its other event handlers.
type Dependencies struct {
	Host     ports.Host
	Catalog  *build.Catalog
	Ledger   *build.Ledger
	Registry *resource.Registry
	Roster   *fleet.Roster
	Random   shared.Random
}

// Scheduler decides what an idle builder does next.
//
// Every decision is a pure function of the shared state, the host's answers
// and the seeded generator, so identical matches make identical choices.
type Scheduler struct {
	cfg      Config
	host     ports.Host
	catalog  *build.Catalog
	ledger   *build.Ledger
	registry *resource.Registry
	roster   *fleet.Roster
	rng      shared.Random

	rechecks *RecheckQueue
	debris   *Debris
	selector *fleet.Selector
}

// New creates a scheduler over deps
func New(cfg Config, deps Dependencies) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		host:     deps.Host,
		catalog:  deps.Catalog,
		ledger:   deps.Ledger,
		registry: deps.Registry,
		roster:   deps.Roster,
		rng:      deps.Random,
		rechecks: NewRecheckQueue(),
		debris:   newDebris(cfg),
		selector: fleet.NewSelector(),
	}
}

// Rechecks returns the queue of units waiting to be idled again
func (s *Scheduler) Rechecks() *RecheckQueue { return s.rechecks }

// Debris returns the features the scheduler knows about
func (s *Scheduler) Debris() *Debris { return s.debris }

// Config returns the thresholds in use
func (s *Scheduler) Config() Config { return s.cfg }

// builder is the per-call view of the unit being scheduled
type builder struct {
	member *fleet.Member
	def    build.UnitType
	state  ports.UnitState
}

// id is the builder's unit id
func (b builder) id() shared.UnitID { return b.member.ID }

// position is where the host last reported the builder
func (b builder) position() shared.Position { return b.state.Position }

// pass carries the economy view of one idle decision
type pass struct {
	frame      shared.Frame
	snap       economy.Snapshot
	correction economy.BuilderCorrection
	producers  economy.Producers
}

func (p pass) metalFavorable(t economy.Tuning, storage, production float64) bool {
	return economy.MetalIsFavorable(t, p.snap, p.producers, p.correction, storage, production)
}

func (p pass) energyFavorable(t economy.Tuning, storage, production float64) bool {
	return economy.EnergyIsFavorable(t, p.snap, p.producers, p.correction, storage, production)
}

// BuilderIdle picks and issues the next task of an idle builder
func (s *Scheduler) BuilderIdle(ctx context.Context, unit shared.UnitID, frame shared.Frame) (Action, error) {
	logger := common.LoggerFromContext(ctx)

	b, ok := s.lookup(unit)
	if !ok {
		return ActionNone, fmt.Errorf("unit %s is not a schedulable builder", unit)
	}

	p := s.newPass(frame)
	forecast := economy.NewForecast(s.cfg.Tuning, p.snap, s.ledger.Accounting(), p.correction)

	haveOrder := false
	if o, has := s.ledger.OrderOf(unit); has {
		condemned, reason, err := s.checkOwnOrder(o, frame)
		if err != nil {
			return ActionNone, err
		}
		if condemned {
			if _, err := s.ledger.Remove(o.Handle(), frame, reason); err != nil {
				return ActionNone, fmt.Errorf("failed to remove order: %w", err)
			}
			logger.Log("INFO", fmt.Sprintf("[Scheduler] Order %s abandoned (%s)", o, reason), map[string]interface{}{
				"builder": unit.String(),
				"reason":  string(reason),
			})
		} else {
			haveOrder = true
		}
	}

	if !haveOrder && len(b.def.BuildOptions) > 0 {
		if err := s.expireOrders(ctx, frame); err != nil {
			return ActionNone, err
		}
		if err := s.openOrders(ctx, b, p, forecast); err != nil {
			return ActionNone, err
		}
		assigned, err := s.claimExistingOrder(b, p)
		if err != nil {
			return ActionNone, err
		}
		haveOrder = assigned
	}

	if s.repairQueued(b) {
		return s.done(ActionRepair), nil
	}

	if !haveOrder {
		if action, ok := s.scavenge(b, p); ok {
			return s.done(action), nil
		}
		assigned, err := s.openMilitaryOrder(b, p)
		if err != nil {
			return ActionNone, err
		}
		haveOrder = assigned
	}

	if haveOrder {
		o, _ := s.ledger.OrderOf(unit)
		action, err := s.execute(ctx, b, o, frame)
		if err != nil {
			return ActionNone, err
		}
		return s.done(action), nil
	}

	if action, ok := s.assist(b, frame); ok {
		return s.done(action), nil
	}

	s.wait(b, frame)
	return s.done(ActionWait), nil
}

func (s *Scheduler) done(action Action) Action {
	metrics.RecordBuilderAction(string(action))
	return action
}

func (s *Scheduler) lookup(unit shared.UnitID) (builder, bool) {
	m, ok := s.roster.Get(unit)
	if !ok || !m.Finished || m.AIDisabled || !m.IsBuilder() {
		return builder{}, false
	}
	state, ok := s.host.Units.Unit(unit)
	if !ok {
		return builder{}, false
	}
	return builder{member: m, def: m.Type, state: state}, true
}

func (s *Scheduler) newPass(frame shared.Frame) pass {
	return pass{
		frame:      frame,
		snap:       s.host.Economy.Snapshot(),
		correction: s.recentBuilderCorrection(frame),
		producers:  s.catalog.Producers(),
	}
}

// recentBuilderCorrection removes the usage of a builder that just finished an
// order from the figures the host reports, since it is about to be reassigned.
// Upkeep of an activated unit and the cost of its cloak keep running after the
// order, so they stay in the figures.
func (s *Scheduler) recentBuilderCorrection(frame shared.Frame) economy.BuilderCorrection {
	id, at := s.ledger.LastRemovedBuilder()
	if !id.IsValid() || at+s.cfg.RecentBuilderWindow < frame {
		return economy.BuilderCorrection{}
	}
	state, ok := s.host.Units.Unit(id)
	if !ok || !state.Alive() {
		return economy.BuilderCorrection{}
	}
	correction := economy.BuilderCorrection{Metal: state.MetalUse, Energy: state.EnergyUse}
	def, ok := s.catalog.Type(state.Type)
	if !ok {
		return correction
	}
	if def.OnOffable && state.Activated {
		correction.Metal -= def.MetalUpkeep
		correction.Energy -= def.EnergyUpkeep
	}
	if def.CanCloak && state.Cloaked {
		correction.Energy -= def.CloakCost
	}
	return correction
}

// checkOwnOrder reports whether the order held by an idle builder must be dropped
func (s *Scheduler) checkOwnOrder(o *build.Order, frame shared.Frame) (bool, build.RemovalReason, error) {
	updated, err := s.ledger.RecordIdle(o.Handle(), ports.UnitHealth{Units: s.host.Units})
	if err != nil {
		return false, "", fmt.Errorf("failed to record idle report: %w", err)
	}
	if !updated.IsValid(frame) {
		return true, build.RemovalExpired, nil
	}
	if updated.Retries() > s.cfg.RetryLimit {
		return true, build.RemovalRetries, nil
	}
	return false, "", nil
}

// expireOrders drops orders that outlived their expiry, or whose construction
// stalled barely started, and rechecks the builders they held.
func (s *Scheduler) expireOrders(ctx context.Context, frame shared.Frame) error {
	logger := common.LoggerFromContext(ctx)
	for _, o := range s.ledger.Orders() {
		reason, expired := s.expired(o, frame)
		if !expired {
			continue
		}
		view, err := s.ledger.Remove(o.Handle(), frame, reason)
		if err != nil {
			return fmt.Errorf("failed to expire order: %w", err)
		}
		if view.Builder.IsValid() {
			s.rechecks.Schedule(view.Builder, Now)
		}
		logger.Log("INFO", fmt.Sprintf("[Scheduler] Order for type %d removed (%s)", view.UnitType, reason), nil)
	}
	return nil
}

func (s *Scheduler) expired(o *build.Order, frame shared.Frame) (build.RemovalReason, bool) {
	if !o.IsValid(frame) {
		return build.RemovalExpired, true
	}
	if frame <= o.Expiry()+s.cfg.DecayWindow {
		return "", false
	}
	first, ok := o.FirstSpawned()
	if !ok {
		return "", false
	}
	state, ok := s.host.Units.Unit(first)
	if ok && state.Health < s.cfg.DecayHealthFraction*state.MaxHealth {
		return build.RemovalDecayed, true
	}
	return "", false
}

// issue hands cmd to unit and marks it busy
func (s *Scheduler) issue(unit shared.UnitID, cmd ports.Command) {
	s.host.Commands.Issue(unit, cmd)
	s.roster.SetBusy(unit)
}

// reachable reports whether a mobile builder can walk to pos
func (s *Scheduler) reachable(b builder, pos shared.Position) bool {
	if !b.def.IsMobile() {
		return false
	}
	if s.host.Terrain == nil {
		return true
	}
	from := s.host.Terrain.AreaOf(b.def.MovementClass, b.position())
	return from > 0 && from == s.host.Terrain.AreaOf(b.def.MovementClass, pos)
}

// travelFrames estimates the frames a builder needs to walk dist
func travelFrames(b builder, dist float64) shared.Frame {
	if b.def.Speed <= 0 {
		return 0
	}
	return shared.Frame(30 * int(dist/(b.def.Speed/3)))
}
