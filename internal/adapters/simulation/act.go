package simulation

import (
	"math"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const fps = shared.FramesPerSecond

// produce books one frame of income and upkeep
func (w *World) produce() {
	econ := w.scenario.Economy
	metalIncome, energyIncome := econ.MetalIncome, econ.EnergyIncome
	metalStorage, energyStorage := econ.MetalStorage, econ.EnergyStorage
	var metalUpkeep, energyUpkeep float64

	for _, id := range w.sortedUnits() {
		u := w.units[id]
		u.metalUse, u.energyUse = 0, 0
		if u.owner != ownedBySelf || u.beingBuilt {
			continue
		}
		metalIncome += u.def.ExtractsMetal*econ.SiteYield + u.def.MetalMake
		if u.def.EnergyMake >= 0 {
			energyIncome += u.def.EnergyMake
		} else {
			energyUpkeep -= u.def.EnergyMake
		}
		if !u.def.OnOffable || u.activated {
			u.metalUse += u.def.MetalUpkeep
			u.energyUse += u.def.EnergyUpkeep
		}
		if u.cloaked {
			u.energyUse += u.def.CloakCost
		}
		metalUpkeep += u.metalUse
		energyUpkeep += u.energyUse
		metalStorage += u.def.MetalStorage
		energyStorage += u.def.EnergyStorage
	}

	w.metal.book(metalIncome, metalUpkeep, metalStorage)
	w.energy.book(energyIncome, energyUpkeep, energyStorage)
}

func (a *account) book(income, upkeep, storage float64) {
	a.income = income
	a.usage = upkeep
	a.storage = storage
	a.spent = 0
	a.stock = clamp(a.stock+(income-upkeep)/fps, 0, storage)
}

// settle turns the frame's spending into a per-second usage figure
func (w *World) settle() {
	w.metal.usage += w.metal.spent * fps
	w.energy.usage += w.energy.spent * fps
	w.metal.stock = clamp(w.metal.stock, 0, w.metal.storage)
	w.energy.stock = clamp(w.energy.stock, 0, w.energy.storage)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// act advances the command at the front of u's queue by one frame
func (w *World) act(u *unit) {
	cmd := u.queue[0]
	switch cmd.Kind {
	case ports.CommandBuild:
		w.actBuild(u, cmd)
	case ports.CommandRepair:
		w.actRepair(u, cmd)
	case ports.CommandGuard:
		w.actGuard(u, cmd)
	case ports.CommandReclaimUnit:
		w.actReclaimUnit(u, cmd)
	case ports.CommandCapture:
		w.actCapture(u, cmd)
	case ports.CommandReclaimArea:
		w.actReclaimArea(u, cmd, false)
	case ports.CommandResurrect:
		w.actReclaimArea(u, cmd, true)
	case ports.CommandMove:
		if w.approach(u, cmd.Position, arrival) {
			w.finishCommand(u)
		}
	case ports.CommandWait:
		// holds until replaced
	default:
		w.finishCommand(u)
	}
}

// approach moves u towards target until it is within reach. It reports whether
// u is in reach; an immobile unit out of reach drops its command and a blocked
// move clears the queue.
func (w *World) approach(u *unit, target shared.Position, reach float64) bool {
	d := u.pos.Distance2D(target)
	if d <= reach {
		return true
	}
	if !u.def.IsMobile() {
		w.finishCommand(u)
		return false
	}

	step := math.Min(u.def.Speed, d-reach)
	next := u.pos.Offset((target.X-u.pos.X)/d*step, (target.Z-u.pos.Z)/d*step)
	if w.blocked(u, next) {
		u.queue = nil
		u.building = shared.NoUnit
		u.work = 0
		w.stats.MoveFailures++
		w.emit(Event{Kind: EventMoveFailed, Unit: u.id, Type: u.def.ID, Position: u.pos})
		return false
	}
	u.pos = next
	return u.pos.Distance2D(target) <= reach+1e-6
}

func (w *World) blocked(u *unit, next shared.Position) bool {
	class := u.def.MovementClass
	area := w.AreaOf(class, next)
	if area == 0 || area != w.AreaOf(class, u.pos) {
		return true
	}
	for _, id := range w.sortedFeatures() {
		f := w.features[id]
		if !f.blocking {
			continue
		}
		d := f.pos.Distance2D(next)
		if d < blockRadius && d < f.pos.Distance2D(u.pos) {
			return true
		}
	}
	return false
}

func (w *World) actBuild(u *unit, cmd ports.Command) {
	if u.building.IsValid() {
		c, ok := w.units[u.building]
		if !ok || !c.beingBuilt {
			w.finishCommand(u)
			return
		}
		if w.contribute(u, c) {
			w.finishCommand(u)
		}
		return
	}

	if !w.approach(u, cmd.Position, u.def.BuildDistance) {
		return
	}
	if c := w.constructionAt(cmd.UnitType, cmd.Position); c != nil {
		u.building = c.id
		return
	}
	if !w.CanBuildAt(cmd.UnitType, cmd.Position) {
		w.finishCommand(u)
		return
	}
	c := w.spawn(cmd.UnitType, cmd.Position, ownedBySelf)
	u.building = c.id
	w.stats.Created++
	w.emit(Event{Kind: EventCreated, Unit: c.id, Type: c.def.ID, Position: c.pos})
}

func (w *World) constructionAt(t shared.UnitTypeID, pos shared.Position) *unit {
	for _, id := range w.sortedUnits() {
		u := w.units[id]
		if u.owner == ownedBySelf && u.beingBuilt && u.def.ID == t && u.pos.Distance2D(pos) <= arrival {
			return u
		}
	}
	return nil
}

// contribute puts one frame of b's build power into c, limited by the stock.
// It reports whether c was finished by it.
func (w *World) contribute(b *unit, c *unit) bool {
	rate := b.def.BuildSpeed / math.Max(c.def.BuildTime, 1) / fps
	step := math.Min(rate, 1-c.progress)
	if step <= 0 {
		return false
	}

	scale := 1.0
	if need := c.def.MetalCost * step; need > 0 {
		scale = math.Min(scale, w.metal.stock/need)
	}
	if need := c.def.EnergyCost * step; need > 0 {
		scale = math.Min(scale, w.energy.stock/need)
	}
	if scale <= 0 {
		return false
	}
	step *= scale

	metal, energy := c.def.MetalCost*step, c.def.EnergyCost*step
	w.metal.stock -= metal
	w.metal.spent += metal
	w.energy.stock -= energy
	w.energy.spent += energy
	b.metalUse += metal * fps
	b.energyUse += energy * fps

	c.progress += step
	c.health = math.Max(c.health, c.maxHealth*c.progress)
	if c.progress < 1-1e-9 {
		return false
	}
	w.complete(c)
	w.stats.Finished++
	w.emit(Event{Kind: EventFinished, Unit: c.id, Type: c.def.ID, Position: c.pos})
	return true
}

func (w *World) actRepair(u *unit, cmd ports.Command) {
	t, ok := w.units[cmd.Target]
	if !ok {
		w.finishCommand(u)
		return
	}
	if !w.approach(u, t.pos, u.def.BuildDistance) {
		return
	}
	if t.beingBuilt {
		if w.contribute(u, t) {
			w.finishCommand(u)
		}
		return
	}
	t.health = math.Min(t.maxHealth, t.health+t.maxHealth*u.def.BuildSpeed/math.Max(t.def.BuildTime, 1)/fps)
	if t.health >= t.maxHealth {
		w.finishCommand(u)
	}
}

// actGuard assists whatever the guarded unit is building. Guarding only ends
// with the guarded unit or a new command.
func (w *World) actGuard(u *unit, cmd ports.Command) {
	t, ok := w.units[cmd.Target]
	if !ok {
		w.finishCommand(u)
		return
	}
	if !w.approach(u, t.pos, u.def.BuildDistance) {
		return
	}
	if c, ok := w.units[t.building]; ok && c.beingBuilt {
		w.contribute(u, c)
	}
}

func (w *World) actReclaimUnit(u *unit, cmd ports.Command) {
	t, ok := w.units[cmd.Target]
	if !ok {
		w.finishCommand(u)
		return
	}
	if !w.approach(u, t.pos, u.def.BuildDistance) {
		return
	}
	rate := u.def.BuildSpeed / math.Max(t.def.BuildTime, 1) / fps
	frac := math.Min(rate, t.health/t.maxHealth)
	t.health -= frac * t.maxHealth
	w.reclaimed(t.def.MetalCost*frac, 0)
	if t.health <= 1e-9 {
		w.destroy(t)
		w.finishCommand(u)
	}
}

// actCapture turns an enemy unit into an own one once enough build power went into it
func (w *World) actCapture(u *unit, cmd ports.Command) {
	t, ok := w.units[cmd.Target]
	if !ok || t.owner == ownedBySelf {
		w.finishCommand(u)
		return
	}
	if !w.approach(u, t.pos, u.def.BuildDistance) {
		return
	}
	u.work += u.def.BuildSpeed / math.Max(t.def.BuildTime, 1) / fps
	if u.work < 1 {
		return
	}
	if t.owner == ownedByEnemy {
		w.emit(Event{Kind: EventEnemyDestroyed, Unit: t.id, Type: t.def.ID, Position: t.pos})
	}
	t.owner = ownedBySelf
	t.queue = nil
	t.building = shared.NoUnit
	w.emit(Event{Kind: EventCreated, Unit: t.id, Type: t.def.ID, Position: t.pos})
	w.emit(Event{Kind: EventFinished, Unit: t.id, Type: t.def.ID, Position: t.pos})
	w.finishCommand(u)
}

// actReclaimArea works through the features of the area, nearest first, and
// ends when none is left. Resurrection raises the wreck as an own unit.
func (w *World) actReclaimArea(u *unit, cmd ports.Command, resurrect bool) {
	f := w.nearestFeature(cmd.Position, cmd.Radius, resurrect)
	if f == nil {
		w.finishCommand(u)
		return
	}
	if !w.approach(u, f.pos, u.def.BuildDistance) {
		return
	}

	if resurrect {
		def := w.types[f.resurrectAs]
		u.work += u.def.BuildSpeed / math.Max(def.BuildTime, 1) / fps
		if u.work < 1 {
			return
		}
		u.work = 0
		delete(w.features, f.id)
		r := w.spawn(def.ID, f.pos, ownedBySelf)
		w.complete(r)
		w.stats.Created++
		w.stats.Finished++
		w.emit(Event{Kind: EventCreated, Unit: r.id, Type: r.def.ID, Position: r.pos})
		w.emit(Event{Kind: EventFinished, Unit: r.id, Type: r.def.ID, Position: r.pos})
		return
	}

	total := f.metal + f.energy
	take := u.def.BuildSpeed / fps
	if total <= take {
		w.reclaimed(f.metal, f.energy)
		delete(w.features, f.id)
		return
	}
	frac := take / total
	metal, energy := f.metal*frac, f.energy*frac
	f.metal -= metal
	f.energy -= energy
	w.reclaimed(metal, energy)
}

func (w *World) reclaimed(metal, energy float64) {
	w.metal.stock += metal
	w.energy.stock += energy
	w.stats.MetalReclaimed += metal
	w.stats.EnergyReclaimed += energy
}

func (w *World) nearestFeature(pos shared.Position, radius float64, resurrect bool) *feature {
	var best *feature
	bestDist := math.Inf(1)
	for _, id := range w.sortedFeatures() {
		f := w.features[id]
		if resurrect && f.resurrectAs == shared.NoUnitType {
			continue
		}
		if !resurrect && !f.reclaimable {
			continue
		}
		if d := f.pos.Distance2D(pos); d <= radius && d < bestDist {
			best, bestDist = f, d
		}
	}
	return best
}
