package simulation

import (
	"math"
	"sort"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const (
	// footprint is how close two structures may stand
	footprint = 24
	// spacingUnit converts a placement spacing into map distance
	spacingUnit = 4
	// searchStep is the grid of the placement search
	searchStep = 8
	// blockRadius is how close a mobile unit may come to a blocking feature
	blockRadius = 20
	// geoRadius is how close a geothermal plant must stand to its vent
	geoRadius = 16
	// arrival is how close a move command has to get
	arrival = 8
)

type owner int

const (
	ownedBySelf owner = iota
	ownedByAlly
	ownedByEnemy
)

type unit struct {
	id        shared.UnitID
	def       build.UnitType
	owner     owner
	pos       shared.Position
	health    float64
	maxHealth float64
	// progress is the completed fraction of a unit under construction
	progress   float64
	beingBuilt bool
	queue      []ports.Command
	// building is the construction started by the Build command at the queue front
	building shared.UnitID
	// work is the accumulated progress of a reclaim, resurrect or capture
	work      float64
	metalUse  float64
	energyUse float64
	// activated starts true; cloakers stay cloaked for their whole life
	activated bool
	cloaked   bool
}

func (u *unit) state() ports.UnitState {
	return ports.UnitState{
		ID:         u.id,
		Type:       u.def.ID,
		Position:   u.pos,
		Health:     u.health,
		MaxHealth:  u.maxHealth,
		BeingBuilt: u.beingBuilt,
		Own:        u.owner == ownedBySelf,
		MetalUse:   u.metalUse,
		EnergyUse:  u.energyUse,
		Activated:  u.activated,
		Cloaked:    u.cloaked,
	}
}

type feature struct {
	id          int
	pos         shared.Position
	metal       float64
	energy      float64
	reclaimable bool
	blocking    bool
	resurrectAs shared.UnitTypeID
}

func (f *feature) view() ports.Feature {
	return ports.Feature{
		ID:            f.id,
		Position:      f.pos,
		Metal:         f.metal,
		Energy:        f.energy,
		Reclaimable:   f.reclaimable,
		Resurrectable: f.resurrectAs != shared.NoUnitType,
	}
}

type account struct {
	stock   float64
	income  float64
	usage   float64
	storage float64
	spent   float64
}

func (a account) report() economy.ResourceState {
	return economy.ResourceState{Stock: a.stock, Income: a.income, Usage: a.usage, Storage: a.storage}
}

// Stats counts what happened during a run
type Stats struct {
	Created         int
	Finished        int
	Destroyed       int
	MoveFailures    int
	MetalReclaimed  float64
	EnergyReclaimed float64
	Commands        map[string]int
}

// World is a deterministic stand-in for the game engine. It answers every host
// port from its own state and advances that state one frame per Step.
//
// World is not safe for concurrent use.
type World struct {
	scenario *Scenario
	types    map[shared.UnitTypeID]build.UnitType
	classes  []resource.MovementClass

	units    map[shared.UnitID]*unit
	features map[int]*feature
	nextUnit shared.UnitID

	metal  account
	energy account

	frame   shared.Frame
	events  []Event
	stopped []shared.UnitID
	stats   Stats
}

// NewWorld lays out the scenario's features and allied structures. Own units
// appear with Begin.
func NewWorld(s *Scenario) *World {
	w := &World{
		scenario: s,
		types:    make(map[shared.UnitTypeID]build.UnitType, len(s.Types)),
		classes:  s.Classes(),
		units:    make(map[shared.UnitID]*unit),
		features: make(map[int]*feature),
		nextUnit: 1,
		metal:    account{stock: s.Economy.MetalStock, storage: s.Economy.MetalStorage},
		energy:   account{stock: s.Economy.EnergyStock, storage: s.Economy.EnergyStorage},
		stats:    Stats{Commands: make(map[string]int)},
	}
	for _, t := range s.UnitTypes() {
		w.types[t.ID] = t
	}
	for i, f := range s.Features {
		resurrect := shared.NoUnitType
		if f.ResurrectAs != nil {
			resurrect = shared.UnitTypeID(*f.ResurrectAs)
		}
		w.features[i+1] = &feature{
			id:          i + 1,
			pos:         shared.NewPosition(f.X, f.Z),
			metal:       f.Metal,
			energy:      f.Energy,
			reclaimable: f.Reclaimable,
			blocking:    f.Blocking,
			resurrectAs: resurrect,
		}
	}
	for _, a := range s.Allies {
		u := w.spawn(shared.UnitTypeID(a.Type), shared.NewPosition(a.X, a.Z), ownedByAlly)
		w.complete(u)
	}
	return w
}

// Host returns the ports the bot reads and drives the world through
func (w *World) Host() ports.Host {
	return ports.Host{
		Units:     w,
		Features:  w,
		Commands:  w,
		Economy:   w,
		Terrain:   w,
		Placement: w,
		Allies:    w,
	}
}

// Frame returns the last frame stepped
func (w *World) Frame() shared.Frame { return w.frame }

// Stats returns a copy of the run counters
func (w *World) Stats() Stats {
	out := w.stats
	out.Commands = make(map[string]int, len(w.stats.Commands))
	for k, v := range w.stats.Commands {
		out.Commands[k] = v
	}
	return out
}

// Begin places the scenario's own starting units, finished, and returns their
// creation events
func (w *World) Begin() []Event {
	for _, p := range w.scenario.Units {
		u := w.spawn(shared.UnitTypeID(p.Type), shared.NewPosition(p.X, p.Z), ownedBySelf)
		w.complete(u)
		w.emit(Event{Kind: EventCreated, Unit: u.id, Type: u.def.ID, Position: u.pos})
		w.emit(Event{Kind: EventFinished, Unit: u.id, Type: u.def.ID, Position: u.pos})
	}
	return w.drain()
}

// Step advances the world to frame and returns what happened, in order
func (w *World) Step(frame shared.Frame) []Event {
	w.frame = frame
	w.script(frame)
	w.produce()

	for _, id := range w.sortedUnits() {
		u, ok := w.units[id]
		if !ok || u.owner != ownedBySelf || u.beingBuilt || len(u.queue) == 0 {
			continue
		}
		w.act(u)
	}

	w.settle()
	for _, id := range w.stopped {
		if u, ok := w.units[id]; ok && len(u.queue) == 0 {
			w.emit(Event{Kind: EventIdle, Unit: id, Type: u.def.ID, Position: u.pos})
		}
	}
	w.stopped = w.stopped[:0]
	return w.drain()
}

func (w *World) emit(e Event) {
	e.Frame = w.frame
	w.events = append(w.events, e)
}

func (w *World) drain() []Event {
	out := w.events
	w.events = nil
	return out
}

func (w *World) sortedUnits() []shared.UnitID {
	ids := make([]shared.UnitID, 0, len(w.units))
	for id := range w.units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *World) sortedFeatures() []int {
	ids := make([]int, 0, len(w.features))
	for id := range w.features {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (w *World) healthOf(def build.UnitType) float64 {
	if h := w.scenario.healthOf(int(def.ID)); h > 0 {
		return h
	}
	return 100 + def.MetalCost
}

// spawn adds a unit under construction
func (w *World) spawn(t shared.UnitTypeID, pos shared.Position, o owner) *unit {
	def := w.types[t]
	u := &unit{
		id:         w.nextUnit,
		def:        def,
		owner:      o,
		pos:        pos,
		maxHealth:  w.healthOf(def),
		beingBuilt: true,
		building:   shared.NoUnit,
		activated:  true,
		cloaked:    def.CanCloak,
	}
	u.health = u.maxHealth * 0.01
	w.units[u.id] = u
	w.nextUnit++
	return u
}

func (w *World) complete(u *unit) {
	u.beingBuilt = false
	u.progress = 1
	u.health = u.maxHealth
}

// script applies the scenario's timed enemies and raids
func (w *World) script(frame shared.Frame) {
	for _, e := range w.scenario.Enemies {
		if shared.Frame(e.Frame) != frame {
			continue
		}
		u := w.spawn(shared.UnitTypeID(e.Type), shared.NewPosition(e.X, e.Z), ownedByEnemy)
		w.complete(u)
		w.emit(Event{Kind: EventEnemySeen, Unit: u.id, Type: u.def.ID, Position: u.pos})
	}
	for _, r := range w.scenario.Raids {
		if shared.Frame(r.Frame) != frame {
			continue
		}
		center := shared.NewPosition(r.X, r.Z)
		for _, id := range w.sortedUnits() {
			u := w.units[id]
			if u.owner != ownedBySelf || u.pos.Distance2D(center) > r.Radius {
				continue
			}
			u.health -= r.Damage
			if u.health <= 0 {
				w.destroy(u)
				continue
			}
			w.emit(Event{Kind: EventDamaged, Unit: u.id, Type: u.def.ID, Position: u.pos})
		}
	}
}

// destroy removes u and reports it to whoever owned it
func (w *World) destroy(u *unit) {
	delete(w.units, u.id)
	switch u.owner {
	case ownedBySelf:
		w.stats.Destroyed++
		w.emit(Event{Kind: EventDestroyed, Unit: u.id, Type: u.def.ID, Position: u.pos})
	case ownedByEnemy:
		w.emit(Event{Kind: EventEnemyDestroyed, Unit: u.id, Type: u.def.ID, Position: u.pos})
	}
}

// finishCommand pops the front command and reports the unit idle when nothing is left
func (w *World) finishCommand(u *unit) {
	if len(u.queue) > 0 {
		u.queue = u.queue[1:]
	}
	u.building = shared.NoUnit
	u.work = 0
	if len(u.queue) == 0 {
		w.emit(Event{Kind: EventIdle, Unit: u.id, Type: u.def.ID, Position: u.pos})
	}
}

// Issue replaces the unit's queue with cmd. A stopped unit is reported idle on
// the next frame.
func (w *World) Issue(id shared.UnitID, cmd ports.Command) {
	u, ok := w.units[id]
	if !ok || u.owner != ownedBySelf {
		return
	}
	w.stats.Commands[cmd.Kind.String()]++
	u.building = shared.NoUnit
	u.work = 0
	if cmd.Kind == ports.CommandStop {
		u.queue = nil
		w.stopped = append(w.stopped, id)
		return
	}
	u.queue = []ports.Command{cmd}
}

// Unit implements ports.UnitOracle
func (w *World) Unit(id shared.UnitID) (ports.UnitState, bool) {
	u, ok := w.units[id]
	if !ok {
		return ports.UnitState{}, false
	}
	return u.state(), true
}

// Commands implements ports.UnitOracle
func (w *World) Commands(id shared.UnitID) []ports.Command {
	u, ok := w.units[id]
	if !ok || u.owner != ownedBySelf {
		return nil
	}
	return append([]ports.Command(nil), u.queue...)
}

// OwnUnitsNear implements ports.UnitOracle
func (w *World) OwnUnitsNear(pos shared.Position, radius float64) []shared.UnitID {
	var out []shared.UnitID
	for _, id := range w.sortedUnits() {
		u := w.units[id]
		if u.owner == ownedBySelf && u.pos.Distance2D(pos) <= radius {
			out = append(out, id)
		}
	}
	return out
}

// FeaturesNear implements ports.FeatureOracle
func (w *World) FeaturesNear(pos shared.Position, radius float64, limit int) []ports.Feature {
	var out []ports.Feature
	for _, id := range w.sortedFeatures() {
		f := w.features[id]
		if f.pos.Distance2D(pos) <= radius {
			out = append(out, f.view())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position.Distance2D(pos) < out[j].Position.Distance2D(pos)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Feature implements ports.FeatureOracle
func (w *World) Feature(id int) (ports.Feature, bool) {
	f, ok := w.features[id]
	if !ok {
		return ports.Feature{}, false
	}
	return f.view(), true
}

// Snapshot implements economy.Telemetry
func (w *World) Snapshot() economy.Snapshot {
	return economy.Snapshot{Metal: w.metal.report(), Energy: w.energy.report()}
}

// AlliedResourceUnits implements resource.AllyScanner
func (w *World) AlliedResourceUnits() []resource.ObservedUnit {
	var out []resource.ObservedUnit
	for _, id := range w.sortedUnits() {
		u := w.units[id]
		if u.owner == ownedByAlly && u.def.NeedsSite() {
			out = append(out, resource.ObservedUnit{ID: u.id, Type: u.def.ID, Position: u.pos})
		}
	}
	return out
}

// MovementClasses implements resource.TerrainOracle
func (w *World) MovementClasses() []resource.MovementClass {
	return append([]resource.MovementClass(nil), w.classes...)
}

// AreaOf implements resource.TerrainOracle. The mainland is area 1 and the
// n-th island is area n+2.
func (w *World) AreaOf(_ int, pos shared.Position) int {
	if !w.onMap(pos) {
		return 0
	}
	for i, r := range w.scenario.Map.Islands {
		if r.Contains(pos) {
			return i + 2
		}
	}
	return 1
}

// PathDistance implements resource.TerrainOracle with straight lines inside one area
func (w *World) PathDistance(from, to shared.Position, classID int) resource.PathResult {
	a := w.AreaOf(classID, from)
	if a == 0 || a != w.AreaOf(classID, to) {
		return resource.PathResult{}
	}
	return resource.PathResult{Found: true, Waypoints: []shared.Position{from, to}}
}

func (w *World) onMap(pos shared.Position) bool {
	return pos.IsValid() && pos.X <= w.scenario.Map.Width && pos.Z <= w.scenario.Map.Height
}

// ClosestBuildSite implements resource.PlacementOracle. It walks square rings
// around anchor and returns the first spot that keeps spacing from other structures.
func (w *World) ClosestBuildSite(t shared.UnitTypeID, anchor shared.Position, searchRadius float64, spacing int) shared.Position {
	clearance := footprint + float64(spacing)*spacingUnit
	for r := 0.0; r <= searchRadius; r += searchStep {
		for _, p := range ring(anchor, r) {
			if p.Distance2D(anchor) > searchRadius {
				continue
			}
			if w.placeable(t, p, clearance) {
				return p
			}
		}
	}
	return shared.InvalidPosition
}

// CanBuildAt implements resource.PlacementOracle
func (w *World) CanBuildAt(t shared.UnitTypeID, pos shared.Position) bool {
	return w.placeable(t, pos, footprint)
}

func (w *World) placeable(t shared.UnitTypeID, pos shared.Position, clearance float64) bool {
	def, ok := w.types[t]
	if !ok || !w.onMap(pos) {
		return false
	}
	if def.ExtractsMetal > 0 && !w.nearSite("metal", pos, math.Max(w.scenario.ExtractorRadius, geoRadius)) {
		return false
	}
	if def.NeedsGeo && !w.nearSite("geothermal", pos, geoRadius) {
		return false
	}
	if def.IsMobile() {
		return true
	}
	for _, f := range w.features {
		if f.blocking && f.pos.Distance2D(pos) < footprint {
			return false
		}
	}
	for _, u := range w.units {
		if !u.def.IsMobile() && u.pos.Distance2D(pos) < clearance {
			return false
		}
	}
	return true
}

func (w *World) nearSite(kind string, pos shared.Position, radius float64) bool {
	for _, s := range w.scenario.Sites {
		if s.Kind == kind && shared.NewPosition(s.X, s.Z).Distance2D(pos) <= radius {
			return true
		}
	}
	return false
}

// ring lists the grid points on the square of half-width r around c
func ring(c shared.Position, r float64) []shared.Position {
	if r == 0 {
		return []shared.Position{c}
	}
	var out []shared.Position
	for d := -r; d <= r; d += searchStep {
		out = append(out,
			c.Offset(d, -r),
			c.Offset(d, r),
		)
	}
	for d := -r + searchStep; d < r; d += searchStep {
		out = append(out,
			c.Offset(-r, d),
			c.Offset(r, d),
		)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance2D(c) < out[j].Distance2D(c)
	})
	return out
}
