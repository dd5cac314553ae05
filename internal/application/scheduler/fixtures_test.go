package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/scheduler"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/fleet"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const (
	commander   shared.UnitTypeID = 1
	extractor   shared.UnitTypeID = 10
	solar       shared.UnitTypeID = 20
	factory     shared.UnitTypeID = 40
	constructor shared.UnitTypeID = 50
	tank        shared.UnitTypeID = 60
	infiltrator shared.UnitTypeID = 70
	engineer    shared.UnitTypeID = 80
	salvager    shared.UnitTypeID = 85
	yard        shared.UnitTypeID = 90
)

func testTypes() []build.UnitType {
	return []build.UnitType{
		{ID: commander, Name: "commander", BuildSpeed: 100, BuildDistance: 120, Speed: 1.2, MovementClass: 0,
			BuildOptions: []shared.UnitTypeID{extractor, solar, factory}, CanReclaim: true, CanAssist: true, IsCommander: true},
		{ID: extractor, Name: "extractor", MetalCost: 50, EnergyCost: 500, BuildTime: 1800, ExtractsMetal: 1, MovementClass: -1},
		{ID: solar, Name: "solar", MetalCost: 150, BuildTime: 2600, EnergyMake: 20, MovementClass: -1},
		{ID: factory, Name: "factory", MetalCost: 600, EnergyCost: 1200, BuildTime: 7000, BuildSpeed: 100, BuildDistance: 100,
			BuildOptions: []shared.UnitTypeID{constructor, tank}, MovementClass: -1},
		{ID: constructor, Name: "constructor", MetalCost: 100, EnergyCost: 1000, BuildTime: 3000, BuildSpeed: 100, BuildDistance: 100,
			Speed: 1.5, BuildOptions: []shared.UnitTypeID{extractor, solar}, MovementClass: 0, CanAssist: true},
		{ID: tank, Name: "tank", MetalCost: 150, EnergyCost: 1000, BuildTime: 2200, Speed: 2, MovementClass: 0},
		{ID: infiltrator, Name: "infiltrator", BuildSpeed: 40, BuildDistance: 90, Speed: 2, MovementClass: 0,
			OnOffable: true, EnergyUpkeep: 10, CanCloak: true, CloakCost: 30},
		// engineer has build power but nothing to build, so it only reaches the fallbacks
		{ID: engineer, Name: "engineer", BuildSpeed: 50, BuildDistance: 100, Speed: 2, MovementClass: 0, CanAssist: true},
		{ID: salvager, Name: "salvager", BuildSpeed: 50, BuildDistance: 100, Speed: 3, MovementClass: 0, CanReclaim: true, CanResurrect: true},
		{ID: yard, Name: "yard", BuildSpeed: 100, BuildDistance: 100, BuildOptions: []shared.UnitTypeID{tank}, MovementClass: -1},
	}
}

func testCategories() []build.CategoryDefinition {
	return []build.CategoryDefinition{
		{Name: "extractors", Kind: build.ExtractorCategory, Types: []shared.UnitTypeID{extractor}, Min: 2, Priority: 1},
		{Name: "energy", Kind: build.EnergyCategory, Types: []shared.UnitTypeID{solar}, Min: 2, Priority: 1},
		{Name: "builders", Kind: build.ConstructorCategory, Types: []shared.UnitTypeID{factory, constructor}, Min: 1, Priority: 1},
		{Name: "assault", Kind: build.MilitaryCategory, Types: []shared.UnitTypeID{tank}, Priority: 2},
	}
}

type issuedCommand struct {
	unit shared.UnitID
	cmd  ports.Command
}

// fakeWorld implements every host port over plain maps. Units at or beyond
// splitX stand in a second terrain area when split is set. Movement classes in
// impassable have no area anywhere.
type fakeWorld struct {
	units      map[shared.UnitID]ports.UnitState
	queues     map[shared.UnitID][]ports.Command
	features   map[int]ports.Feature
	blocked    map[shared.UnitTypeID]bool
	impassable map[int]bool
	snapshot   economy.Snapshot
	split      bool
	splitX     float64
	issued     []issuedCommand
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		units:      make(map[shared.UnitID]ports.UnitState),
		queues:     make(map[shared.UnitID][]ports.Command),
		features:   make(map[int]ports.Feature),
		blocked:    make(map[shared.UnitTypeID]bool),
		impassable: make(map[int]bool),
		snapshot: economy.Snapshot{
			Metal:  economy.ResourceState{Stock: 500, Income: 10, Usage: 5, Storage: 1000},
			Energy: economy.ResourceState{Stock: 1000, Income: 50, Usage: 20, Storage: 1000},
		},
	}
}

func (w *fakeWorld) host() ports.Host {
	return ports.Host{Units: w, Features: w, Commands: w, Economy: w, Terrain: w, Placement: w}
}

func (w *fakeWorld) Unit(id shared.UnitID) (ports.UnitState, bool) {
	u, ok := w.units[id]
	return u, ok
}

func (w *fakeWorld) Commands(id shared.UnitID) []ports.Command { return w.queues[id] }

func (w *fakeWorld) OwnUnitsNear(pos shared.Position, radius float64) []shared.UnitID {
	var out []shared.UnitID
	for id, u := range w.units {
		if u.Own && u.Position.Distance2D(pos) <= radius {
			out = append(out, id)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (w *fakeWorld) FeaturesNear(pos shared.Position, radius float64, limit int) []ports.Feature {
	var out []ports.Feature
	for _, f := range w.features {
		if f.Position.Distance2D(pos) <= radius {
			out = append(out, f)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Position.Distance2D(pos) < out[j-1].Position.Distance2D(pos); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (w *fakeWorld) Feature(id int) (ports.Feature, bool) {
	f, ok := w.features[id]
	return f, ok
}

func (w *fakeWorld) Issue(unit shared.UnitID, cmd ports.Command) {
	w.issued = append(w.issued, issuedCommand{unit: unit, cmd: cmd})
	w.queues[unit] = []ports.Command{cmd}
}

func (w *fakeWorld) Snapshot() economy.Snapshot { return w.snapshot }

func (w *fakeWorld) MovementClasses() []resource.MovementClass {
	return []resource.MovementClass{{ID: 0, Name: "tank", LargestAreaPercent: 90, MaxSlope: 0.4}}
}

func (w *fakeWorld) AreaOf(class int, pos shared.Position) int {
	if w.impassable[class] {
		return 0
	}
	if w.split && pos.X >= w.splitX {
		return 2
	}
	return 1
}

func (w *fakeWorld) PathDistance(from, to shared.Position, _ int) resource.PathResult {
	return resource.PathResult{Found: true, Waypoints: []shared.Position{from, to}}
}

func (w *fakeWorld) ClosestBuildSite(t shared.UnitTypeID, anchor shared.Position, _ float64, _ int) shared.Position {
	if w.blocked[t] {
		return shared.InvalidPosition
	}
	return anchor
}

func (w *fakeWorld) CanBuildAt(t shared.UnitTypeID, pos shared.Position) bool {
	return pos.IsValid() && !w.blocked[t]
}

func (w *fakeWorld) Health(id shared.UnitID) float64 {
	if u, ok := w.units[id]; ok {
		return u.Health
	}
	return 0
}

func (w *fakeWorld) last() issuedCommand {
	if len(w.issued) == 0 {
		return issuedCommand{unit: shared.NoUnit}
	}
	return w.issued[len(w.issued)-1]
}

// removals records every ledger removal reason
type removals struct {
	reasons []build.RemovalReason
}

func (r *removals) OrderCreated(build.OrderView)                 {}
func (r *removals) OrderAssigned(build.OrderView, shared.UnitID) {}
func (r *removals) OrderRemoved(_ build.OrderView, reason build.RemovalReason) {
	r.reasons = append(r.reasons, reason)
}

type testEnv struct {
	world    *fakeWorld
	catalog  *build.Catalog
	ledger   *build.Ledger
	registry *resource.Registry
	roster   *fleet.Roster
	removed  *removals
	sched    *scheduler.Scheduler
}

// newTestEnv wires a scheduler over three metal sites at x=100, 200 and 300
func newTestEnv(t *testing.T, rng shared.Random) *testEnv {
	t.Helper()
	return newTestEnvWithSites(t, rng, 100, 200, 300)
}

// newTestEnvWithSites wires a scheduler over one metal site per x on the z=0 line
func newTestEnvWithSites(t *testing.T, rng shared.Random, xs ...float64) *testEnv {
	t.Helper()
	catalog, err := build.NewCatalog(testTypes(), testCategories(), &shared.SequenceRandom{Values: []int{0}}, build.DefaultCatalogConfig())
	require.NoError(t, err)

	world := newFakeWorld()
	candidates := make([]resource.Candidate, len(xs))
	for i, x := range xs {
		candidates[i] = resource.Candidate{
			Kind:     resource.MetalSite,
			Position: shared.NewPosition(x, 0),
			Options:  []shared.UnitTypeID{extractor},
		}
	}
	registry := resource.NewRegistry(resource.DefaultSelectionConfig(500, 50), shared.NewPosition(0, 0), candidates, resource.Dependencies{
		Terrain:   world,
		Placement: world,
		Types:     catalog,
		Health:    world,
	})
	require.NoError(t, registry.RestoreGraph(registry.Snapshot()))
	catalog.UseSites(registry)

	ledger := build.NewLedger(catalog, registry, build.DefaultLedgerConfig())
	removed := &removals{}
	ledger.Observe(removed)
	roster := fleet.NewRoster()

	sched := scheduler.New(scheduler.DefaultConfig(), scheduler.Dependencies{
		Host:     world.host(),
		Catalog:  catalog,
		Ledger:   ledger,
		Registry: registry,
		Roster:   roster,
		Random:   rng,
	})
	return &testEnv{world: world, catalog: catalog, ledger: ledger, registry: registry, roster: roster, removed: removed, sched: sched}
}

// addUnit registers a finished own unit of type t at pos
func (e *testEnv) addUnit(t *testing.T, id shared.UnitID, typeID shared.UnitTypeID, pos shared.Position) {
	t.Helper()
	def, ok := e.catalog.Type(typeID)
	require.True(t, ok)
	e.roster.Add(id, def, 0, false)
	e.roster.Finish(id)
	e.catalog.UnitFinished(typeID)
	e.world.units[id] = ports.UnitState{ID: id, Type: typeID, Position: pos, Health: 100, MaxHealth: 100, Own: true}
}

// assignOrder queues an order for typeID and hands it to builder
func (e *testEnv) assignOrder(t *testing.T, typeID shared.UnitTypeID, builder shared.UnitID) build.Handle {
	t.Helper()
	h, err := e.ledger.Create(typeID, nil, build.GeneralOrder, 0)
	require.NoError(t, err)
	state := e.world.units[builder]
	require.NoError(t, e.ledger.AssignBuilder(h, build.BuilderRef{ID: builder, Position: state.Position, MovementClass: 0}, 0))
	return h
}

func zeroRandom() shared.Random {
	return &shared.SequenceRandom{Values: []int{0}}
}
