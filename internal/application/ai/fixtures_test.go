package ai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const (
	commander shared.UnitTypeID = 1
	extractor shared.UnitTypeID = 10
	solar     shared.UnitTypeID = 20
	factory   shared.UnitTypeID = 40
	tank      shared.UnitTypeID = 60
	yard      shared.UnitTypeID = 90
)

func testTypes() []build.UnitType {
	return []build.UnitType{
		{ID: commander, Name: "commander", BuildSpeed: 100, BuildDistance: 120, Speed: 1.2,
			BuildOptions: []shared.UnitTypeID{extractor, solar, factory}, CanReclaim: true, CanAssist: true, IsCommander: true},
		{ID: extractor, Name: "extractor", MetalCost: 50, EnergyCost: 500, BuildTime: 1800, ExtractsMetal: 1, MovementClass: -1},
		{ID: solar, Name: "solar", MetalCost: 150, BuildTime: 2600, EnergyMake: 20, MovementClass: -1},
		{ID: factory, Name: "factory", MetalCost: 600, EnergyCost: 1200, BuildTime: 7000, BuildSpeed: 100, BuildDistance: 100,
			BuildOptions: []shared.UnitTypeID{tank}, MovementClass: -1},
		{ID: tank, Name: "tank", MetalCost: 150, EnergyCost: 1000, BuildTime: 2200, Speed: 2},
		{ID: yard, Name: "yard", BuildSpeed: 100, BuildDistance: 100, BuildOptions: []shared.UnitTypeID{tank}, MovementClass: -1},
	}
}

func testCategories() []build.CategoryDefinition {
	return []build.CategoryDefinition{
		{Name: "extractors", Kind: build.ExtractorCategory, Types: []shared.UnitTypeID{extractor}, Min: 2, Priority: 1},
		{Name: "energy", Kind: build.EnergyCategory, Types: []shared.UnitTypeID{solar}, Min: 2, Priority: 1},
		{Name: "factories", Kind: build.ConstructorCategory, Types: []shared.UnitTypeID{factory}, Min: 1, Priority: 1},
		{Name: "assault", Kind: build.MilitaryCategory, Types: []shared.UnitTypeID{tank}, Priority: 2},
	}
}

type issuedCommand struct {
	unit shared.UnitID
	cmd  ports.Command
}

// fakeWorld is a flat map with every host port answered from plain maps
type fakeWorld struct {
	units    map[shared.UnitID]ports.UnitState
	queues   map[shared.UnitID][]ports.Command
	snapshot economy.Snapshot
	issued   []issuedCommand
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		units:  make(map[shared.UnitID]ports.UnitState),
		queues: make(map[shared.UnitID][]ports.Command),
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

func (w *fakeWorld) OwnUnitsNear(shared.Position, float64) []shared.UnitID { return nil }

func (w *fakeWorld) FeaturesNear(shared.Position, float64, int) []ports.Feature { return nil }

func (w *fakeWorld) Feature(int) (ports.Feature, bool) { return ports.Feature{}, false }

func (w *fakeWorld) Issue(unit shared.UnitID, cmd ports.Command) {
	w.issued = append(w.issued, issuedCommand{unit: unit, cmd: cmd})
	if cmd.Kind == ports.CommandStop {
		w.queues[unit] = nil
		return
	}
	w.queues[unit] = []ports.Command{cmd}
}

func (w *fakeWorld) Snapshot() economy.Snapshot { return w.snapshot }

func (w *fakeWorld) MovementClasses() []resource.MovementClass {
	return []resource.MovementClass{{ID: 0, Name: "tank", LargestAreaPercent: 90, MaxSlope: 0.4}}
}

func (w *fakeWorld) AreaOf(int, shared.Position) int { return 1 }

func (w *fakeWorld) PathDistance(from, to shared.Position, _ int) resource.PathResult {
	return resource.PathResult{Found: true, Waypoints: []shared.Position{from, to}}
}

func (w *fakeWorld) ClosestBuildSite(_ shared.UnitTypeID, anchor shared.Position, _ float64, _ int) shared.Position {
	return anchor
}

func (w *fakeWorld) CanBuildAt(_ shared.UnitTypeID, pos shared.Position) bool { return pos.IsValid() }

func (w *fakeWorld) place(id shared.UnitID, t shared.UnitTypeID, pos shared.Position) {
	w.units[id] = ports.UnitState{ID: id, Type: t, Position: pos, Health: 100, MaxHealth: 100, Own: true}
}

func (w *fakeWorld) last() issuedCommand {
	if len(w.issued) == 0 {
		return issuedCommand{unit: shared.NoUnit}
	}
	return w.issued[len(w.issued)-1]
}

// selfLinker restores the straight-line graph instead of probing terrain
type selfLinker struct{}

func (selfLinker) Link(_ context.Context, reg *resource.Registry) error {
	return reg.RestoreGraph(reg.Snapshot())
}

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
	removed  *removals
	instance *ai.Instance
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	world := newFakeWorld()
	removed := &removals{}
	sites := make([]resource.Candidate, 3)
	for i := range sites {
		sites[i] = resource.Candidate{
			Kind:     resource.MetalSite,
			Position: shared.NewPosition(float64(i+1)*100, 0),
			Options:  []shared.UnitTypeID{extractor},
		}
	}
	instance, err := ai.New(context.Background(), ai.DefaultConfig(), ai.Setup{
		Host:            world.host(),
		Types:           testTypes(),
		Categories:      testCategories(),
		Sites:           sites,
		Start:           shared.NewPosition(0, 0),
		UnitLimit:       500,
		ExtractorRadius: 50,
		Seed:            1,
		Graph:           selfLinker{},
		Observers:       []build.Observer{removed},
	})
	require.NoError(t, err)
	return &testEnv{world: world, removed: removed, instance: instance}
}

// spawn creates and finishes an own unit
func (e *testEnv) spawn(id shared.UnitID, t shared.UnitTypeID, pos shared.Position, frame shared.Frame) {
	e.world.place(id, t, pos)
	e.instance.UnitCreated(context.Background(), id, t, pos, frame)
	e.instance.UnitFinished(context.Background(), id, frame)
}

// idleEconomy makes the economy look unsettled so the instance waits for InitFrame
func (e *testEnv) idleEconomy() {
	e.world.snapshot.Metal.Income = 0
	e.world.snapshot.Energy.Income = 0
}

// assignOrder queues an order for typeID and hands it to builder
func (e *testEnv) assignOrder(t *testing.T, typeID shared.UnitTypeID, builder shared.UnitID) build.Handle {
	t.Helper()
	ledger := e.instance.Ledger()
	h, err := ledger.Create(typeID, nil, build.GeneralOrder, 0)
	require.NoError(t, err)
	state := e.world.units[builder]
	require.NoError(t, ledger.AssignBuilder(h, build.BuilderRef{ID: builder, Position: state.Position, MovementClass: 0}, 0))
	return h
}
