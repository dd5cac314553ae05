package build_test

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
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
	fusion      shared.UnitTypeID = 70
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
			Speed: 1.5, BuildOptions: []shared.UnitTypeID{extractor, solar, fusion}, MovementClass: 0, CanAssist: true},
		{ID: tank, Name: "tank", MetalCost: 150, EnergyCost: 1000, BuildTime: 2200, Speed: 2, MovementClass: 0},
		{ID: fusion, Name: "fusion", MetalCost: 4000, EnergyCost: 20000, BuildTime: 70000, EnergyMake: 1000, MovementClass: -1},
	}
}

func testCategories() []build.CategoryDefinition {
	return []build.CategoryDefinition{
		{Name: "extractors", Kind: build.ExtractorCategory, Types: []shared.UnitTypeID{extractor}, Min: 2, Priority: 1},
		{Name: "energy", Kind: build.EnergyCategory, Types: []shared.UnitTypeID{solar, fusion}, Min: 2, Priority: 1},
		{Name: "builders", Kind: build.ConstructorCategory, Types: []shared.UnitTypeID{factory, constructor}, Min: 1, Priority: 1},
		{Name: "assault", Kind: build.MilitaryCategory, Types: []shared.UnitTypeID{tank}, Priority: 2},
	}
}

// flatRandom always returns zero so cost pressure has no jitter
func flatRandom() shared.Random {
	return &shared.SequenceRandom{Values: []int{0}}
}

func newTestCatalog() *build.Catalog {
	c, err := build.NewCatalog(testTypes(), testCategories(), flatRandom(), build.DefaultCatalogConfig())
	if err != nil {
		panic(err)
	}
	return c
}

func categoryNamed(c *build.Catalog, name string) *build.Category {
	for _, cat := range c.Categories() {
		if cat.Name() == name {
			return cat
		}
	}
	return nil
}

// siteRegistry returns a linked registry of metal sites every 100 units along X
func siteRegistry(c *build.Catalog, count int) *resource.Registry {
	candidates := make([]resource.Candidate, count)
	for i := range candidates {
		candidates[i] = resource.Candidate{
			Kind:     resource.MetalSite,
			Position: shared.NewPosition(float64(i)*100, 0),
			Options:  []shared.UnitTypeID{extractor},
		}
	}
	reg := resource.NewRegistry(resource.DefaultSelectionConfig(500, 50), shared.NewPosition(0, 0), candidates, resource.Dependencies{Types: c})
	if err := reg.RestoreGraph(reg.Snapshot()); err != nil {
		panic(err)
	}
	return reg
}

type fixedSites int

func (f fixedSites) BuildableSites(shared.UnitTypeID) int { return int(f) }

type healthMap map[shared.UnitID]float64

func (h healthMap) Health(u shared.UnitID) float64 {
	if v, ok := h[u]; ok {
		return v
	}
	return 100
}

type recordingObserver struct {
	created  []build.OrderView
	assigned []build.OrderView
	removed  []build.RemovalReason
}

func (r *recordingObserver) OrderCreated(o build.OrderView) { r.created = append(r.created, o) }
func (r *recordingObserver) OrderAssigned(o build.OrderView, _ shared.UnitID) {
	r.assigned = append(r.assigned, o)
}
func (r *recordingObserver) OrderRemoved(_ build.OrderView, reason build.RemovalReason) {
	r.removed = append(r.removed, reason)
}
