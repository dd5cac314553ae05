package resource_test

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const (
	basicExtractor    shared.UnitTypeID = 10
	advancedExtractor shared.UnitTypeID = 11
	geoPlant          shared.UnitTypeID = 20
	tank              shared.UnitTypeID = 30
)

// stubTerrain answers every path query with a straight segment. Areas are
// split at areaSplitX for classes listed in split.
type stubTerrain struct {
	classes    []resource.MovementClass
	split      map[int]bool
	areaSplitX float64
	blockedFor map[int]bool
	calls      int
}

func newStubTerrain(classes ...resource.MovementClass) *stubTerrain {
	return &stubTerrain{classes: classes, split: map[int]bool{}, blockedFor: map[int]bool{}}
}

func (s *stubTerrain) MovementClasses() []resource.MovementClass { return s.classes }

func (s *stubTerrain) AreaOf(classID int, pos shared.Position) int {
	if s.split[classID] && pos.X >= s.areaSplitX {
		return 2
	}
	return 1
}

func (s *stubTerrain) PathDistance(from, to shared.Position, classID int) resource.PathResult {
	s.calls++
	if s.blockedFor[classID] {
		return resource.PathResult{Found: false}
	}
	return resource.PathResult{Found: true, Waypoints: []shared.Position{from, to}}
}

type stubPlacement struct {
	blocked map[shared.UnitTypeID]bool
}

func (p *stubPlacement) ClosestBuildSite(t shared.UnitTypeID, anchor shared.Position, _ float64, _ int) shared.Position {
	if p.blocked[t] {
		return shared.InvalidPosition
	}
	return anchor
}

func (p *stubPlacement) CanBuildAt(_ shared.UnitTypeID, pos shared.Position) bool {
	return pos.IsValid()
}

type stubTypes map[shared.UnitTypeID]resource.TypeTraits

func (s stubTypes) Traits(t shared.UnitTypeID) resource.TypeTraits { return s[t] }

func defaultTypes() stubTypes {
	return stubTypes{
		basicExtractor:    {ExtractsMetal: 1, MetalCost: 50, TechLevel: 1},
		advancedExtractor: {ExtractsMetal: 2, MetalCost: 600, TechLevel: 2},
		geoPlant:          {NeedsGeo: true, MetalCost: 300, TechLevel: 1},
		tank:              {MetalCost: 150},
	}
}

type stubHealth map[shared.UnitID]float64

func (h stubHealth) Health(u shared.UnitID) float64 {
	if v, ok := h[u]; ok {
		return v
	}
	return 100
}

type stubAllies struct {
	units []resource.ObservedUnit
}

func (a *stubAllies) AlliedResourceUnits() []resource.ObservedUnit { return a.units }

func landClass() resource.MovementClass {
	return resource.MovementClass{ID: 0, Name: "tank", LargestAreaPercent: 80, MaxSlope: 0.4}
}

// metalLine lays out metal candidates along the X axis starting at the origin
func metalLine(count int, spacing float64) []resource.Candidate {
	out := make([]resource.Candidate, count)
	for i := range out {
		out[i] = resource.Candidate{
			Kind:     resource.MetalSite,
			Position: shared.NewPosition(float64(i)*spacing, 0),
			Options:  []shared.UnitTypeID{basicExtractor, advancedExtractor},
		}
	}
	return out
}

func newTestRegistry(candidates []resource.Candidate, deps resource.Dependencies) *resource.Registry {
	cfg := resource.DefaultSelectionConfig(500, 50)
	return resource.NewRegistry(cfg, shared.NewPosition(0, 0), candidates, deps)
}

// chainRegistry returns a registry of count metal sites linked as a chain 0-1-2-...
func chainRegistry(count int, deps resource.Dependencies) *resource.Registry {
	reg := newTestRegistry(metalLine(count, 100), deps)
	snap := reg.Snapshot()
	for i := 0; i+1 < count; i++ {
		snap.Links = append(snap.Links, resource.LinkRecord{A: i, B: i + 1, Distance: 100, BestClass: 0})
	}
	if err := reg.RestoreGraph(snap); err != nil {
		panic(err)
	}
	return reg
}
