package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

func TestNewRegistry_SelectsNearestSitesPerKindMetalFirst(t *testing.T) {
	// Arrange - a unit limit of 12 keeps two sites of each kind
	candidates := []resource.Candidate{
		{Kind: resource.GeothermalSite, Position: shared.NewPosition(50, 0), Options: []shared.UnitTypeID{geoPlant}},
		{Kind: resource.MetalSite, Position: shared.NewPosition(300, 0), Options: []shared.UnitTypeID{basicExtractor}},
		{Kind: resource.MetalSite, Position: shared.NewPosition(100, 0), Options: []shared.UnitTypeID{basicExtractor}},
		{Kind: resource.MetalSite, Position: shared.NewPosition(200, 0), Options: []shared.UnitTypeID{basicExtractor}},
	}
	cfg := resource.DefaultSelectionConfig(12, 50)

	// Act
	reg := resource.NewRegistry(cfg, shared.NewPosition(0, 0), candidates, resource.Dependencies{})

	// Assert
	require.Equal(t, 3, reg.Len())
	sites := reg.Sites()
	assert.Equal(t, 100.0, sites[0].Position().X)
	assert.Equal(t, 200.0, sites[1].Position().X)
	assert.Equal(t, resource.GeothermalSite, sites[2].Kind())
	assert.Equal(t, 25.0, sites[0].SearchRadius())
	assert.Equal(t, 48.0, sites[2].SearchRadius())
	assert.Equal(t, 3, sites[0].Spacing())
}

func TestNewRegistry_UnitLimitIsCapped(t *testing.T) {
	cfg := resource.DefaultSelectionConfig(100000, 10)

	reg := resource.NewRegistry(cfg, shared.NewPosition(0, 0), metalLine(120, 10), resource.Dependencies{})

	assert.Equal(t, 83, reg.Len())
	assert.Equal(t, 16.0, reg.Sites()[0].SearchRadius())
}

func TestNewRegistry_DropsSitesWithoutBuildableTypes(t *testing.T) {
	candidates := metalLine(3, 100)
	candidates[1].Options = nil

	reg := newTestRegistry(candidates, resource.Dependencies{})

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 1, reg.Dropped())
	for i, s := range reg.Sites() {
		assert.Equal(t, i, s.Index())
	}
}

func TestNewRegistry_LinksStartAtStraightLine(t *testing.T) {
	reg := newTestRegistry(metalLine(3, 100), resource.Dependencies{})

	l := reg.Link(0, 2)

	require.NotNil(t, l)
	assert.Same(t, l, reg.Link(2, 0))
	assert.Equal(t, 200.0, l.StraightLine())
	assert.False(t, l.HasBest())
	assert.Nil(t, reg.Link(1, 1))
}

func TestRegistry_SiteOutOfRange(t *testing.T) {
	reg := newTestRegistry(metalLine(2, 100), resource.Dependencies{})

	_, err := reg.Site(5)

	var siteErr *shared.SiteError
	require.ErrorAs(t, err, &siteErr)
	assert.Equal(t, 5, siteErr.SiteIndex)
}

func TestRegistry_RestoreGraphReplaysLinks(t *testing.T) {
	// Arrange
	built := chainRegistry(4, resource.Dependencies{})
	snap := built.Snapshot()
	fresh := newTestRegistry(metalLine(4, 100), resource.Dependencies{})

	// Act
	err := fresh.RestoreGraph(snap)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.LinkCount())
	second, _ := fresh.Site(1)
	assert.Equal(t, []int{0, 2}, second.Linked())
	assert.Equal(t, []int{0, 2, 3}, second.LinkedD2())
	assert.Equal(t, 100.0, fresh.Link(1, 2).Best())
}

func TestRegistry_RestoreGraphRejectsOtherSites(t *testing.T) {
	snap := chainRegistry(4, resource.Dependencies{}).Snapshot()
	other := newTestRegistry(metalLine(4, 120), resource.Dependencies{})

	err := other.RestoreGraph(snap)

	assert.ErrorIs(t, err, resource.ErrSnapshotMismatch)
}

func TestSite_OptionsAreSortedAndEligibleAfterLinking(t *testing.T) {
	candidates := []resource.Candidate{{
		Kind:     resource.MetalSite,
		Position: shared.NewPosition(0, 0),
		Options:  []shared.UnitTypeID{advancedExtractor, basicExtractor, advancedExtractor},
	}}
	reg := newTestRegistry(candidates, resource.Dependencies{})
	require.NoError(t, reg.RestoreGraph(reg.Snapshot()))

	site := reg.Sites()[0]

	require.Len(t, site.Options(), 2)
	assert.Equal(t, basicExtractor, site.Options()[0].Type)
	opt, ok := site.Option(advancedExtractor)
	require.True(t, ok)
	assert.True(t, opt.CanBuild())
	_, ok = site.Option(geoPlant)
	assert.False(t, ok)
}
