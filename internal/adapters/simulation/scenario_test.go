package simulation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/simulation"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

const minimal = `
name: minimal
map: {name: flat, width: 1000, height: 1000}
economy: {metal_storage: 100, energy_storage: 100}
types:
  - {id: 1, name: commander, build_speed: 100, build_distance: 100, speed: 1, build_options: [2]}
  - {id: 2, name: extractor, metal_cost: 50, build_time: 100, extracts_metal: 1}
categories:
  - {name: extractors, kind: extractor, types: [2]}
sites:
  - {kind: metal, x: 50, z: 50}
units:
  - {type: 1, x: 10, z: 10}
`

func TestParseScenario_AppliesDefaults(t *testing.T) {
	// Act
	s, err := simulation.ParseScenario([]byte(minimal))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 500, s.UnitLimit)
	assert.Equal(t, 2.0, s.Economy.SiteYield)
	require.Len(t, s.MovementClasses, 1)
	assert.Equal(t, 100.0, s.MovementClasses[0].LargestAreaPercent)
}

func TestScenario_Conversions(t *testing.T) {
	// Arrange
	s := loadDuel(t)

	// Act
	types := s.UnitTypes()
	categories, err := s.CategoryDefinitions()
	candidates := s.Candidates()

	// Assert
	require.NoError(t, err)
	require.Len(t, types, 6)
	assert.Equal(t, 0, types[0].MovementClass, "mobile units default to class 0")
	assert.Equal(t, -1, types[1].MovementClass, "structures have no class")
	assert.Equal(t, []shared.UnitTypeID{10, 20, 40}, types[0].BuildOptions)
	assert.True(t, types[0].IsCommander)

	require.Len(t, categories, 4)
	assert.Equal(t, build.ExtractorCategory, categories[0].Kind)
	assert.Equal(t, build.MilitaryCategory, categories[3].Kind)
	assert.Equal(t, 2, categories[0].Min)

	require.Len(t, candidates, 4)
	assert.Equal(t, resource.MetalSite, candidates[0].Kind)
	assert.Equal(t, []shared.UnitTypeID{10}, candidates[0].Options, "empty option lists take every extractor type")
	assert.Equal(t, shared.NewPosition(200, 100), candidates[0].Position)
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(s string) string { return replace(s, "name: minimal", "") },
			message: "Scenario.Name",
		},
		{
			name:    "unknown build option",
			mutate:  func(s string) string { return replace(s, "build_options: [2]", "build_options: [9]") },
			message: "unknown unit type 9",
		},
		{
			name:    "unknown category kind",
			mutate:  func(s string) string { return replace(s, "kind: extractor", "kind: wonders") },
			message: "category extractors",
		},
		{
			name:    "bad site kind",
			mutate:  func(s string) string { return replace(s, "kind: metal", "kind: crystal") },
			message: "oneof",
		},
		{
			name:    "no units",
			mutate:  func(s string) string { return replace(s, "  - {type: 1, x: 10, z: 10}", "") },
			message: "Scenario.Units",
		},
		{
			name:    "not yaml",
			mutate:  func(string) string { return "name: [" },
			message: "failed to parse scenario",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			_, err := simulation.ParseScenario([]byte(tt.mutate(minimal)))

			// Assert
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseScenario_UnknownReferenceNamesItsOwner(t *testing.T) {
	// Act
	_, err := simulation.ParseScenario([]byte(replace(minimal, "types: [2]", "types: [7]")))

	// Assert
	var invalid *shared.ValidationError
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.Equal(t, "category extractors", invalid.Field)
	assert.Equal(t, "references unknown unit type 7", invalid.Message)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	// Act
	_, err := simulation.LoadScenario("testdata/absent.yaml")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario")
}

func replace(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}
