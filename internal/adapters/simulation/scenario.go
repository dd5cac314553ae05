package simulation

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Scenario is a scripted skirmish: the map, the unit catalog the bot plays
// with and everything that happens to it.
type Scenario struct {
	Name            string              `yaml:"name" validate:"required"`
	Map             MapSpec             `yaml:"map"`
	Start           Point               `yaml:"start"`
	UnitLimit       int                 `yaml:"unit_limit" validate:"min=1"`
	ExtractorRadius float64             `yaml:"extractor_radius" validate:"gte=0"`
	Economy         EconomySpec         `yaml:"economy"`
	MovementClasses []MovementClassSpec `yaml:"movement_classes" validate:"dive"`
	Types           []UnitTypeSpec      `yaml:"types" validate:"required,min=1,dive"`
	Categories      []CategorySpec      `yaml:"categories" validate:"required,min=1,dive"`
	Sites           []SiteSpec          `yaml:"sites" validate:"dive"`
	Features        []FeatureSpec       `yaml:"features" validate:"dive"`
	Units           []PlacedUnit        `yaml:"units" validate:"required,min=1,dive"`
	Allies          []PlacedUnit        `yaml:"allies" validate:"dive"`
	Enemies         []TimedUnit         `yaml:"enemies" validate:"dive"`
	Raids           []Raid              `yaml:"raids" validate:"dive"`
}

// MapSpec describes the playing field. Islands are separate terrain areas.
type MapSpec struct {
	Name    string  `yaml:"name" validate:"required"`
	Width   float64 `yaml:"width" validate:"gt=0"`
	Height  float64 `yaml:"height" validate:"gt=0"`
	Islands []Rect  `yaml:"islands" validate:"dive"`
}

type Point struct {
	X float64 `yaml:"x" validate:"gte=0"`
	Z float64 `yaml:"z" validate:"gte=0"`
}

func (p Point) Position() shared.Position {
	return shared.NewPosition(p.X, p.Z)
}

type Rect struct {
	MinX float64 `yaml:"min_x" validate:"gte=0"`
	MinZ float64 `yaml:"min_z" validate:"gte=0"`
	MaxX float64 `yaml:"max_x" validate:"gtfield=MinX"`
	MaxZ float64 `yaml:"max_z" validate:"gtfield=MinZ"`
}

// Contains reports whether pos lies inside the rectangle, borders included
func (r Rect) Contains(pos shared.Position) bool {
	return pos.X >= r.MinX && pos.X <= r.MaxX && pos.Z >= r.MinZ && pos.Z <= r.MaxZ
}

// EconomySpec holds the opening stock and the base income of the match.
// Incomes are per second.
type EconomySpec struct {
	MetalStock    float64 `yaml:"metal_stock" validate:"gte=0"`
	EnergyStock   float64 `yaml:"energy_stock" validate:"gte=0"`
	MetalStorage  float64 `yaml:"metal_storage" validate:"gt=0"`
	EnergyStorage float64 `yaml:"energy_storage" validate:"gt=0"`
	MetalIncome   float64 `yaml:"metal_income" validate:"gte=0"`
	EnergyIncome  float64 `yaml:"energy_income" validate:"gte=0"`
	// SiteYield is the metal per second an extractor earns per unit of ExtractsMetal
	SiteYield float64 `yaml:"site_yield" validate:"gte=0"`
}

type MovementClassSpec struct {
	ID                 int     `yaml:"id" validate:"gte=0"`
	Name               string  `yaml:"name" validate:"required"`
	LargestAreaPercent float64 `yaml:"largest_area_percent" validate:"gte=0,lte=100"`
	MaxSlope           float64 `yaml:"max_slope" validate:"gte=0"`
}

// UnitTypeSpec mirrors build.UnitType. MovementClass defaults to 0 for mobile
// units and -1 for structures.
type UnitTypeSpec struct {
	ID   int    `yaml:"id" validate:"gte=0"`
	Name string `yaml:"name" validate:"required"`

	MetalCost  float64 `yaml:"metal_cost" validate:"gte=0"`
	EnergyCost float64 `yaml:"energy_cost" validate:"gte=0"`
	BuildTime  float64 `yaml:"build_time" validate:"gte=0"`

	BuildSpeed    float64 `yaml:"build_speed" validate:"gte=0"`
	BuildDistance float64 `yaml:"build_distance" validate:"gte=0"`
	Speed         float64 `yaml:"speed" validate:"gte=0"`

	ExtractsMetal float64 `yaml:"extracts_metal" validate:"gte=0"`
	NeedsGeo      bool    `yaml:"needs_geo"`
	MakesMetal    float64 `yaml:"makes_metal" validate:"gte=0"`
	MetalMake     float64 `yaml:"metal_make" validate:"gte=0"`
	EnergyMake    float64 `yaml:"energy_make"`
	MetalUpkeep   float64 `yaml:"metal_upkeep" validate:"gte=0"`
	EnergyUpkeep  float64 `yaml:"energy_upkeep" validate:"gte=0"`
	MetalStorage  float64 `yaml:"metal_storage" validate:"gte=0"`
	EnergyStorage float64 `yaml:"energy_storage" validate:"gte=0"`
	OnOffable     bool    `yaml:"on_offable"`
	CanCloak      bool    `yaml:"can_cloak"`
	CloakCost     float64 `yaml:"cloak_cost" validate:"gte=0"`

	BuildOptions []int `yaml:"build_options"`

	CanCapture   bool `yaml:"can_capture"`
	CanReclaim   bool `yaml:"can_reclaim"`
	CanRepair    bool `yaml:"can_repair"`
	CanResurrect bool `yaml:"can_resurrect"`
	CanAssist    bool `yaml:"can_assist"`
	IsCommander  bool `yaml:"is_commander"`

	WeaponMaxEnergyCost float64 `yaml:"weapon_max_energy_cost" validate:"gte=0"`
	TechLevel           int     `yaml:"tech_level" validate:"gte=0"`
	MovementClass       *int    `yaml:"movement_class"`
	MaxCount            int     `yaml:"max_count" validate:"gte=0"`
	Health              float64 `yaml:"health" validate:"gte=0"`
}

type CategorySpec struct {
	Name     string `yaml:"name" validate:"required"`
	Kind     string `yaml:"kind" validate:"required"`
	Types    []int  `yaml:"types" validate:"required,min=1"`
	Min      int    `yaml:"min" validate:"gte=0"`
	Priority int    `yaml:"priority" validate:"gte=0"`
}

// SiteSpec is a candidate resource spot. An empty option list means every
// type that can stand on that kind of site.
type SiteSpec struct {
	Kind    string  `yaml:"kind" validate:"oneof=metal geothermal"`
	X       float64 `yaml:"x" validate:"gte=0"`
	Z       float64 `yaml:"z" validate:"gte=0"`
	Options []int   `yaml:"options"`
}

// FeatureSpec is a wreck, rock or tree. Blocking features stop movement.
type FeatureSpec struct {
	X           float64 `yaml:"x" validate:"gte=0"`
	Z           float64 `yaml:"z" validate:"gte=0"`
	Metal       float64 `yaml:"metal" validate:"gte=0"`
	Energy      float64 `yaml:"energy" validate:"gte=0"`
	Reclaimable bool    `yaml:"reclaimable"`
	Blocking    bool    `yaml:"blocking"`
	ResurrectAs *int    `yaml:"resurrect_as"`
}

type PlacedUnit struct {
	Type int     `yaml:"type" validate:"gte=0"`
	X    float64 `yaml:"x" validate:"gte=0"`
	Z    float64 `yaml:"z" validate:"gte=0"`
}

// TimedUnit is an enemy structure that comes into sight at Frame
type TimedUnit struct {
	Frame int     `yaml:"frame" validate:"gte=0"`
	Type  int     `yaml:"type" validate:"gte=0"`
	X     float64 `yaml:"x" validate:"gte=0"`
	Z     float64 `yaml:"z" validate:"gte=0"`
}

// Raid damages every own unit within Radius of the point at Frame
type Raid struct {
	Frame  int     `yaml:"frame" validate:"gte=0"`
	X      float64 `yaml:"x" validate:"gte=0"`
	Z      float64 `yaml:"z" validate:"gte=0"`
	Radius float64 `yaml:"radius" validate:"gt=0"`
	Damage float64 `yaml:"damage" validate:"gt=0"`
}

// LoadScenario reads and validates a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes a YAML scenario and validates it
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) applyDefaults() {
	if len(s.MovementClasses) == 0 {
		s.MovementClasses = []MovementClassSpec{{ID: 0, Name: "default", LargestAreaPercent: 100, MaxSlope: 1}}
	}
	if s.Economy.SiteYield == 0 {
		s.Economy.SiteYield = 2
	}
	if s.UnitLimit == 0 {
		s.UnitLimit = 500
	}
}

// Validate checks the field constraints and that every type reference resolves
func (s *Scenario) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return formatValidationError(err)
	}

	known := make(map[int]bool, len(s.Types))
	for _, t := range s.Types {
		if known[t.ID] {
			return shared.NewValidationError(t.Name, fmt.Sprintf("duplicate unit type %d", t.ID))
		}
		known[t.ID] = true
	}
	check := func(where string, id int) error {
		if !known[id] {
			return shared.NewValidationError(where, fmt.Sprintf("references unknown unit type %d", id))
		}
		return nil
	}

	for _, t := range s.Types {
		for _, o := range t.BuildOptions {
			if err := check("build options of "+t.Name, o); err != nil {
				return err
			}
		}
	}
	for _, c := range s.Categories {
		if _, err := build.ParseCategoryKind(c.Kind); err != nil {
			return fmt.Errorf("category %s: %w", c.Name, err)
		}
		for _, id := range c.Types {
			if err := check("category "+c.Name, id); err != nil {
				return err
			}
		}
	}
	for i, site := range s.Sites {
		for _, id := range site.Options {
			if err := check(fmt.Sprintf("site %d", i), id); err != nil {
				return err
			}
		}
	}
	for i, f := range s.Features {
		if f.ResurrectAs != nil {
			if err := check(fmt.Sprintf("feature %d", i), *f.ResurrectAs); err != nil {
				return err
			}
		}
	}
	for _, group := range [][]PlacedUnit{s.Units, s.Allies} {
		for _, u := range group {
			if err := check("placed unit", u.Type); err != nil {
				return err
			}
		}
	}
	for _, e := range s.Enemies {
		if err := check(fmt.Sprintf("enemy at frame %d", e.Frame), e.Type); err != nil {
			return err
		}
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("field '%s' failed validation: %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid scenario:\n  %s", strings.Join(messages, "\n  "))
}

// UnitTypes converts the type table into catalog definitions
func (s *Scenario) UnitTypes() []build.UnitType {
	out := make([]build.UnitType, 0, len(s.Types))
	for _, t := range s.Types {
		out = append(out, t.unitType())
	}
	return out
}

func (t UnitTypeSpec) unitType() build.UnitType {
	class := -1
	if t.Speed > 0 {
		class = 0
	}
	if t.MovementClass != nil {
		class = *t.MovementClass
	}
	return build.UnitType{
		ID:                  shared.UnitTypeID(t.ID),
		Name:                t.Name,
		MetalCost:           t.MetalCost,
		EnergyCost:          t.EnergyCost,
		BuildTime:           t.BuildTime,
		BuildSpeed:          t.BuildSpeed,
		BuildDistance:       t.BuildDistance,
		Speed:               t.Speed,
		ExtractsMetal:       t.ExtractsMetal,
		NeedsGeo:            t.NeedsGeo,
		MakesMetal:          t.MakesMetal,
		MetalMake:           t.MetalMake,
		EnergyMake:          t.EnergyMake,
		MetalUpkeep:         t.MetalUpkeep,
		EnergyUpkeep:        t.EnergyUpkeep,
		MetalStorage:        t.MetalStorage,
		EnergyStorage:       t.EnergyStorage,
		OnOffable:           t.OnOffable,
		CanCloak:            t.CanCloak,
		CloakCost:           t.CloakCost,
		BuildOptions:        typeIDs(t.BuildOptions),
		CanCapture:          t.CanCapture,
		CanReclaim:          t.CanReclaim,
		CanRepair:           t.CanRepair,
		CanResurrect:        t.CanResurrect,
		CanAssist:           t.CanAssist,
		IsCommander:         t.IsCommander,
		WeaponMaxEnergyCost: t.WeaponMaxEnergyCost,
		TechLevel:           t.TechLevel,
		MovementClass:       class,
		MaxCount:            t.MaxCount,
	}
}

// CategoryDefinitions converts the build lists
func (s *Scenario) CategoryDefinitions() ([]build.CategoryDefinition, error) {
	out := make([]build.CategoryDefinition, 0, len(s.Categories))
	for _, c := range s.Categories {
		kind, err := build.ParseCategoryKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", c.Name, err)
		}
		out = append(out, build.CategoryDefinition{
			Name:     c.Name,
			Kind:     kind,
			Types:    typeIDs(c.Types),
			Min:      c.Min,
			Priority: c.Priority,
		})
	}
	return out, nil
}

// Candidates lists the resource spots with their option lists resolved
func (s *Scenario) Candidates() []resource.Candidate {
	out := make([]resource.Candidate, 0, len(s.Sites))
	for _, site := range s.Sites {
		kind := resource.MetalSite
		if site.Kind == "geothermal" {
			kind = resource.GeothermalSite
		}
		options := typeIDs(site.Options)
		if len(options) == 0 {
			for _, t := range s.Types {
				if (kind == resource.MetalSite && t.ExtractsMetal > 0) || (kind == resource.GeothermalSite && t.NeedsGeo) {
					options = append(options, shared.UnitTypeID(t.ID))
				}
			}
		}
		out = append(out, resource.Candidate{
			Kind:     kind,
			Position: shared.NewPosition(site.X, site.Z),
			Options:  options,
		})
	}
	return out
}

// Classes returns the movement classes of the map
func (s *Scenario) Classes() []resource.MovementClass {
	out := make([]resource.MovementClass, 0, len(s.MovementClasses))
	for _, c := range s.MovementClasses {
		out = append(out, resource.MovementClass{
			ID:                 c.ID,
			Name:               c.Name,
			LargestAreaPercent: c.LargestAreaPercent,
			MaxSlope:           c.MaxSlope,
		})
	}
	return out
}

func (s *Scenario) healthOf(id int) float64 {
	for _, t := range s.Types {
		if t.ID == id && t.Health > 0 {
			return t.Health
		}
	}
	return 0
}

func typeIDs(ids []int) []shared.UnitTypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]shared.UnitTypeID, len(ids))
	for i, id := range ids {
		out[i] = shared.UnitTypeID(id)
	}
	return out
}
