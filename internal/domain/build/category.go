package build

import (
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// CategoryKind is the economic role of a build list
type CategoryKind int

const (
	GeneralCategory CategoryKind = iota
	ConstructorCategory
	EnergyCategory
	GeothermalCategory
	MetalCategory
	ExtractorCategory
	EnergyStorageCategory
	MetalStorageCategory
	MilitaryCategory
)

var categoryKindNames = map[CategoryKind]string{
	GeneralCategory:       "general",
	ConstructorCategory:   "constructor",
	EnergyCategory:        "energy",
	GeothermalCategory:    "geothermal",
	MetalCategory:         "metal",
	ExtractorCategory:     "extractor",
	EnergyStorageCategory: "energy_storage",
	MetalStorageCategory:  "metal_storage",
	MilitaryCategory:      "military",
}

func (k CategoryKind) String() string {
	if name, ok := categoryKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("category_kind(%d)", int(k))
}

// ParseCategoryKind converts a kind name back into a CategoryKind
func ParseCategoryKind(s string) (CategoryKind, error) {
	for k, name := range categoryKindNames {
		if name == s {
			return k, nil
		}
	}
	return GeneralCategory, fmt.Errorf("unknown category kind %q", s)
}

// OrderKind is the ledger bucket an order of this category falls into
func (k CategoryKind) OrderKind() OrderKind {
	switch k {
	case EnergyCategory, GeothermalCategory:
		return EnergyOrder
	case MetalCategory, ExtractorCategory:
		return MetalOrder
	case ConstructorCategory:
		return BuilderOrder
	case EnergyStorageCategory:
		return EnergyStorageOrder
	case MetalStorageCategory:
		return MetalStorageOrder
	default:
		return GeneralOrder
	}
}

// CategoryDefinition describes a build list before the catalog is assembled
type CategoryDefinition struct {
	Name     string
	Kind     CategoryKind
	Types    []shared.UnitTypeID
	Min      int
	Priority int
}

// Category is a named build list with a quota.
//
// Active counts queued orders of the category plus finished units assigned to it.
type Category struct {
	index    int
	name     string
	kind     CategoryKind
	types    []shared.UnitTypeID
	min      int
	priority int
	active   int
}

func (c *Category) Index() int         { return c.index }
func (c *Category) Name() string       { return c.name }
func (c *Category) Kind() CategoryKind { return c.kind }
func (c *Category) Min() int           { return c.min }

// Priority weighs the category once every quota is met, and breaks quota ties
func (c *Category) Priority() int { return c.priority }

// Active counts queued orders plus finished units assigned to the category
func (c *Category) Active() int { return c.active }

// Types returns a copy of the eligible unit types, in list order
func (c *Category) Types() []shared.UnitTypeID { return append([]shared.UnitTypeID(nil), c.types...) }

// UnderQuota reports whether fewer than Min units are active or queued
func (c *Category) UnderQuota() bool {
	return c.active < c.min
}

// Contains reports whether t is listed in the category
func (c *Category) Contains(t shared.UnitTypeID) bool {
	for _, x := range c.types {
		if x == t {
			return true
		}
	}
	return false
}

func (c *Category) String() string {
	return fmt.Sprintf("%s(%d/%d)", c.name, c.active, c.min)
}

func (c *Category) increment() {
	c.active++
}

func (c *Category) decrement() {
	if c.active > 0 {
		c.active--
	}
}

// PreferCategory walks candidates in order and returns the one a new unit or
// order should count towards: the lowest active/min ratio among under-quota
// categories, otherwise the lowest (1+active)/priority among those with a
// positive priority, otherwise the first. Equal ratios go to the higher
// priority; anything still tied keeps the earlier category.
func PreferCategory(candidates []*Category) *Category {
	var best *Category
	bestValue := -1.0
	for _, c := range candidates {
		if c.UnderQuota() {
			v := float64(c.active) / float64(c.min)
			switch {
			case best == nil || !best.UnderQuota() || v < bestValue:
				best, bestValue = c, v
			case v == bestValue && c.priority > best.priority:
				best = c
			}
			continue
		}
		if best == nil {
			best, bestValue = c, priorityValue(c)
			continue
		}
		if best.UnderQuota() || c.priority <= 0 {
			continue
		}
		if v := priorityValue(c); bestValue < 0 || v < bestValue {
			best, bestValue = c, v
		}
	}
	return best
}

func priorityValue(c *Category) float64 {
	if c.priority <= 0 {
		return -1
	}
	return float64(1+c.active) / float64(c.priority)
}
