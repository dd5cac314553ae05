package resource

import (
	"sort"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// SiteKind distinguishes metal deposits from geothermal vents
type SiteKind int

const (
	MetalSite SiteKind = iota
	GeothermalSite
)

func (k SiteKind) String() string {
	if k == GeothermalSite {
		return "geothermal"
	}
	return "metal"
}

// Occupancy describes who holds a site
type Occupancy int

const (
	Vacant Occupancy = iota
	OwnOccupant
	AlliedOccupant
	EnemyOccupant
)

func (o Occupancy) String() string {
	switch o {
	case OwnOccupant:
		return "own"
	case AlliedOccupant:
		return "allied"
	case EnemyOccupant:
		return "enemy"
	default:
		return "vacant"
	}
}

// Option is the eligibility record of one unit type at one site
type Option struct {
	Type       shared.UnitTypeID
	Blocked    bool
	Ranked     bool
	OutOfRange bool
}

// CanBuild reports whether the type may currently be built at the site
func (o *Option) CanBuild() bool {
	return !(o.Blocked || o.Ranked || o.OutOfRange)
}

// Site is a harvestable location on the map
type Site struct {
	index        int
	kind         SiteKind
	position     shared.Position
	searchRadius float64
	spacing      int

	occupant     shared.UnitID
	occupantType shared.UnitTypeID
	occupancy    Occupancy
	builder      shared.UnitID

	options  []*Option
	linked   []int
	linkedD2 []int
}

func newSite(index int, kind SiteKind, pos shared.Position, searchRadius float64, spacing int, types []shared.UnitTypeID) *Site {
	s := &Site{
		index:        index,
		kind:         kind,
		position:     pos,
		searchRadius: searchRadius,
		spacing:      spacing,
		occupant:     shared.NoUnit,
		occupantType: shared.NoUnitType,
		builder:      shared.NoUnit,
	}
	seen := make(map[shared.UnitTypeID]bool, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		seen[t] = true
		s.options = append(s.options, &Option{Type: t, OutOfRange: true})
	}
	sort.Slice(s.options, func(i, j int) bool { return s.options[i].Type < s.options[j].Type })
	return s
}

func (s *Site) Index() int                      { return s.index }
func (s *Site) Kind() SiteKind                  { return s.kind }
func (s *Site) Position() shared.Position       { return s.position }
func (s *Site) SearchRadius() float64           { return s.searchRadius }
func (s *Site) Spacing() int                    { return s.spacing }
func (s *Site) Occupant() shared.UnitID         { return s.occupant }
func (s *Site) OccupantType() shared.UnitTypeID { return s.occupantType }
func (s *Site) Occupancy() Occupancy            { return s.occupancy }
func (s *Site) Builder() shared.UnitID          { return s.builder }

// Linked returns the indices of first-degree neighbors in ascending order
func (s *Site) Linked() []int { return append([]int(nil), s.linked...) }

// LinkedD2 returns first- and second-degree neighbors in ascending order, excluding the site itself
func (s *Site) LinkedD2() []int { return append([]int(nil), s.linkedD2...) }

// Options returns the eligibility records ordered by unit type
func (s *Site) Options() []*Option { return s.options }

// Option returns the eligibility record for a type
func (s *Site) Option(t shared.UnitTypeID) (*Option, bool) {
	i := sort.Search(len(s.options), func(i int) bool { return s.options[i].Type >= t })
	if i < len(s.options) && s.options[i].Type == t {
		return s.options[i], true
	}
	return nil, false
}

func (s *Site) rankedFor(t shared.UnitTypeID) bool {
	o, ok := s.Option(t)
	return ok && o.Ranked
}

// IsLinkedTo reports whether j is a first-degree neighbor
func (s *Site) IsLinkedTo(j int) bool {
	return containsSorted(s.linked, j)
}

// IsOccupied reports whether any unit holds the site
func (s *Site) IsOccupied() bool {
	return s.occupant.IsValid()
}

// HeldByFriend reports whether the occupant is own or allied
func (s *Site) HeldByFriend() bool {
	return s.occupant.IsValid() && s.occupancy != EnemyOccupant
}

func (s *Site) addLink(j int) {
	s.linked = insertSorted(s.linked, j)
}

func (s *Site) setInRange(inRange bool) {
	for _, o := range s.options {
		o.OutOfRange = !inRange
	}
}

func containsSorted(xs []int, v int) bool {
	i := sort.SearchInts(xs, v)
	return i < len(xs) && xs[i] == v
}

func insertSorted(xs []int, v int) []int {
	i := sort.SearchInts(xs, v)
	if i < len(xs) && xs[i] == v {
		return xs
	}
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}
