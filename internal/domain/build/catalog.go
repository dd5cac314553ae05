package build

import (
	"sort"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// CatalogConfig holds the constants used to derive type profiles
type CatalogConfig struct {
	// SiteYield converts ExtractsMetal into metal income on an average site
	SiteYield             float64
	MetalPressure         float64
	EnergyPressure        float64
	PressureJitter        float64
	MaxEnergyToMetalRatio float64
}

// DefaultCatalogConfig returns the standard derivation constants
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		SiteYield:             1.0,
		MetalPressure:         0.008,
		EnergyPressure:        0.0022,
		PressureJitter:        0.1,
		MaxEnergyToMetalRatio: 40,
	}
}

// SiteCounter reports how many resource sites can currently take a type
type SiteCounter interface {
	BuildableSites(unitType shared.UnitTypeID) int
}

type typeEntry struct {
	def           UnitType
	profile       Profile
	prerequisites []shared.UnitTypeID
	categories    []*Category

	finished     int
	queued       int
	constructing int
	costBlocked  bool
}

// Catalog owns the unit definitions and build lists of one match, along with
// the per-type counters that decide what may be built next.
type Catalog struct {
	config       CatalogConfig
	entries      map[shared.UnitTypeID]*typeEntry
	ids          []shared.UnitTypeID
	categories   []*Category
	ratio        float64
	averageSpeed float64
	sites        SiteCounter
}

// NewCatalog assembles a catalog. Profiles consume rng in ascending type order.
func NewCatalog(types []UnitType, defs []CategoryDefinition, rng shared.Random, cfg CatalogConfig) (*Catalog, error) {
	c := &Catalog{config: cfg, entries: make(map[shared.UnitTypeID]*typeEntry, len(types))}
	for _, t := range types {
		if _, dup := c.entries[t.ID]; dup {
			return nil, &ErrDuplicateUnitType{Type: t.ID}
		}
		c.entries[t.ID] = &typeEntry{def: t}
		c.ids = append(c.ids, t.ID)
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })

	metalTotal, energyTotal, speedTotal, builders := 0.0, 0.0, 0.0, 0
	for _, id := range c.ids {
		def := c.entries[id].def
		metalTotal += def.MetalCost
		energyTotal += def.EnergyCost
		if def.IsBuilder() {
			speedTotal += def.BuildSpeed
			builders++
		}
		for _, o := range def.BuildOptions {
			if target, ok := c.entries[o]; ok {
				target.prerequisites = insertType(target.prerequisites, id)
			}
		}
	}
	if metalTotal == 0 {
		metalTotal = 1
	}
	if energyTotal == 0 {
		energyTotal = 1
	}
	c.ratio = energyTotal / metalTotal
	if c.ratio > cfg.MaxEnergyToMetalRatio {
		c.ratio = cfg.MaxEnergyToMetalRatio
	}
	c.averageSpeed = 1
	if builders > 0 {
		c.averageSpeed = speedTotal / float64(builders)
	}

	for _, id := range c.ids {
		e := c.entries[id]
		e.profile = newProfile(e.def, cfg, c.ratio, rng)
	}

	for i, d := range defs {
		cat := &Category{index: i, name: d.Name, kind: d.Kind, min: d.Min, priority: d.Priority}
		for _, t := range d.Types {
			e, ok := c.entries[t]
			if !ok {
				return nil, &ErrUnknownUnitType{Type: t, Context: "category " + d.Name}
			}
			if cat.Contains(t) {
				continue
			}
			cat.types = append(cat.types, t)
			e.categories = append(e.categories, cat)
		}
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

func insertType(list []shared.UnitTypeID, t shared.UnitTypeID) []shared.UnitTypeID {
	i := sort.Search(len(list), func(i int) bool { return list[i] >= t })
	if i < len(list) && list[i] == t {
		return list
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = t
	return list
}

// UseSites lets site-bound types be limited by the number of buildable sites
func (c *Catalog) UseSites(s SiteCounter) {
	c.sites = s
}

// Type returns the definition of t
func (c *Catalog) Type(t shared.UnitTypeID) (UnitType, bool) {
	e, ok := c.entries[t]
	if !ok {
		return UnitType{}, false
	}
	return e.def, true
}

// Types returns every definition in ascending ID order
func (c *Catalog) Types() []UnitType {
	out := make([]UnitType, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.entries[id].def)
	}
	return out
}

// Profile returns the derived economic figures of t
func (c *Catalog) Profile(t shared.UnitTypeID) Profile {
	if e, ok := c.entries[t]; ok {
		return e.profile
	}
	return Profile{}
}

// Traits implements resource.TypeCatalog
func (c *Catalog) Traits(t shared.UnitTypeID) resource.TypeTraits {
	e, ok := c.entries[t]
	if !ok {
		return resource.TypeTraits{}
	}
	return resource.TypeTraits{
		ExtractsMetal: e.def.ExtractsMetal,
		MetalCost:     e.def.MetalCost,
		TechLevel:     e.def.TechLevel,
		NeedsGeo:      e.def.NeedsGeo,
	}
}

func (c *Catalog) EnergyToMetalRatio() float64    { return c.ratio }
func (c *Catalog) AverageConstructSpeed() float64 { return c.averageSpeed }

// Categories returns the build lists in declaration order
func (c *Catalog) Categories() []*Category {
	return append([]*Category(nil), c.categories...)
}

// CategoriesOfKind returns the build lists of the given kinds in declaration order
func (c *Catalog) CategoriesOfKind(kinds ...CategoryKind) []*Category {
	var out []*Category
	for _, cat := range c.categories {
		for _, k := range kinds {
			if cat.kind == k {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}

// CategoriesOf returns the build lists that contain t
func (c *Catalog) CategoriesOf(t shared.UnitTypeID) []*Category {
	if e, ok := c.entries[t]; ok {
		return append([]*Category(nil), e.categories...)
	}
	return nil
}

// Prerequisites returns the types that can build t, ascending
func (c *Catalog) Prerequisites(t shared.UnitTypeID) []shared.UnitTypeID {
	if e, ok := c.entries[t]; ok {
		return append([]shared.UnitTypeID(nil), e.prerequisites...)
	}
	return nil
}

// HasPrerequisite reports whether a finished unit exists that can build t
func (c *Catalog) HasPrerequisite(t shared.UnitTypeID) bool {
	e, ok := c.entries[t]
	if !ok {
		return false
	}
	for _, p := range e.prerequisites {
		if c.entries[p].finished > 0 {
			return true
		}
	}
	return false
}

func (c *Catalog) reachable(t shared.UnitTypeID) bool {
	if c.HasPrerequisite(t) {
		return true
	}
	for _, p := range c.entries[t].prerequisites {
		if c.HasPrerequisite(p) {
			return true
		}
	}
	return false
}

// CostBlocked reports whether t was excluded by the last affordability pass
func (c *Catalog) CostBlocked(t shared.UnitTypeID) bool {
	e, ok := c.entries[t]
	return ok && e.costBlocked
}

// UnitLimited reports whether queuing another t would exceed its cap or the
// number of sites that can take it.
func (c *Catalog) UnitLimited(t shared.UnitTypeID) bool {
	return c.unitLimited(t, 0)
}

// unitLimited leaves own of t's queued orders out of the count
func (c *Catalog) unitLimited(t shared.UnitTypeID, own int) bool {
	e, ok := c.entries[t]
	if !ok {
		return true
	}
	queued := e.queued - own
	if queued < 0 {
		queued = 0
	}
	if e.def.MaxCount > 0 && e.finished+queued >= e.def.MaxCount {
		return true
	}
	if e.def.NeedsSite() && c.sites != nil {
		pending := queued - e.constructing
		if pending < 0 {
			pending = 0
		}
		return pending >= c.sites.BuildableSites(t)
	}
	return false
}

// Enabled reports whether t may be selected: affordable, under its limits and
// buildable now or after one prerequisite.
func (c *Catalog) Enabled(t shared.UnitTypeID) bool {
	return c.EnabledExcluding(t, 0)
}

// EnabledExcluding is Enabled with own of t's queued orders left out of the
// limits. An order judging whether its own type is still feasible passes 1.
func (c *Catalog) EnabledExcluding(t shared.UnitTypeID, own int) bool {
	if _, ok := c.entries[t]; !ok {
		return false
	}
	return !c.CostBlocked(t) && !c.unitLimited(t, own) && c.reachable(t)
}

// EnabledTypes returns the enabled members of a category, in list order
func (c *Catalog) EnabledTypes(cat *Category) []shared.UnitTypeID {
	var out []shared.UnitTypeID
	for _, t := range cat.types {
		if c.Enabled(t) {
			out = append(out, t)
		}
	}
	return out
}

// Finished counts the completed units of type t
func (c *Catalog) Finished(t shared.UnitTypeID) int { return c.count(t, func(e *typeEntry) int { return e.finished }) }

// Queued counts the ledger orders targeting t
func (c *Catalog) Queued(t shared.UnitTypeID) int { return c.count(t, func(e *typeEntry) int { return e.queued }) }

// Constructing counts the units of type t currently under construction
func (c *Catalog) Constructing(t shared.UnitTypeID) int {
	return c.count(t, func(e *typeEntry) int { return e.constructing })
}

func (c *Catalog) count(t shared.UnitTypeID, f func(*typeEntry) int) int {
	if e, ok := c.entries[t]; ok {
		return f(e)
	}
	return 0
}

// UnitFinished records a completed unit of type t
func (c *Catalog) UnitFinished(t shared.UnitTypeID) {
	if e, ok := c.entries[t]; ok {
		e.finished++
	}
}

// UnitDestroyed records the loss of a completed unit of type t
func (c *Catalog) UnitDestroyed(t shared.UnitTypeID) {
	if e, ok := c.entries[t]; ok && e.finished > 0 {
		e.finished--
	}
}

// ConstructionStarted records a unit of type t entering construction
func (c *Catalog) ConstructionStarted(t shared.UnitTypeID) {
	if e, ok := c.entries[t]; ok {
		e.constructing++
	}
}

// ConstructionEnded records a unit of type t leaving construction, finished or not
func (c *Catalog) ConstructionEnded(t shared.UnitTypeID) {
	if e, ok := c.entries[t]; ok && e.constructing > 0 {
		e.constructing--
	}
}

// AssignCategory moves a finished unit of type t from current (may be nil)
// into the build list it should count towards. It returns nil when t belongs
// to no list.
func (c *Catalog) AssignCategory(t shared.UnitTypeID, current *Category) *Category {
	if current != nil {
		current.decrement()
	}
	best := PreferCategory(c.CategoriesOf(t))
	if best != nil {
		best.increment()
	}
	return best
}

// ReleaseCategory stops counting a unit towards cat
func (c *Catalog) ReleaseCategory(cat *Category) {
	if cat != nil {
		cat.decrement()
	}
}

func (c *Catalog) orderQueued(t shared.UnitTypeID) {
	if e, ok := c.entries[t]; ok {
		e.queued++
	}
}

func (c *Catalog) orderRemoved(t shared.UnitTypeID) {
	if e, ok := c.entries[t]; ok && e.queued > 0 {
		e.queued--
	}
}

// Producers reports whether any build list produces metal or energy
func (c *Catalog) Producers() economy.Producers {
	return economy.Producers{
		Metal:  c.listed(MetalCategory, ExtractorCategory),
		Energy: c.listed(EnergyCategory, GeothermalCategory),
	}
}

func (c *Catalog) listed(kinds ...CategoryKind) bool {
	for _, cat := range c.CategoriesOfKind(kinds...) {
		if len(cat.types) > 0 {
			return true
		}
	}
	return false
}

// CanBuildConstructors reports whether t can build a type that itself builds
func (c *Catalog) CanBuildConstructors(t shared.UnitTypeID) bool {
	e, ok := c.entries[t]
	if !ok {
		return false
	}
	for _, o := range e.def.BuildOptions {
		if target, ok := c.entries[o]; ok && len(target.def.BuildOptions) > 0 {
			return true
		}
	}
	return false
}

// BuildFrames is the build time of t at the average construct speed
func (c *Catalog) BuildFrames(t shared.UnitTypeID) float64 {
	e, ok := c.entries[t]
	if !ok || e.def.BuildTime <= 0 {
		return 0
	}
	return e.def.BuildTime / c.averageSpeed
}

// Contribution is what an order for t adds to the construction accounting
func (c *Catalog) Contribution(t shared.UnitTypeID) economy.Contribution {
	e, ok := c.entries[t]
	if !ok {
		return economy.Contribution{}
	}
	contrib := economy.Contribution{
		MetalCost:     e.def.MetalCost,
		EnergyCost:    e.def.EnergyCost,
		MetalRate:     e.profile.MetalDifference,
		EnergyRate:    e.profile.EnergyDifference,
		MetalStorage:  e.def.MetalStorage,
		EnergyStorage: e.def.EnergyStorage,
	}
	if frames := c.BuildFrames(t); frames > 0 {
		contrib.MetalDrain = e.def.MetalCost / frames
		contrib.EnergyDrain = e.def.EnergyCost / frames
	}
	return contrib
}

// Candidate describes t for the demand scores
func (c *Catalog) Candidate(t shared.UnitTypeID) economy.Candidate {
	e, ok := c.entries[t]
	if !ok {
		return economy.Candidate{}
	}
	return economy.Candidate{
		BuildFrames:         c.BuildFrames(t),
		MetalCost:           e.def.MetalCost,
		EnergyCost:          e.def.EnergyCost,
		HighEnergyDemand:    e.profile.HighEnergyDemand,
		WeaponMaxEnergyCost: e.def.WeaponMaxEnergyCost,
	}
}

// Prerequisite returns a random enabled builder of t that can itself be built
// now, or t when there is none.
func (c *Catalog) Prerequisite(t shared.UnitTypeID, rng shared.Random) shared.UnitTypeID {
	var options []shared.UnitTypeID
	for _, p := range c.Prerequisites(t) {
		if c.Enabled(p) && c.HasPrerequisite(p) {
			options = append(options, p)
		}
	}
	if len(options) == 0 {
		return t
	}
	return options[rng.Intn(len(options))]
}

// PrerequisiteNewBuilder prefers builders of t that serve more than one build
// list, falling back to Prerequisite.
func (c *Catalog) PrerequisiteNewBuilder(t shared.UnitTypeID, rng shared.Random) shared.UnitTypeID {
	prereqs := c.Prerequisites(t)
	var options []shared.UnitTypeID
	for _, p := range prereqs {
		if !c.Enabled(p) || !c.HasPrerequisite(p) {
			continue
		}
		if len(c.entries[p].categories) > 1 || len(prereqs) == 1 {
			options = append(options, p)
		}
	}
	if len(options) == 0 {
		return c.Prerequisite(t, rng)
	}
	return options[rng.Intn(len(options))]
}
