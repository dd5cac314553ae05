package resource

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// NeedsSite reports whether a unit type must be placed on a resource site
func NeedsSite(traits TypeTraits) bool {
	return traits.NeedsGeo || traits.ExtractsMetal > 0
}

func (r *Registry) needsSite(t shared.UnitTypeID) (TypeTraits, bool) {
	if r.deps.Types == nil {
		return TypeTraits{}, false
	}
	traits := r.deps.Types.Traits(t)
	return traits, NeedsSite(traits)
}

func kindMatches(kind SiteKind, traits TypeTraits) bool {
	if kind == MetalSite {
		return traits.ExtractsMetal > 0
	}
	return traits.NeedsGeo
}

// ResourceIndex returns the site held by unit, or the nearest site within
// search radius that accepts its type. It returns -1 when none applies.
func (r *Registry) ResourceIndex(unit shared.UnitID, t shared.UnitTypeID, pos shared.Position) int {
	traits, _ := r.needsSite(t)
	best := -1
	bestDistance := 0.0
	for _, s := range r.sites {
		if s.occupant == unit && unit.IsValid() {
			return s.index
		}
		if !kindMatches(s.kind, traits) {
			continue
		}
		d := s.position.Distance2D(pos)
		if d > s.searchRadius {
			continue
		}
		if _, ok := s.Option(t); !ok {
			continue
		}
		if best == -1 || d < bestDistance {
			best = s.index
			bestDistance = d
		}
	}
	return best
}

// ResourceCreated registers a friendly resource structure. It returns true
// when the structure sits on a site where its type is outranked and should be
// reclaimed.
func (r *Registry) ResourceCreated(unit shared.UnitID, t shared.UnitTypeID, pos shared.Position, aiDisabled bool) bool {
	traits, needs := r.needsSite(t)
	if !needs {
		return false
	}
	if traits.ExtractsMetal > 0 {
		r.ownExtractors[unit] = true
	} else if traits.NeedsGeo {
		r.ownGeoPlants[unit] = true
	}

	idx := r.ResourceIndex(unit, t, pos)
	if idx == -1 {
		return false
	}
	s := r.sites[idx]
	if !s.IsOccupied() || !s.rankedFor(t) {
		r.setOwner(idx, unit, t, OwnOccupant)
		return false
	}
	return !aiDisabled
}

// ResourceDestroyed vacates the site held by unit
func (r *Registry) ResourceDestroyed(unit shared.UnitID, t shared.UnitTypeID) {
	if _, needs := r.needsSite(t); !needs {
		return
	}
	delete(r.ownExtractors, unit)
	delete(r.ownGeoPlants, unit)
	for _, s := range r.sites {
		if s.occupant == unit {
			r.setOwner(s.index, shared.NoUnit, shared.NoUnitType, Vacant)
			return
		}
	}
}

// EnemyResourceSeen records an enemy resource structure. When one of our
// builders holds the site reservation, that builder is returned so the caller
// can try to capture or reclaim the intruder.
func (r *Registry) EnemyResourceSeen(unit shared.UnitID, t shared.UnitTypeID, pos shared.Position) (shared.UnitID, bool) {
	if _, needs := r.needsSite(t); !needs {
		return shared.NoUnit, false
	}
	idx := r.ResourceIndex(unit, t, pos)
	if idx == -1 {
		return shared.NoUnit, false
	}
	s := r.sites[idx]
	if s.IsOccupied() && s.rankedFor(t) {
		return shared.NoUnit, false
	}
	s.occupant = unit
	s.occupantType = t
	s.occupancy = EnemyOccupant
	if s.builder.IsValid() {
		return s.builder, true
	}
	return shared.NoUnit, false
}

// OwnExtractorCount returns the number of friendly metal extractors tracked
func (r *Registry) OwnExtractorCount() int { return len(r.ownExtractors) }

// OwnGeoPlantCount returns the number of friendly geothermal plants tracked
func (r *Registry) OwnGeoPlantCount() int { return len(r.ownGeoPlants) }

// setOwner changes the occupant of a site and propagates availability to
// its neighborhood
func (r *Registry) setOwner(idx int, unit shared.UnitID, t shared.UnitTypeID, occupancy Occupancy) {
	if r.availableCount == 0 && unit.IsValid() {
		for _, s := range r.sites {
			s.setInRange(false)
		}
	}

	s := r.sites[idx]
	previous := s.occupant
	s.occupant = unit
	s.occupantType = t
	s.occupancy = occupancy

	switch {
	case unit.IsValid() && !previous.IsValid():
		r.makeAvailable(idx)
		for _, j := range s.linked {
			r.makeAvailable(j)
			for _, k := range r.sites[j].linked {
				r.makeAvailable(k)
			}
		}
	case !unit.IsValid():
		demote := []int{idx}
		for _, j := range s.linkedD2 {
			n := r.sites[j]
			if r.available[j] && (!n.IsOccupied() || n.occupancy == EnemyOccupant) {
				demote = append(demote, j)
			}
		}
		for _, j := range demote {
			if !r.hasFriendNearby(j) {
				r.makeRemaining(j)
			}
		}
	}

	r.CheckRanked(idx)
	if r.availableCount == 0 {
		for _, site := range r.sites {
			site.setInRange(true)
		}
	}
}

func (r *Registry) hasFriendNearby(idx int) bool {
	for _, j := range r.sites[idx].linkedD2 {
		if r.sites[j].HeldByFriend() {
			return true
		}
	}
	return false
}

func (r *Registry) makeAvailable(idx int) {
	if r.available[idx] {
		return
	}
	r.sites[idx].setInRange(true)
	r.available[idx] = true
	r.availableCount++
}

func (r *Registry) makeRemaining(idx int) {
	r.sites[idx].setInRange(false)
	if r.available[idx] {
		r.available[idx] = false
		r.availableCount--
	}
}

// CheckRanked marks which types would be a downgrade of the current occupant
func (r *Registry) CheckRanked(idx int) {
	s := r.sites[idx]
	if r.deps.Types == nil {
		return
	}
	var occupant TypeTraits
	if s.IsOccupied() {
		occupant = r.deps.Types.Traits(s.occupantType)
	}
	for _, o := range s.options {
		if !s.IsOccupied() {
			o.Ranked = false
			continue
		}
		candidate := r.deps.Types.Traits(o.Type)
		var upgrade bool
		if s.kind == MetalSite {
			upgrade = candidate.ExtractsMetal >= 1.5*occupant.ExtractsMetal
		} else {
			upgrade = candidate.MetalCost >= 1.85*occupant.MetalCost &&
				(occupant.TechLevel <= 0 || candidate.TechLevel > occupant.TechLevel)
		}
		o.Ranked = !upgrade
	}
}

// CheckBlocked asks the placement oracle whether each type still fits on the site
func (r *Registry) CheckBlocked(idx int) {
	s := r.sites[idx]
	if r.deps.Placement == nil {
		return
	}
	for _, o := range s.options {
		pos := r.deps.Placement.ClosestBuildSite(o.Type, s.position, s.searchRadius, s.spacing)
		o.Blocked = !r.deps.Placement.CanBuildAt(o.Type, pos) &&
			(!s.IsOccupied() || s.occupancy == EnemyOccupant || s.occupancy == AlliedOccupant)
	}
}

// CheckBlockedSites re-checks unoccupied sites in the set and releases sites whose occupant has died
func (r *Registry) CheckBlockedSites(indices []int) {
	var dead []int
	for _, idx := range indices {
		s := r.sites[idx]
		if !s.IsOccupied() {
			r.CheckBlocked(idx)
		} else if r.deps.Health != nil && r.deps.Health.Health(s.occupant) <= 0 {
			dead = append(dead, idx)
		}
	}
	for _, idx := range dead {
		r.setOwner(idx, shared.NoUnit, shared.NoUnitType, Vacant)
		r.CheckBlocked(idx)
	}
}

// CheckBlockedAvailable re-checks every Available site
func (r *Registry) CheckBlockedAvailable() {
	r.CheckBlockedSites(r.availableIndices())
}

// UpdateAllies adopts allied resource structures as occupants of their sites
func (r *Registry) UpdateAllies() {
	if r.deps.Allies == nil {
		return
	}
	for _, u := range r.deps.Allies.AlliedResourceUnits() {
		if _, needs := r.needsSite(u.Type); !needs {
			continue
		}
		idx := r.ResourceIndex(u.ID, u.Type, u.Position)
		if idx == -1 {
			continue
		}
		s := r.sites[idx]
		if !s.IsOccupied() || !s.rankedFor(u.Type) {
			r.setOwner(idx, u.ID, u.Type, AlliedOccupant)
		}
	}
}

// FindSite returns the nearest unreserved site where t can be built and that
// a builder of movement class classID standing at from can reach. A negative
// class means the builder is not bound to terrain.
func (r *Registry) FindSite(from shared.Position, t shared.UnitTypeID, classID int) (*Site, bool) {
	if _, needs := r.needsSite(t); !needs {
		return nil, false
	}
	r.UpdateAllies()

	var indices []int
	if len(r.ownExtractors) == 0 && len(r.ownGeoPlants) == 0 && r.availableCount < len(r.sites) {
		indices = r.remainingIndices()
		r.CheckBlockedSites(indices)
	} else {
		indices = r.availableIndices()
	}

	builderArea := 0
	if classID >= 0 && r.deps.Terrain != nil {
		builderArea = r.deps.Terrain.AreaOf(classID, from)
	}

	var best *Site
	bestDistance := 0.0
	for _, idx := range indices {
		s := r.sites[idx]
		if s.builder.IsValid() {
			continue
		}
		opt, ok := s.Option(t)
		if !ok || opt.Blocked || opt.Ranked {
			continue
		}
		if classID >= 0 && r.deps.Terrain != nil {
			if builderArea == 0 || r.deps.Terrain.AreaOf(classID, s.position) != builderArea {
				continue
			}
		}
		d := from.Distance(s.position)
		if best == nil || d < bestDistance {
			best = s
			bestDistance = d
		}
	}
	return best, best != nil
}

// Reserve records that builder is constructing on the site
func (r *Registry) Reserve(idx int, builder shared.UnitID) error {
	s, err := r.Site(idx)
	if err != nil {
		return err
	}
	s.builder = builder
	return nil
}

// Release clears the builder reservation of a site
func (r *Registry) Release(idx int) {
	if idx >= 0 && idx < len(r.sites) {
		r.sites[idx].builder = shared.NoUnit
	}
}

// BuildableSites counts the sites where t can currently be built
func (r *Registry) BuildableSites(t shared.UnitTypeID) int {
	count := 0
	for _, s := range r.sites {
		if o, ok := s.Option(t); ok && o.CanBuild() {
			count++
		}
	}
	return count
}

// NearestBuildable returns the distance from pos to the nearest site where t can be built
func (r *Registry) NearestBuildable(pos shared.Position, t shared.UnitTypeID) (float64, bool) {
	best := -1.0
	for _, s := range r.sites {
		o, ok := s.Option(t)
		if !ok || !o.CanBuild() || s.builder.IsValid() {
			continue
		}
		if d := pos.Distance2D(s.position); best < 0 || d < best {
			best = d
		}
	}
	return best, best >= 0
}

func (r *Registry) availableIndices() []int {
	out := make([]int, 0, r.availableCount)
	for i, ok := range r.available {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func (r *Registry) remainingIndices() []int {
	out := make([]int, 0, len(r.sites)-r.availableCount)
	for i, ok := range r.available {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}
