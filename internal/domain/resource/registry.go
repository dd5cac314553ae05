package resource

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// SelectionConfig bounds how many candidate sites the registry keeps
type SelectionConfig struct {
	UnitLimit        int
	UnitLimitCap     int
	SiteDivisor      int
	ExtractorRadius  float64
	MinMetalSearch   float64
	GeothermalSearch float64
	Spacing          int
}

// DefaultSelectionConfig returns the selection rules used by the bot
func DefaultSelectionConfig(unitLimit int, extractorRadius float64) SelectionConfig {
	return SelectionConfig{
		UnitLimit:        unitLimit,
		UnitLimitCap:     500,
		SiteDivisor:      6,
		ExtractorRadius:  extractorRadius,
		MinMetalSearch:   16,
		GeothermalSearch: 48,
		Spacing:          3,
	}
}

// Candidate is a site reported by the host map, before selection
type Candidate struct {
	Kind     SiteKind
	Position shared.Position
	Options  []shared.UnitTypeID
}

// Dependencies are the host collaborators consulted while sites change hands
type Dependencies struct {
	Terrain   TerrainOracle
	Placement PlacementOracle
	Types     TypeCatalog
	Health    UnitHealth
	Allies    AllyScanner
}

// Registry holds the selected resource sites, their links and their ownership.
//
// Sites are either Remaining (no nearby friendly presence) or Available
// (within two links of a friendly occupant). Iteration is always by ascending
// site index so that every decision is reproducible.
type Registry struct {
	deps  Dependencies
	sites []*Site
	links [][]*Link

	available      []bool
	availableCount int

	ownExtractors map[shared.UnitID]bool
	ownGeoPlants  map[shared.UnitID]bool
	dropped       int
}

// NewRegistry selects the sites nearest to start, metal first, and links every
// pair by straight-line distance. No movement class is consulted here.
func NewRegistry(cfg SelectionConfig, start shared.Position, candidates []Candidate, deps Dependencies) *Registry {
	limit := cfg.UnitLimit
	if cfg.UnitLimitCap > 0 && limit > cfg.UnitLimitCap {
		limit = cfg.UnitLimitCap
	}
	divisor := cfg.SiteDivisor
	if divisor <= 0 {
		divisor = 1
	}
	perKind := limit / divisor

	metalRadius := cfg.ExtractorRadius / 2
	if metalRadius < cfg.MinMetalSearch {
		metalRadius = cfg.MinMetalSearch
	}

	r := &Registry{
		deps:          deps,
		ownExtractors: make(map[shared.UnitID]bool),
		ownGeoPlants:  make(map[shared.UnitID]bool),
	}

	for _, kind := range []SiteKind{MetalSite, GeothermalSite} {
		radius := metalRadius
		if kind == GeothermalSite {
			radius = cfg.GeothermalSearch
		}
		for _, c := range nearestOfKind(candidates, kind, start, perKind) {
			if len(c.Options) == 0 {
				r.dropped++
				continue
			}
			r.sites = append(r.sites, newSite(len(r.sites), kind, c.Position, radius, cfg.Spacing, c.Options))
		}
	}

	n := len(r.sites)
	r.available = make([]bool, n)
	r.links = make([][]*Link, n)
	for i := range r.links {
		r.links[i] = make([]*Link, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			l := newLink(r.sites[i].position, r.sites[j].position)
			r.links[i][j] = l
			r.links[j][i] = l
		}
	}
	return r
}

func nearestOfKind(candidates []Candidate, kind SiteKind, start shared.Position, limit int) []Candidate {
	var ofKind []Candidate
	for _, c := range candidates {
		if c.Kind == kind {
			ofKind = append(ofKind, c)
		}
	}
	sort.SliceStable(ofKind, func(i, j int) bool {
		return start.Distance2D(ofKind[i].Position) < start.Distance2D(ofKind[j].Position)
	})
	if len(ofKind) > limit {
		ofKind = ofKind[:limit]
	}
	return ofKind
}

// Len returns the number of selected sites
func (r *Registry) Len() int { return len(r.sites) }

// Dropped returns how many nearby candidates were discarded for lack of buildable types
func (r *Registry) Dropped() int { return r.dropped }

// Sites returns the selected sites by index
func (r *Registry) Sites() []*Site { return r.sites }

// Site returns the site at index
func (r *Registry) Site(index int) (*Site, error) {
	if index < 0 || index >= len(r.sites) {
		return nil, newSiteIndexError(index, len(r.sites))
	}
	return r.sites[index], nil
}

// Link returns the shared link between two distinct sites
func (r *Registry) Link(i, j int) *Link {
	if i == j || i < 0 || j < 0 || i >= len(r.sites) || j >= len(r.sites) {
		return nil
	}
	return r.links[i][j]
}

// IsAvailable reports whether the site is near a friendly occupant
func (r *Registry) IsAvailable(index int) bool {
	return index >= 0 && index < len(r.available) && r.available[index]
}

// AvailableCount returns the number of Available sites
func (r *Registry) AvailableCount() int { return r.availableCount }

// LinkCount returns the number of undirected links in the graph
func (r *Registry) LinkCount() int {
	total := 0
	for _, s := range r.sites {
		total += len(s.linked)
	}
	return total / 2
}

func (r *Registry) connect(i, j int) {
	r.sites[i].addLink(j)
	r.sites[j].addLink(i)
}

// finishLinking computes second-degree neighbors and puts every option in range
func (r *Registry) finishLinking() {
	for _, s := range r.sites {
		s.linkedD2 = s.linkedD2[:0]
		for _, j := range s.linked {
			s.linkedD2 = insertSorted(s.linkedD2, j)
			for _, k := range r.sites[j].linked {
				if k != s.index {
					s.linkedD2 = insertSorted(s.linkedD2, k)
				}
			}
		}
	}
	for _, s := range r.sites {
		s.setInRange(true)
	}
}

// LinkRecord is one accepted graph edge in a snapshot
type LinkRecord struct {
	A         int     `json:"a"`
	B         int     `json:"b"`
	Distance  float64 `json:"distance"`
	BestClass int     `json:"best_class"`
}

// GraphSnapshot is the persisted form of the linked graph
type GraphSnapshot struct {
	Fingerprint string       `json:"fingerprint"`
	Sites       int          `json:"sites"`
	Links       []LinkRecord `json:"links"`
}

// Snapshot captures the accepted links
func (r *Registry) Snapshot() GraphSnapshot {
	snap := GraphSnapshot{Fingerprint: r.Fingerprint(), Sites: len(r.sites)}
	for _, s := range r.sites {
		for _, j := range s.linked {
			if j <= s.index {
				continue
			}
			l := r.links[s.index][j]
			snap.Links = append(snap.Links, LinkRecord{A: s.index, B: j, Distance: l.best, BestClass: l.bestClass})
		}
	}
	return snap
}

// RestoreGraph replays a snapshot taken from the same selection of sites
func (r *Registry) RestoreGraph(snap GraphSnapshot) error {
	if snap.Fingerprint != r.Fingerprint() || snap.Sites != len(r.sites) {
		return ErrSnapshotMismatch
	}
	for _, rec := range snap.Links {
		l := r.Link(rec.A, rec.B)
		if l == nil {
			return fmt.Errorf("link %d-%d: %w", rec.A, rec.B, ErrSnapshotMismatch)
		}
		l.best = rec.Distance
		l.bestClass = rec.BestClass
		r.connect(rec.A, rec.B)
	}
	r.finishLinking()
	return nil
}

// Fingerprint identifies the selected sites and their buildable types
func (r *Registry) Fingerprint() string {
	h := sha256.New()
	for _, s := range r.sites {
		fmt.Fprintf(h, "%d:%.1f:%.1f", s.kind, s.position.X, s.position.Z)
		for _, o := range s.options {
			fmt.Fprintf(h, ",%d", o.Type)
		}
		h.Write([]byte{';'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
