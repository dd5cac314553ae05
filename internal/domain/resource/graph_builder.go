package resource

import (
	"errors"
	"sort"
	"time"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// ErrNoSites is returned when the registry holds nothing to link
var ErrNoSites = errors.New("no resource sites to link")

const (
	candidateUnset    = -1
	candidateRejected = -2
	targetLinks       = 3
)

// GraphConfig tunes the densification phase
type GraphConfig struct {
	Budget          time.Duration
	TriangleSlack   float64
	PenaltyMin      float64
	PenaltyMax      float64
	UnlinkedPenalty float64
	PenaltyGrowth   float64
}

// DefaultGraphConfig returns the tuning the bot ships with
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		Budget:          2500 * time.Millisecond,
		TriangleSlack:   0.35,
		PenaltyMin:      1,
		PenaltyMax:      5,
		UnlinkedPenalty: 20,
		PenaltyGrowth:   1.10,
	}
}

// GraphReport summarizes one Build
type GraphReport struct {
	Sites       int
	Classes     int
	Phase1Links int
	Phase2Links int
	OracleCalls int
	Completed   bool
	Elapsed     time.Duration
	Phase2Steps int
}

// GraphBuilder links registry sites using the terrain oracle
type GraphBuilder struct {
	terrain TerrainOracle
	clock   shared.Clock
	config  GraphConfig
}

func NewGraphBuilder(terrain TerrainOracle, clock shared.Clock, config GraphConfig) *GraphBuilder {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GraphBuilder{terrain: terrain, clock: clock, config: config}
}

// OrderClasses drops classes with no reachable area and sorts the rest by
// largest area first, then by lower maximum slope
func OrderClasses(classes []MovementClass) []MovementClass {
	var out []MovementClass
	for _, c := range classes {
		if c.LargestAreaPercent > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LargestAreaPercent != out[j].LargestAreaPercent {
			return out[i].LargestAreaPercent > out[j].LargestAreaPercent
		}
		return out[i].MaxSlope < out[j].MaxSlope
	})
	return out
}

// Build connects every site to the graph, then densifies it within the time budget.
// Both phases run to completion before Build returns.
func (b *GraphBuilder) Build(reg *Registry) (GraphReport, error) {
	start := b.clock.Now()
	report := GraphReport{Sites: reg.Len()}
	if reg.Len() == 0 {
		return report, ErrNoSites
	}

	run := &graphRun{
		reg:     reg,
		terrain: b.terrain,
		config:  b.config,
		classes: OrderClasses(b.terrain.MovementClasses()),
	}
	report.Classes = len(run.classes)

	run.premarkUnreachable()
	report.Phase1Links = run.connect()

	run.preparePenalties()
	result := shared.RunWithDeadline(b.clock, b.config.Budget, run.densifyStep)
	report.Phase2Links = run.phase2Links
	report.Phase2Steps = result.Steps
	report.Completed = result.Completed

	reg.finishLinking()
	report.OracleCalls = run.oracleCalls
	report.Elapsed = b.clock.Since(start)
	return report, nil
}

type linkEntry struct {
	index      int
	best       int
	restricted map[int]bool
}

type graphRun struct {
	reg     *Registry
	terrain TerrainOracle
	config  GraphConfig
	classes []MovementClass

	oracleCalls int
	phase2Links int

	penalty map[int]float64
	rmt     [][]int
	rd      [][]float64
	entries []*linkEntry
}

// premarkUnreachable caches -2 for pairs a class cannot join without asking the pathfinder
func (g *graphRun) premarkUnreachable() {
	sites := g.reg.sites
	for _, c := range g.classes {
		areas := make([]int, len(sites))
		for i, s := range sites {
			areas[i] = g.terrain.AreaOf(c.ID, s.position)
		}
		for i := range sites {
			for j := i + 1; j < len(sites); j++ {
				if areas[i] == 0 || areas[i] != areas[j] {
					g.reg.links[i][j].markUnreachable(c.ID)
				}
			}
		}
	}
}

func (g *graphRun) probe(i, j, classID int) float64 {
	g.oracleCalls++
	a, b := g.reg.sites[i].position, g.reg.sites[j].position
	return g.reg.links[i][j].record(classID, g.terrain.PathDistance(a, b, classID))
}

// connect is the first phase: a spanning tree grown from site 0, always
// extending by the shortest link of the most capable class that still works
func (g *graphRun) connect() int {
	n := g.reg.Len()
	connected := []int{0}
	inTree := make([]bool, n)
	inTree[0] = true
	pending := n - 1
	links := 0

	classIdx := 0
	for pending > 0 {
		if classIdx >= len(g.classes) {
			classIdx = -1
		}
		classID := NoClass
		if classIdx >= 0 {
			classID = g.classes[classIdx].ID
		}

		bestA, bestB := -1, -1
		bestDistance := 0.0
		for _, a := range connected {
			for b := 0; b < n; b++ {
				if inTree[b] {
					continue
				}
				d := g.reg.links[a][b].Estimate(classID)
				if d > 0 && (bestA == -1 || d < bestDistance) {
					bestA, bestB, bestDistance = a, b, d
				}
			}
		}

		switch {
		case bestA == -1:
			if classIdx == -1 {
				// every remaining pair sits on the same spot
				bestA, bestB = connected[0], firstOutside(inTree)
				g.reg.links[bestA][bestB].settleStraight()
				g.join(bestA, bestB, &connected, inTree)
				pending--
				links++
				classIdx = 0
				continue
			}
			classIdx++
		case classIdx >= 0 && !g.reg.links[bestA][bestB].HasBest():
			g.probe(bestA, bestB, classID)
		default:
			if classIdx == -1 {
				g.reg.links[bestA][bestB].settleStraight()
			}
			g.join(bestA, bestB, &connected, inTree)
			pending--
			links++
			classIdx = 0
		}
	}
	return links
}

func (g *graphRun) join(a, b int, connected *[]int, inTree []bool) {
	inTree[b] = true
	*connected = append(*connected, b)
	sort.Ints(*connected)
	g.reg.connect(a, b)
}

func firstOutside(inTree []bool) int {
	for i, in := range inTree {
		if !in {
			return i
		}
	}
	return -1
}

// preparePenalties weighs each class by how many accepted links already use it
// and seeds the densification worklist
func (g *graphRun) preparePenalties() {
	n := g.reg.Len()
	g.penalty = make(map[int]float64, len(g.classes))

	cumulative := make(map[int]int, len(g.classes))
	total := 0
	for _, c := range g.classes {
		cumulative[c.ID] = total
		for _, s := range g.reg.sites {
			for _, j := range s.linked {
				if g.reg.links[s.index][j].bestClass == c.ID {
					total++
				}
			}
		}
	}
	for _, c := range g.classes {
		p := float64(total) / (1 + float64(total)*g.config.PenaltyGrowth - float64(cumulative[c.ID]))
		if p < g.config.PenaltyMin {
			p = g.config.PenaltyMin
		} else if p > g.config.PenaltyMax {
			p = g.config.PenaltyMax
		}
		g.penalty[c.ID] = p
	}

	g.rmt = make([][]int, n)
	g.rd = make([][]float64, n)
	for i := 0; i < n; i++ {
		g.rmt[i] = make([]int, n)
		g.rd[i] = make([]float64, n)
		for j := range g.rd[i] {
			g.rd[i][j] = -1
			g.rmt[i][j] = NoClass
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			key := g.initialPenaltyKey(g.reg.links[i][j])
			g.rmt[i][j], g.rmt[j][i] = key, key
		}
	}

	for _, s := range g.reg.sites {
		if len(s.linked) >= targetLinks {
			continue
		}
		e := &linkEntry{index: s.index, best: candidateUnset, restricted: map[int]bool{s.index: true}}
		for _, j := range s.linked {
			e.restricted[j] = true
		}
		g.entries = append(g.entries, e)
	}
}

// initialPenaltyKey is the class whose penalty applies to a link: its best
// class, or for unresolved links the first class not yet probed
func (g *graphRun) initialPenaltyKey(l *Link) int {
	if l.HasBest() {
		return l.bestClass
	}
	for _, c := range g.classes {
		if _, probed := l.Probed(c.ID); !probed {
			return c.ID
		}
	}
	return NoClass
}

func (g *graphRun) penaltyOf(key int) float64 {
	if p, ok := g.penalty[key]; ok {
		return p
	}
	return g.config.UnlinkedPenalty
}

// dist is the penalty-weighted distance between two sites, computed on first use
func (g *graphRun) dist(i, j int) float64 {
	if g.rd[i][j] < 0 {
		l := g.reg.links[i][j]
		d := l.Estimate(l.bestClass) * g.penaltyOf(g.rmt[i][j])
		g.rd[i][j], g.rd[j][i] = d, d
	}
	return g.rd[i][j]
}

func (g *graphRun) forget(i, j int) {
	g.rd[i][j], g.rd[j][i] = -1, -1
}

// resolve probes classes in order until the pair has a best distance,
// falling back to the straight line
func (g *graphRun) resolve(i, j int) {
	l := g.reg.links[i][j]
	for _, c := range g.classes {
		if l.HasBest() {
			break
		}
		if _, probed := l.Probed(c.ID); !probed {
			g.probe(i, j, c.ID)
		}
	}
	key := l.bestClass
	if !l.HasBest() {
		l.settleStraight()
		key = NoClass
	}
	g.rmt[i][j], g.rmt[j][i] = key, key
	g.forget(i, j)
}

func (g *graphRun) linked(i int) []int {
	return g.reg.sites[i].linked
}

// findCandidate scans for the nearest site e may link to without a shorter
// detour through one of its current neighbors
func (g *graphRun) findCandidate(e *linkEntry) {
	n := g.reg.Len()
	for j := 0; j < n; j++ {
		if e.restricted[j] {
			continue
		}
		d := g.dist(e.index, j)
		if e.best >= 0 && d >= g.dist(e.index, e.best) {
			continue
		}
		accept := true
		for _, k := range g.linked(e.index) {
			if !g.reg.links[j][k].HasBest() {
				continue
			}
			if g.dist(j, k)+g.config.TriangleSlack*g.dist(e.index, k) < d {
				accept = false
				break
			}
		}
		if accept {
			e.best = j
		}
	}
}

// densifyStep performs one selection round of the second phase. It returns
// false when there is nothing left to link.
func (g *graphRun) densifyStep() bool {
	var chosen *linkEntry
	kept := g.entries[:0]
	for _, e := range g.entries {
		if e.best == candidateRejected {
			continue
		}
		if e.best == candidateUnset {
			g.findCandidate(e)
		}
		if e.best == candidateUnset {
			continue
		}
		kept = append(kept, e)
		if chosen == nil || g.dist(e.index, e.best) < g.dist(chosen.index, chosen.best) {
			chosen = e
		}
	}
	g.entries = kept
	if chosen == nil {
		return false
	}

	i, j := chosen.index, chosen.best
	reset := false
	if !g.reg.links[i][j].HasBest() {
		g.resolve(i, j)
		reset = true
	}
	for _, k := range g.linked(i) {
		if !g.reg.links[k][j].HasBest() {
			g.resolve(k, j)
			reset = true
		}
	}
	if reset {
		for _, e := range g.entries {
			if (e.index == j && chosen.restricted[e.best]) ||
				(g.reg.sites[i].IsLinkedTo(e.index) && e.best == j) {
				e.best = candidateUnset
			}
		}
		chosen.best = candidateUnset
		return len(g.entries) > 0
	}

	if g.rejectedAfterResolve(i, j) {
		chosen.best = candidateRejected
		return len(g.entries) > 0
	}

	g.reg.connect(i, j)
	g.phase2Links++
	for _, e := range g.entries {
		if e.restricted[j] {
			e.best = candidateUnset
			if e.index == j {
				e.restricted[i] = true
			}
		}
	}
	chosen.restricted[j] = true
	chosen.best = candidateUnset

	kept = g.entries[:0]
	for _, e := range g.entries {
		if len(g.linked(e.index)) < targetLinks {
			kept = append(kept, e)
		}
	}
	g.entries = kept
	return len(g.entries) > 0
}

// rejectedAfterResolve applies the checks that need resolved distances: the
// candidate j must not be closer to one of i's neighbors than to i, and none
// of j's neighbors may be closer to i than j is
func (g *graphRun) rejectedAfterResolve(i, j int) bool {
	for _, k := range g.linked(i) {
		if g.dist(j, k) < g.dist(j, i) {
			return true
		}
	}
	for _, m := range g.linked(j) {
		if !g.reg.links[i][m].HasBest() {
			g.resolve(i, m)
		}
		if g.dist(i, m) < g.dist(i, j) {
			return true
		}
	}
	return false
}
