package scheduler

import (
	"sort"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// debrisList is a set of known features keyed by feature ID. Iteration is by
// ascending ID.
type debrisList struct {
	positions map[int]shared.Position
}

func newDebrisList() debrisList {
	return debrisList{positions: make(map[int]shared.Position)}
}

func (d debrisList) add(id int, pos shared.Position) {
	if _, ok := d.positions[id]; !ok {
		d.positions[id] = pos
	}
}

func (d debrisList) remove(id int) { delete(d.positions, id) }

func (d debrisList) len() int { return len(d.positions) }

func (d debrisList) ids() []int {
	out := make([]int, 0, len(d.positions))
	for id := range d.positions {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Debris is what the bot knows about reclaimable and resurrectable features
type Debris struct {
	Metal      debrisList
	Energy     debrisList
	Resurrect  debrisList
	Obstacles  debrisList
	threshold  float64
	scanRadius float64
	scanLimit  int
}

func newDebris(cfg Config) *Debris {
	return &Debris{
		Metal:      newDebrisList(),
		Energy:     newDebrisList(),
		Resurrect:  newDebrisList(),
		Obstacles:  newDebrisList(),
		threshold:  cfg.DebrisThreshold,
		scanRadius: cfg.FeatureScanRadius,
		scanLimit:  cfg.FeatureScanLimit,
	}
}

// scan records the features around pos
func (d *Debris) scan(features ports.FeatureOracle, pos shared.Position) {
	if features == nil {
		return
	}
	for _, f := range features.FeaturesNear(pos, d.scanRadius, d.scanLimit) {
		if !f.Reclaimable {
			continue
		}
		if f.Metal >= d.threshold {
			d.Metal.add(f.ID, f.Position)
		}
		if f.Energy >= d.threshold {
			d.Energy.add(f.ID, f.Position)
		}
		if f.Resurrectable {
			d.Resurrect.add(f.ID, f.Position)
		}
	}
}
