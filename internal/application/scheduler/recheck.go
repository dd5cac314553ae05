package scheduler

import (
	"sort"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Now schedules a recheck for the next update
const Now shared.Frame = 0

type recheck struct {
	unit shared.UnitID
	at   shared.Frame
}

// RecheckQueue holds the frames at which units should be idled again.
// A unit has at most one pending recheck; scheduling again replaces it.
type RecheckQueue struct {
	pending []recheck
}

// NewRecheckQueue creates an empty queue
func NewRecheckQueue() *RecheckQueue {
	return &RecheckQueue{}
}

// Schedule asks for unit to be rechecked at frame
func (q *RecheckQueue) Schedule(unit shared.UnitID, at shared.Frame) {
	for i := range q.pending {
		if q.pending[i].unit == unit {
			q.pending[i].at = at
			return
		}
	}
	q.pending = append(q.pending, recheck{unit: unit, at: at})
}

// Cancel drops any pending recheck of unit
func (q *RecheckQueue) Cancel(unit shared.UnitID) {
	for i := range q.pending {
		if q.pending[i].unit == unit {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Pending returns the frame unit is scheduled for
func (q *RecheckQueue) Pending(unit shared.UnitID) (shared.Frame, bool) {
	for _, r := range q.pending {
		if r.unit == unit {
			return r.at, true
		}
	}
	return 0, false
}

// Len returns the number of pending rechecks
func (q *RecheckQueue) Len() int { return len(q.pending) }

// Due removes and returns the units due at frame, earliest first, ties by unit ID
func (q *RecheckQueue) Due(frame shared.Frame) []shared.UnitID {
	var due []recheck
	kept := q.pending[:0]
	for _, r := range q.pending {
		if r.at <= frame {
			due = append(due, r)
		} else {
			kept = append(kept, r)
		}
	}
	q.pending = kept
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].unit < due[j].unit
	})
	out := make([]shared.UnitID, len(due))
	for i, r := range due {
		out[i] = r.unit
	}
	return out
}
