package fleet

import (
	"sort"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Member is one unit owned by the bot
type Member struct {
	ID         shared.UnitID
	Type       build.UnitType
	Category   *build.Category
	AIDisabled bool
	Finished   bool
	Created    shared.Frame

	idleSince     shared.Frame
	lastIdleEvent shared.Frame
	repairs       []shared.UnitID
}

// IsBuilder reports whether the member is a finished unit able to construct
func (m *Member) IsBuilder() bool {
	return m.Finished && m.Type.IsBuilder()
}

// IdleSince returns the frame the member went idle, or -1 while it is busy
func (m *Member) IdleSince() shared.Frame { return m.idleSince }

// Roster tracks the bot's own units.
//
// Listing methods return members by ascending unit ID so that callers which
// feed the list into randomized or compared decisions stay deterministic.
type Roster struct {
	members      map[shared.UnitID]*Member
	ids          []shared.UnitID
	decommission []shared.UnitID
	finished     int
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{members: make(map[shared.UnitID]*Member)}
}

// Add registers a unit that was just created. An existing entry is returned unchanged.
func (r *Roster) Add(id shared.UnitID, def build.UnitType, frame shared.Frame, aiDisabled bool) *Member {
	if m, ok := r.members[id]; ok {
		return m
	}
	m := &Member{
		ID:            id,
		Type:          def,
		AIDisabled:    aiDisabled,
		Created:       frame,
		idleSince:     -1,
		lastIdleEvent: -1,
	}
	r.members[id] = m
	i := sort.Search(len(r.ids), func(i int) bool { return r.ids[i] >= id })
	r.ids = append(r.ids, 0)
	copy(r.ids[i+1:], r.ids[i:])
	r.ids[i] = id
	return m
}

// Get returns the member with the given ID
func (r *Roster) Get(id shared.UnitID) (*Member, bool) {
	m, ok := r.members[id]
	return m, ok
}

// Finish marks a member as completed
func (r *Roster) Finish(id shared.UnitID) (*Member, bool) {
	m, ok := r.members[id]
	if !ok {
		return nil, false
	}
	if !m.Finished {
		m.Finished = true
		r.finished++
	}
	return m, true
}

// Remove forgets a member and drops it from the decommission list
func (r *Roster) Remove(id shared.UnitID) (*Member, bool) {
	m, ok := r.members[id]
	if !ok {
		return nil, false
	}
	delete(r.members, id)
	if i := sort.Search(len(r.ids), func(i int) bool { return r.ids[i] >= id }); i < len(r.ids) && r.ids[i] == id {
		r.ids = append(r.ids[:i], r.ids[i+1:]...)
	}
	if m.Finished {
		r.finished--
	}
	r.Recommission(id)
	return m, true
}

// Len returns the number of members, finished or not
func (r *Roster) Len() int { return len(r.ids) }

// FinishedCount returns the number of completed members
func (r *Roster) FinishedCount() int { return r.finished }

// Members returns every member by ascending ID
func (r *Roster) Members() []*Member {
	out := make([]*Member, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.members[id])
	}
	return out
}

// Builders returns the finished builders the AI controls
func (r *Roster) Builders() []*Member {
	var out []*Member
	for _, id := range r.ids {
		if m := r.members[id]; m.IsBuilder() && !m.AIDisabled {
			out = append(out, m)
		}
	}
	return out
}

// OfType returns the finished members of type t
func (r *Roster) OfType(t shared.UnitTypeID) []*Member {
	var out []*Member
	for _, id := range r.ids {
		if m := r.members[id]; m.Finished && m.Type.ID == t {
			out = append(out, m)
		}
	}
	return out
}

// AcceptIdle reports whether an idle event at frame should be handled now.
// Events closer than window frames to the previously accepted one are deferred.
func (r *Roster) AcceptIdle(id shared.UnitID, frame, window shared.Frame) bool {
	m, ok := r.members[id]
	if !ok {
		return false
	}
	if m.lastIdleEvent >= 0 && frame-m.lastIdleEvent < window {
		return false
	}
	m.lastIdleEvent = frame
	return true
}

// SetIdle records that the member has nothing to do since frame
func (r *Roster) SetIdle(id shared.UnitID, frame shared.Frame) {
	if m, ok := r.members[id]; ok && m.idleSince < 0 {
		m.idleSince = frame
	}
}

// SetBusy records that the member received work
func (r *Roster) SetBusy(id shared.UnitID) {
	if m, ok := r.members[id]; ok {
		m.idleSince = -1
	}
}

// IdleLongerThan returns finished members idle for more than interval frames
func (r *Roster) IdleLongerThan(frame, interval shared.Frame) []*Member {
	var out []*Member
	for _, id := range r.ids {
		m := r.members[id]
		if m.Finished && !m.AIDisabled && m.idleSince >= 0 && frame-m.idleSince > interval {
			out = append(out, m)
		}
	}
	return out
}

// QueueRepair asks builder to repair target once it is free. Duplicates are ignored.
func (r *Roster) QueueRepair(builder, target shared.UnitID) bool {
	m, ok := r.members[builder]
	if !ok || builder == target {
		return false
	}
	for _, u := range m.repairs {
		if u == target {
			return false
		}
	}
	m.repairs = append(m.repairs, target)
	return true
}

// Repairs returns the repair queue of builder, oldest first
func (r *Roster) Repairs(builder shared.UnitID) []shared.UnitID {
	if m, ok := r.members[builder]; ok {
		return append([]shared.UnitID(nil), m.repairs...)
	}
	return nil
}

// DropRepair removes target from the repair queue of builder
func (r *Roster) DropRepair(builder, target shared.UnitID) {
	m, ok := r.members[builder]
	if !ok {
		return
	}
	for i, u := range m.repairs {
		if u == target {
			m.repairs = append(m.repairs[:i], m.repairs[i+1:]...)
			return
		}
	}
}

// Decommission lists an own unit to be reclaimed, typically an outranked extractor
func (r *Roster) Decommission(id shared.UnitID) {
	for _, u := range r.decommission {
		if u == id {
			return
		}
	}
	r.decommission = append(r.decommission, id)
}

// Recommission takes a unit off the decommission list
func (r *Roster) Recommission(id shared.UnitID) {
	for i, u := range r.decommission {
		if u == id {
			r.decommission = append(r.decommission[:i], r.decommission[i+1:]...)
			return
		}
	}
}

// Decommissioned returns the decommission list in the order units were added
func (r *Roster) Decommissioned() []shared.UnitID {
	return append([]shared.UnitID(nil), r.decommission...)
}
