package journal

import (
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Status of a recorded match
type Status string

const (
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
)

// Match is the aggregate root of a recorded skirmish: which scenario ran with
// which seed, and every ledger transition in frame order
type Match struct {
	id         MatchID
	scenario   string
	mapName    string
	seed       uint64
	startedAt  time.Time
	finishedAt *time.Time
	frames     shared.Frame
	status     Status
	events     []OrderEvent
}

// NewMatch starts recording a match
func NewMatch(scenario, mapName string, seed uint64, startedAt time.Time) (*Match, error) {
	if scenario == "" {
		return nil, &ErrInvalidMatch{Field: "scenario", Reason: "scenario cannot be empty"}
	}
	if startedAt.IsZero() {
		return nil, &ErrInvalidMatch{Field: "started_at", Reason: "start time is required"}
	}
	return &Match{
		id:        NewMatchID(),
		scenario:  scenario,
		mapName:   mapName,
		seed:      seed,
		startedAt: startedAt,
		status:    StatusRunning,
	}, nil
}

// ReconstructMatch rebuilds a match from persistence
func ReconstructMatch(
	id MatchID,
	scenario, mapName string,
	seed uint64,
	startedAt time.Time,
	finishedAt *time.Time,
	frames shared.Frame,
	status Status,
	events []OrderEvent,
) *Match {
	return &Match{
		id:         id,
		scenario:   scenario,
		mapName:    mapName,
		seed:       seed,
		startedAt:  startedAt,
		finishedAt: finishedAt,
		frames:     frames,
		status:     status,
		events:     events,
	}
}

// Record appends an event. Events must not go back in time.
func (m *Match) Record(e OrderEvent) error {
	if m.status == StatusFinished {
		return &ErrMatchFinished{ID: m.id}
	}
	if !e.Kind.IsValid() {
		return &ErrInvalidMatch{Field: "event_kind", Reason: fmt.Sprintf("unknown kind %q", e.Kind)}
	}
	if n := len(m.events); n > 0 && e.Frame < m.events[n-1].Frame {
		return &ErrEventOutOfOrder{Last: int(m.events[n-1].Frame), Frame: int(e.Frame)}
	}
	m.events = append(m.events, e)
	return nil
}

// Finish closes the match after frames simulated frames
func (m *Match) Finish(frames shared.Frame, at time.Time) error {
	if m.status == StatusFinished {
		return &ErrMatchFinished{ID: m.id}
	}
	if n := len(m.events); n > 0 && frames < m.events[n-1].Frame {
		return &ErrInvalidMatch{Field: "frames", Reason: fmt.Sprintf("match ended at %d before its last event at %d", frames, m.events[n-1].Frame)}
	}
	m.frames = frames
	m.finishedAt = &at
	m.status = StatusFinished
	return nil
}

func (m *Match) ID() MatchID            { return m.id }
func (m *Match) Scenario() string       { return m.scenario }
func (m *Match) MapName() string        { return m.mapName }
func (m *Match) Seed() uint64           { return m.seed }
func (m *Match) StartedAt() time.Time   { return m.startedAt }
func (m *Match) FinishedAt() *time.Time { return m.finishedAt }
func (m *Match) Frames() shared.Frame   { return m.frames }
func (m *Match) Status() Status         { return m.status }

// Events returns a copy of the recorded events
func (m *Match) Events() []OrderEvent {
	out := make([]OrderEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Summary counts orders per removal reason. Orders never removed are counted
// as open.
type Summary struct {
	Created int
	Open    int
	Removed map[build.RemovalReason]int
}

// Reasons returns the removal reasons in alphabetical order
func (s Summary) Reasons() []build.RemovalReason {
	out := make([]build.RemovalReason, 0, len(s.Removed))
	for r := range s.Removed {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Summarize folds the events into per-reason counts
func (m *Match) Summarize() Summary {
	s := Summary{Removed: make(map[build.RemovalReason]int)}
	removed := 0
	for _, e := range m.events {
		switch e.Kind {
		case EventCreated:
			s.Created++
		case EventRemoved:
			s.Removed[e.Reason]++
			removed++
		}
	}
	s.Open = s.Created - removed
	return s
}

func (m *Match) String() string {
	return fmt.Sprintf("Match[%s, scenario=%s, seed=%d, status=%s, events=%d]", m.id, m.scenario, m.seed, m.status, len(m.events))
}
