package queries

import (
	"time"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
)

// MatchDTO represents a recorded match
type MatchDTO struct {
	ID         string
	Scenario   string
	MapName    string
	Seed       uint64
	Status     string
	Frames     int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// EventDTO represents one order event of a match
type EventDTO struct {
	Frame    int
	Kind     string
	Order    string
	UnitType int
	Category string
	Builder  int
	Site     int
	Reason   string
}

func toMatchDTO(m *journal.Match) *MatchDTO {
	return &MatchDTO{
		ID:         m.ID().String(),
		Scenario:   m.Scenario(),
		MapName:    m.MapName(),
		Seed:       m.Seed(),
		Status:     string(m.Status()),
		Frames:     int(m.Frames()),
		StartedAt:  m.StartedAt(),
		FinishedAt: m.FinishedAt(),
	}
}

func toEventDTO(e journal.OrderEvent) EventDTO {
	return EventDTO{
		Frame:    int(e.Frame),
		Kind:     string(e.Kind),
		Order:    e.Order,
		UnitType: int(e.UnitType),
		Category: e.Category,
		Builder:  int(e.Builder),
		Site:     e.Site,
		Reason:   string(e.Reason),
	}
}
