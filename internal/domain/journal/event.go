package journal

import (
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// EventKind names a ledger transition
type EventKind string

const (
	EventCreated  EventKind = "CREATED"
	EventAssigned EventKind = "ASSIGNED"
	EventRemoved  EventKind = "REMOVED"
)

// IsValid reports whether k is a known kind
func (k EventKind) IsValid() bool {
	switch k {
	case EventCreated, EventAssigned, EventRemoved:
		return true
	}
	return false
}

// ParseEventKind converts a stored kind back
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return k, nil
}

// OrderEvent is one ledger transition observed during a match
type OrderEvent struct {
	Frame    shared.Frame
	Kind     EventKind
	Order    string
	UnitType shared.UnitTypeID
	Category string
	Builder  shared.UnitID
	Site     int
	Reason   build.RemovalReason
}

// EventFromView copies the fields of an order view into an event
func EventFromView(kind EventKind, view build.OrderView) OrderEvent {
	return OrderEvent{
		Frame:    view.Frame,
		Kind:     kind,
		Order:    view.Handle.String(),
		UnitType: view.UnitType,
		Category: view.Category,
		Builder:  view.Builder,
		Site:     view.Site,
	}
}
