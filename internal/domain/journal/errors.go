package journal

import "fmt"

// ErrInvalidMatch represents validation errors for matches
type ErrInvalidMatch struct {
	Field  string
	Reason string
}

func (e *ErrInvalidMatch) Error() string {
	return fmt.Sprintf("invalid match: %s - %s", e.Field, e.Reason)
}

// ErrMatchFinished is returned when events are recorded after the match ended
type ErrMatchFinished struct {
	ID MatchID
}

func (e *ErrMatchFinished) Error() string {
	return fmt.Sprintf("match %s is already finished", e.ID)
}

// ErrEventOutOfOrder is returned when an event goes back in time
type ErrEventOutOfOrder struct {
	Last  int
	Frame int
}

func (e *ErrEventOutOfOrder) Error() string {
	return fmt.Sprintf("event at frame %d recorded after frame %d", e.Frame, e.Last)
}

// ErrMatchNotFound represents errors when a match cannot be found
type ErrMatchNotFound struct {
	ID string
}

func (e *ErrMatchNotFound) Error() string {
	return fmt.Sprintf("match not found: id=%s", e.ID)
}
