package journal

import (
	"fmt"

	"github.com/google/uuid"
)

// MatchID identifies a recorded match
type MatchID struct {
	value string
}

// NewMatchID creates a MatchID with a generated UUID
func NewMatchID() MatchID {
	return MatchID{value: uuid.New().String()}
}

// ParseMatchID creates a MatchID from an existing UUID string
func ParseMatchID(id string) (MatchID, error) {
	if id == "" {
		return MatchID{}, fmt.Errorf("match_id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return MatchID{}, fmt.Errorf("invalid match_id format: %w", err)
	}
	return MatchID{value: id}, nil
}

// MustParseMatchID is ParseMatchID for IDs read back from the database
func MustParseMatchID(id string) MatchID {
	mid, err := ParseMatchID(id)
	if err != nil {
		panic(err)
	}
	return mid
}

func (m MatchID) String() string { return m.value }

// IsZero reports whether the ID is uninitialized
func (m MatchID) IsZero() bool { return m.value == "" }
