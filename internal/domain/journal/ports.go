package journal

import (
	"context"
	"time"
)

// MatchRepository defines persistence operations for recorded matches
type MatchRepository interface {
	// Save persists a match together with its events
	Save(ctx context.Context, match *Match) error

	// FindByID retrieves a match and its events; nil when absent
	FindByID(ctx context.Context, id MatchID) (*Match, error)

	// List returns matches without their events, newest first
	List(ctx context.Context, opts QueryOptions) ([]*Match, error)
}

// QueryOptions filters and paginates match listings
type QueryOptions struct {
	Scenario *string
	Since    *time.Time
	Limit    int
	Offset   int
}

// DefaultQueryOptions returns default query options
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{Limit: 20}
}
