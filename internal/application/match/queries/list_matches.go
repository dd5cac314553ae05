package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
)

// ListMatchesQuery represents a query to list recorded matches
type ListMatchesQuery struct {
	Scenario *string
	Since    *time.Time
	Limit    int
	Offset   int
}

// ListMatchesResponse represents the result of the query
type ListMatchesResponse struct {
	Matches []*MatchDTO
}

// ListMatchesHandler handles the ListMatches query
type ListMatchesHandler struct {
	matchRepo journal.MatchRepository
}

// NewListMatchesHandler creates a new ListMatchesHandler
func NewListMatchesHandler(matchRepo journal.MatchRepository) *ListMatchesHandler {
	return &ListMatchesHandler{matchRepo: matchRepo}
}

// Handle executes the ListMatches query
func (h *ListMatchesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListMatchesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListMatchesQuery")
	}

	opts := journal.DefaultQueryOptions()
	opts.Scenario = query.Scenario
	opts.Since = query.Since
	if query.Limit > 0 {
		opts.Limit = query.Limit
	}
	if query.Offset > 0 {
		opts.Offset = query.Offset
	}

	matches, err := h.matchRepo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	resp := &ListMatchesResponse{Matches: make([]*MatchDTO, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, toMatchDTO(m))
	}
	return resp, nil
}
