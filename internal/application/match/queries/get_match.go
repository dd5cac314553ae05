package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
)

// GetMatchQuery represents a query for one recorded match and its events
type GetMatchQuery struct {
	MatchID string
}

// GetMatchResponse represents the result of the query
type GetMatchResponse struct {
	Match   *MatchDTO
	Events  []EventDTO
	Summary journal.Summary
}

// GetMatchHandler handles the GetMatch query
type GetMatchHandler struct {
	matchRepo journal.MatchRepository
}

// NewGetMatchHandler creates a new GetMatchHandler
func NewGetMatchHandler(matchRepo journal.MatchRepository) *GetMatchHandler {
	return &GetMatchHandler{matchRepo: matchRepo}
}

// Handle executes the GetMatch query
func (h *GetMatchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetMatchQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetMatchQuery")
	}

	id, err := journal.ParseMatchID(query.MatchID)
	if err != nil {
		return nil, err
	}
	match, err := h.matchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if match == nil {
		return nil, &journal.ErrMatchNotFound{ID: id.String()}
	}

	events := match.Events()
	resp := &GetMatchResponse{
		Match:   toMatchDTO(match),
		Events:  make([]EventDTO, 0, len(events)),
		Summary: match.Summarize(),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, toEventDTO(e))
	}
	return resp, nil
}
