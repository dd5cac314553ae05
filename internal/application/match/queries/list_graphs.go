package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
)

// GraphLister reads the stored site graphs of a map
type GraphLister interface {
	ListByMap(ctx context.Context, mapName string) ([]persistence.StoredGraph, error)
}

// ListGraphsQuery represents a query for the cached site graphs of a map
type ListGraphsQuery struct {
	MapName string
}

// GraphDTO describes one cached site graph
type GraphDTO struct {
	Fingerprint string
	Sites       int
	Links       int
	Bytes       int
	UpdatedAt   time.Time
}

// ListGraphsResponse represents the result of the query
type ListGraphsResponse struct {
	Graphs []GraphDTO
}

// ListGraphsHandler handles the ListGraphs query
type ListGraphsHandler struct {
	graphs GraphLister
}

// NewListGraphsHandler creates a new ListGraphsHandler
func NewListGraphsHandler(graphs GraphLister) *ListGraphsHandler {
	return &ListGraphsHandler{graphs: graphs}
}

// Handle executes the ListGraphs query
func (h *ListGraphsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListGraphsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListGraphsQuery")
	}
	if query.MapName == "" {
		return nil, fmt.Errorf("map name is required")
	}

	stored, err := h.graphs.ListByMap(ctx, query.MapName)
	if err != nil {
		return nil, fmt.Errorf("failed to list site graphs: %w", err)
	}
	resp := &ListGraphsResponse{Graphs: make([]GraphDTO, 0, len(stored))}
	for _, g := range stored {
		resp.Graphs = append(resp.Graphs, GraphDTO{
			Fingerprint: g.Fingerprint,
			Sites:       g.Sites,
			Links:       g.Links,
			Bytes:       len(g.Payload),
			UpdatedAt:   g.UpdatedAt,
		})
	}
	return resp, nil
}
