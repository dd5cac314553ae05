package match

import (
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/graph"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/commands"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/queries"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Dependencies are the collaborators of the match handlers. Matches and
// Graphs may be nil; the handlers that need them are then not registered.
type Dependencies struct {
	Matches    journal.MatchRepository
	GraphStore graph.SnapshotStore
	Graphs     queries.GraphLister
	Observers  []build.Observer
	Clock      shared.Clock
}

// Register wires every match command and query into m
func Register(m common.Mediator, deps Dependencies) error {
	if err := common.RegisterHandler[*commands.RunMatchCommand](m,
		commands.NewRunMatchHandler(deps.Matches, deps.GraphStore, deps.Observers, deps.Clock)); err != nil {
		return fmt.Errorf("failed to register RunMatch handler: %w", err)
	}
	if err := common.RegisterHandler[*commands.BuildGraphCommand](m,
		commands.NewBuildGraphHandler(deps.GraphStore, deps.Clock)); err != nil {
		return fmt.Errorf("failed to register BuildGraph handler: %w", err)
	}

	if deps.Matches != nil {
		if err := common.RegisterHandler[*queries.ListMatchesQuery](m, queries.NewListMatchesHandler(deps.Matches)); err != nil {
			return fmt.Errorf("failed to register ListMatches handler: %w", err)
		}
		if err := common.RegisterHandler[*queries.GetMatchQuery](m, queries.NewGetMatchHandler(deps.Matches)); err != nil {
			return fmt.Errorf("failed to register GetMatch handler: %w", err)
		}
	}
	if deps.Graphs != nil {
		if err := common.RegisterHandler[*queries.ListGraphsQuery](m, queries.NewListGraphsHandler(deps.Graphs)); err != nil {
			return fmt.Errorf("failed to register ListGraphs handler: %w", err)
		}
	}
	return nil
}
