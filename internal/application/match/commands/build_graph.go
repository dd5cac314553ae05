package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/graph"
	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/simulation"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// BuildGraphCommand selects a scenario's resource sites and links them,
// storing the result for later matches on the same map
type BuildGraphCommand struct {
	ScenarioPath string
	Config       ai.Config
}

// BuildGraphResponse describes the linked site graph
type BuildGraphResponse struct {
	MapName     string
	Fingerprint string
	Sites       int
	Links       int
	Unlinked    []int
}

// BuildGraphHandler handles the BuildGraph command
type BuildGraphHandler struct {
	graphStore graph.SnapshotStore
	clock      shared.Clock
}

// NewBuildGraphHandler creates a new BuildGraphHandler
func NewBuildGraphHandler(graphStore graph.SnapshotStore, clock shared.Clock) *BuildGraphHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &BuildGraphHandler{graphStore: graphStore, clock: clock}
}

// Handle executes the BuildGraph command
func (h *BuildGraphHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*BuildGraphCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *BuildGraphCommand")
	}

	scenario, err := simulation.LoadScenario(cmd.ScenarioPath)
	if err != nil {
		return nil, err
	}
	world := simulation.NewWorld(scenario)
	setup, err := simulation.BotSetup(scenario, world, 0)
	if err != nil {
		return nil, err
	}
	setup.Clock = h.clock

	cache, err := graph.NewSiteGraphCache(scenario.Map.Name, h.graphStore, ai.BuildGraph{
		Terrain: world,
		Clock:   h.clock,
		Config:  cmd.Config.Graph,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create site graph cache: %w", err)
	}
	defer cache.Close()
	setup.Graph = cache

	bot, err := ai.New(ctx, cmd.Config, setup)
	if err != nil {
		return nil, fmt.Errorf("failed to link sites: %w", err)
	}

	reg := bot.Registry()
	return &BuildGraphResponse{
		MapName:     scenario.Map.Name,
		Fingerprint: reg.Fingerprint(),
		Sites:       reg.Len(),
		Links:       reg.LinkCount(),
		Unlinked:    unlinked(reg),
	}, nil
}

func unlinked(reg *resource.Registry) []int {
	var out []int
	for _, s := range reg.Sites() {
		if len(s.Linked()) == 0 {
			out = append(out, s.Index())
		}
	}
	return out
}
