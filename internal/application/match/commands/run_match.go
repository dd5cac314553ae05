package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/graph"
	journaladapter "github.com/andrescamacho/skirmish-economy-go/internal/adapters/journal"
	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/simulation"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// RunMatchCommand plays a scenario with a fresh bot
type RunMatchCommand struct {
	ScenarioPath string
	Frames       shared.Frame
	Seed         uint64
	// Realtime paces the run at this multiple of game speed; zero runs unpaced
	Realtime float64
	// Record saves the order journal of the match
	Record bool
	Config ai.Config
	// OnFrame is called after every frame
	OnFrame func(frame shared.Frame)
}

// RunMatchResponse summarizes the match
type RunMatchResponse struct {
	MatchID     string
	Scenario    string
	MapName     string
	Frames      shared.Frame
	Stats       simulation.Stats
	Economy     economy.Snapshot
	Summary     journal.Summary
	OpenOrders  int
	Sites       int
	Links       int
	Fingerprint string
	// Dropped counts journal events the match refused
	Dropped int
}

// RunMatchHandler handles the RunMatch command
type RunMatchHandler struct {
	matchRepo  journal.MatchRepository
	graphStore graph.SnapshotStore
	observers  []build.Observer
	clock      shared.Clock
}

// NewRunMatchHandler creates a new RunMatchHandler. matchRepo may be nil when
// matches are never recorded; graphStore may be nil to keep graphs in memory.
func NewRunMatchHandler(
	matchRepo journal.MatchRepository,
	graphStore graph.SnapshotStore,
	observers []build.Observer,
	clock shared.Clock,
) *RunMatchHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &RunMatchHandler{
		matchRepo:  matchRepo,
		graphStore: graphStore,
		observers:  observers,
		clock:      clock,
	}
}

// Handle executes the RunMatch command
func (h *RunMatchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunMatchCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunMatchCommand")
	}
	if cmd.Frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", cmd.Frames)
	}
	if cmd.Record && h.matchRepo == nil {
		return nil, fmt.Errorf("cannot record a match without a match repository")
	}
	logger := common.LoggerFromContext(ctx)

	scenario, err := simulation.LoadScenario(cmd.ScenarioPath)
	if err != nil {
		return nil, err
	}
	world := simulation.NewWorld(scenario)

	setup, err := simulation.BotSetup(scenario, world, cmd.Seed)
	if err != nil {
		return nil, err
	}
	setup.Clock = h.clock
	setup.Observers = append(setup.Observers, h.observers...)

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

	var recorder *journaladapter.Recorder
	if cmd.Record {
		recorder, err = journaladapter.NewRecorder(scenario.Name, scenario.Map.Name, cmd.Seed, h.clock)
		if err != nil {
			return nil, fmt.Errorf("failed to start match journal: %w", err)
		}
		setup.Observers = append(setup.Observers, recorder)
	}

	bot, err := ai.New(ctx, cmd.Config, setup)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	runner := simulation.NewRunner(world, bot, simulation.RealtimeLimiter(cmd.Realtime))
	runner.OnFrame = cmd.OnFrame
	result, err := runner.Run(ctx, cmd.Frames)
	if err != nil {
		return nil, err
	}

	resp := &RunMatchResponse{
		Scenario:    scenario.Name,
		MapName:     scenario.Map.Name,
		Frames:      result.Frames,
		Stats:       result.Stats,
		Economy:     result.Economy,
		OpenOrders:  bot.Ledger().Len(),
		Sites:       bot.Registry().Len(),
		Links:       bot.Registry().LinkCount(),
		Fingerprint: bot.Registry().Fingerprint(),
	}

	if recorder != nil {
		dropped, firstErr := recorder.Dropped()
		if dropped > 0 {
			logger.Log("WARNING", fmt.Sprintf("[Journal] %d events dropped: %v", dropped, firstErr), nil)
		}
		match, err := recorder.Flush(ctx, h.matchRepo, result.Frames, h.clock.Now())
		if err != nil {
			return nil, err
		}
		resp.MatchID = match.ID().String()
		resp.Summary = match.Summarize()
		resp.Dropped = dropped
		logger.Log("INFO", fmt.Sprintf("[Journal] Saved %s", match), nil)
	}
	return resp, nil
}
