package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/simulation"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
	"github.com/andrescamacho/skirmish-economy-go/test/helpers"
)

// removalTally counts ledger transitions of a simulated match
type removalTally struct {
	created  int
	assigned int
	removed  map[build.RemovalReason]int
}

func (t *removalTally) OrderCreated(build.OrderView)                 { t.created++ }
func (t *removalTally) OrderAssigned(build.OrderView, shared.UnitID) { t.assigned++ }
func (t *removalTally) OrderRemoved(_ build.OrderView, reason build.RemovalReason) {
	t.removed[reason]++
}

type simulationContext struct {
	world  *simulation.World
	bot    *ai.Instance
	tally  *removalTally
	result simulation.Result
}

func (sc *simulationContext) reset() {
	sc.world = nil
	sc.bot = nil
	sc.tally = &removalTally{removed: make(map[build.RemovalReason]int)}
	sc.result = simulation.Result{}
}

func (sc *simulationContext) aMatchOfScenarioWithSeed(name string, seed int) error {
	scenario, err := simulation.LoadScenario(helpers.ScenarioPath(name))
	if err != nil {
		return err
	}
	sc.world = simulation.NewWorld(scenario)
	setup, err := simulation.BotSetup(scenario, sc.world, uint64(seed))
	if err != nil {
		return err
	}
	setup.Observers = append(setup.Observers, sc.tally)
	sc.bot, err = ai.New(context.Background(), ai.DefaultConfig(), setup)
	return err
}

func (sc *simulationContext) theBotPlaysFrames(frames int) error {
	result, err := simulation.NewRunner(sc.world, sc.bot, nil).Run(context.Background(), shared.Frame(frames))
	if err != nil {
		return err
	}
	sc.result = result
	return nil
}

func (sc *simulationContext) theBotShouldHaveIssuedAtLeastCommands(n int, kind string) error {
	if got := sc.result.Stats.Commands[kind]; got < n {
		return fmt.Errorf("expected at least %d %s commands, got %d", n, kind, got)
	}
	return nil
}

func (sc *simulationContext) atLeastUnitsShouldHaveBeenFinished(n int) error {
	if sc.result.Stats.Finished < n {
		return fmt.Errorf("expected at least %d finished units, got %d", n, sc.result.Stats.Finished)
	}
	return nil
}

func (sc *simulationContext) atLeastBuildOrdersShouldHaveBeenOpened(n int) error {
	if sc.tally.created < n {
		return fmt.Errorf("expected at least %d orders, got %d", n, sc.tally.created)
	}
	return nil
}

func (sc *simulationContext) everyOpenedOrderShouldBeOpenOrRemoved() error {
	removed := 0
	for _, n := range sc.tally.removed {
		removed += n
	}
	if open := sc.bot.Ledger().Len(); sc.tally.created != open+removed {
		return fmt.Errorf("%d orders created but %d open and %d removed", sc.tally.created, open, removed)
	}
	return nil
}

func (sc *simulationContext) theBotsLedgerShouldBeConsistent() error {
	return sc.bot.Ledger().CheckInvariants()
}

func (sc *simulationContext) theBotShouldKnowResourceSites(n int) error {
	if got := sc.bot.Registry().Len(); got != n {
		return fmt.Errorf("expected %d sites, got %d", n, got)
	}
	return nil
}

// InitializeSimulationScenario registers the simulated match steps
func InitializeSimulationScenario(ctx *godog.ScenarioContext) {
	sc := &simulationContext{}

	ctx.Before(func(c context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return c, nil
	})

	ctx.Step(`^a match of scenario "([^"]*)" with seed (\d+)$`, sc.aMatchOfScenarioWithSeed)
	ctx.Step(`^the bot plays (\d+) frames$`, sc.theBotPlaysFrames)
	ctx.Step(`^the bot should have issued at least (\d+) "([^"]*)" commands?$`, sc.theBotShouldHaveIssuedAtLeastCommands)
	ctx.Step(`^at least (\d+) units? should have been finished$`, sc.atLeastUnitsShouldHaveBeenFinished)
	ctx.Step(`^at least (\d+) build orders? should have been opened$`, sc.atLeastBuildOrdersShouldHaveBeenOpened)
	ctx.Step(`^every opened order should be open or removed$`, sc.everyOpenedOrderShouldBeOpenOrRemoved)
	ctx.Step(`^the bot's ledger should be consistent$`, sc.theBotsLedgerShouldBeConsistent)
	ctx.Step(`^the bot should know (\d+) resource sites$`, sc.theBotShouldKnowResourceSites)
}
