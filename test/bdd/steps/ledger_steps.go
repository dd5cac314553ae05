package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/simulation"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
	"github.com/andrescamacho/skirmish-economy-go/test/helpers"
)

// ledgerContext drives the order ledger of a bot that was set up but never updated
type ledgerContext struct {
	bot     *ai.Instance
	handles []build.Handle
	removed build.Handle
	err     error
}

func (lc *ledgerContext) reset() {
	lc.bot = nil
	lc.handles = nil
	lc.removed = build.NoHandle
	lc.err = nil
}

func (lc *ledgerContext) theBotOfScenario(name string) error {
	scenario, err := simulation.LoadScenario(helpers.ScenarioPath(name))
	if err != nil {
		return err
	}
	world := simulation.NewWorld(scenario)
	setup, err := simulation.BotSetup(scenario, world, 1)
	if err != nil {
		return err
	}
	lc.bot, err = ai.New(context.Background(), ai.DefaultConfig(), setup)
	return err
}

func (lc *ledgerContext) category(name string) (*build.Category, error) {
	for _, c := range lc.bot.Catalog().Categories() {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no category named %q", name)
}

func (lc *ledgerContext) iQueueAnOrderForUnitTypeAtFrame(categoryName string, unitType, frame int) error {
	cat, err := lc.category(categoryName)
	if err != nil {
		return err
	}
	h, err := lc.bot.Ledger().Create(shared.UnitTypeID(unitType), cat, cat.Kind().OrderKind(), shared.Frame(frame))
	if err != nil {
		lc.err = err
		return nil
	}
	lc.handles = append(lc.handles, h)
	return nil
}

func (lc *ledgerContext) iQueueAnOrderForTheUnknownUnitType(unitType int) error {
	_, lc.err = lc.bot.Ledger().Create(shared.UnitTypeID(unitType), nil, build.GeneralOrder, 0)
	return nil
}

func (lc *ledgerContext) theLedgerShouldHoldOrders(n int) error {
	if got := lc.bot.Ledger().Len(); got != n {
		return fmt.Errorf("expected %d orders in the ledger, got %d", n, got)
	}
	return nil
}

func (lc *ledgerContext) categoryShouldCountActive(name string, n int) error {
	cat, err := lc.category(name)
	if err != nil {
		return err
	}
	if got := cat.Active(); got != n {
		return fmt.Errorf("expected category %s to count %d active, got %d", name, n, got)
	}
	return nil
}

func (lc *ledgerContext) iRemoveTheFirstOrderAsAtFrame(reason string, frame int) error {
	if len(lc.handles) == 0 {
		return fmt.Errorf("no order was queued")
	}
	lc.removed = lc.handles[0]
	lc.handles = lc.handles[1:]
	_, err := lc.bot.Ledger().Remove(lc.removed, shared.Frame(frame), build.RemovalReason(reason))
	return err
}

func (lc *ledgerContext) removingThatOrderAgainShouldFail() error {
	_, err := lc.bot.Ledger().Remove(lc.removed, 0, build.RemovalCompleted)
	if !errors.Is(err, build.ErrOrderNotFound) {
		return fmt.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	return nil
}

func (lc *ledgerContext) theNewestOrderShouldNotAnswerToTheRemovedHandle() error {
	if len(lc.handles) == 0 {
		return fmt.Errorf("no order was queued")
	}
	newest := lc.handles[len(lc.handles)-1]
	if newest == lc.removed {
		return fmt.Errorf("handle %s was handed out twice", newest)
	}
	if _, ok := lc.bot.Ledger().Get(lc.removed); ok {
		return fmt.Errorf("removed handle %s still resolves", lc.removed)
	}
	return nil
}

func (lc *ledgerContext) theOrderShouldBeRejectedAsAnUnknownUnitType() error {
	var unknown *build.ErrUnknownUnitType
	if !errors.As(lc.err, &unknown) {
		return fmt.Errorf("expected ErrUnknownUnitType, got %v", lc.err)
	}
	return nil
}

func (lc *ledgerContext) theLedgerInvariantsShouldHold() error {
	return lc.bot.Ledger().CheckInvariants()
}

// InitializeLedgerScenario registers the build order ledger steps
func InitializeLedgerScenario(sc *godog.ScenarioContext) {
	lc := &ledgerContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		lc.reset()
		return ctx, nil
	})

	sc.Step(`^the bot of scenario "([^"]*)"$`, lc.theBotOfScenario)
	sc.Step(`^I queue an? "([^"]*)" order for unit type (\d+) at frame (\d+)$`, lc.iQueueAnOrderForUnitTypeAtFrame)
	sc.Step(`^I queue an order for the unknown unit type (\d+)$`, lc.iQueueAnOrderForTheUnknownUnitType)
	sc.Step(`^the ledger should hold (\d+) orders?$`, lc.theLedgerShouldHoldOrders)
	sc.Step(`^category "([^"]*)" should count (\d+) active$`, lc.categoryShouldCountActive)
	sc.Step(`^I remove the first order as "([^"]*)" at frame (\d+)$`, lc.iRemoveTheFirstOrderAsAtFrame)
	sc.Step(`^removing that order again should fail$`, lc.removingThatOrderAgainShouldFail)
	sc.Step(`^the newest order should not answer to the removed handle$`, lc.theNewestOrderShouldNotAnswerToTheRemovedHandle)
	sc.Step(`^the order should be rejected as an unknown unit type$`, lc.theOrderShouldBeRejectedAsAnUnknownUnitType)
	sc.Step(`^the ledger invariants should hold$`, lc.theLedgerInvariantsShouldHold)
}
