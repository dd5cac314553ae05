package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/match"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/commands"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/queries"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
	"github.com/andrescamacho/skirmish-economy-go/test/helpers"
)

type matchJournalContext struct {
	mediator common.Mediator
	clock    *shared.MockClock

	played  *commands.RunMatchResponse
	listed  []*queries.MatchDTO
	fetched *queries.GetMatchResponse
	err     error
}

func (mc *matchJournalContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}

	mc.clock = shared.NewMockClock(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC))
	mc.mediator = common.NewMediator()
	if err := match.Register(mc.mediator, match.Dependencies{
		Matches: persistence.NewGormMatchRepository(helpers.SharedTestDB),
		Graphs:  persistence.NewGormSiteGraphRepository(helpers.SharedTestDB),
		Clock:   mc.clock,
	}); err != nil {
		return err
	}

	mc.played = nil
	mc.listed = nil
	mc.fetched = nil
	mc.err = nil
	return nil
}

func (mc *matchJournalContext) iRecordFramesOfScenarioWithSeed(frames int, name string, seed int) error {
	resp, err := mc.mediator.Send(context.Background(), &commands.RunMatchCommand{
		ScenarioPath: helpers.ScenarioPath(name),
		Frames:       shared.Frame(frames),
		Seed:         uint64(seed),
		Record:       true,
		Config:       ai.DefaultConfig(),
	})
	if err != nil {
		return err
	}
	mc.played = resp.(*commands.RunMatchResponse)
	mc.clock.Advance(time.Minute)
	return nil
}

func (mc *matchJournalContext) iListTheMatchesOfScenario(name string) error {
	resp, err := mc.mediator.Send(context.Background(), &queries.ListMatchesQuery{Scenario: &name})
	if err != nil {
		return err
	}
	mc.listed = resp.(*queries.ListMatchesResponse).Matches
	return nil
}

func (mc *matchJournalContext) iOpenTheRecordedMatch() error {
	if mc.played == nil || mc.played.MatchID == "" {
		return fmt.Errorf("no match was recorded")
	}
	return mc.open(mc.played.MatchID)
}

func (mc *matchJournalContext) iOpenMatch(id string) error {
	return mc.open(id)
}

func (mc *matchJournalContext) open(id string) error {
	resp, err := mc.mediator.Send(context.Background(), &queries.GetMatchQuery{MatchID: id})
	if err != nil {
		mc.err = err
		return nil
	}
	mc.fetched = resp.(*queries.GetMatchResponse)
	return nil
}

func (mc *matchJournalContext) iShouldSeeMatches(n int) error {
	if len(mc.listed) != n {
		return fmt.Errorf("expected %d matches, got %d", n, len(mc.listed))
	}
	return nil
}

func (mc *matchJournalContext) theMatchesShouldBeListedNewestFirst() error {
	for i := 1; i < len(mc.listed); i++ {
		if mc.listed[i].StartedAt.After(mc.listed[i-1].StartedAt) {
			return fmt.Errorf("match %d started after match %d", i, i-1)
		}
	}
	return nil
}

func (mc *matchJournalContext) theMatchShouldBeWithFrames(status string, frames int) error {
	m := mc.fetched.Match
	if m.Status != status {
		return fmt.Errorf("expected status %s, got %s", status, m.Status)
	}
	if m.Frames != frames {
		return fmt.Errorf("expected %d frames, got %d", frames, m.Frames)
	}
	return nil
}

func (mc *matchJournalContext) theJournalShouldContainAtLeastEvents(n int, kind string) error {
	count := 0
	for _, e := range mc.fetched.Events {
		if e.Kind == kind {
			count++
		}
	}
	if count < n {
		return fmt.Errorf("expected at least %d %s events, got %d", n, kind, count)
	}
	return nil
}

func (mc *matchJournalContext) theJournalEventsShouldBeInFrameOrder() error {
	for i := 1; i < len(mc.fetched.Events); i++ {
		if mc.fetched.Events[i].Frame < mc.fetched.Events[i-1].Frame {
			return fmt.Errorf("event %d at frame %d follows frame %d", i, mc.fetched.Events[i].Frame, mc.fetched.Events[i-1].Frame)
		}
	}
	return nil
}

func (mc *matchJournalContext) theSummaryShouldAgreeWithTheRun() error {
	if mc.fetched.Summary.Created != mc.played.Summary.Created {
		return fmt.Errorf("stored journal has %d created orders, the run reported %d",
			mc.fetched.Summary.Created, mc.played.Summary.Created)
	}
	return nil
}

func (mc *matchJournalContext) theLookupShouldFailWithAMatchNotFoundError() error {
	var notFound *journal.ErrMatchNotFound
	if !errors.As(mc.err, &notFound) {
		return fmt.Errorf("expected ErrMatchNotFound, got %v", mc.err)
	}
	return nil
}

func (mc *matchJournalContext) theLookupShouldFailWith(message string) error {
	if mc.err == nil || !strings.Contains(mc.err.Error(), message) {
		return fmt.Errorf("expected an error containing %q, got %v", message, mc.err)
	}
	return nil
}

// InitializeMatchJournalScenario registers the recorded match steps
func InitializeMatchJournalScenario(sc *godog.ScenarioContext) {
	mc := &matchJournalContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return ctx, mc.reset()
	})

	sc.Step(`^I record (\d+) frames of scenario "([^"]*)" with seed (\d+)$`, mc.iRecordFramesOfScenarioWithSeed)
	sc.Step(`^I list the matches of scenario "([^"]*)"$`, mc.iListTheMatchesOfScenario)
	sc.Step(`^I open the recorded match$`, mc.iOpenTheRecordedMatch)
	sc.Step(`^I open match "([^"]*)"$`, mc.iOpenMatch)
	sc.Step(`^I should see (\d+) match(?:es)?$`, mc.iShouldSeeMatches)
	sc.Step(`^the matches should be listed newest first$`, mc.theMatchesShouldBeListedNewestFirst)
	sc.Step(`^the match should be "([^"]*)" with (\d+) frames$`, mc.theMatchShouldBeWithFrames)
	sc.Step(`^the journal should contain at least (\d+) "([^"]*)" events?$`, mc.theJournalShouldContainAtLeastEvents)
	sc.Step(`^the journal events should be in frame order$`, mc.theJournalEventsShouldBeInFrameOrder)
	sc.Step(`^the stored summary should agree with the run$`, mc.theSummaryShouldAgreeWithTheRun)
	sc.Step(`^the lookup should fail with a match not found error$`, mc.theLookupShouldFailWithAMatchNotFoundError)
	sc.Step(`^the lookup should fail with "([^"]*)"$`, mc.theLookupShouldFailWith)
}
