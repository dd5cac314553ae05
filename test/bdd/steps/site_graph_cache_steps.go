package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/commands"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
	"github.com/andrescamacho/skirmish-economy-go/test/helpers"
)

// siteGraphCacheContext builds site graphs through handlers that share one
// database but each start with an empty memory tier
type siteGraphCacheContext struct {
	repo   *persistence.GormSiteGraphRepository
	clock  *shared.MockClock
	builds []*commands.BuildGraphResponse
	stored []persistence.StoredGraph
}

func (gc *siteGraphCacheContext) reset() {
	gc.repo = persistence.NewGormSiteGraphRepository(helpers.SharedTestDB)
	gc.clock = shared.NewMockClock(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC))
	gc.builds = nil
	gc.stored = nil
}

func (gc *siteGraphCacheContext) iBuildTheSiteGraphOfScenarioWithAFreshCache(name string) error {
	m := common.NewMediator()
	if err := common.RegisterHandler[*commands.BuildGraphCommand](m, commands.NewBuildGraphHandler(gc.repo, gc.clock)); err != nil {
		return err
	}
	resp, err := m.Send(context.Background(), &commands.BuildGraphCommand{
		ScenarioPath: helpers.ScenarioPath(name),
		Config:       ai.DefaultConfig(),
	})
	if err != nil {
		return err
	}
	gc.builds = append(gc.builds, resp.(*commands.BuildGraphResponse))
	return nil
}

func (gc *siteGraphCacheContext) everyBuildShouldReportTheSameFingerprintAndLinks() error {
	if len(gc.builds) < 2 {
		return fmt.Errorf("expected at least two builds, got %d", len(gc.builds))
	}
	first := gc.builds[0]
	for i, b := range gc.builds[1:] {
		if b.Fingerprint != first.Fingerprint {
			return fmt.Errorf("build %d has fingerprint %s, the first had %s", i+2, b.Fingerprint, first.Fingerprint)
		}
		if b.Links != first.Links {
			return fmt.Errorf("build %d has %d links, the first had %d", i+2, b.Links, first.Links)
		}
	}
	return nil
}

func (gc *siteGraphCacheContext) theGraphShouldHoldSites(n int) error {
	last := gc.builds[len(gc.builds)-1]
	if last.Sites != n {
		return fmt.Errorf("expected %d sites, got %d", n, last.Sites)
	}
	return nil
}

func (gc *siteGraphCacheContext) theDatabaseShouldHoldSiteGraphsForMap(n int, mapName string) error {
	stored, err := gc.repo.ListByMap(context.Background(), mapName)
	if err != nil {
		return err
	}
	gc.stored = stored
	if len(stored) != n {
		return fmt.Errorf("expected %d stored graphs for %s, got %d", n, mapName, len(stored))
	}
	return nil
}

func (gc *siteGraphCacheContext) theStoredGraphShouldMatchTheBuild() error {
	if len(gc.stored) == 0 {
		return fmt.Errorf("no stored graph loaded")
	}
	last := gc.builds[len(gc.builds)-1]
	g := gc.stored[0]
	if g.Fingerprint != last.Fingerprint || g.Sites != last.Sites || g.Links != last.Links {
		return fmt.Errorf("stored graph %s (%d sites, %d links) differs from the build %s (%d sites, %d links)",
			g.Fingerprint, g.Sites, g.Links, last.Fingerprint, last.Sites, last.Links)
	}
	if len(g.Payload) == 0 {
		return fmt.Errorf("stored graph has an empty payload")
	}
	return nil
}

// InitializeSiteGraphCacheScenario registers the site graph cache steps
func InitializeSiteGraphCacheScenario(sc *godog.ScenarioContext) {
	gc := &siteGraphCacheContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		gc.reset()
		return ctx, nil
	})

	sc.Step(`^I build the site graph of scenario "([^"]*)" with a fresh cache$`, gc.iBuildTheSiteGraphOfScenarioWithAFreshCache)
	sc.Step(`^every build should report the same fingerprint and links$`, gc.everyBuildShouldReportTheSameFingerprintAndLinks)
	sc.Step(`^the site graph should hold (\d+) sites$`, gc.theGraphShouldHoldSites)
	sc.Step(`^the database should hold (\d+) site graphs? for map "([^"]*)"$`, gc.theDatabaseShouldHoldSiteGraphsForMap)
	sc.Step(`^the stored graph should match the build$`, gc.theStoredGraphShouldMatchTheBuild)
}
