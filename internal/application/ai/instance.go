package ai

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/attribution"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/scheduler"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/fleet"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// GraphLinker connects the registry's sites before the match starts
type GraphLinker interface {
	Link(ctx context.Context, reg *resource.Registry) error
}

// BuildGraph is the GraphLinker that always runs the graph builder
type BuildGraph struct {
	Terrain resource.TerrainOracle
	Clock   shared.Clock
	Config  resource.GraphConfig
}

// Link runs both graph phases over reg
func (b BuildGraph) Link(ctx context.Context, reg *resource.Registry) error {
	report, err := resource.NewGraphBuilder(b.Terrain, b.Clock, b.Config).Build(reg)
	if err != nil {
		return fmt.Errorf("failed to build site graph: %w", err)
	}
	metrics.RecordGraphBuild(report)
	common.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("[GraphBuilder] Linked %d sites in %s", report.Sites, report.Elapsed), map[string]interface{}{
		"nearest_links": report.Phase1Links,
		"densify_links": report.Phase2Links,
		"oracle_calls":  report.OracleCalls,
		"completed":     report.Completed,
	})
	return nil
}

// Setup describes the match an instance plays
type Setup struct {
	Host       ports.Host
	Types      []build.UnitType
	Categories []build.CategoryDefinition
	Sites      []resource.Candidate
	Start      shared.Position

	UnitLimit       int
	ExtractorRadius float64
	Seed            uint64

	// Graph links the sites; nil runs the graph builder against Host.Terrain
	Graph GraphLinker
	// Observers are attached to the ledger before any order exists
	Observers []build.Observer
	Clock     shared.Clock
}

// Instance is one bot playing one match. It owns every piece of state the
// build scheduling core works on and routes host events to it.
//
// All methods must be called from the host's simulation thread.
type Instance struct {
	cfg   Config
	host  ports.Host
	clock shared.Clock
	rng   shared.Random

	catalog   *build.Catalog
	registry  *resource.Registry
	ledger    *build.Ledger
	roster    *fleet.Roster
	scheduler *scheduler.Scheduler
	matcher   *attribution.Matcher

	initiated bool
}

// New selects the resource sites, links them and wires the scheduling core
func New(ctx context.Context, cfg Config, setup Setup) (*Instance, error) {
	logger := common.LoggerFromContext(ctx)

	clock := setup.Clock
	if clock == nil {
		clock = shared.NewRealClock()
	}
	rng := shared.NewSeededRandom(setup.Seed)

	catalog, err := build.NewCatalog(setup.Types, setup.Categories, rng, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build unit catalog: %w", err)
	}

	selection := cfg.Selection
	selection.UnitLimit = setup.UnitLimit
	selection.ExtractorRadius = setup.ExtractorRadius
	registry := resource.NewRegistry(
		selection,
		setup.Start,
		setup.Sites,
		resource.Dependencies{
			Terrain:   setup.Host.Terrain,
			Placement: setup.Host.Placement,
			Types:     catalog,
			Health:    ports.UnitHealth{Units: setup.Host.Units},
			Allies:    setup.Host.Allies,
		},
	)
	if registry.Dropped() > 0 {
		logger.Log("WARNING", fmt.Sprintf("[GraphBuilder] Dropped %d sites nothing can be built on", registry.Dropped()), nil)
	}

	if registry.Len() > 0 {
		linker := setup.Graph
		if linker == nil {
			linker = BuildGraph{Terrain: setup.Host.Terrain, Clock: clock, Config: cfg.Graph}
		}
		if err := linker.Link(ctx, registry); err != nil {
			return nil, err
		}
	}
	catalog.UseSites(registry)

	ledger := build.NewLedger(catalog, registry, cfg.Ledger)
	for _, o := range setup.Observers {
		ledger.Observe(o)
	}
	roster := fleet.NewRoster()

	sched := scheduler.New(cfg.Scheduler, scheduler.Dependencies{
		Host:     setup.Host,
		Catalog:  catalog,
		Ledger:   ledger,
		Registry: registry,
		Roster:   roster,
		Random:   rng,
	})

	return &Instance{
		cfg:       cfg,
		host:      setup.Host,
		clock:     clock,
		rng:       rng,
		catalog:   catalog,
		registry:  registry,
		ledger:    ledger,
		roster:    roster,
		scheduler: sched,
		matcher:   attribution.NewMatcher(cfg.Attribution, setup.Host.Units, catalog, ledger, roster),
	}, nil
}

func (i *Instance) Catalog() *build.Catalog         { return i.catalog }
func (i *Instance) Registry() *resource.Registry    { return i.registry }
func (i *Instance) Ledger() *build.Ledger           { return i.ledger }
func (i *Instance) Roster() *fleet.Roster           { return i.roster }
func (i *Instance) Scheduler() *scheduler.Scheduler { return i.scheduler }

// Initiated reports whether the instance has started scheduling
func (i *Instance) Initiated() bool { return i.initiated }

func (i *Instance) commands(unit shared.UnitID) int {
	return len(i.host.Units.Commands(unit))
}
