package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/logging"
	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/match"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/infrastructure/config"
	"github.com/andrescamacho/skirmish-economy-go/internal/infrastructure/database"
)

// environment is everything a subcommand needs to talk to the mediator
type environment struct {
	ctx      context.Context
	mediator common.Mediator
	logger   *logging.ZerologLogger

	db      *gorm.DB
	server  *http.Server
	closers []io.Closer
}

type envOptions struct {
	// metrics starts the Prometheus endpoint even when the config disables it
	metrics bool
}

// openEnvironment wires logging, metrics, the database and the match handlers
func openEnvironment(ctx context.Context, cfg *config.Config, opts envOptions) (*environment, error) {
	logger, logCloser, err := logging.Open(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open logger: %w", err)
	}
	env := &environment{
		ctx:     common.WithLogger(ctx, logger),
		logger:  logger,
		closers: []io.Closer{logCloser},
	}

	var (
		requestCollector *metrics.RequestMetricsCollector
		observers        []build.Observer
	)
	if cfg.Metrics.Enabled || opts.metrics {
		requestCollector, observers, err = env.startMetrics(cfg.Metrics)
		if err != nil {
			env.Close()
			return nil, err
		}
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	env.db = db
	if err := database.AutoMigrate(db); err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	graphRepo := persistence.NewGormSiteGraphRepository(db)
	deps := match.Dependencies{
		Matches:   persistence.NewGormMatchRepository(db),
		Graphs:    graphRepo,
		Observers: observers,
	}
	// a nil *GormSiteGraphRepository inside the interface would not read as nil
	if cfg.Graph.Cache {
		deps.GraphStore = graphRepo
		if cfg.Database.Ephemeral() {
			logger.Log("WARN", "[Graph] graph.cache is on but the database is in memory; snapshots die with this run", nil)
		}
	}

	env.mediator = common.NewMediator()
	env.mediator.Use(common.LoggingMiddleware())
	env.mediator.Use(metrics.PrometheusMiddleware(requestCollector))
	if err := match.Register(env.mediator, deps); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func (e *environment) startMetrics(mc config.MetricsConfig) (*metrics.RequestMetricsCollector, []build.Observer, error) {
	metrics.InitRegistry()

	requestCollector := metrics.NewRequestMetricsCollector()
	if err := requestCollector.Register(); err != nil {
		return nil, nil, fmt.Errorf("failed to register request metrics: %w", err)
	}
	schedulerCollector := metrics.NewSchedulerMetricsCollector()
	if err := schedulerCollector.Register(); err != nil {
		return nil, nil, fmt.Errorf("failed to register scheduler metrics: %w", err)
	}
	metrics.SetGlobalSchedulerCollector(schedulerCollector)
	graphCollector := metrics.NewGraphMetricsCollector()
	if err := graphCollector.Register(); err != nil {
		return nil, nil, fmt.Errorf("failed to register graph metrics: %w", err)
	}
	metrics.SetGlobalGraphCollector(graphCollector)

	mux := http.NewServeMux()
	mux.Handle(mc.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	e.server = &http.Server{
		Addr:              mc.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Log("ERROR", fmt.Sprintf("[Metrics] server stopped: %v", err), nil)
		}
	}()
	e.logger.Log("INFO", fmt.Sprintf("[Metrics] Serving http://%s%s", mc.Address(), mc.Path), nil)

	return requestCollector, []build.Observer{schedulerCollector}, nil
}

// Close stops the metrics server and releases the database and log file
func (e *environment) Close() {
	if e.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.server.Shutdown(shutdownCtx)
		metrics.SetGlobalSchedulerCollector(nil)
		metrics.SetGlobalGraphCollector(nil)
	}
	if e.db != nil {
		_ = database.Close(e.db)
	}
	for _, c := range e.closers {
		_ = c.Close()
	}
}
