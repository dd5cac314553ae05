package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "skirmish.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "skirmish"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "skirmish"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Graph defaults
	if cfg.Graph.Budget == 0 {
		cfg.Graph.Budget = 2500 * time.Millisecond
	}
	if cfg.Graph.UnitLimitCap == 0 {
		cfg.Graph.UnitLimitCap = 500
	}
	if cfg.Graph.SiteDivisor == 0 {
		cfg.Graph.SiteDivisor = 6
	}
	if cfg.Graph.TriangleSlack == 0 {
		cfg.Graph.TriangleSlack = 0.35
	}
	if cfg.Graph.PenaltyMin == 0 {
		cfg.Graph.PenaltyMin = 1
	}
	if cfg.Graph.PenaltyMax == 0 {
		cfg.Graph.PenaltyMax = 5
	}
	if cfg.Graph.UnlinkedPenalty == 0 {
		cfg.Graph.UnlinkedPenalty = 20
	}

	setSchedulerDefaults(&cfg.Scheduler)

	// Simulation defaults
	if cfg.Simulation.Frames == 0 {
		cfg.Simulation.Frames = 9000
	}
	if cfg.Simulation.FrameRate == 0 {
		cfg.Simulation.FrameRate = 30
	}
}

func setSchedulerDefaults(s *SchedulerConfig) {
	intDefaults := []struct {
		field *int
		value int
	}{
		{&s.LedgerCap, 30},
		{&s.MilitaryCap, 40},
		{&s.RetryLimit, 4},
		{&s.OrderLease, 1200},
		{&s.DecayWindow, 5400},
		{&s.RecentBuilderWindow, 30},
		{&s.AssistTimeout, 600},
		{&s.WaitTimeout, 600},
		{&s.PrerequisiteCap, 5},
		{&s.NewBuilderChance, 5},
		{&s.ProducerQueueCap, 5},
		{&s.ConstructorQueueCap, 2},
		{&s.IdleThrottle, 15},
		{&s.InitFrame, 210},
		{&s.MinimalInterval, 15},
		{&s.PowerInterval, 90},
		{&s.BuildListInterval, 450},
		{&s.UnitsInterval, 450},
	}
	for _, d := range intDefaults {
		if *d.field == 0 {
			*d.field = d.value
		}
	}

	floatDefaults := []struct {
		field *float64
		value float64
	}{
		{&s.DecayHealthFraction, 0.02},
		{&s.ProducerLedgerFraction, 0.4},
		{&s.ConstructorLedgerFraction, 0.3},
		{&s.CostLimitThreshold, 110},
		{&s.Hysteresis, 1.5},
		{&s.OrderMargin, 50},
		{&s.HumanMargin, 150},
		{&s.MinimumMargin, 300},
	}
	for _, d := range floatDefaults {
		if *d.field == 0 {
			*d.field = d.value
		}
	}
}
