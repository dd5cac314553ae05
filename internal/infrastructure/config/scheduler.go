package config

// SchedulerConfig exposes the thresholds the build scheduler is tuned with
type SchedulerConfig struct {
	LedgerCap           int     `mapstructure:"ledger_cap" validate:"min=1"`
	MilitaryCap         int     `mapstructure:"military_cap" validate:"min=1"`
	RetryLimit          int     `mapstructure:"retry_limit" validate:"min=1"`
	OrderLease          int     `mapstructure:"order_lease" validate:"min=1"`
	DecayWindow         int     `mapstructure:"decay_window" validate:"min=0"`
	DecayHealthFraction float64 `mapstructure:"decay_health_fraction" validate:"gte=0,lte=1"`
	RecentBuilderWindow int     `mapstructure:"recent_builder_window" validate:"min=0"`
	AssistTimeout       int     `mapstructure:"assist_timeout" validate:"min=1"`
	WaitTimeout         int     `mapstructure:"wait_timeout" validate:"min=1"`
	PrerequisiteCap     int     `mapstructure:"prerequisite_cap" validate:"min=0"`
	NewBuilderChance    int     `mapstructure:"new_builder_chance" validate:"min=1"`

	// Demand caps: queued producers and constructors, absolute and ledger-relative
	ProducerQueueCap          int     `mapstructure:"producer_queue_cap" validate:"min=1"`
	ProducerLedgerFraction    float64 `mapstructure:"producer_ledger_fraction" validate:"gt=0,lte=1"`
	ConstructorQueueCap       int     `mapstructure:"constructor_queue_cap" validate:"min=1"`
	ConstructorLedgerFraction float64 `mapstructure:"constructor_ledger_fraction" validate:"gt=0,lte=1"`

	// Affordability gating
	CostLimitThreshold float64 `mapstructure:"cost_limit_threshold" validate:"gt=0"`
	Hysteresis         float64 `mapstructure:"hysteresis" validate:"gte=1"`

	// Instance timing, in frames
	IdleThrottle      int `mapstructure:"idle_throttle" validate:"min=0"`
	InitFrame         int `mapstructure:"init_frame" validate:"min=0"`
	MinimalInterval   int `mapstructure:"minimal_interval" validate:"min=1"`
	PowerInterval     int `mapstructure:"power_interval" validate:"min=1"`
	BuildListInterval int `mapstructure:"build_list_interval" validate:"min=1"`
	UnitsInterval     int `mapstructure:"units_interval" validate:"min=1"`

	// Attribution margins, in map units
	OrderMargin   float64 `mapstructure:"order_margin" validate:"gte=0"`
	HumanMargin   float64 `mapstructure:"human_margin" validate:"gte=0"`
	MinimumMargin float64 `mapstructure:"minimum_margin" validate:"gte=0"`
}
