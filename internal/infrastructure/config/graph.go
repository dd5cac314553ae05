package config

import "time"

// GraphConfig holds the site-graph builder and cache settings
type GraphConfig struct {
	// Budget bounds the densification phase in wall-clock time
	Budget time.Duration `mapstructure:"budget" validate:"graph_budget"`

	// UnitLimitCap caps the unit limit used to size the site selection
	UnitLimitCap int `mapstructure:"unit_limit_cap" validate:"min=1"`

	// SiteDivisor divides the capped unit limit into the site budget
	SiteDivisor int `mapstructure:"site_divisor" validate:"min=1"`

	TriangleSlack   float64 `mapstructure:"triangle_slack" validate:"slack"`
	PenaltyMin      float64 `mapstructure:"penalty_min" validate:"gte=1"`
	PenaltyMax      float64 `mapstructure:"penalty_max" validate:"gtefield=PenaltyMin"`
	UnlinkedPenalty float64 `mapstructure:"unlinked_penalty" validate:"gte=1"`

	// Cache restores links from stored snapshots instead of rebuilding them
	Cache bool `mapstructure:"cache"`
}
