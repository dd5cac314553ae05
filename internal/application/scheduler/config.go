package scheduler

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Config holds the thresholds the scheduler was tuned with
type Config struct {
	Tuning        economy.Tuning
	Affordability build.AffordabilityConfig

	// LedgerCap bounds the orders opened from the build lists
	LedgerCap int
	// MilitaryCap bounds the ledger size below which idle builders make combat units
	MilitaryCap int
	// RetryLimit condemns an order without progress after this many idle reports
	RetryLimit int
	// DecayWindow is how long past its expiry a barely started construction survives
	DecayWindow shared.Frame
	// DecayHealthFraction is the share of max health below which a stalled construction decays
	DecayHealthFraction float64
	// RecentBuilderWindow is how long the resource use of a released builder corrects the forecast
	RecentBuilderWindow shared.Frame
	// PrerequisiteCap bounds builder orders before prerequisites stop being substituted
	PrerequisiteCap int
	// NewBuilderChance is the 1-in-N chance of opening a new-builder order
	NewBuilderChance int

	AssistTimeout     shared.Frame
	WaitTimeout       shared.Frame
	NoBuildPowerRetry shared.Frame
	MoveFailedRetry   shared.Frame

	FeatureScanRadius float64
	FeatureScanLimit  int
	DebrisThreshold   float64
	DebrisRadius      float64
	ClearingRadius    float64
	MoveFailedRadius  float64
}

// DefaultConfig returns the standard scheduler thresholds
func DefaultConfig() Config {
	return Config{
		Tuning:              economy.DefaultTuning(),
		Affordability:       build.DefaultAffordabilityConfig(),
		LedgerCap:           30,
		MilitaryCap:         40,
		RetryLimit:          4,
		DecayWindow:         5400,
		DecayHealthFraction: 0.02,
		RecentBuilderWindow: 30,
		PrerequisiteCap:     5,
		NewBuilderChance:    5,
		AssistTimeout:       600,
		WaitTimeout:         600,
		NoBuildPowerRetry:   300,
		MoveFailedRetry:     1200,
		FeatureScanRadius:   750,
		FeatureScanLimit:    15,
		DebrisThreshold:     40,
		DebrisRadius:        25,
		ClearingRadius:      80,
		MoveFailedRadius:    90,
	}
}
