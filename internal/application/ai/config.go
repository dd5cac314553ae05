package ai

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/application/attribution"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/scheduler"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Config gathers the settings of every component the instance owns
type Config struct {
	Scheduler   scheduler.Config
	Attribution attribution.Config
	Catalog     build.CatalogConfig
	Ledger      build.LedgerConfig
	Graph       resource.GraphConfig

	// Selection is completed with the unit limit and extractor radius of the match
	Selection resource.SelectionConfig

	// InitFrame is the latest frame at which the instance starts scheduling
	InitFrame shared.Frame
	// IdleThrottle defers idle events that repeat within this many frames
	IdleThrottle shared.Frame

	// MinimalInterval is the period of Update; other intervals are multiples of it
	MinimalInterval   shared.Frame
	PowerInterval     shared.Frame
	BuildListInterval shared.Frame
	// UnitsInterval is how long a unit may sit idle before the sweep re-idles it
	UnitsInterval shared.Frame
	// MoveFailedWait is how long a stuck unit waits before it is rechecked
	MoveFailedWait shared.Frame
	// ProductClearance is how long an immobile builder's product gets to leave the pad
	ProductClearance shared.Frame
}

// DefaultConfig returns the standard settings
func DefaultConfig() Config {
	return Config{
		Scheduler:         scheduler.DefaultConfig(),
		Attribution:       attribution.DefaultConfig(),
		Catalog:           build.DefaultCatalogConfig(),
		Ledger:            build.DefaultLedgerConfig(),
		Graph:             resource.DefaultGraphConfig(),
		Selection:         resource.DefaultSelectionConfig(0, 0),
		InitFrame:         210,
		IdleThrottle:      15,
		MinimalInterval:   15,
		PowerInterval:     90,
		BuildListInterval: 450,
		UnitsInterval:     450,
		MoveFailedWait:    90,
		ProductClearance:  150,
	}
}
