package simulation

import (
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// BotSetup describes the scenario's match to an ai.Instance playing in w.
// Start units are not part of it; they arrive through Begin.
func BotSetup(s *Scenario, w *World, seed uint64) (ai.Setup, error) {
	categories, err := s.CategoryDefinitions()
	if err != nil {
		return ai.Setup{}, fmt.Errorf("failed to read build lists: %w", err)
	}
	return ai.Setup{
		Host:            w.Host(),
		Types:           s.UnitTypes(),
		Categories:      categories,
		Sites:           s.Candidates(),
		Start:           s.Start.Position(),
		UnitLimit:       s.UnitLimit,
		ExtractorRadius: s.ExtractorRadius,
		Seed:            seed,
		Clock:           shared.NewRealClock(),
	}, nil
}
