package cli

import (
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
	"github.com/andrescamacho/skirmish-economy-go/internal/infrastructure/config"
)

// BotConfig overlays the configured thresholds on the bot defaults
func BotConfig(cfg *config.Config) ai.Config {
	bot := ai.DefaultConfig()
	s := cfg.Scheduler

	bot.Scheduler.LedgerCap = s.LedgerCap
	bot.Scheduler.MilitaryCap = s.MilitaryCap
	bot.Scheduler.RetryLimit = s.RetryLimit
	bot.Scheduler.DecayWindow = shared.Frame(s.DecayWindow)
	bot.Scheduler.DecayHealthFraction = s.DecayHealthFraction
	bot.Scheduler.RecentBuilderWindow = shared.Frame(s.RecentBuilderWindow)
	bot.Scheduler.AssistTimeout = shared.Frame(s.AssistTimeout)
	bot.Scheduler.WaitTimeout = shared.Frame(s.WaitTimeout)
	bot.Scheduler.PrerequisiteCap = s.PrerequisiteCap
	bot.Scheduler.NewBuilderChance = s.NewBuilderChance

	bot.Scheduler.Tuning.ProducerQueueCap = s.ProducerQueueCap
	bot.Scheduler.Tuning.ProducerLedgerFraction = s.ProducerLedgerFraction
	bot.Scheduler.Tuning.ConstructorQueueCap = s.ConstructorQueueCap
	bot.Scheduler.Tuning.ConstructorLedgerFraction = s.ConstructorLedgerFraction

	bot.Scheduler.Affordability.IncomeThreshold = s.CostLimitThreshold
	bot.Scheduler.Affordability.Hysteresis = s.Hysteresis

	bot.Ledger.Lease = shared.Frame(s.OrderLease)

	bot.Attribution.OrderMargin = s.OrderMargin
	bot.Attribution.HumanMargin = s.HumanMargin
	bot.Attribution.MinimumMargin = s.MinimumMargin

	bot.IdleThrottle = shared.Frame(s.IdleThrottle)
	bot.InitFrame = shared.Frame(s.InitFrame)
	bot.MinimalInterval = shared.Frame(s.MinimalInterval)
	bot.PowerInterval = shared.Frame(s.PowerInterval)
	bot.BuildListInterval = shared.Frame(s.BuildListInterval)
	bot.UnitsInterval = shared.Frame(s.UnitsInterval)

	g := cfg.Graph
	bot.Graph.Budget = g.Budget
	bot.Graph.TriangleSlack = g.TriangleSlack
	bot.Graph.PenaltyMin = g.PenaltyMin
	bot.Graph.PenaltyMax = g.PenaltyMax
	bot.Graph.UnlinkedPenalty = g.UnlinkedPenalty
	bot.Selection.UnitLimitCap = g.UnitLimitCap
	bot.Selection.SiteDivisor = g.SiteDivisor

	return bot
}
