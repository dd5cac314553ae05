package simulation

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Result summarizes a finished or interrupted run
type Result struct {
	Frames  shared.Frame
	Stats   Stats
	Economy economy.Snapshot
}

// Runner steps a World and feeds its events to a Bot, frame by frame
type Runner struct {
	world   *World
	bot     Bot
	limiter *rate.Limiter
	// OnFrame, when set, is called after the bot's update of every frame
	OnFrame func(frame shared.Frame)
}

// NewRunner pairs world with bot. A nil limiter runs as fast as possible.
func NewRunner(world *World, bot Bot, limiter *rate.Limiter) *Runner {
	return &Runner{world: world, bot: bot, limiter: limiter}
}

// RealtimeLimiter paces a run at speed times the game's frame rate
func RealtimeLimiter(speed float64) *rate.Limiter {
	if speed <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(speed*shared.FramesPerSecond), 1)
}

// Run places the starting units and plays frames frames. Cancelling ctx stops
// the run between two frames; the partial result is returned with the error.
func (r *Runner) Run(ctx context.Context, frames shared.Frame) (Result, error) {
	logger := common.LoggerFromContext(ctx)
	logger.Log("INFO", fmt.Sprintf("[Simulation] Starting %s on %s for %d frames", r.world.scenario.Name, r.world.scenario.Map.Name, frames), nil)

	r.deliver(ctx, r.world.Begin())

	var played shared.Frame
	for frame := shared.Frame(0); frame < frames; frame++ {
		if err := ctx.Err(); err != nil {
			return r.result(played), fmt.Errorf("simulation interrupted at frame %d: %w", frame, err)
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return r.result(played), fmt.Errorf("failed to pace frame %d: %w", frame, err)
			}
		}

		r.deliver(ctx, r.world.Step(frame))
		r.bot.Update(ctx, frame)
		played = frame + 1
		if r.OnFrame != nil {
			r.OnFrame(frame)
		}
	}

	res := r.result(played)
	logger.Log("INFO", fmt.Sprintf("[Simulation] Finished %s after %d frames", r.world.scenario.Name, played), map[string]interface{}{
		"created":       res.Stats.Created,
		"finished":      res.Stats.Finished,
		"destroyed":     res.Stats.Destroyed,
		"move_failures": res.Stats.MoveFailures,
	})
	return res, nil
}

func (r *Runner) deliver(ctx context.Context, events []Event) {
	for _, e := range events {
		Deliver(ctx, r.bot, e)
	}
}

func (r *Runner) result(frames shared.Frame) Result {
	return Result{Frames: frames, Stats: r.world.Stats(), Economy: r.world.Snapshot()}
}
