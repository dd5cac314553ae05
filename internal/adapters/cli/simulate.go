package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/commands"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var (
		scenarioPath string
		frames       int
		seed         uint64
		realtime     float64
		record       bool
		withMetrics  bool
		progress     bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a scenario with the build scheduler in control",
		Long: `Play a scripted skirmish scenario frame by frame with the bot issuing
every build, repair, reclaim and assist command.

Frames and seed default to the simulation section of the config. With
--record the order journal is saved and can be inspected with 'journal show'.
--realtime paces the run at a multiple of game speed (30 frames per second).

Examples:
  skirmish-sim simulate --scenario scenarios/duel.yaml
  skirmish-sim simulate --scenario scenarios/duel.yaml --frames 18000 --seed 42 --record
  skirmish-sim simulate --scenario scenarios/archipelago.yaml --realtime 8 --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("frames") {
				frames = cfg.Simulation.Frames
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Simulation.Seed
			}
			if !cmd.Flags().Changed("record") {
				record = cfg.Simulation.Record
			}
			return runSimulate(cmd.OutOrStdout(), &commands.RunMatchCommand{
				ScenarioPath: scenarioPath,
				Frames:       shared.Frame(frames),
				Seed:         seed,
				Realtime:     realtime,
				Record:       record,
				Config:       BotConfig(cfg),
			}, withMetrics, progress)
		},
	}

	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario file (YAML) [required]")
	cmd.Flags().IntVarP(&frames, "frames", "f", 0, "Frames to play")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed of the bot's random choices")
	cmd.Flags().Float64Var(&realtime, "realtime", 0, "Pace at this multiple of game speed (0 = as fast as possible)")
	cmd.Flags().BoolVar(&record, "record", false, "Save the order journal")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Serve Prometheus metrics while the match runs")
	cmd.Flags().BoolVar(&progress, "progress", false, "Print a line every game minute")
	cmd.MarkFlagRequired("scenario")

	return cmd
}

func runSimulate(out io.Writer, command *commands.RunMatchCommand, withMetrics, progress bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := openEnvironment(ctx, cfg, envOptions{metrics: withMetrics})
	if err != nil {
		return err
	}
	defer env.Close()

	if progress {
		minute := shared.Frame(60 * shared.FramesPerSecond)
		command.OnFrame = func(frame shared.Frame) {
			if frame%minute == 0 {
				fmt.Fprintf(out, "  ... %d:00 played\n", frame/minute)
			}
		}
	}

	result, err := env.mediator.Send(env.ctx, command)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	return displayMatch(out, result.(*commands.RunMatchResponse))
}

func displayMatch(out io.Writer, resp *commands.RunMatchResponse) error {
	printTitle(out, fmt.Sprintf("Match on %s (%s)", resp.MapName, resp.Scenario))
	fmt.Fprintf(out, "Frames played: %d\n", resp.Frames)
	fmt.Fprintf(out, "Site graph:    %d sites, %d links (%s)\n\n", resp.Sites, resp.Links, resp.Fingerprint)

	fmt.Fprintln(out, "Units:")
	if err := renderTable(out, []string{"Created", "Finished", "Destroyed", "Move failures", "Metal reclaimed", "Energy reclaimed"}, [][]string{{
		fmt.Sprintf("%d", resp.Stats.Created),
		fmt.Sprintf("%d", resp.Stats.Finished),
		fmt.Sprintf("%d", resp.Stats.Destroyed),
		fmt.Sprintf("%d", resp.Stats.MoveFailures),
		fmt.Sprintf("%.0f", resp.Stats.MetalReclaimed),
		fmt.Sprintf("%.0f", resp.Stats.EnergyReclaimed),
	}}); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nEconomy at the end:")
	eco := resp.Economy
	if err := renderTable(out, []string{"Resource", "Stock", "Storage", "Income", "Usage"}, [][]string{
		{"metal", fmt.Sprintf("%.0f", eco.Metal.Stock), fmt.Sprintf("%.0f", eco.Metal.Storage), fmt.Sprintf("%.1f", eco.Metal.Income), fmt.Sprintf("%.1f", eco.Metal.Usage)},
		{"energy", fmt.Sprintf("%.0f", eco.Energy.Stock), fmt.Sprintf("%.0f", eco.Energy.Storage), fmt.Sprintf("%.1f", eco.Energy.Income), fmt.Sprintf("%.1f", eco.Energy.Usage)},
	}); err != nil {
		return err
	}

	if len(resp.Stats.Commands) > 0 {
		fmt.Fprintln(out, "\nCommands issued:")
		kinds := make([]string, 0, len(resp.Stats.Commands))
		for k := range resp.Stats.Commands {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		rows := make([][]string, 0, len(kinds))
		for _, k := range kinds {
			rows = append(rows, []string{k, fmt.Sprintf("%d", resp.Stats.Commands[k])})
		}
		if err := renderTable(out, []string{"Command", "Count"}, rows); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\nOpen build orders: %d\n", resp.OpenOrders)
	if resp.MatchID == "" {
		return nil
	}

	fmt.Fprintln(out)
	if err := displaySummary(out, resp.Summary); err != nil {
		return err
	}
	if resp.Dropped > 0 {
		warnColor.Fprintf(out, "%d journal events were dropped\n", resp.Dropped)
	}
	successColor.Fprintf(out, "\n✓ Match recorded as %s\n", resp.MatchID)
	return nil
}
