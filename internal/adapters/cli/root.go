package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/skirmish-economy-go/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
	noColor    bool

	// cfg is loaded once before any subcommand runs
	cfg *config.Config
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skirmish-sim",
		Short: "Skirmish economy bot - run the build scheduler against scripted matches",
		Long: `skirmish-sim plays scripted skirmish scenarios with the economic build
scheduler in control and keeps a journal of every build order it opened.

Examples:
  skirmish-sim simulate --scenario scenarios/duel.yaml --frames 9000 --record
  skirmish-sim simulate --scenario scenarios/archipelago.yaml --realtime 4 --metrics
  skirmish-sim graph build --scenario scenarios/archipelago.yaml
  skirmish-sim graph list --map delta-flats
  skirmish-sim journal list --scenario duel
  skirmish-sim journal show <match-id>
  skirmish-sim config show`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if verbose {
				loaded.Logging.Level = "debug"
			}
			cfg = loaded
			return nil
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	// Add command groups
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewGraphCommand())
	rootCmd.AddCommand(NewJournalCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
