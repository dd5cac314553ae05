package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/skirmish-economy-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect the effective configuration.

Configuration is loaded from multiple sources with priority:
1. Environment variables (SKIRMISH_* prefix, DATABASE_URL)
2. Config file (config.yaml)
3. Default values

Examples:
  skirmish-sim config show
  SKIRMISH_SCHEDULER_LEDGER_CAP=40 skirmish-sim config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func showConfig(out io.Writer, c *config.Config) error {
	shown := *c
	if shown.Database.Password != "" {
		shown.Database.Password = "********"
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	printTitle(out, "Skirmish Configuration")
	_, err = out.Write(data)
	return err
}
