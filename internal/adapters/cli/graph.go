package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/commands"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/queries"
)

// NewGraphCommand creates the graph command with subcommands
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build and inspect resource site graphs",
		Long: `Select the resource sites of a scenario and link them into the site graph
the scheduler uses to rank extractor sites.

Built graphs are stored per map and site selection when graph.cache is
enabled, so later matches on the same map restore them instead of
rebuilding.

Examples:
  skirmish-sim graph build --scenario scenarios/archipelago.yaml
  skirmish-sim graph list --map archipelago`,
	}

	cmd.AddCommand(newGraphBuildCommand())
	cmd.AddCommand(newGraphListCommand())

	return cmd
}

func newGraphBuildCommand() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site graph of a scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphBuild(cmd.OutOrStdout(), scenarioPath)
		},
	}

	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario file (YAML) [required]")
	cmd.MarkFlagRequired("scenario")

	return cmd
}

func newGraphListCommand() *cobra.Command {
	var mapName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stored site graphs of a map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphList(cmd.OutOrStdout(), mapName)
		},
	}

	cmd.Flags().StringVarP(&mapName, "map", "m", "", "Map name [required]")
	cmd.MarkFlagRequired("map")

	return cmd
}

func runGraphBuild(out io.Writer, scenarioPath string) error {
	env, err := openEnvironment(context.Background(), cfg, envOptions{})
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.mediator.Send(env.ctx, &commands.BuildGraphCommand{
		ScenarioPath: scenarioPath,
		Config:       BotConfig(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to build site graph: %w", err)
	}
	resp := result.(*commands.BuildGraphResponse)

	printTitle(out, fmt.Sprintf("Site graph of %s", resp.MapName))
	fmt.Fprintf(out, "Fingerprint: %s\n", resp.Fingerprint)
	fmt.Fprintf(out, "Sites:       %d\n", resp.Sites)
	fmt.Fprintf(out, "Links:       %d\n", resp.Links)
	if len(resp.Unlinked) > 0 {
		warnColor.Fprintf(out, "Unlinked:    %v\n", resp.Unlinked)
	}
	if !cfg.Graph.Cache {
		warnColor.Fprintln(out, "graph.cache is disabled; the graph was not stored")
	}
	return nil
}

func runGraphList(out io.Writer, mapName string) error {
	env, err := openEnvironment(context.Background(), cfg, envOptions{})
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.mediator.Send(env.ctx, &queries.ListGraphsQuery{MapName: mapName})
	if err != nil {
		return fmt.Errorf("failed to list site graphs: %w", err)
	}
	graphs := result.(*queries.ListGraphsResponse).Graphs
	if len(graphs) == 0 {
		fmt.Fprintf(out, "No stored site graphs for %s\n", mapName)
		return nil
	}

	rows := make([][]string, 0, len(graphs))
	for _, g := range graphs {
		rows = append(rows, []string{
			g.Fingerprint,
			fmt.Sprintf("%d", g.Sites),
			fmt.Sprintf("%d", g.Links),
			fmt.Sprintf("%d", g.Bytes),
			g.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return renderTable(out, []string{"Fingerprint", "Sites", "Links", "Bytes", "Updated"}, rows)
}
