package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/match/queries"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
)

// NewJournalCommand creates the journal command with subcommands
func NewJournalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded matches",
		Long: `List recorded matches and replay the build order journal of one match.

Every order the ledger opened, every builder assignment and every removal
is recorded with the frame it happened on and, for removals, the reason.

Examples:
  skirmish-sim journal list
  skirmish-sim journal list --scenario duel --since 2026-01-15 --limit 5
  skirmish-sim journal show 3f9a1c52-7e1b-4b43-9c1a-0d5e2b8f6a10`,
	}

	cmd.AddCommand(newJournalListCommand())
	cmd.AddCommand(newJournalShowCommand())

	return cmd
}

func newJournalListCommand() *cobra.Command {
	var (
		scenario string
		since    string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded matches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &queries.ListMatchesQuery{Limit: limit, Offset: offset}
			if scenario != "" {
				query.Scenario = &scenario
			}
			if since != "" {
				parsed, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid since date format: %w", err)
				}
				query.Since = &parsed
			}
			return runJournalList(cmd.OutOrStdout(), query)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Filter by scenario name")
	cmd.Flags().StringVar(&since, "since", "", "Only matches started on or after this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of matches to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of matches to skip")

	return cmd
}

func newJournalShowCommand() *cobra.Command {
	var summaryOnly bool

	cmd := &cobra.Command{
		Use:   "show <match-id>",
		Short: "Show the order journal of a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalShow(cmd.OutOrStdout(), args[0], summaryOnly)
		},
	}

	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Only print the removal summary")

	return cmd
}

func runJournalList(out io.Writer, query *queries.ListMatchesQuery) error {
	env, err := openEnvironment(context.Background(), cfg, envOptions{})
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.mediator.Send(env.ctx, query)
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}
	matches := result.(*queries.ListMatchesResponse).Matches
	if len(matches) == 0 {
		fmt.Fprintln(out, "No recorded matches")
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			m.ID,
			m.Scenario,
			m.MapName,
			fmt.Sprintf("%d", m.Seed),
			m.Status,
			fmt.Sprintf("%d", m.Frames),
			m.StartedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return renderTable(out, []string{"ID", "Scenario", "Map", "Seed", "Status", "Frames", "Started"}, rows)
}

func runJournalShow(out io.Writer, matchID string, summaryOnly bool) error {
	env, err := openEnvironment(context.Background(), cfg, envOptions{})
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.mediator.Send(env.ctx, &queries.GetMatchQuery{MatchID: matchID})
	if err != nil {
		return fmt.Errorf("failed to load match: %w", err)
	}
	resp := result.(*queries.GetMatchResponse)
	m := resp.Match

	printTitle(out, fmt.Sprintf("Match %s", shortID(m.ID)))
	fmt.Fprintf(out, "Scenario: %s on %s (seed %d)\n", m.Scenario, m.MapName, m.Seed)
	fmt.Fprintf(out, "Status:   %s after %d frames\n\n", m.Status, m.Frames)

	if !summaryOnly {
		rows := make([][]string, 0, len(resp.Events))
		for _, e := range resp.Events {
			builder, site := "-", "-"
			if e.Builder != 0 {
				builder = fmt.Sprintf("%d", e.Builder)
			}
			if e.Site >= 0 {
				site = fmt.Sprintf("%d", e.Site)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", e.Frame),
				e.Kind,
				e.Order,
				fmt.Sprintf("%d", e.UnitType),
				e.Category,
				builder,
				site,
				e.Reason,
			})
		}
		if err := renderTable(out, []string{"Frame", "Event", "Order", "Type", "Category", "Builder", "Site", "Reason"}, rows); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return displaySummary(out, resp.Summary)
}

func displaySummary(out io.Writer, s journal.Summary) error {
	fmt.Fprintf(out, "Orders created: %d, still open: %d\n", s.Created, s.Open)
	reasons := s.Reasons()
	if len(reasons) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(reasons))
	for _, r := range reasons {
		rows = append(rows, []string{string(r), fmt.Sprintf("%d", s.Removed[r])})
	}
	return renderTable(out, []string{"Removed because", "Orders"}, rows)
}
