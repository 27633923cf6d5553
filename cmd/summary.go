package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about the stored history: division, team
and match counts, season range, a per-season breakdown, and any team that
does not resolve to a participant yet.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetDBOverview(ctx)
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'mpghistory load <dump.json>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Divisions      : %d\n", ov.Divisions)
	fmt.Fprintf(os.Stdout, "  Seasons        : %d → %d\n", ov.FirstSeason, ov.LastSeason)
	fmt.Fprintf(os.Stdout, "  Teams          : %d (%d unresolved)\n", ov.Teams, ov.UnresolvedTeams)
	fmt.Fprintf(os.Stdout, "  Matches        : %d (%d scored)\n", ov.Matches, ov.ScoredMatches)

	seasons, err := db.GetSeasonCounts(ctx)
	if err != nil {
		return fmt.Errorf("get season counts: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Seasons ---\n\n")
	st := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	st.Header("SEASON", "DIVISIONS", "MATCHES", "SCORED")
	for _, s := range seasons {
		st.Append(
			fmt.Sprintf("%d", s.Season),
			fmt.Sprintf("%d", s.Divisions),
			fmt.Sprintf("%d", s.Matches),
			fmt.Sprintf("%d", s.ScoredMatches),
		)
	}
	st.Render()

	// Unresolved teams, only shown when there are some.
	unresolved, err := db.UnresolvedTeamNames(ctx)
	if err != nil {
		return fmt.Errorf("get unresolved teams: %w", err)
	}
	if len(unresolved) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Unresolved Teams ---\n\n")
		divs := make([]string, 0, len(unresolved))
		for d := range unresolved {
			divs = append(divs, d)
		}
		sort.Strings(divs)
		ut := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		ut.Header("DIVISION", "TEAMS")
		for _, d := range divs {
			ut.Append(d, strings.Join(unresolved[d], ", "))
		}
		ut.Render()
	}
	return nil
}
