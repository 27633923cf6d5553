package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/report"
)

var standingsCmd = &cobra.Command{
	Use:   "standings [division-id...]",
	Short: "Show the table of one or more divisions",
	Long: `Print the final (or current) table of the given divisions, or of every
included division when none is given. Rows are ranked by points, goal
difference, goals scored, then participant id.`,
	RunE: runStandings,
}

func runStandings(cmd *cobra.Command, args []string) error {
	snap, err := readSnapshot(cmd)
	if err != nil {
		return err
	}
	names, err := loadPeople()
	if err != nil {
		return err
	}
	rep, err := newEngine().Run(snap, policy())
	if err != nil {
		return err
	}

	want := make(map[string]bool, len(args))
	for _, a := range args {
		want[a] = true
	}
	shown := 0
	for _, t := range rep.Standings.Tables {
		if len(want) > 0 && !want[t.DivisionID] {
			continue
		}
		report.PrintStandings(os.Stdout, t, names)
		shown++
	}
	if shown == 0 {
		return fmt.Errorf("no included division matches %v (policy %s)", args, rep.Policy)
	}
	return nil
}
