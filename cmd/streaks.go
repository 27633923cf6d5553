package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/report"
)

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Show the longest win, unbeaten, losing and winless runs",
	Args:  cobra.NoArgs,
	RunE:  runStreaks,
}

func runStreaks(cmd *cobra.Command, args []string) error {
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
	report.PrintRunHeader(os.Stdout, rep)
	report.PrintStreaks(os.Stdout, rep.Streaks, names)
	return nil
}
