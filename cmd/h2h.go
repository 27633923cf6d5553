package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/report"
)

var (
	h2hMatches bool
	h2hAll     bool
)

var h2hCmd = &cobra.Command{
	Use:   "h2h <participant-a> <participant-b>",
	Short: "Show the head-to-head record of two participants",
	Long: `Show every scored meeting of two participants across the included
divisions, in both home/away orientations. Participants may be given by
person id, display name or any alias from the people mapping.

With --all, print one line for every pair of participants that ever met.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if h2hAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runH2H,
}

func init() {
	h2hCmd.Flags().BoolVar(&h2hMatches, "matches", false, "list every meeting")
	h2hCmd.Flags().BoolVar(&h2hAll, "all", false, "print the record of every pair")
}

func runH2H(cmd *cobra.Command, args []string) error {
	snap, err := readSnapshot(cmd)
	if err != nil {
		return err
	}
	names, err := loadPeople()
	if err != nil {
		return err
	}
	eng := newEngine()

	if h2hAll {
		reps, err := eng.Matrix(snap, policy())
		if err != nil {
			return err
		}
		report.PrintMatrix(os.Stdout, reps, names)
		return nil
	}

	a := resolveParticipant(names, args[0])
	b := resolveParticipant(names, args[1])
	rep, err := eng.HeadToHead(snap, a, b, policy())
	if err != nil {
		return err
	}
	report.PrintHeadToHead(os.Stdout, rep, names, h2hMatches)
	return nil
}
