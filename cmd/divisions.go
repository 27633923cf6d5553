package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/report"
)

var divisionsCmd = &cobra.Command{
	Use:   "divisions",
	Short: "List every division with its classification",
	Long: `List every division from the metadata table with its completeness,
curated anomalous / in-progress flags (after config overrides), and whether
the current policy includes it.`,
	Args: cobra.NoArgs,
	RunE: runDivisions,
}

func runDivisions(cmd *cobra.Command, args []string) error {
	snap, err := readSnapshot(cmd)
	if err != nil {
		return err
	}
	divs, err := newEngine().Divisions(snap, policy())
	if err != nil {
		return err
	}
	report.PrintDivisions(os.Stdout, divs)
	return nil
}
