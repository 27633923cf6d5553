package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/report"
)

var palmaresChampions bool

var palmaresCmd = &cobra.Command{
	Use:   "palmares",
	Short: "Show titles, podiums and last places per participant",
	Long: `Aggregate the final table of every included division into the all-time
palmares. Titles, podiums and last places are only awarded for divisions that
are complete and finished, even when --include-in-progress is given.`,
	Args: cobra.NoArgs,
	RunE: runPalmares,
}

func init() {
	palmaresCmd.Flags().BoolVar(&palmaresChampions, "champions", false, "also list the champion and last place of every division")
}

func runPalmares(cmd *cobra.Command, args []string) error {
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
	report.PrintPalmares(os.Stdout, rep.Standings.Palmares, names)
	if palmaresChampions {
		fmt.Fprintln(os.Stdout)
		report.PrintChampions(os.Stdout, rep.Standings.Tables, names)
	}
	return nil
}
