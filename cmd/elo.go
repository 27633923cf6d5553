package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/report"
)

var eloCmd = &cobra.Command{
	Use:   "elo",
	Short: "Show the all-time ELO ranking",
	Long: `Replay every included match in (season, division, game week, match id)
order through a zero-sum ELO update (baseline and K from config) and print
the final ranking with win/draw/loss counts.`,
	Args: cobra.NoArgs,
	RunE: runELO,
}

func runELO(cmd *cobra.Command, args []string) error {
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
	report.PrintRatingTable(os.Stdout, rep.Ratings, names)
	return nil
}

// readSnapshot opens the store and reads one consistent snapshot.
func readSnapshot(cmd *cobra.Command) (*model.Snapshot, error) {
	db, err := openStore()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	snap, err := db.Snapshot(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(snap.Matches) == 0 {
		return nil, fmt.Errorf("no matches stored in %s; run 'mpghistory load <dump.json>' first", cfg.Database)
	}
	return snap, nil
}
