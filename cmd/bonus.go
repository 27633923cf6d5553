package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/bonus"
	"github.com/pable/go-mpg-history/internal/report"
)

var (
	bonusScope    string
	bonusDivision string
	bonusUpTo     int
	bonusUnplayed bool
)

var bonusCmd = &cobra.Command{
	Use:   "bonus",
	Short: "Show remaining bonus stock per division and participant",
	Long: `Replay the bonus payloads of every match, in replay order, against the
bonus catalog. Stock is per division: every season starts from the full
catalog. Permanent bonuses are counted but never run out.

Scopes:
  filtered  divisions admitted by the policy flags (default)
  all       every division, whatever its classification
  division  only the division given with --division`,
	Args: cobra.NoArgs,
	RunE: runBonus,
}

func init() {
	bonusCmd.Flags().StringVar(&bonusScope, "scope", "filtered", "filtered, all or division")
	bonusCmd.Flags().StringVar(&bonusDivision, "division", "", "division id for --scope division")
	bonusCmd.Flags().IntVar(&bonusUpTo, "up-to", 0, "stop after this game week (0 = whole season)")
	bonusCmd.Flags().BoolVar(&bonusUnplayed, "include-unplayed", false, "count payloads of matches not yet scored")
}

func runBonus(cmd *cobra.Command, args []string) error {
	scope := bonus.Scope{
		Policy:          policy(),
		DivisionID:      bonusDivision,
		UpToRound:       bonusUpTo,
		IncludeUnplayed: bonusUnplayed,
	}
	switch bonusScope {
	case "filtered":
		scope.Mode = bonus.ScopeFiltered
	case "all":
		scope.Mode = bonus.ScopeAll
	case "division":
		if bonusDivision == "" {
			return fmt.Errorf("--scope division needs --division")
		}
		scope.Mode = bonus.ScopeDivision
	default:
		return fmt.Errorf("unknown --scope %q", bonusScope)
	}

	snap, err := readSnapshot(cmd)
	if err != nil {
		return err
	}
	names, err := loadPeople()
	if err != nil {
		return err
	}
	ledger, err := newEngine().Bonuses(snap, scope)
	if err != nil {
		return err
	}
	report.PrintBonuses(os.Stdout, ledger, names)
	return nil
}
