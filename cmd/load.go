package cmd

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/bonus"
	"github.com/pable/go-mpg-history/internal/model"
)

// load command flags.
var (
	loadNoRefresh bool
	loadNoPeople  bool
)

// dumpFile is the ingestion export consumed by load: one JSON document with
// the three tables, column names as stored.
type dumpFile struct {
	Divisions []dumpDivision `json:"divisions"`
	Teams     []dumpTeam     `json:"teams"`
	Matches   []dumpMatch    `json:"matches"`
}

type dumpDivision struct {
	ID              string `json:"division_id"`
	Season          int    `json:"season"`
	IsAnomalous     bool   `json:"is_anomalous"`
	IsCurrent       bool   `json:"is_current"`
	ExpectedMatches int    `json:"expected_matches"`
	Notes           string `json:"notes"`
}

type dumpTeam struct {
	ID         string `json:"id"`
	DivisionID string `json:"division_id"`
	Name       string `json:"name"`
	PersonID   string `json:"person_id"`
}

type dumpMatch struct {
	ID          string          `json:"id"`
	Season      int             `json:"season"`
	DivisionID  string          `json:"division_id"`
	GameWeek    int             `json:"game_week"`
	HomeTeamID  string          `json:"home_team_id"`
	AwayTeamID  string          `json:"away_team_id"`
	HomeScore   *float64        `json:"home_score"`
	AwayScore   *float64        `json:"away_score"`
	HomeBonuses json.RawMessage `json:"home_bonuses"`
	AwayBonuses json.RawMessage `json:"away_bonuses"`
	IsFinalized bool            `json:"is_finalized"`
	FinalResult int             `json:"final_result"`
}

var loadCmd = &cobra.Command{
	Use:   "load <dump.json[.zst|.gz|.bz2]>...",
	Short: "Load ingestion dumps into the database",
	Long: `Upsert the divisions, teams and matches of one or more JSON dumps produced
by the ingestion collaborator. Dumps may be zstd, gzip or bzip2 compressed
(detected from the file extension).

Teams without a person_id are resolved through the people mapping file, then
division metadata (season, scored match count, game week range) is recomputed
from the matches table. Loading the same dump twice is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadNoRefresh, "no-refresh", false, "skip recomputing division metadata")
	loadCmd.Flags().BoolVar(&loadNoPeople, "no-people", false, "skip resolving teams through the people mapping")
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var names interface {
		Enrich([]model.Team) (int, []string)
	}
	if !loadNoPeople {
		m, err := loadPeople()
		if err != nil {
			return err
		}
		if m != nil {
			names = m
		}
	}

	for _, path := range args {
		dump, err := readDump(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		divs, teams, matches, err := dump.records()
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if names != nil {
			mapped, unmapped := names.Enrich(teams)
			entry := log.WithFields(logrus.Fields{"file": path, "mapped": mapped, "unmapped": len(unmapped)})
			if len(unmapped) > 0 {
				entry.WithField("names", unmapped).Warn("teams without participant")
			} else {
				entry.Debug("teams resolved")
			}
		}

		if err := db.UpsertDivisions(ctx, divs); err != nil {
			return fmt.Errorf("store divisions: %w", err)
		}
		if err := db.UpsertTeams(ctx, teams); err != nil {
			return fmt.Errorf("store teams: %w", err)
		}
		if err := db.UpsertMatches(ctx, matches); err != nil {
			return fmt.Errorf("store matches: %w", err)
		}
		fmt.Fprintf(os.Stdout, "%s: %d divisions, %d teams, %d matches\n", path, len(divs), len(teams), len(matches))
	}

	if !loadNoRefresh {
		n, err := db.RefreshDivisionMetadata(ctx, cfg.ExpectedMatches)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Refreshed metadata of %d divisions.\n", n)
	}
	return nil
}

// readDump decodes a dump, decompressing by extension.
func readDump(path string) (*dumpFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	case strings.HasSuffix(path, ".bz2"):
		src = bzip2.NewReader(f)
	}

	var dump dumpFile
	if err := json.NewDecoder(src).Decode(&dump); err != nil {
		return nil, err
	}
	return &dump, nil
}

// records converts a dump to model records. Division match counts and game
// week ranges are left to RefreshDivisionMetadata.
func (d *dumpFile) records() ([]model.Division, []model.Team, []model.Match, error) {
	divs := make([]model.Division, 0, len(d.Divisions))
	for _, x := range d.Divisions {
		divs = append(divs, model.Division{
			ID:              x.ID,
			Period:          x.Season,
			Anomalous:       x.IsAnomalous,
			InProgress:      x.IsCurrent,
			ExpectedMatches: x.ExpectedMatches,
			Notes:           x.Notes,
		})
	}
	teams := make([]model.Team, 0, len(d.Teams))
	for _, x := range d.Teams {
		teams = append(teams, model.Team{ID: x.ID, DivisionID: x.DivisionID, Name: x.Name, ParticipantID: x.PersonID})
	}
	matches := make([]model.Match, 0, len(d.Matches))
	for _, x := range d.Matches {
		hb, err := bonus.ParsePayload(string(x.HomeBonuses))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("match %s: %w", x.ID, err)
		}
		ab, err := bonus.ParsePayload(string(x.AwayBonuses))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("match %s: %w", x.ID, err)
		}
		matches = append(matches, model.Match{
			ID:          x.ID,
			Period:      x.Season,
			DivisionID:  x.DivisionID,
			Round:       x.GameWeek,
			HomeTeamID:  x.HomeTeamID,
			AwayTeamID:  x.AwayTeamID,
			HomeScore:   x.HomeScore,
			AwayScore:   x.AwayScore,
			HomeBonuses: hb,
			AwayBonuses: ab,
			Finalized:   x.IsFinalized,
			FinalResult: x.FinalResult,
		})
	}
	return divs, teams, matches, nil
}
