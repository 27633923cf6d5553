package leaguetest

import (
	"fmt"

	"github.com/pable/go-mpg-history/internal/model"
)

// Result is one literal fixture. Home and Away are participant ids.
type Result struct {
	Round     int
	Home      string
	Away      string
	HomeScore float64
	AwayScore float64
	Unplayed  bool

	HomeBonuses model.BonusUsage
	AwayBonuses model.BonusUsage
}

// Fixed builds a one-division snapshot from literal results. Each
// participant gets the team "<division>_<participant>"; the division is
// complete when expected equals the number of scored results.
func Fixed(divisionID string, period, expected int, results ...Result) *model.Snapshot {
	snap := &model.Snapshot{}
	AddDivision(snap, divisionID, period, expected, results...)
	return snap
}

// AddDivision appends one division built from results to snap.
func AddDivision(snap *model.Snapshot, divisionID string, period, expected int, results ...Result) {
	seen := make(map[string]bool)
	team := func(p string) string {
		id := divisionID + "_" + p
		if !seen[p] {
			seen[p] = true
			snap.Teams = append(snap.Teams, model.Team{
				ID:            id,
				DivisionID:    divisionID,
				Name:          "FC " + p,
				ParticipantID: p,
			})
		}
		return id
	}

	div := model.Division{ID: divisionID, Period: period, ExpectedMatches: expected}
	for i, r := range results {
		m := model.Match{
			ID:          fmt.Sprintf("%s_gw%02d_%d", divisionID, r.Round, i+1),
			Period:      period,
			DivisionID:  divisionID,
			Round:       r.Round,
			HomeTeamID:  team(r.Home),
			AwayTeamID:  team(r.Away),
			HomeBonuses: r.HomeBonuses,
			AwayBonuses: r.AwayBonuses,
		}
		if !r.Unplayed {
			m.HomeScore = model.Score(r.HomeScore)
			m.AwayScore = model.Score(r.AwayScore)
			m.Finalized = true
			div.MatchCount++
		}
		if div.RoundMin == 0 || r.Round < div.RoundMin {
			div.RoundMin = r.Round
		}
		if r.Round > div.RoundMax {
			div.RoundMax = r.Round
		}
		snap.Matches = append(snap.Matches, m)
	}
	snap.Divisions = append(snap.Divisions, div)
}
