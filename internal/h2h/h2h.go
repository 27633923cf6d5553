// Package h2h computes head-to-head records between two participants.
package h2h

import (
	"errors"

	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/replay"
)

// ErrSameParticipant is returned when both sides of the request are equal.
var ErrSameParticipant = errors.New("head-to-head needs two distinct participants")

// Side is A's record in one orientation (home or away).
type Side struct {
	Played       int     `json:"played"`
	Wins         int     `json:"wins"`
	Draws        int     `json:"draws"`
	Losses       int     `json:"losses"`
	GoalsFor     float64 `json:"goals_for"`
	GoalsAgainst float64 `json:"goals_against"`
}

// Meeting is one scored match between A and B.
type Meeting struct {
	MatchID    string        `json:"match_id"`
	Period     int           `json:"period"`
	DivisionID string        `json:"division_id"`
	Round      int           `json:"round"`
	Home       string        `json:"home"`
	Away       string        `json:"away"`
	HomeScore  float64       `json:"home_score"`
	AwayScore  float64       `json:"away_score"`
	Outcome    model.Outcome `json:"outcome"`
}

// Report is the head-to-head record of A against B.
type Report struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	WinsA  int     `json:"wins_a"`
	Draws  int     `json:"draws"`
	WinsB  int     `json:"wins_b"`
	GoalsA float64 `json:"goals_a"`
	GoalsB float64 `json:"goals_b"`

	HomeA Side `json:"home_a"`
	AwayA Side `json:"away_a"`

	Matches []Meeting `json:"matches"` // replay order
}

// Played is the number of scored meetings.
func (r *Report) Played() int {
	return r.WinsA + r.Draws + r.WinsB
}

// GoalDiff is A's goals minus B's goals.
func (r *Report) GoalDiff() float64 {
	return r.GoalsA - r.GoalsB
}

// Compute scans t, which must already be filtered and ordered, for the
// scored matches opposing a and b in either orientation.
func Compute(t replay.Timeline, a, b string) (*Report, error) {
	if a == b {
		return nil, ErrSameParticipant
	}
	rep := &Report{A: a, B: b, Matches: []Meeting{}}
	for _, ev := range t.Between(a, b) {
		if !ev.Outcome.Played() {
			continue
		}
		hs, as := ev.HomeGoals(), ev.AwayGoals()

		var res model.Result
		var side *Side
		var gfA, gfB float64
		if ev.Home == a {
			res, side, gfA, gfB = ev.Outcome.ForHome(), &rep.HomeA, hs, as
		} else {
			res, side, gfA, gfB = ev.Outcome.ForAway(), &rep.AwayA, as, hs
		}

		switch res {
		case model.ResultWin:
			rep.WinsA++
			side.Wins++
		case model.ResultDraw:
			rep.Draws++
			side.Draws++
		default:
			rep.WinsB++
			side.Losses++
		}
		side.Played++
		side.GoalsFor += gfA
		side.GoalsAgainst += gfB
		rep.GoalsA += gfA
		rep.GoalsB += gfB

		rep.Matches = append(rep.Matches, Meeting{
			MatchID:    ev.Match.ID,
			Period:     ev.Match.Period,
			DivisionID: ev.Match.DivisionID,
			Round:      ev.Match.Round,
			Home:       ev.Home,
			Away:       ev.Away,
			HomeScore:  hs,
			AwayScore:  as,
			Outcome:    ev.Outcome,
		})
	}
	return rep, nil
}

// Matrix computes the report for every unordered pair of participants in t,
// with A < B lexically.
func Matrix(t replay.Timeline) []Report {
	played := t.Played()
	ps := played.Participants()
	var out []Report
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			rep, _ := Compute(played, ps[i], ps[j])
			if rep.Played() == 0 {
				continue
			}
			out = append(out, *rep)
		}
	}
	return out
}
