// Package standings builds per-division final tables and the all-time
// palmares (titles, podiums, last places) derived from them.
package standings

import (
	"fmt"
	"sort"

	"github.com/pable/go-mpg-history/internal/config"
	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/replay"
)

// Row is one participant's line in a division table.
type Row struct {
	Rank          int     `json:"rank"`
	ParticipantID string  `json:"participant_id"`
	Played        int     `json:"played"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	Points        int     `json:"points"`
	GoalsFor      float64 `json:"goals_for"`
	GoalsAgainst  float64 `json:"goals_against"`
	GoalDiff      float64 `json:"goal_diff"`
}

// AvgPoints is points per match played.
func (r *Row) AvgPoints() float64 {
	if r.Played == 0 {
		return 0
	}
	return float64(r.Points) / float64(r.Played)
}

// Table is the final (or current) table of one division.
type Table struct {
	DivisionID string `json:"division_id"`
	Period     int    `json:"period"`
	MatchCount int    `json:"match_count"` // scored matches replayed
	Complete   bool   `json:"complete"`
	InProgress bool   `json:"in_progress"`

	// Awarded is true when the placement counts toward the palmares: the
	// division is complete and finished.
	Awarded bool `json:"awarded"`

	Champion  string `json:"champion"`
	LastPlace string `json:"last_place"`
	Rows      []Row  `json:"rows"`
}

// PalmaresRow aggregates one participant's record across included divisions.
type PalmaresRow struct {
	ParticipantID string  `json:"participant_id"`
	Titles        int     `json:"titles"`
	Podiums       int     `json:"podiums"`
	LastPlaces    int     `json:"last_places"`
	Seasons       int     `json:"seasons"`
	Points        int     `json:"points"`
	Matches       int     `json:"matches"`
	GoalsFor      float64 `json:"goals_for"`
}

// AvgPoints is all-time points per match.
func (p *PalmaresRow) AvgPoints() float64 {
	if p.Matches == 0 {
		return 0
	}
	return float64(p.Points) / float64(p.Matches)
}

// Result holds the division tables in replay order and the palmares.
type Result struct {
	Tables   []Table       `json:"tables"`
	Palmares []PalmaresRow `json:"palmares"`
}

// Engine computes standings with a fixed points scheme.
type Engine struct {
	points     config.Points
	podiumSize int
}

// NewEngine returns an engine configured from cfg.
func NewEngine(cfg *config.League) *Engine {
	return &Engine{points: cfg.Points, podiumSize: cfg.PodiumSize}
}

// Division builds the table for the events of one division. Participants of
// unplayed fixtures are listed with zero matches.
func (e *Engine) Division(id string, t replay.Timeline) (Table, error) {
	tbl := Table{DivisionID: id}
	rows := make(map[string]*Row)
	get := func(p string) *Row {
		r, ok := rows[p]
		if !ok {
			r = &Row{ParticipantID: p}
			rows[p] = r
		}
		return r
	}

	for _, ev := range t {
		if ev.Match.DivisionID != id {
			continue
		}
		tbl.Period = ev.Match.Period
		home, away := get(ev.Home), get(ev.Away)
		if !ev.Outcome.Played() {
			continue
		}
		tbl.MatchCount++
		e.apply(home, ev.Outcome.ForHome(), ev.HomeGoals(), ev.AwayGoals())
		e.apply(away, ev.Outcome.ForAway(), ev.AwayGoals(), ev.HomeGoals())
	}

	tbl.Rows = make([]Row, 0, len(rows))
	for _, r := range rows {
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		tbl.Rows = append(tbl.Rows, *r)
	}
	sort.Slice(tbl.Rows, func(i, j int) bool { return ranksBefore(&tbl.Rows[i], &tbl.Rows[j]) })
	for i := range tbl.Rows {
		tbl.Rows[i].Rank = i + 1
	}

	if n := len(tbl.Rows); n < 3 {
		return Table{}, &model.DataIntegrityError{
			Kind:       model.IntegrityDegenerateDivision,
			DivisionID: id,
			Detail:     fmt.Sprintf("%d distinct participants, need at least 3", n),
		}
	}
	tbl.Champion = tbl.Rows[0].ParticipantID
	tbl.LastPlace = tbl.Rows[len(tbl.Rows)-1].ParticipantID
	if tbl.Champion == tbl.LastPlace {
		return Table{}, &model.DataIntegrityError{
			Kind:          model.IntegrityChampionIsLast,
			DivisionID:    id,
			ParticipantID: tbl.Champion,
		}
	}
	return tbl, nil
}

func (e *Engine) apply(r *Row, res model.Result, gf, ga float64) {
	r.Played++
	r.GoalsFor += gf
	r.GoalsAgainst += ga
	switch res {
	case model.ResultWin:
		r.Wins++
		r.Points += e.points.Win
	case model.ResultDraw:
		r.Draws++
		r.Points += e.points.Draw
	default:
		r.Losses++
		r.Points += e.points.Loss
	}
}

// ranksBefore orders by points, goal difference, goals for, then participant id.
func ranksBefore(a, b *Row) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDiff != b.GoalDiff {
		return a.GoalDiff > b.GoalDiff
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.ParticipantID < b.ParticipantID
}

// Compute builds a table for every division of set that has events in t,
// then aggregates the palmares. set must come from division.Select with an
// explicit policy: the caller decides whether an in-progress division is
// present at all, and even then its placement is never awarded.
func (e *Engine) Compute(c *division.Classifier, set division.Set, t replay.Timeline) (*Result, error) {
	res := &Result{}
	present := make(map[string]struct{})
	for _, id := range t.DivisionIDs() {
		present[id] = struct{}{}
	}

	for _, id := range set.IDs() {
		if _, ok := present[id]; !ok {
			continue
		}
		cl, err := c.Classify(id)
		if err != nil {
			return nil, err
		}
		tbl, err := e.Division(id, t.Division(id))
		if err != nil {
			return nil, err
		}
		if d, ok := c.Division(id); ok {
			tbl.Period = d.Period
		}
		tbl.Complete = cl.Complete
		tbl.InProgress = cl.InProgress
		tbl.Awarded = cl.Complete && !cl.InProgress
		res.Tables = append(res.Tables, tbl)
	}
	res.Palmares = e.Palmares(res.Tables)
	return res, nil
}

// Palmares aggregates titles and records over tables.
func (e *Engine) Palmares(tables []Table) []PalmaresRow {
	acc := make(map[string]*PalmaresRow)
	for _, tbl := range tables {
		n := len(tbl.Rows)
		for i, r := range tbl.Rows {
			p, ok := acc[r.ParticipantID]
			if !ok {
				p = &PalmaresRow{ParticipantID: r.ParticipantID}
				acc[r.ParticipantID] = p
			}
			p.Seasons++
			p.Points += r.Points
			p.Matches += r.Played
			p.GoalsFor += r.GoalsFor
			if !tbl.Awarded {
				continue
			}
			if i == 0 {
				p.Titles++
			}
			if i < e.podiumSize {
				p.Podiums++
			}
			if i == n-1 {
				p.LastPlaces++
			}
		}
	}

	out := make([]PalmaresRow, 0, len(acc))
	for _, p := range acc {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Titles != b.Titles {
			return a.Titles > b.Titles
		}
		if a.Podiums != b.Podiums {
			return a.Podiums > b.Podiums
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.ParticipantID < b.ParticipantID
	})
	return out
}
