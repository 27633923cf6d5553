// Package rating replays the ordered timeline through a zero-sum ELO update.
package rating

import (
	"fmt"
	"math"
	"sort"

	"github.com/pable/go-mpg-history/internal/config"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/replay"
)

// Row is one participant's final rating record.
type Row struct {
	ParticipantID string  `json:"participant_id"`
	Rating        float64 `json:"rating"`
	Played        int     `json:"played"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
}

// Result is the outcome of a full replay.
type Result struct {
	Baseline float64 `json:"baseline"`
	K        float64 `json:"k"`
	Matches  int     `json:"matches"` // matches that moved ratings
	Drift    float64 `json:"drift"`   // sum(rating) - n*baseline
	Rows     []Row   `json:"rows"`    // rating desc, participant asc
}

// Expected is the expected score of a player rated ra against one rated rb.
func Expected(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (rb-ra)/400.0))
}

// Actual is the score a side earns for its result: 1, 0.5 or 0.
func Actual(r model.Result) float64 {
	switch r {
	case model.ResultWin:
		return 1
	case model.ResultDraw:
		return 0.5
	default:
		return 0
	}
}

// Engine holds one mutable rating per participant. Ratings start at the
// configured baseline the first time a participant is seen.
type Engine struct {
	baseline  float64
	k         float64
	tolerance float64

	rows    map[string]*Row
	applied int
}

// NewEngine returns an engine configured from cfg.
func NewEngine(cfg *config.League) *Engine {
	return &Engine{
		baseline:  cfg.Rating.Baseline,
		k:         cfg.Rating.K,
		tolerance: cfg.Rating.Tolerance,
		rows:      make(map[string]*Row),
	}
}

func (e *Engine) row(id string) *Row {
	r, ok := e.rows[id]
	if !ok {
		r = &Row{ParticipantID: id, Rating: e.baseline}
		e.rows[id] = r
	}
	return r
}

// Apply updates both sides for one event and returns the home delta.
// Unplayed events are skipped and report applied=false.
func (e *Engine) Apply(ev replay.Event) (delta float64, applied bool) {
	if !ev.Outcome.Played() {
		return 0, false
	}
	home, away := e.row(ev.Home), e.row(ev.Away)
	exp := Expected(home.Rating, away.Rating)
	delta = e.k * (Actual(ev.Outcome.ForHome()) - exp)
	home.Rating += delta
	away.Rating -= delta

	home.Played++
	away.Played++
	switch ev.Outcome {
	case model.OutcomeHomeWin:
		home.Wins++
		away.Losses++
	case model.OutcomeAwayWin:
		home.Losses++
		away.Wins++
	default:
		home.Draws++
		away.Draws++
	}
	e.applied++
	return delta, true
}

// Drift returns sum(rating) - n*baseline, which is zero up to rounding.
// Summed in participant order so repeated runs agree to the last bit.
func (e *Engine) Drift() float64 {
	ids := make([]string, 0, len(e.rows))
	for id := range e.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var sum float64
	for _, id := range ids {
		sum += e.rows[id].Rating - e.baseline
	}
	return sum
}

// Check fails with a DataIntegrityError when the zero-sum property is violated.
func (e *Engine) Check() error {
	if d := e.Drift(); math.Abs(d) > e.tolerance || math.IsNaN(d) {
		return &model.DataIntegrityError{
			Kind:   model.IntegrityRatingDrift,
			Detail: fmt.Sprintf("rating sum drifted by %g (tolerance %g)", d, e.tolerance),
		}
	}
	return nil
}

// Rating returns the current rating for id, or the baseline if unseen.
func (e *Engine) Rating(id string) float64 {
	if r, ok := e.rows[id]; ok {
		return r.Rating
	}
	return e.baseline
}

// Table returns the rows ordered by rating desc, then participant id.
func (e *Engine) Table() []Row {
	out := make([]Row, 0, len(e.rows))
	for _, r := range e.rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}

// Replay runs a fresh engine over t and checks the zero-sum invariant.
func Replay(cfg *config.League, t replay.Timeline) (*Result, error) {
	e := NewEngine(cfg)
	for _, ev := range t {
		e.Apply(ev)
	}
	if err := e.Check(); err != nil {
		return nil, err
	}
	return &Result{
		Baseline: e.baseline,
		K:        e.k,
		Matches:  e.applied,
		Drift:    e.Drift(),
		Rows:     e.Table(),
	}, nil
}
