// Package streaks tracks consecutive-result runs per participant. Runs span
// divisions: the timeline order is the only order that matters.
package streaks

import (
	"sort"

	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/replay"
)

// Run is a streak and where it ended.
type Run struct {
	Length     int    `json:"length"`
	EndMatchID string `json:"end_match_id,omitempty"`
	EndPeriod  int    `json:"end_period,omitempty"`
}

// Row holds one participant's records.
type Row struct {
	ParticipantID string `json:"participant_id"`
	BestWin       Run    `json:"best_win"`
	BestUnbeaten  Run    `json:"best_unbeaten"`
	BestLoss      Run    `json:"best_loss"`
	BestWinless   Run    `json:"best_winless"`

	// Current is the type of the run in progress ("W", "D" or "L").
	Current       string `json:"current"`
	CurrentLength int    `json:"current_length"`
}

type state struct {
	row      Row
	win      int
	unbeaten int
	loss     int
	winless  int
	last     model.Result
	seen     bool
}

func (s *state) push(res model.Result, m *model.Match) {
	mark := func(cur int, best *Run) {
		if cur > best.Length {
			*best = Run{Length: cur, EndMatchID: m.ID, EndPeriod: m.Period}
		}
	}
	switch res {
	case model.ResultWin:
		s.win++
		s.unbeaten++
		s.loss, s.winless = 0, 0
	case model.ResultDraw:
		s.unbeaten++
		s.winless++
		s.win, s.loss = 0, 0
	default:
		s.loss++
		s.winless++
		s.win, s.unbeaten = 0, 0
	}
	mark(s.win, &s.row.BestWin)
	mark(s.unbeaten, &s.row.BestUnbeaten)
	mark(s.loss, &s.row.BestLoss)
	mark(s.winless, &s.row.BestWinless)

	if s.seen && s.last == res {
		s.row.CurrentLength++
	} else {
		s.row.CurrentLength = 1
	}
	s.row.Current = res.String()
	s.last = res
	s.seen = true
}

// Compute replays the scored events of t. Rows are ordered by best win run
// desc, then participant id.
func Compute(t replay.Timeline) []Row {
	acc := make(map[string]*state)
	get := func(p string) *state {
		s, ok := acc[p]
		if !ok {
			s = &state{row: Row{ParticipantID: p}}
			acc[p] = s
		}
		return s
	}
	for i := range t {
		ev := &t[i]
		if !ev.Outcome.Played() {
			continue
		}
		get(ev.Home).push(ev.Outcome.ForHome(), &ev.Match)
		get(ev.Away).push(ev.Outcome.ForAway(), &ev.Match)
	}

	out := make([]Row, 0, len(acc))
	for _, s := range acc {
		out = append(out, s.row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BestWin.Length != out[j].BestWin.Length {
			return out[i].BestWin.Length > out[j].BestWin.Length
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}
