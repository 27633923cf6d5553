package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-mpg-history/internal/analytics"
	"github.com/pable/go-mpg-history/internal/bonus"
	"github.com/pable/go-mpg-history/internal/h2h"
	"github.com/pable/go-mpg-history/internal/rating"
	"github.com/pable/go-mpg-history/internal/standings"
	"github.com/pable/go-mpg-history/internal/streaks"
)

// Namer maps a participant id to a display name.
type Namer interface {
	DisplayName(id string) string
}

func name(n Namer, id string) string {
	if n == nil {
		return id
	}
	return n.DisplayName(id)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func goals(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yes(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// PrintRunHeader prints the policy and coverage line of a run.
func PrintRunHeader(w io.Writer, rep *analytics.Report) {
	fmt.Fprintf(w, "\nPolicy: %s  |  Divisions: %d  |  Matches replayed: %d\n\n",
		rep.Policy.String(), len(rep.Included()), rep.Matches)
}

// PrintRatingTable prints the ELO table.
func PrintRatingTable(w io.Writer, res *rating.Result, n Namer) {
	table := newTable(w)
	table.Header("#", "PARTICIPANT", "ELO", "P", "W", "D", "L", "WIN%")
	for i, r := range res.Rows {
		winPct := 0.0
		if r.Played > 0 {
			winPct = 100 * float64(r.Wins) / float64(r.Played)
		}
		table.Append(
			strconv.Itoa(i+1),
			name(n, r.ParticipantID),
			fmt.Sprintf("%.1f", r.Rating),
			strconv.Itoa(r.Played),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Draws),
			strconv.Itoa(r.Losses),
			fmt.Sprintf("%.0f%%", winPct),
		)
	}
	table.Render()
	fmt.Fprintf(w, "\nbaseline %.0f, K %.0f, %d matches, drift %.2e\n", res.Baseline, res.K, res.Matches, res.Drift)
}

// PrintPalmares prints the all-time titles table.
func PrintPalmares(w io.Writer, rows []standings.PalmaresRow, n Namer) {
	table := newTable(w)
	table.Header("PARTICIPANT", "TITLES", "PODIUMS", "LAST", "SEASONS", "PTS", "P", "PTS/M", "GF")
	for _, r := range rows {
		table.Append(
			name(n, r.ParticipantID),
			strconv.Itoa(r.Titles),
			strconv.Itoa(r.Podiums),
			strconv.Itoa(r.LastPlaces),
			strconv.Itoa(r.Seasons),
			strconv.Itoa(r.Points),
			strconv.Itoa(r.Matches),
			fmt.Sprintf("%.2f", r.AvgPoints()),
			goals(r.GoalsFor),
		)
	}
	table.Render()
}

// PrintChampions prints the champion and last place of every table.
func PrintChampions(w io.Writer, tables []standings.Table, n Namer) {
	table := newTable(w)
	table.Header("SEASON", "DIVISION", "CHAMPION", "LAST PLACE", "MATCHES", "AWARDED")
	for _, t := range tables {
		table.Append(
			strconv.Itoa(t.Period),
			t.DivisionID,
			name(n, t.Champion),
			name(n, t.LastPlace),
			strconv.Itoa(t.MatchCount),
			yes(t.Awarded),
		)
	}
	table.Render()
}

// PrintStandings prints one division table.
func PrintStandings(w io.Writer, t standings.Table, n Namer) {
	status := "final"
	switch {
	case t.InProgress:
		status = "in progress"
	case !t.Complete:
		status = "incomplete"
	}
	fmt.Fprintf(w, "\n%s (season %d, %s, %d matches)\n\n", t.DivisionID, t.Period, status, t.MatchCount)

	table := newTable(w)
	table.Header("#", "PARTICIPANT", "PTS", "P", "W", "D", "L", "GF", "GA", "GD", "PTS/M")
	for _, r := range t.Rows {
		table.Append(
			strconv.Itoa(r.Rank),
			name(n, r.ParticipantID),
			strconv.Itoa(r.Points),
			strconv.Itoa(r.Played),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Draws),
			strconv.Itoa(r.Losses),
			goals(r.GoalsFor),
			goals(r.GoalsAgainst),
			goals(r.GoalDiff),
			fmt.Sprintf("%.2f", r.AvgPoints()),
		)
	}
	table.Render()
}

// PrintHeadToHead prints the record of A against B and, if verbose, every meeting.
func PrintHeadToHead(w io.Writer, rep *h2h.Report, n Namer, verbose bool) {
	a, b := name(n, rep.A), name(n, rep.B)
	fmt.Fprintf(w, "\n%s vs %s: %d meetings\n\n", a, b, rep.Played())

	table := newTable(w)
	table.Header("", "P", "W "+a, "D", "W "+b, "GF", "GA", "GD")
	for _, row := range []struct {
		label string
		s     h2h.Side
	}{
		{"home", rep.HomeA},
		{"away", rep.AwayA},
		{"total", h2h.Side{
			Played: rep.Played(), Wins: rep.WinsA, Draws: rep.Draws, Losses: rep.WinsB,
			GoalsFor: rep.GoalsA, GoalsAgainst: rep.GoalsB,
		}},
	} {
		table.Append(
			row.label,
			strconv.Itoa(row.s.Played),
			strconv.Itoa(row.s.Wins),
			strconv.Itoa(row.s.Draws),
			strconv.Itoa(row.s.Losses),
			goals(row.s.GoalsFor),
			goals(row.s.GoalsAgainst),
			goals(row.s.GoalsFor-row.s.GoalsAgainst),
		)
	}
	table.Render()

	if !verbose || len(rep.Matches) == 0 {
		return
	}
	fmt.Fprintln(w)
	mt := newTable(w)
	mt.Header("SEASON", "DIVISION", "GW", "HOME", "SCORE", "AWAY", "RES")
	for _, m := range rep.Matches {
		mt.Append(
			strconv.Itoa(m.Period),
			m.DivisionID,
			strconv.Itoa(m.Round),
			name(n, m.Home),
			goals(m.HomeScore)+" - "+goals(m.AwayScore),
			name(n, m.Away),
			m.Outcome.String(),
		)
	}
	mt.Render()
}

// PrintMatrix prints one line per pair that met.
func PrintMatrix(w io.Writer, reps []h2h.Report, n Namer) {
	table := newTable(w)
	table.Header("A", "B", "P", "W A", "D", "W B", "GA", "GB")
	for _, r := range reps {
		table.Append(
			name(n, r.A),
			name(n, r.B),
			strconv.Itoa(r.Played()),
			strconv.Itoa(r.WinsA),
			strconv.Itoa(r.Draws),
			strconv.Itoa(r.WinsB),
			goals(r.GoalsA),
			goals(r.GoalsB),
		)
	}
	table.Render()
}

// PrintStreaks prints the streak records.
func PrintStreaks(w io.Writer, rows []streaks.Row, n Namer) {
	table := newTable(w)
	table.Header("PARTICIPANT", "WINS", "UNBEATEN", "LOSSES", "WINLESS", "CURRENT")
	for _, r := range rows {
		table.Append(
			name(n, r.ParticipantID),
			strconv.Itoa(r.BestWin.Length),
			strconv.Itoa(r.BestUnbeaten.Length),
			strconv.Itoa(r.BestLoss.Length),
			strconv.Itoa(r.BestWinless.Length),
			fmt.Sprintf("%d%s", r.CurrentLength, r.Current),
		)
	}
	table.Render()
}

// PrintBonuses prints the consumable stock per division and participant,
// one column per category as "remaining/stock".
func PrintBonuses(w io.Writer, ledger *bonus.Ledger, n Namer) {
	var cats, labels []string
	seen := make(map[string]bool)
	for _, r := range ledger.Rows {
		if !r.Consumable || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		cats = append(cats, r.Category)
		labels = append(labels, strings.ToUpper(r.Label))
	}

	type line struct {
		div, participant string
		cells            map[string]string
	}
	var lines []*line
	index := make(map[[2]string]*line)
	for _, r := range ledger.Rows {
		if !r.Consumable {
			continue
		}
		k := [2]string{r.DivisionID, r.ParticipantID}
		l, ok := index[k]
		if !ok {
			l = &line{div: r.DivisionID, participant: r.ParticipantID, cells: make(map[string]string)}
			index[k] = l
			lines = append(lines, l)
		}
		l.cells[r.Category] = fmt.Sprintf("%d/%d", r.Remaining, r.Stock)
	}

	header := append([]any{"DIVISION", "PARTICIPANT"}, toAny(labels)...)
	table := newTable(w)
	table.Header(header...)
	for _, l := range lines {
		row := []any{l.div, name(n, l.participant)}
		for _, c := range cats {
			row = append(row, l.cells[c])
		}
		table.Append(row...)
	}
	table.Render()
	if ledger.UpToRound > 0 {
		fmt.Fprintf(w, "\nstock after game week %d\n", ledger.UpToRound)
	}
}

// PrintDivisions prints the classification of every division.
func PrintDivisions(w io.Writer, divs []analytics.DivisionInfo) {
	table := newTable(w)
	table.Header("SEASON", "DIVISION", "MATCHES", "EXPECTED", "COMPLETE", "ANOMALOUS", "IN PROGRESS", "INCLUDED")
	for _, d := range divs {
		table.Append(
			strconv.Itoa(d.Period),
			d.ID,
			strconv.Itoa(d.MatchCount),
			strconv.Itoa(d.Expected),
			yes(d.Complete),
			yes(d.Anomalous),
			yes(d.InProgress),
			yes(d.Included),
		)
	}
	table.Render()
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
