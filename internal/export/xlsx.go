package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// WriteXLSX writes doc as a workbook with one sheet per table.
func WriteXLSX(w io.Writer, doc *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(f.GetActiveSheetIndex())
	for i, s := range doc.sheets() {
		name := s.name
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet) error {
	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	all := append([][]any{header}, s.rows...)
	for idx, row := range all {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		cells := row
		if err := f.SetSheetRow(s.name, axis, &cells); err != nil {
			return fmt.Errorf("write %s row %d: %w", s.name, idx+1, err)
		}
	}
	return nil
}

func (d *Document) display(id string) string {
	if n, ok := d.Participants[id]; ok {
		return n
	}
	return id
}

func (d *Document) sheets() []sheet {
	meta := sheet{
		name:   "Divisions",
		header: []string{"season", "division", "matches", "expected", "complete", "anomalous", "in_progress", "included"},
	}
	for _, di := range d.DivisionInfo {
		meta.rows = append(meta.rows, []any{di.Period, di.ID, di.MatchCount, di.Expected, di.Complete, di.Anomalous, di.InProgress, di.Included})
	}

	elo := sheet{
		name:   "ELO",
		header: []string{"rank", "participant", "rating", "played", "wins", "draws", "losses"},
	}
	for i, r := range d.Ratings {
		elo.rows = append(elo.rows, []any{i + 1, d.display(r.ParticipantID), r.Rating, r.Played, r.Wins, r.Draws, r.Losses})
	}

	pal := sheet{
		name:   "Palmares",
		header: []string{"participant", "titles", "podiums", "last_places", "seasons", "points", "matches", "goals_for"},
	}
	for _, r := range d.Palmares {
		pal.rows = append(pal.rows, []any{d.display(r.ParticipantID), r.Titles, r.Podiums, r.LastPlaces, r.Seasons, r.Points, r.Matches, r.GoalsFor})
	}

	tables := sheet{
		name:   "Standings",
		header: []string{"season", "division", "rank", "participant", "points", "played", "wins", "draws", "losses", "goals_for", "goals_against", "goal_diff"},
	}
	for _, t := range d.Standings {
		for _, r := range t.Rows {
			tables.rows = append(tables.rows, []any{
				t.Period, t.DivisionID, r.Rank, d.display(r.ParticipantID), r.Points,
				r.Played, r.Wins, r.Draws, r.Losses, r.GoalsFor, r.GoalsAgainst, r.GoalDiff,
			})
		}
	}

	st := sheet{
		name:   "Streaks",
		header: []string{"participant", "best_win", "best_unbeaten", "best_loss", "best_winless", "current"},
	}
	for _, r := range d.Streaks {
		st.rows = append(st.rows, []any{
			d.display(r.ParticipantID), r.BestWin.Length, r.BestUnbeaten.Length,
			r.BestLoss.Length, r.BestWinless.Length, fmt.Sprintf("%d%s", r.CurrentLength, r.Current),
		})
	}

	bn := sheet{
		name:   "Bonuses",
		header: []string{"division", "participant", "category", "label", "stock", "used", "remaining"},
	}
	for _, r := range d.Bonuses {
		if !r.Consumable {
			continue
		}
		bn.rows = append(bn.rows, []any{r.DivisionID, d.display(r.ParticipantID), r.Category, r.Label, r.Stock, r.Used, r.Remaining})
	}

	return []sheet{elo, pal, tables, st, bn, meta}
}
