package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Overview is the high-level content of the store.
type Overview struct {
	Divisions       int
	Teams           int
	UnresolvedTeams int
	Matches         int
	ScoredMatches   int
	FirstSeason     int
	LastSeason      int
}

// SeasonCount is the number of divisions and matches stored for one season.
type SeasonCount struct {
	Season        int
	Divisions     int
	Matches       int
	ScoredMatches int
}

// GetDBOverview returns aggregate counts over every table.
func (db *DB) GetDBOverview(ctx context.Context) (Overview, error) {
	var ov Overview
	var first, last sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM divisions_metadata),
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM teams WHERE person_id = ''),
			(SELECT COUNT(*) FROM matches),
			(SELECT COUNT(*) FROM matches WHERE home_score IS NOT NULL AND away_score IS NOT NULL),
			(SELECT MIN(season) FROM matches),
			(SELECT MAX(season) FROM matches)`).
		Scan(&ov.Divisions, &ov.Teams, &ov.UnresolvedTeams, &ov.Matches, &ov.ScoredMatches, &first, &last)
	if err != nil {
		return Overview{}, fmt.Errorf("overview: %w", err)
	}
	ov.FirstSeason = int(first.Int64)
	ov.LastSeason = int(last.Int64)
	return ov, nil
}

// GetSeasonCounts returns per-season counts ordered by season.
func (db *DB) GetSeasonCounts(ctx context.Context) ([]SeasonCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT season,
		       COUNT(DISTINCT division_id),
		       COUNT(*),
		       SUM(CASE WHEN home_score IS NOT NULL AND away_score IS NOT NULL THEN 1 ELSE 0 END)
		FROM matches GROUP BY season ORDER BY season`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeasonCount
	for rows.Next() {
		var s SeasonCount
		if err := rows.Scan(&s.Season, &s.Divisions, &s.Matches, &s.ScoredMatches); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UnresolvedTeamNames returns the names of teams with no participant, per division.
func (db *DB) UnresolvedTeamNames(ctx context.Context) (map[string][]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT division_id, name FROM teams WHERE person_id = '' ORDER BY division_id, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var div, name string
		if err := rows.Scan(&div, &name); err != nil {
			return nil, err
		}
		out[div] = append(out[div], name)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(ctx context.Context, query string) ([]string, [][]string, error) {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
