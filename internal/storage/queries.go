package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pable/go-mpg-history/internal/bonus"
	"github.com/pable/go-mpg-history/internal/model"
)

// UpsertDivisions inserts division metadata rows in a transaction. An existing
// row keeps its curated flags, expected count and notes: flags are OR-ed and
// zero or empty values never overwrite stored ones.
func (db *DB) UpsertDivisions(ctx context.Context, divs []model.Division) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO divisions_metadata(
			division_id, season, is_anomalous, is_current,
			expected_matches, n_matches, gw_min, gw_max, notes
		) VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(division_id) DO UPDATE SET
			season       = excluded.season,
			is_anomalous = MAX(divisions_metadata.is_anomalous, excluded.is_anomalous),
			is_current   = MAX(divisions_metadata.is_current, excluded.is_current),
			n_matches    = excluded.n_matches,
			gw_min       = excluded.gw_min,
			gw_max       = excluded.gw_max,
			expected_matches = CASE
				WHEN excluded.expected_matches > 0 THEN excluded.expected_matches
				ELSE divisions_metadata.expected_matches END,
			notes = CASE
				WHEN excluded.notes != '' THEN excluded.notes
				ELSE divisions_metadata.notes END`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range divs {
		_, err = stmt.ExecContext(ctx,
			d.ID, d.Period, boolInt(d.Anomalous), boolInt(d.InProgress),
			d.ExpectedMatches, d.MatchCount, d.RoundMin, d.RoundMax, d.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert division %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// UpsertTeams inserts or replaces team rows in a transaction.
func (db *DB) UpsertTeams(ctx context.Context, teams []model.Team) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO teams(id, division_id, name, person_id)
		VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range teams {
		if _, err = stmt.ExecContext(ctx, t.ID, t.DivisionID, t.Name, t.ParticipantID); err != nil {
			return fmt.Errorf("insert team %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// UpsertMatches inserts or replaces match rows in a transaction.
func (db *DB) UpsertMatches(ctx context.Context, matches []model.Match) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO matches(
			id, season, division_id, game_week,
			home_team_id, away_team_id, home_score, away_score,
			home_bonuses, away_bonuses, is_finalized, final_result
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range matches {
		hb, err := encodeBonuses(m.HomeBonuses)
		if err != nil {
			return fmt.Errorf("encode home bonuses of %s: %w", m.ID, err)
		}
		ab, err := encodeBonuses(m.AwayBonuses)
		if err != nil {
			return fmt.Errorf("encode away bonuses of %s: %w", m.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			m.ID, m.Period, m.DivisionID, m.Round,
			m.HomeTeamID, m.AwayTeamID, nullFloat(m.HomeScore), nullFloat(m.AwayScore),
			hb, ab, boolInt(m.Finalized), m.FinalResult,
		)
		if err != nil {
			return fmt.Errorf("insert match %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// SetParticipants writes the resolved participant id of every team with one.
func (db *DB) SetParticipants(ctx context.Context, teams []model.Team) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n := 0
	for _, t := range teams {
		if t.ParticipantID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, "UPDATE teams SET person_id = ? WHERE id = ?", t.ParticipantID, t.ID); err != nil {
			return 0, fmt.Errorf("update team %s: %w", t.ID, err)
		}
		n++
	}
	return n, tx.Commit()
}

// RefreshDivisionMetadata recomputes period, scored match count and round
// range of every division from the matches table. Divisions seen only in matches get a
// metadata row with the given expected match count; curated flags and notes
// of existing rows are preserved.
func (db *DB) RefreshDivisionMetadata(ctx context.Context, expected int) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO divisions_metadata(division_id, season, expected_matches, n_matches, gw_min, gw_max)
		SELECT division_id, MIN(season), ?,
		       SUM(CASE WHEN home_score IS NOT NULL AND away_score IS NOT NULL THEN 1 ELSE 0 END),
		       MIN(game_week), MAX(game_week)
		FROM matches WHERE true
		GROUP BY division_id
		ON CONFLICT(division_id) DO UPDATE SET
			season    = excluded.season,
			n_matches = excluded.n_matches,
			gw_min    = excluded.gw_min,
			gw_max    = excluded.gw_max,
			expected_matches = CASE
				WHEN divisions_metadata.expected_matches > 0 THEN divisions_metadata.expected_matches
				ELSE excluded.expected_matches END`, expected)
	if err != nil {
		return 0, fmt.Errorf("refresh divisions: %w", err)
	}
	n, _ := res.RowsAffected()
	db.log.WithField("divisions", n).Info("division metadata refreshed")
	return int(n), tx.Commit()
}

// Snapshot reads divisions, teams and matches inside one transaction, so a
// concurrent writer can never be observed half-way.
func (db *DB) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	snap := &model.Snapshot{}
	if snap.Divisions, err = readDivisions(ctx, tx); err != nil {
		return nil, fmt.Errorf("read divisions: %w", err)
	}
	if snap.Teams, err = readTeams(ctx, tx); err != nil {
		return nil, fmt.Errorf("read teams: %w", err)
	}
	if snap.Matches, err = readMatches(ctx, tx); err != nil {
		return nil, fmt.Errorf("read matches: %w", err)
	}
	db.log.WithFields(logrus.Fields{
		"divisions": len(snap.Divisions),
		"teams":     len(snap.Teams),
		"matches":   len(snap.Matches),
	}).Debug("snapshot read")
	return snap, nil
}

// Divisions returns the stored division metadata ordered by season then id.
func (db *DB) Divisions(ctx context.Context) ([]model.Division, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return readDivisions(ctx, tx)
}

// Teams returns every stored team.
func (db *DB) Teams(ctx context.Context) ([]model.Team, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return readTeams(ctx, tx)
}

func readDivisions(ctx context.Context, tx *sql.Tx) ([]model.Division, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT division_id, season, is_anomalous, is_current,
		       expected_matches, n_matches, gw_min, gw_max, notes
		FROM divisions_metadata ORDER BY season, division_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Division
	for rows.Next() {
		var d model.Division
		var anomalous, current int
		if err := rows.Scan(&d.ID, &d.Period, &anomalous, &current,
			&d.ExpectedMatches, &d.MatchCount, &d.RoundMin, &d.RoundMax, &d.Notes); err != nil {
			return nil, err
		}
		d.Anomalous = anomalous != 0
		d.InProgress = current != 0
		out = append(out, d)
	}
	return out, rows.Err()
}

func readTeams(ctx context.Context, tx *sql.Tx) ([]model.Team, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, division_id, name, person_id FROM teams ORDER BY division_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.DivisionID, &t.Name, &t.ParticipantID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func readMatches(ctx context.Context, tx *sql.Tx) ([]model.Match, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, season, division_id, game_week,
		       home_team_id, away_team_id, home_score, away_score,
		       home_bonuses, away_bonuses, is_finalized, COALESCE(final_result, 0)
		FROM matches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var m model.Match
		var hs, as sql.NullFloat64
		var hb, ab string
		var finalized int
		if err := rows.Scan(&m.ID, &m.Period, &m.DivisionID, &m.Round,
			&m.HomeTeamID, &m.AwayTeamID, &hs, &as,
			&hb, &ab, &finalized, &m.FinalResult); err != nil {
			return nil, err
		}
		if hs.Valid {
			m.HomeScore = model.Score(hs.Float64)
		}
		if as.Valid {
			m.AwayScore = model.Score(as.Float64)
		}
		if m.HomeBonuses, err = bonus.ParsePayload(hb); err != nil {
			return nil, fmt.Errorf("match %s home bonuses: %w", m.ID, err)
		}
		if m.AwayBonuses, err = bonus.ParsePayload(ab); err != nil {
			return nil, fmt.Errorf("match %s away bonuses: %w", m.ID, err)
		}
		m.Finalized = finalized != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

func encodeBonuses(u model.BonusUsage) (string, error) {
	if len(u) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
