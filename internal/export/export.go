// Package export serializes an analytics report to a JSON document or an
// XLSX workbook. The document carries no timestamps: exporting the same
// snapshot twice yields identical bytes.
package export

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/pable/go-mpg-history/internal/analytics"
	"github.com/pable/go-mpg-history/internal/bonus"
	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/h2h"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/rating"
	"github.com/pable/go-mpg-history/internal/replay"
	"github.com/pable/go-mpg-history/internal/standings"
	"github.com/pable/go-mpg-history/internal/streaks"
)

// SchemaVersion is bumped on any incompatible document change.
const SchemaVersion = 1

var snapshotNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pable/go-mpg-history/snapshot"))

// Meta describes what the document was computed from.
type Meta struct {
	SchemaVersion int             `json:"schema_version"`
	SnapshotID    string          `json:"snapshot_id"`
	Policy        division.Policy `json:"policy"`
	Divisions     []string        `json:"divisions"`
	Matches       int             `json:"matches"`
}

// Document is the exported report.
type Document struct {
	Meta         Meta                     `json:"meta"`
	Ratings      []rating.Row             `json:"ratings"`
	Standings    []standings.Table        `json:"standings"`
	Palmares     []standings.PalmaresRow  `json:"palmares"`
	Streaks      []streaks.Row            `json:"streaks"`
	Bonuses      []bonus.Row              `json:"bonuses"`
	HeadToHead   []h2h.Report             `json:"head_to_head,omitempty"`
	Participants map[string]string        `json:"participants,omitempty"` // id -> display name
	DivisionInfo []analytics.DivisionInfo `json:"division_info"`
}

// Build assembles the document for rep computed over snap.
func Build(snap *model.Snapshot, rep *analytics.Report) *Document {
	doc := &Document{
		Meta: Meta{
			SchemaVersion: SchemaVersion,
			SnapshotID:    SnapshotID(snap).String(),
			Policy:        rep.Policy,
			Divisions:     rep.Included(),
			Matches:       rep.Matches,
		},
		DivisionInfo: rep.Divisions,
		Streaks:      rep.Streaks,
	}
	if doc.Meta.Divisions == nil {
		doc.Meta.Divisions = []string{}
	}
	if rep.Ratings != nil {
		doc.Ratings = rep.Ratings.Rows
	}
	if rep.Standings != nil {
		doc.Standings = rep.Standings.Tables
		doc.Palmares = rep.Standings.Palmares
	}
	if rep.Bonuses != nil {
		doc.Bonuses = rep.Bonuses.Rows
	}
	return doc
}

// WithNames records the display name of every participant in the document.
func (d *Document) WithNames(n interface{ DisplayName(string) string }) *Document {
	d.Participants = make(map[string]string)
	for _, r := range d.Ratings {
		d.Participants[r.ParticipantID] = n.DisplayName(r.ParticipantID)
	}
	for _, r := range d.Palmares {
		d.Participants[r.ParticipantID] = n.DisplayName(r.ParticipantID)
	}
	return d
}

// SnapshotID is a name-based UUID over the content of snap, independent of
// storage order.
func SnapshotID(snap *model.Snapshot) uuid.UUID {
	h := sha256.New()

	divs := make([]model.Division, len(snap.Divisions))
	copy(divs, snap.Divisions)
	sort.Slice(divs, func(i, j int) bool { return divs[i].ID < divs[j].ID })
	for _, d := range divs {
		fmt.Fprintf(h, "d|%s|%d|%t|%t|%d|%d\n", d.ID, d.Period, d.Anomalous, d.InProgress, d.ExpectedMatches, d.MatchCount)
	}

	teams := make([]model.Team, len(snap.Teams))
	copy(teams, snap.Teams)
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	for _, t := range teams {
		fmt.Fprintf(h, "t|%s|%s|%s|%s\n", t.ID, t.DivisionID, t.Name, t.ParticipantID)
	}

	for _, m := range replay.Order(snap.Matches) {
		fmt.Fprintf(h, "m|%s|%s|%s|%s|%s|%s|%s|%t\n",
			m.ID, m.HomeTeamID, m.AwayTeamID,
			score(m.HomeScore), score(m.AwayScore),
			usage(m.HomeBonuses), usage(m.AwayBonuses), m.Finalized)
	}
	return uuid.NewSHA1(snapshotNamespace, h.Sum(nil))
}

func score(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func usage(u model.BonusUsage) string {
	b, _ := json.Marshal(u) // map keys are sorted
	return string(b)
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}
