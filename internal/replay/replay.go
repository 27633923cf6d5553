// Package replay turns the stored match collection into the single ordered,
// participant-resolved timeline that every stateful engine consumes.
package replay

import (
	"fmt"
	"sort"

	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/model"
)

// Derive computes the outcome from the two scores. Nothing else is consulted:
// the upstream result label is unreliable.
func Derive(home, away *float64) model.Outcome {
	if home == nil || away == nil {
		return model.OutcomeUnplayed
	}
	switch {
	case *home > *away:
		return model.OutcomeHomeWin
	case *home < *away:
		return model.OutcomeAwayWin
	default:
		return model.OutcomeDraw
	}
}

// Less is the total replay order: period, division, round, match id.
func Less(a, b *model.Match) bool {
	if a.Period != b.Period {
		return a.Period < b.Period
	}
	if a.DivisionID != b.DivisionID {
		return a.DivisionID < b.DivisionID
	}
	if a.Round != b.Round {
		return a.Round < b.Round
	}
	return a.ID < b.ID
}

// Order returns a sorted copy of matches. The input is never modified.
func Order(matches []model.Match) []model.Match {
	out := make([]model.Match, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool { return Less(&out[i], &out[j]) })
	return out
}

// Event is one match with both sides resolved to participants.
type Event struct {
	Match   model.Match
	Home    string
	Away    string
	Outcome model.Outcome
}

// HomeGoals returns the home score, 0 when unplayed.
func (e *Event) HomeGoals() float64 {
	if e.Match.HomeScore == nil {
		return 0
	}
	return *e.Match.HomeScore
}

// AwayGoals returns the away score, 0 when unplayed.
func (e *Event) AwayGoals() float64 {
	if e.Match.AwayScore == nil {
		return 0
	}
	return *e.Match.AwayScore
}

// Timeline is an ordered event sequence.
type Timeline []Event

// Played keeps only scored matches.
func (t Timeline) Played() Timeline {
	var out Timeline
	for _, e := range t {
		if e.Outcome.Played() {
			out = append(out, e)
		}
	}
	return out
}

// Division keeps the events of one division.
func (t Timeline) Division(id string) Timeline {
	var out Timeline
	for _, e := range t {
		if e.Match.DivisionID == id {
			out = append(out, e)
		}
	}
	return out
}

// Between keeps the events opposing a and b, in either orientation.
func (t Timeline) Between(a, b string) Timeline {
	var out Timeline
	for _, e := range t {
		if (e.Home == a && e.Away == b) || (e.Home == b && e.Away == a) {
			out = append(out, e)
		}
	}
	return out
}

// DivisionIDs returns the divisions the timeline touches, in replay order.
func (t Timeline) DivisionIDs() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, e := range t {
		if _, ok := seen[e.Match.DivisionID]; ok {
			continue
		}
		seen[e.Match.DivisionID] = struct{}{}
		out = append(out, e.Match.DivisionID)
	}
	return out
}

// Participants returns every participant in the timeline, sorted.
func (t Timeline) Participants() []string {
	seen := make(map[string]struct{})
	for _, e := range t {
		seen[e.Home] = struct{}{}
		seen[e.Away] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Build filters the snapshot to the divisions in set, orders the matches and
// resolves every team to its participant. Resolution must be total over the
// included divisions.
func Build(snap *model.Snapshot, set division.Set) (Timeline, error) {
	teams := make(map[string]model.Team, len(snap.Teams))
	for _, t := range snap.Teams {
		teams[t.ID] = t
		if set.Contains(t.DivisionID) && t.ParticipantID == "" {
			return nil, &model.DataIntegrityError{
				Kind:       model.IntegrityUnresolvedTeam,
				DivisionID: t.DivisionID,
				TeamID:     t.ID,
				Detail:     fmt.Sprintf("team %q has no participant", t.Name),
			}
		}
	}

	var selected []model.Match
	for _, m := range snap.Matches {
		if set.Contains(m.DivisionID) {
			selected = append(selected, m)
		}
	}
	ordered := Order(selected)

	out := make(Timeline, 0, len(ordered))
	for _, m := range ordered {
		home, err := resolve(teams, m, m.HomeTeamID)
		if err != nil {
			return nil, err
		}
		away, err := resolve(teams, m, m.AwayTeamID)
		if err != nil {
			return nil, err
		}
		if home == away {
			return nil, &model.DataIntegrityError{
				Kind:          model.IntegrityUnresolvedTeam,
				DivisionID:    m.DivisionID,
				MatchID:       m.ID,
				ParticipantID: home,
				Detail:        "both sides resolve to the same participant",
			}
		}
		if m.Finalized && !m.Scored() {
			return nil, &model.DataIntegrityError{
				Kind:       model.IntegrityScoreMissing,
				DivisionID: m.DivisionID,
				MatchID:    m.ID,
				Detail:     "finalized match without both scores",
			}
		}
		out = append(out, Event{
			Match:   m,
			Home:    home,
			Away:    away,
			Outcome: Derive(m.HomeScore, m.AwayScore),
		})
	}
	return out, nil
}

func resolve(teams map[string]model.Team, m model.Match, teamID string) (string, error) {
	t, ok := teams[teamID]
	if !ok || t.ParticipantID == "" {
		return "", &model.DataIntegrityError{
			Kind:       model.IntegrityUnresolvedTeam,
			DivisionID: m.DivisionID,
			MatchID:    m.ID,
			TeamID:     teamID,
			Detail:     "team does not resolve to a participant",
		}
	}
	if t.DivisionID != "" && t.DivisionID != m.DivisionID {
		return "", &model.DataIntegrityError{
			Kind:       model.IntegrityUnresolvedTeam,
			DivisionID: m.DivisionID,
			MatchID:    m.ID,
			TeamID:     teamID,
			Detail:     fmt.Sprintf("team belongs to division %s", t.DivisionID),
		}
	}
	return t.ParticipantID, nil
}
