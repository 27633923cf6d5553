// Package bonus replays per-match bonus usage against the catalog stock.
//
// Stock is per division and participant: every division is a season and
// every season starts from the full catalog.
package bonus

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/pable/go-mpg-history/internal/config"
	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/replay"
)

// Mode selects which divisions a bonus replay covers.
type Mode int

const (
	// ScopeFiltered applies the shared division policy.
	ScopeFiltered Mode = iota
	// ScopeAll covers every division regardless of classification.
	ScopeAll
	// ScopeDivision covers a single division.
	ScopeDivision
)

func (m Mode) String() string {
	switch m {
	case ScopeAll:
		return "all"
	case ScopeDivision:
		return "division"
	default:
		return "filtered"
	}
}

// Scope is the explicit extent of a bonus replay.
type Scope struct {
	Mode       Mode
	Policy     division.Policy // ScopeFiltered only
	DivisionID string          // ScopeDivision only

	// UpToRound stops the replay after this round (0 = no checkpoint).
	UpToRound int

	// IncludeUnplayed counts payloads recorded on matches not yet scored.
	IncludeUnplayed bool
}

// Select resolves the divisions covered by the scope.
func (s Scope) Select(c *division.Classifier) (division.Set, error) {
	switch s.Mode {
	case ScopeAll:
		return division.NewSet(c.IDs()...), nil
	case ScopeDivision:
		if _, err := c.Classify(s.DivisionID); err != nil {
			return division.Set{}, err
		}
		return division.NewSet(s.DivisionID), nil
	default:
		return division.Select(c, s.Policy)
	}
}

// Row is one (division, participant, category) ledger line.
type Row struct {
	DivisionID    string `json:"division_id"`
	ParticipantID string `json:"participant_id"`
	Category      string `json:"category"`
	Label         string `json:"label"`
	Consumable    bool   `json:"consumable"`
	Stock         int    `json:"stock"`
	Used          int    `json:"used"`
	Remaining     int    `json:"remaining"`
}

// Ledger is the state of every stock at the end of the replay.
type Ledger struct {
	UpToRound int   `json:"up_to_round,omitempty"`
	Rows      []Row `json:"rows"`
}

// ParsePayload decodes a stored bonus payload. The payload is a JSON object
// keyed by category; a numeric value is a use count, any other value
// (typically the bonus details object) counts as one use.
func ParsePayload(raw string) (model.BonusUsage, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid bonus payload %.40q", raw)
	}
	res := gjson.Parse(raw)
	if !res.IsObject() {
		return nil, fmt.Errorf("bonus payload is not an object: %.40q", raw)
	}
	usage := make(model.BonusUsage)
	res.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Number:
			usage[key.String()] += int(value.Int())
		case gjson.Null, gjson.False:
			// present but not played
		default:
			usage[key.String()]++
		}
		return true
	})
	if len(usage) == 0 {
		return nil, nil
	}
	return usage, nil
}

type key struct {
	division    string
	participant string
	category    string
}

// Replay consumes the bonus payloads of t, which must already be restricted
// to the scope's divisions and ordered. A category missing from the catalog
// is a ConfigurationError; a stock going below zero is a DataIntegrityError.
func Replay(cfg *config.League, t replay.Timeline, scope Scope) (*Ledger, error) {
	catalog := make(map[string]config.BonusEntry, len(cfg.Bonus.Catalog))
	for _, e := range cfg.Bonus.Catalog {
		catalog[e.Key] = e
	}

	used := make(map[key]int)
	members := make(map[string]map[string]struct{})
	var divOrder []string

	for _, ev := range t {
		div := ev.Match.DivisionID
		if scope.UpToRound > 0 && ev.Match.Round > scope.UpToRound {
			continue
		}
		if _, ok := members[div]; !ok {
			members[div] = make(map[string]struct{})
			divOrder = append(divOrder, div)
		}
		members[div][ev.Home] = struct{}{}
		members[div][ev.Away] = struct{}{}

		if !ev.Outcome.Played() && !scope.IncludeUnplayed {
			continue
		}
		for _, side := range []struct {
			participant string
			usage       model.BonusUsage
		}{
			{ev.Home, ev.Match.HomeBonuses},
			{ev.Away, ev.Match.AwayBonuses},
		} {
			if err := consume(catalog, used, ev, side.participant, side.usage); err != nil {
				return nil, err
			}
		}
	}

	ledger := &Ledger{UpToRound: scope.UpToRound, Rows: []Row{}}
	for _, div := range divOrder {
		ps := make([]string, 0, len(members[div]))
		for p := range members[div] {
			ps = append(ps, p)
		}
		sort.Strings(ps)
		for _, p := range ps {
			for _, e := range cfg.Bonus.Catalog {
				n := used[key{div, p, e.Key}]
				row := Row{
					DivisionID:    div,
					ParticipantID: p,
					Category:      e.Key,
					Label:         e.Label,
					Consumable:    e.Consumable,
					Used:          n,
				}
				if e.Consumable {
					row.Stock = e.Stock
					row.Remaining = e.Stock - n
				}
				ledger.Rows = append(ledger.Rows, row)
			}
		}
	}
	return ledger, nil
}

func consume(catalog map[string]config.BonusEntry, used map[key]int, ev replay.Event, participant string, usage model.BonusUsage) error {
	cats := make([]string, 0, len(usage))
	for c := range usage {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	for _, c := range cats {
		n := usage[c]
		entry, ok := catalog[c]
		if !ok {
			return &model.ConfigurationError{
				Field:      "bonus.catalog",
				DivisionID: ev.Match.DivisionID,
				Reason:     fmt.Sprintf("no catalog entry for category %q (match %s)", c, ev.Match.ID),
			}
		}
		if n < 0 {
			return &model.DataIntegrityError{
				Kind:          model.IntegrityNegativeStock,
				DivisionID:    ev.Match.DivisionID,
				MatchID:       ev.Match.ID,
				ParticipantID: participant,
				Detail:        fmt.Sprintf("negative usage count %d for %s", n, c),
			}
		}
		k := key{ev.Match.DivisionID, participant, c}
		used[k] += n
		if entry.Consumable && entry.Stock-used[k] < 0 {
			return &model.DataIntegrityError{
				Kind:          model.IntegrityNegativeStock,
				DivisionID:    ev.Match.DivisionID,
				MatchID:       ev.Match.ID,
				ParticipantID: participant,
				Detail:        fmt.Sprintf("%s used %d times, stock %d", c, used[k], entry.Stock),
			}
		}
	}
	return nil
}

// Remaining returns the consumable rows of ledger for one participant,
// keyed by category.
func (l *Ledger) Remaining(divisionID, participant string) map[string]int {
	out := make(map[string]int)
	for _, r := range l.Rows {
		if r.DivisionID == divisionID && r.ParticipantID == participant && r.Consumable {
			out[r.Category] = r.Remaining
		}
	}
	return out
}
