// Package division classifies divisions and resolves which of them a
// computation may include. Every engine goes through Select; there is no
// second inclusion rule anywhere else.
package division

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pable/go-mpg-history/internal/model"
)

// Class is the fixed classification of one division.
type Class struct {
	Complete   bool // derived: match count == expected
	Anomalous  bool // curated
	InProgress bool // curated
}

// Classifier is a pure lookup over division metadata.
type Classifier struct {
	order    []string
	meta     map[string]model.Division
	expected int
}

// NewClassifier indexes divs. defaultExpected applies to divisions whose
// metadata carries no expected match count.
func NewClassifier(divs []model.Division, defaultExpected int) *Classifier {
	c := &Classifier{
		meta:     make(map[string]model.Division, len(divs)),
		expected: defaultExpected,
	}
	sorted := make([]model.Division, len(divs))
	copy(sorted, divs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Period != sorted[j].Period {
			return sorted[i].Period < sorted[j].Period
		}
		return sorted[i].ID < sorted[j].ID
	})
	for _, d := range sorted {
		if _, dup := c.meta[d.ID]; dup {
			continue
		}
		c.meta[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c
}

// Classify returns the classification of the division with the given id.
func (c *Classifier) Classify(id string) (Class, error) {
	d, ok := c.meta[id]
	if !ok {
		return Class{}, &model.ConfigurationError{Field: "division", DivisionID: id, Reason: "no metadata for division"}
	}
	expected := d.ExpectedMatches
	if expected <= 0 {
		expected = c.expected
	}
	if expected <= 0 {
		return Class{}, &model.ConfigurationError{Field: "expected_matches", DivisionID: id, Reason: "no expected match count"}
	}
	return Class{
		Complete:   d.MatchCount == expected,
		Anomalous:  d.Anomalous,
		InProgress: d.InProgress,
	}, nil
}

// Division returns the metadata for id.
func (c *Classifier) Division(id string) (model.Division, bool) {
	d, ok := c.meta[id]
	return d, ok
}

// Covers fails with a ConfigurationError naming the lowest division id that
// matches reference but no metadata describes.
func (c *Classifier) Covers(matches []model.Match) error {
	var missing string
	for _, m := range matches {
		if _, ok := c.meta[m.DivisionID]; ok {
			continue
		}
		if missing == "" || m.DivisionID < missing {
			missing = m.DivisionID
		}
	}
	if missing != "" {
		return &model.ConfigurationError{Field: "division", DivisionID: missing, Reason: "no metadata for division"}
	}
	return nil
}

// IDs returns every known division id, ordered by period then id.
func (c *Classifier) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Policy selects which kinds of division a computation includes. The zero
// value is the default: only complete, non-anomalous, finished divisions.
// Widening is always explicit.
type Policy struct {
	IncludeAnomalous  bool `json:"include_anomalous"`
	IncludeIncomplete bool `json:"include_incomplete"`
	IncludeInProgress bool `json:"include_in_progress"`
}

// DefaultPolicy is the single shared default.
func DefaultPolicy() Policy {
	return Policy{}
}

func (p Policy) String() string {
	var parts []string
	if p.IncludeAnomalous {
		parts = append(parts, "anomalous")
	}
	if p.IncludeIncomplete {
		parts = append(parts, "incomplete")
	}
	if p.IncludeInProgress {
		parts = append(parts, "in-progress")
	}
	if len(parts) == 0 {
		return "default"
	}
	return "+" + strings.Join(parts, "+")
}

// Admits reports whether a division with class cl passes the policy.
// The in-progress division is governed by IncludeInProgress alone: it is
// never complete, so the incompleteness switch does not apply to it.
func (p Policy) Admits(cl Class) bool {
	if cl.Anomalous && !p.IncludeAnomalous {
		return false
	}
	if cl.InProgress {
		return p.IncludeInProgress
	}
	if !cl.Complete && !p.IncludeIncomplete {
		return false
	}
	return true
}

// Set is an ordered set of division ids.
type Set struct {
	ids   []string
	index map[string]struct{}
}

// NewSet builds a set from ids, keeping their order and dropping duplicates.
func NewSet(ids ...string) Set {
	s := Set{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the ids in period, id order.
func (s Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of divisions.
func (s Set) Len() int {
	return len(s.ids)
}

// Select returns the divisions admitted by policy.
func Select(c *Classifier, p Policy) (Set, error) {
	var ids []string
	for _, id := range c.order {
		cl, err := c.Classify(id)
		if err != nil {
			return Set{}, fmt.Errorf("classify %s: %w", id, err)
		}
		if p.Admits(cl) {
			ids = append(ids, id)
		}
	}
	return NewSet(ids...), nil
}
