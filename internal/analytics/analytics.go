// Package analytics runs the full replay pipeline over a snapshot:
// curation, classification, filtering, sequencing, then the engines.
package analytics

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pable/go-mpg-history/internal/bonus"
	"github.com/pable/go-mpg-history/internal/config"
	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/h2h"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/rating"
	"github.com/pable/go-mpg-history/internal/replay"
	"github.com/pable/go-mpg-history/internal/standings"
	"github.com/pable/go-mpg-history/internal/streaks"
)

// DivisionInfo is the classification of one division and whether the
// policy of the run included it.
type DivisionInfo struct {
	ID         string `json:"id"`
	Period     int    `json:"period"`
	MatchCount int    `json:"match_count"`
	Expected   int    `json:"expected_matches"`
	Complete   bool   `json:"complete"`
	Anomalous  bool   `json:"anomalous"`
	InProgress bool   `json:"in_progress"`
	Included   bool   `json:"included"`
}

// Report is every aggregate of one run.
type Report struct {
	Policy    division.Policy   `json:"policy"`
	Divisions []DivisionInfo    `json:"divisions"`
	Matches   int               `json:"matches"` // scored matches replayed
	Ratings   *rating.Result    `json:"ratings"`
	Standings *standings.Result `json:"standings"`
	Streaks   []streaks.Row     `json:"streaks"`
	Bonuses   *bonus.Ledger     `json:"bonuses"`
}

// Included returns the ids of the divisions the run covered.
func (r *Report) Included() []string {
	var out []string
	for _, d := range r.Divisions {
		if d.Included {
			out = append(out, d.ID)
		}
	}
	return out
}

// Engine is stateless between calls: every call recomputes from the snapshot.
type Engine struct {
	cfg *config.League
	log logrus.FieldLogger
}

// New returns an engine for cfg. log receives pipeline diagnostics.
func New(cfg *config.League, log logrus.FieldLogger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

type prepared struct {
	classifier *division.Classifier
	set        division.Set
	timeline   replay.Timeline
}

func (e *Engine) classify(snap *model.Snapshot) (*division.Classifier, error) {
	divs, err := e.cfg.Seasonal.Apply(snap.Divisions)
	if err != nil {
		return nil, e.fail(err)
	}
	c := division.NewClassifier(divs, e.cfg.ExpectedMatches)
	if err := c.Covers(snap.Matches); err != nil {
		return nil, e.fail(err)
	}
	return c, nil
}

func (e *Engine) prepare(snap *model.Snapshot, policy division.Policy) (*prepared, error) {
	c, err := e.classify(snap)
	if err != nil {
		return nil, err
	}
	set, err := division.Select(c, policy)
	if err != nil {
		return nil, e.fail(err)
	}
	for _, id := range c.IDs() {
		cl, _ := c.Classify(id)
		e.log.WithFields(logrus.Fields{
			"division":    id,
			"complete":    cl.Complete,
			"anomalous":   cl.Anomalous,
			"in_progress": cl.InProgress,
			"included":    set.Contains(id),
		}).Debug("division classified")
	}
	t, err := replay.Build(snap, set)
	if err != nil {
		return nil, e.fail(err)
	}
	e.log.WithFields(logrus.Fields{
		"policy":    policy.String(),
		"divisions": set.Len(),
		"events":    len(t),
	}).Info("timeline built")
	return &prepared{classifier: c, set: set, timeline: t}, nil
}

// Run computes ratings, standings, palmares, streaks and the filtered bonus
// ledger under policy.
func (e *Engine) Run(snap *model.Snapshot, policy division.Policy) (*Report, error) {
	p, err := e.prepare(snap, policy)
	if err != nil {
		return nil, err
	}

	ratings, err := rating.Replay(e.cfg, p.timeline)
	if err != nil {
		return nil, e.fail(fmt.Errorf("replay ratings: %w", err))
	}
	table, err := standings.NewEngine(e.cfg).Compute(p.classifier, p.set, p.timeline)
	if err != nil {
		return nil, e.fail(fmt.Errorf("compute standings: %w", err))
	}
	ledger, err := bonus.Replay(e.cfg, p.timeline, bonus.Scope{Mode: bonus.ScopeFiltered, Policy: policy})
	if err != nil {
		return nil, e.fail(fmt.Errorf("replay bonuses: %w", err))
	}

	rep := &Report{
		Policy:    policy,
		Divisions: e.describe(p.classifier, p.set),
		Matches:   ratings.Matches,
		Ratings:   ratings,
		Standings: table,
		Streaks:   streaks.Compute(p.timeline),
		Bonuses:   ledger,
	}
	e.log.WithFields(logrus.Fields{
		"matches":      rep.Matches,
		"participants": len(ratings.Rows),
		"drift":        ratings.Drift,
	}).Info("replay complete")
	return rep, nil
}

// HeadToHead returns the record of a against b under policy.
func (e *Engine) HeadToHead(snap *model.Snapshot, a, b string, policy division.Policy) (*h2h.Report, error) {
	p, err := e.prepare(snap, policy)
	if err != nil {
		return nil, err
	}
	rep, err := h2h.Compute(p.timeline, a, b)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Matrix returns the head-to-head record of every pair that met under policy.
func (e *Engine) Matrix(snap *model.Snapshot, policy division.Policy) ([]h2h.Report, error) {
	p, err := e.prepare(snap, policy)
	if err != nil {
		return nil, err
	}
	return h2h.Matrix(p.timeline), nil
}

// Bonuses replays bonus usage over the divisions of scope.
func (e *Engine) Bonuses(snap *model.Snapshot, scope bonus.Scope) (*bonus.Ledger, error) {
	c, err := e.classify(snap)
	if err != nil {
		return nil, err
	}
	set, err := scope.Select(c)
	if err != nil {
		return nil, e.fail(err)
	}
	t, err := replay.Build(snap, set)
	if err != nil {
		return nil, e.fail(err)
	}
	ledger, err := bonus.Replay(e.cfg, t, scope)
	if err != nil {
		return nil, e.fail(fmt.Errorf("replay bonuses: %w", err))
	}
	e.log.WithFields(logrus.Fields{
		"scope":     scope.Mode.String(),
		"divisions": set.Len(),
		"rows":      len(ledger.Rows),
	}).Info("bonus ledger built")
	return ledger, nil
}

// Divisions classifies every division and marks those policy includes.
func (e *Engine) Divisions(snap *model.Snapshot, policy division.Policy) ([]DivisionInfo, error) {
	c, err := e.classify(snap)
	if err != nil {
		return nil, err
	}
	set, err := division.Select(c, policy)
	if err != nil {
		return nil, e.fail(err)
	}
	return e.describe(c, set), nil
}

func (e *Engine) describe(c *division.Classifier, set division.Set) []DivisionInfo {
	var out []DivisionInfo
	for _, id := range c.IDs() {
		d, _ := c.Division(id)
		cl, err := c.Classify(id)
		if err != nil {
			continue
		}
		if d.ExpectedMatches <= 0 {
			d.ExpectedMatches = e.cfg.ExpectedMatches
		}
		out = append(out, DivisionInfo{
			ID:         id,
			Period:     d.Period,
			MatchCount: d.MatchCount,
			Expected:   d.ExpectedMatches,
			Complete:   cl.Complete,
			Anomalous:  cl.Anomalous,
			InProgress: cl.InProgress,
			Included:   set.Contains(id),
		})
	}
	return out
}

// fail logs typed errors with the identifiers that locate the record.
func (e *Engine) fail(err error) error {
	var de *model.DataIntegrityError
	var ce *model.ConfigurationError
	switch {
	case errors.As(err, &de):
		e.log.WithError(err).WithFields(logrus.Fields{
			"kind":        string(de.Kind),
			"division":    de.DivisionID,
			"match":       de.MatchID,
			"team":        de.TeamID,
			"participant": de.ParticipantID,
		}).Error("data integrity failure")
	case errors.As(err, &ce):
		e.log.WithError(err).WithFields(logrus.Fields{
			"field":    ce.Field,
			"division": ce.DivisionID,
		}).Error("configuration failure")
	}
	return err
}
