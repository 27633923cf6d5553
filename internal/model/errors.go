package model

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports missing or invalid operator-supplied configuration:
// division metadata, curated seasonal flags, bonus catalog entries or filter policy.
type ConfigurationError struct {
	Field      string
	DivisionID string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Field != "" {
		fmt.Fprintf(&b, " [%s]", e.Field)
	}
	if e.DivisionID != "" {
		fmt.Fprintf(&b, " division=%s", e.DivisionID)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// IntegrityKind classifies a DataIntegrityError.
type IntegrityKind string

const (
	IntegrityUnresolvedTeam     IntegrityKind = "unresolved-team"
	IntegrityDegenerateDivision IntegrityKind = "degenerate-division"
	IntegrityChampionIsLast     IntegrityKind = "champion-is-last"
	IntegrityNegativeStock      IntegrityKind = "negative-stock"
	IntegrityRatingDrift        IntegrityKind = "rating-drift"
	IntegrityScoreMissing       IntegrityKind = "score-missing"
)

// DataIntegrityError reports upstream data corruption detected while replaying.
// The identifier fields locate the offending record; unused ones are empty.
type DataIntegrityError struct {
	Kind          IntegrityKind
	DivisionID    string
	MatchID       string
	TeamID        string
	ParticipantID string
	Detail        string
}

func (e *DataIntegrityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "data integrity error (%s)", e.Kind)
	for _, kv := range [][2]string{
		{"division", e.DivisionID},
		{"match", e.MatchID},
		{"team", e.TeamID},
		{"participant", e.ParticipantID},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, " %s=%s", kv[0], kv[1])
		}
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// IsConfiguration reports whether err wraps a *ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsDataIntegrity reports whether err wraps a *DataIntegrityError.
func IsDataIntegrity(err error) bool {
	var de *DataIntegrityError
	return errors.As(err, &de)
}

// IntegrityKindOf returns the kind of the wrapped *DataIntegrityError, or "".
func IntegrityKindOf(err error) IntegrityKind {
	var de *DataIntegrityError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
