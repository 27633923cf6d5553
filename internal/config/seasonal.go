package config

import (
	"fmt"
	"strings"

	"github.com/pable/go-mpg-history/internal/model"
)

// Apply stamps the curated flags onto division metadata and returns a copy.
//
// The anomalous flag is additive: a division flagged in storage stays flagged.
// When InProgressDivision is set it replaces any stored in-progress flag,
// otherwise the stored flags are kept. Every curated id must reference a
// division present in divs, and at most one division may end up in progress.
func (s Seasonal) Apply(divs []model.Division) ([]model.Division, error) {
	known := make(map[string]struct{}, len(divs))
	for _, d := range divs {
		if d.ID == "" {
			return nil, &model.ConfigurationError{Field: "division_id", Reason: "division metadata row without id"}
		}
		known[d.ID] = struct{}{}
	}

	anomalous := make(map[string]struct{}, len(s.AnomalousDivisions))
	for _, id := range s.AnomalousDivisions {
		if _, ok := known[id]; !ok {
			return nil, &model.ConfigurationError{
				Field:      "seasonal.anomalous_divisions",
				DivisionID: id,
				Reason:     "references a division absent from metadata",
			}
		}
		anomalous[id] = struct{}{}
	}
	if s.InProgressDivision != "" {
		if _, ok := known[s.InProgressDivision]; !ok {
			return nil, &model.ConfigurationError{
				Field:      "seasonal.in_progress_division",
				DivisionID: s.InProgressDivision,
				Reason:     "references a division absent from metadata",
			}
		}
	}

	out := make([]model.Division, len(divs))
	var current []string
	for i, d := range divs {
		if _, ok := anomalous[d.ID]; ok {
			d.Anomalous = true
		}
		if s.InProgressDivision != "" {
			d.InProgress = d.ID == s.InProgressDivision
		}
		if d.InProgress {
			current = append(current, d.ID)
		}
		out[i] = d
	}
	if len(current) > 1 {
		return nil, &model.ConfigurationError{
			Field:  "seasonal.in_progress_division",
			Reason: fmt.Sprintf("%d divisions flagged in progress: %s", len(current), strings.Join(current, ", ")),
		}
	}
	return out, nil
}
