package division_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/leaguetest"
	"github.com/pable/go-mpg-history/internal/model"
)

func history(t *testing.T) *division.Classifier {
	t.Helper()
	snap := leaguetest.New(1).History(18)
	return division.NewClassifier(snap.Divisions, leaguetest.FullSeason)
}

func TestSelectDefaultPolicy(t *testing.T) {
	c := history(t)
	set, err := division.Select(c, division.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, 18, set.Len())
	assert.False(t, set.Contains("mpg_division_2023_x"), "anomalous division included")
	assert.False(t, set.Contains("mpg_division_2024_z"), "in-progress division included")
}

func TestSelectInProgressAddsExactlyOne(t *testing.T) {
	c := history(t)
	base, err := division.Select(c, division.DefaultPolicy())
	require.NoError(t, err)
	wide, err := division.Select(c, division.Policy{IncludeInProgress: true})
	require.NoError(t, err)

	assert.Equal(t, base.Len()+1, wide.Len())
	assert.True(t, wide.Contains("mpg_division_2024_z"))
	for _, id := range base.IDs() {
		assert.True(t, wide.Contains(id), id)
	}
}

func TestSelectIdsOrderedByPeriod(t *testing.T) {
	c := history(t)
	set, err := division.Select(c, division.Policy{IncludeAnomalous: true, IncludeIncomplete: true, IncludeInProgress: true})
	require.NoError(t, err)

	ids := set.IDs()
	require.Len(t, ids, 20)
	assert.Equal(t, "mpg_division_2014_1", ids[0])
	assert.Equal(t, "mpg_division_2014_2", ids[1])
	assert.Equal(t, "mpg_division_2024_z", ids[len(ids)-1])
}

func TestPolicyAdmits(t *testing.T) {
	complete := division.Class{Complete: true}
	incomplete := division.Class{}
	anomalous := division.Class{Anomalous: true}
	current := division.Class{InProgress: true}

	tests := []struct {
		name   string
		policy division.Policy
		class  division.Class
		want   bool
	}{
		{"default complete", division.Policy{}, complete, true},
		{"default incomplete", division.Policy{}, incomplete, false},
		{"default anomalous", division.Policy{}, anomalous, false},
		{"default in progress", division.Policy{}, current, false},
		{"incomplete switch", division.Policy{IncludeIncomplete: true}, incomplete, true},
		{"incomplete switch leaves in progress out", division.Policy{IncludeIncomplete: true}, current, false},
		{"anomalous switch needs incomplete too", division.Policy{IncludeAnomalous: true}, anomalous, false},
		{"anomalous and incomplete", division.Policy{IncludeAnomalous: true, IncludeIncomplete: true}, anomalous, true},
		{"anomalous complete", division.Policy{IncludeAnomalous: true}, division.Class{Anomalous: true, Complete: true}, true},
		{"in progress switch", division.Policy{IncludeInProgress: true}, current, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Admits(tt.class))
		})
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "default", division.DefaultPolicy().String())
	assert.Equal(t, "+anomalous+in-progress", division.Policy{IncludeAnomalous: true, IncludeInProgress: true}.String())
}

func TestClassifyUnknownDivision(t *testing.T) {
	c := division.NewClassifier(nil, 56)
	_, err := c.Classify("nope")
	require.Error(t, err)
	assert.True(t, model.IsConfiguration(err))
}

func TestCoversReportsMatchesWithoutMetadata(t *testing.T) {
	c := division.NewClassifier([]model.Division{{ID: "a", Period: 2020, MatchCount: 1}}, 56)
	require.NoError(t, c.Covers([]model.Match{{ID: "m1", DivisionID: "a"}}))

	err := c.Covers([]model.Match{
		{ID: "m1", DivisionID: "a"},
		{ID: "m2", DivisionID: "z"},
		{ID: "m3", DivisionID: "b"},
	})
	var ce *model.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "division", ce.Field)
	assert.Equal(t, "b", ce.DivisionID)
}

func TestClassifyFallsBackToDefaultExpected(t *testing.T) {
	c := division.NewClassifier([]model.Division{
		{ID: "a", Period: 2020, MatchCount: 56},
		{ID: "b", Period: 2020, MatchCount: 56, ExpectedMatches: 60},
	}, 56)

	cl, err := c.Classify("a")
	require.NoError(t, err)
	assert.True(t, cl.Complete)

	cl, err = c.Classify("b")
	require.NoError(t, err)
	assert.False(t, cl.Complete)
}

func TestSelectWithoutExpectedCount(t *testing.T) {
	c := division.NewClassifier([]model.Division{{ID: "a", Period: 2020, MatchCount: 10}}, 0)
	_, err := division.Select(c, division.DefaultPolicy())
	require.Error(t, err)

	var ce *model.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "expected_matches", ce.Field)
	assert.Equal(t, "a", ce.DivisionID)
}

func TestNewSetDropsDuplicates(t *testing.T) {
	s := division.NewSet("b", "a", "b")
	assert.Equal(t, []string{"b", "a"}, s.IDs())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
}
