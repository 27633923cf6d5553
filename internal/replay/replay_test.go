package replay_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/leaguetest"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/replay"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name       string
		home, away *float64
		want       model.Outcome
	}{
		{"home win", model.Score(2), model.Score(1), model.OutcomeHomeWin},
		{"away win", model.Score(0), model.Score(3), model.OutcomeAwayWin},
		{"goalless draw", model.Score(0), model.Score(0), model.OutcomeDraw},
		{"scoring draw", model.Score(2.5), model.Score(2.5), model.OutcomeDraw},
		{"home missing", nil, model.Score(1), model.OutcomeUnplayed},
		{"away missing", model.Score(1), nil, model.OutcomeUnplayed},
		{"both missing", nil, nil, model.OutcomeUnplayed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, replay.Derive(tt.home, tt.away))
		})
	}
}

func TestDeriveEqualScoresAlwaysDraw(t *testing.T) {
	for s := 0.0; s <= 10; s += 0.5 {
		assert.Equal(t, model.OutcomeDraw, replay.Derive(model.Score(s), model.Score(s)), "score %g", s)
	}
}

func TestDeriveIgnoresFinalResultLabel(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 3,
		leaguetest.Result{Round: 1, Home: "a", Away: "b", HomeScore: 0, AwayScore: 2},
		leaguetest.Result{Round: 1, Home: "c", Away: "a", HomeScore: 1, AwayScore: 1},
		leaguetest.Result{Round: 2, Home: "b", Away: "c", HomeScore: 3, AwayScore: 0},
	)
	for i := range snap.Matches {
		snap.Matches[i].FinalResult = 1 // constant upstream placeholder
	}
	tl, err := replay.Build(snap, division.NewSet("d1"))
	require.NoError(t, err)
	got := []model.Outcome{tl[0].Outcome, tl[1].Outcome, tl[2].Outcome}
	assert.Equal(t, []model.Outcome{model.OutcomeAwayWin, model.OutcomeDraw, model.OutcomeHomeWin}, got)
}

func TestOrderIsTotalAndInputIndependent(t *testing.T) {
	matches := []model.Match{
		{ID: "m3", Period: 2021, DivisionID: "a", Round: 1},
		{ID: "m1", Period: 2020, DivisionID: "b", Round: 2},
		{ID: "m2", Period: 2020, DivisionID: "b", Round: 1},
		{ID: "m0", Period: 2020, DivisionID: "a", Round: 5},
		{ID: "m5", Period: 2020, DivisionID: "b", Round: 1},
		{ID: "m4", Period: 2020, DivisionID: "b", Round: 1},
	}
	want := []string{"m0", "m2", "m4", "m5", "m1", "m3"}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]model.Match, len(matches))
		copy(shuffled, matches)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		ordered := replay.Order(shuffled)
		ids := make([]string, len(ordered))
		for j, m := range ordered {
			ids[j] = m.ID
		}
		require.Equal(t, want, ids)
	}
}

func TestOrderDoesNotModifyInput(t *testing.T) {
	in := []model.Match{{ID: "b", Period: 2}, {ID: "a", Period: 1}}
	_ = replay.Order(in)
	assert.Equal(t, "b", in[0].ID)
}

func TestBuildFiltersToSet(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		leaguetest.Result{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0},
	)
	leaguetest.AddDivision(snap, "d2", 2020, 1,
		leaguetest.Result{Round: 1, Home: "a", Away: "c", HomeScore: 1, AwayScore: 0},
	)

	tl, err := replay.Build(snap, division.NewSet("d2"))
	require.NoError(t, err)
	require.Len(t, tl, 1)
	assert.Equal(t, "d2", tl[0].Match.DivisionID)
	assert.Equal(t, "a", tl[0].Home)
	assert.Equal(t, "c", tl[0].Away)
}

func TestBuildUnresolvedTeamInIncludedDivision(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		leaguetest.Result{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0},
	)
	snap.Teams[1].ParticipantID = ""

	_, err := replay.Build(snap, division.NewSet("d1"))
	require.Error(t, err)
	assert.Equal(t, model.IntegrityUnresolvedTeam, model.IntegrityKindOf(err))

	var de *model.DataIntegrityError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "d1", de.DivisionID)
	assert.Equal(t, "d1_b", de.TeamID)
}

func TestBuildUnresolvedTeamInExcludedDivisionIsIgnored(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		leaguetest.Result{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0},
	)
	leaguetest.AddDivision(snap, "d2", 2021, 1,
		leaguetest.Result{Round: 1, Home: "a", Away: "c", HomeScore: 1, AwayScore: 0},
	)
	snap.Teams[len(snap.Teams)-1].ParticipantID = ""

	_, err := replay.Build(snap, division.NewSet("d1"))
	assert.NoError(t, err)
}

func TestBuildFinalizedWithoutScore(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		leaguetest.Result{Round: 1, Home: "a", Away: "b", Unplayed: true},
	)
	snap.Matches[0].Finalized = true

	_, err := replay.Build(snap, division.NewSet("d1"))
	assert.Equal(t, model.IntegrityScoreMissing, model.IntegrityKindOf(err))
}

func TestBuildSameParticipantBothSides(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		leaguetest.Result{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0},
	)
	snap.Teams[1].ParticipantID = "a"

	_, err := replay.Build(snap, division.NewSet("d1"))
	assert.Equal(t, model.IntegrityUnresolvedTeam, model.IntegrityKindOf(err))
}

func TestTimelineHelpers(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 2,
		leaguetest.Result{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0},
		leaguetest.Result{Round: 2, Home: "b", Away: "a", Unplayed: true},
		leaguetest.Result{Round: 2, Home: "c", Away: "a", HomeScore: 2, AwayScore: 2},
	)
	tl, err := replay.Build(snap, division.NewSet("d1"))
	require.NoError(t, err)

	assert.Len(t, tl.Played(), 2)
	assert.Len(t, tl.Between("a", "b"), 2)
	assert.Len(t, tl.Between("b", "a"), 2)
	assert.Equal(t, []string{"a", "b", "c"}, tl.Participants())
	assert.Equal(t, []string{"d1"}, tl.DivisionIDs())
	assert.Equal(t, 0.0, tl[1].HomeGoals())
}
