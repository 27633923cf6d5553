package h2h_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/h2h"
	"github.com/pable/go-mpg-history/internal/leaguetest"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/replay"
)

type R = leaguetest.Result

func build(t *testing.T, snap *model.Snapshot) replay.Timeline {
	t.Helper()
	ids := make([]string, 0, len(snap.Divisions))
	for _, d := range snap.Divisions {
		ids = append(ids, d.ID)
	}
	tl, err := replay.Build(snap, division.NewSet(ids...))
	require.NoError(t, err)
	return tl
}

func TestComputeSplitsHomeAndAway(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 4,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 2, AwayScore: 1},
		R{Round: 2, Home: "b", Away: "a", HomeScore: 3, AwayScore: 0},
		R{Round: 3, Home: "a", Away: "c", HomeScore: 1, AwayScore: 0},
		R{Round: 4, Home: "b", Away: "a", HomeScore: 1, AwayScore: 1},
		R{Round: 5, Home: "a", Away: "b", Unplayed: true},
	)
	rep, err := h2h.Compute(build(t, snap), "a", "b")
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Played())
	assert.Equal(t, 1, rep.WinsA)
	assert.Equal(t, 1, rep.Draws)
	assert.Equal(t, 1, rep.WinsB)
	assert.Equal(t, 3.0, rep.GoalsA)
	assert.Equal(t, 5.0, rep.GoalsB)
	assert.Equal(t, -2.0, rep.GoalDiff())

	assert.Equal(t, h2h.Side{Played: 1, Wins: 1, GoalsFor: 2, GoalsAgainst: 1}, rep.HomeA)
	assert.Equal(t, h2h.Side{Played: 2, Draws: 1, Losses: 1, GoalsFor: 1, GoalsAgainst: 4}, rep.AwayA)

	require.Len(t, rep.Matches, 3)
	assert.Equal(t, model.OutcomeHomeWin, rep.Matches[1].Outcome)
	assert.Equal(t, 1, rep.AwayA.Losses)
	assert.Equal(t, "b", rep.Matches[1].Home)
}

func TestComputeIsSymmetric(t *testing.T) {
	tl := build(t, leaguetest.New(5).History(6))
	ps := tl.Participants()
	for i := range ps {
		for j := range ps {
			if i == j {
				continue
			}
			ab, err := h2h.Compute(tl, ps[i], ps[j])
			require.NoError(t, err)
			ba, err := h2h.Compute(tl, ps[j], ps[i])
			require.NoError(t, err)

			assert.Equal(t, ab.WinsA, ba.WinsB, "%s vs %s", ps[i], ps[j])
			assert.Equal(t, ab.WinsB, ba.WinsA, "%s vs %s", ps[i], ps[j])
			assert.Equal(t, ab.Draws, ba.Draws)
			assert.Equal(t, ab.GoalsA, ba.GoalsB)
			assert.Equal(t, ab.HomeA.Wins, ba.AwayA.Losses)
			assert.Equal(t, len(ab.Matches), len(ba.Matches))
		}
	}
}

func TestComputeSameParticipant(t *testing.T) {
	_, err := h2h.Compute(nil, "a", "a")
	assert.ErrorIs(t, err, h2h.ErrSameParticipant)
}

func TestComputeNeverMet(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 2, AwayScore: 1},
	)
	rep, err := h2h.Compute(build(t, snap), "a", "z")
	require.NoError(t, err)
	assert.Zero(t, rep.Played())
	assert.NotNil(t, rep.Matches)
}

func TestMatrixCoversMetPairsOnly(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 2,
		R{Round: 1, Home: "b", Away: "a", HomeScore: 2, AwayScore: 1},
		R{Round: 2, Home: "c", Away: "b", HomeScore: 0, AwayScore: 0},
	)
	reps := h2h.Matrix(build(t, snap))
	require.Len(t, reps, 2)
	assert.Equal(t, [2]string{"a", "b"}, [2]string{reps[0].A, reps[0].B})
	assert.Equal(t, [2]string{"b", "c"}, [2]string{reps[1].A, reps[1].B})
	assert.Equal(t, 1, reps[0].WinsB)
}

func TestMeetingOutcomeEncodesAsLabel(t *testing.T) {
	b, err := json.Marshal(h2h.Meeting{Outcome: model.OutcomeDraw})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"outcome":"D"`)
}
