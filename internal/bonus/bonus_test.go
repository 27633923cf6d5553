package bonus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-mpg-history/internal/bonus"
	"github.com/pable/go-mpg-history/internal/config"
	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/leaguetest"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/replay"
)

type R = leaguetest.Result

func replayAll(t *testing.T, snap *model.Snapshot, scope bonus.Scope) (*bonus.Ledger, error) {
	t.Helper()
	c := division.NewClassifier(snap.Divisions, leaguetest.FullSeason)
	set, err := scope.Select(c)
	require.NoError(t, err)
	tl, err := replay.Build(snap, set)
	require.NoError(t, err)
	return bonus.Replay(config.Default(), tl, scope)
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.BonusUsage
	}{
		{"empty", "", nil},
		{"null", "null", nil},
		{"empty object", "{}", nil},
		{"counts", `{"boostOnePlayer":2,"mirror":1}`, model.BonusUsage{"boostOnePlayer": 2, "mirror": 1}},
		{"detail objects", `{"removeGoal":{"playerId":"mpg_player_1"},"captain":"mpg_player_2"}`, model.BonusUsage{"removeGoal": 1, "captain": 1}},
		{"null and false not played", `{"mirror":null,"fourStrikers":false,"boostAllPlayers":true}`, model.BonusUsage{"boostAllPlayers": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bonus.ParsePayload(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	for _, raw := range []string{`{"mirror":`, `[1,2]`, `"boost"`} {
		_, err := bonus.ParsePayload(raw)
		assert.Error(t, err, raw)
	}
}

func TestReplayRemainingIsStockMinusUses(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 3,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0,
			HomeBonuses: model.BonusUsage{"boostOnePlayer": 1, "captain": 1}},
		R{Round: 2, Home: "c", Away: "a", HomeScore: 1, AwayScore: 0,
			AwayBonuses: model.BonusUsage{"boostOnePlayer": 1, "mirror": 1}},
		R{Round: 3, Home: "b", Away: "c", HomeScore: 1, AwayScore: 0,
			HomeBonuses: model.BonusUsage{"nerfGoalkeeper": 1}},
	)
	ledger, err := replayAll(t, snap, bonus.Scope{Mode: bonus.ScopeAll})
	require.NoError(t, err)

	a := ledger.Remaining("d1", "a")
	assert.Equal(t, 1, a["boostOnePlayer"])
	assert.Equal(t, 0, a["mirror"])
	assert.Equal(t, 1, a["fourStrikers"])
	assert.NotContains(t, a, "captain")

	b := ledger.Remaining("d1", "b")
	assert.Equal(t, 3, b["boostOnePlayer"])
	assert.Equal(t, 0, b["nerfGoalkeeper"])

	for _, r := range ledger.Rows {
		if r.ParticipantID == "a" && r.Category == "captain" {
			assert.Equal(t, 1, r.Used)
			assert.False(t, r.Consumable)
			assert.Zero(t, r.Stock)
			assert.Zero(t, r.Remaining)
		}
	}
	assert.Len(t, ledger.Rows, 3*len(config.DefaultCatalog()))
}

func TestReplayStockIsPerDivision(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0, HomeBonuses: model.BonusUsage{"mirror": 1}},
	)
	leaguetest.AddDivision(snap, "d2", 2021, 1,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0, HomeBonuses: model.BonusUsage{"mirror": 1}},
	)
	ledger, err := replayAll(t, snap, bonus.Scope{Mode: bonus.ScopeAll})
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Remaining("d1", "a")["mirror"])
	assert.Equal(t, 0, ledger.Remaining("d2", "a")["mirror"])
}

func TestReplayOverUseIsNegativeStock(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 2,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0, HomeBonuses: model.BonusUsage{"mirror": 1}},
		R{Round: 2, Home: "b", Away: "a", HomeScore: 1, AwayScore: 0, AwayBonuses: model.BonusUsage{"mirror": 1}},
	)
	_, err := replayAll(t, snap, bonus.Scope{Mode: bonus.ScopeAll})
	require.Error(t, err)

	var de *model.DataIntegrityError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, model.IntegrityNegativeStock, de.Kind)
	assert.Equal(t, "d1_gw02_2", de.MatchID)
	assert.Equal(t, "a", de.ParticipantID)
}

func TestReplayNegativeCount(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0, HomeBonuses: model.BonusUsage{"captain": -1}},
	)
	_, err := replayAll(t, snap, bonus.Scope{Mode: bonus.ScopeAll})
	assert.Equal(t, model.IntegrityNegativeStock, model.IntegrityKindOf(err))
}

func TestReplayUnknownCategory(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 1,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0, AwayBonuses: model.BonusUsage{"teleport": 1}},
	)
	_, err := replayAll(t, snap, bonus.Scope{Mode: bonus.ScopeAll})
	require.Error(t, err)
	assert.True(t, model.IsConfiguration(err))
	assert.False(t, model.IsDataIntegrity(err))
}

func TestReplayUpToRound(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 3,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0, HomeBonuses: model.BonusUsage{"boostOnePlayer": 1}},
		R{Round: 2, Home: "a", Away: "c", HomeScore: 1, AwayScore: 0, HomeBonuses: model.BonusUsage{"boostOnePlayer": 1}},
		R{Round: 3, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0, HomeBonuses: model.BonusUsage{"boostOnePlayer": 1}},
	)
	scope := bonus.Scope{Mode: bonus.ScopeDivision, DivisionID: "d1", UpToRound: 1}
	ledger, err := replayAll(t, snap, scope)
	require.NoError(t, err)

	assert.Equal(t, 1, ledger.UpToRound)
	assert.Equal(t, 2, ledger.Remaining("d1", "a")["boostOnePlayer"])
	// c only appears after the checkpoint
	assert.Empty(t, ledger.Remaining("d1", "c"))

	scope.UpToRound = 0
	ledger, err = replayAll(t, snap, scope)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Remaining("d1", "a")["boostOnePlayer"])
}

func TestReplayUnplayedPayloads(t *testing.T) {
	snap := leaguetest.Fixed("d1", 2020, 2,
		R{Round: 1, Home: "a", Away: "b", HomeScore: 1, AwayScore: 0},
		R{Round: 2, Home: "b", Away: "a", Unplayed: true, AwayBonuses: model.BonusUsage{"mirror": 1}},
	)
	ledger, err := replayAll(t, snap, bonus.Scope{Mode: bonus.ScopeAll})
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.Remaining("d1", "a")["mirror"])

	ledger, err = replayAll(t, snap, bonus.Scope{Mode: bonus.ScopeAll, IncludeUnplayed: true})
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Remaining("d1", "a")["mirror"])
}

func TestScopeSelect(t *testing.T) {
	snap := leaguetest.New(2).History(2)
	c := division.NewClassifier(snap.Divisions, leaguetest.FullSeason)

	all, err := bonus.Scope{Mode: bonus.ScopeAll}.Select(c)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Len())

	filtered, err := bonus.Scope{Mode: bonus.ScopeFiltered}.Select(c)
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Len())

	one, err := bonus.Scope{Mode: bonus.ScopeDivision, DivisionID: "mpg_division_2016_z"}.Select(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"mpg_division_2016_z"}, one.IDs())

	_, err = bonus.Scope{Mode: bonus.ScopeDivision, DivisionID: "missing"}.Select(c)
	assert.True(t, model.IsConfiguration(err))
}

func TestReplayGeneratedLeagueNeverNegative(t *testing.T) {
	snap := leaguetest.New(11).History(6)
	ledger, err := replayAll(t, snap, bonus.Scope{Mode: bonus.ScopeAll})
	require.NoError(t, err)
	for _, r := range ledger.Rows {
		assert.GreaterOrEqual(t, r.Remaining, 0, "%s %s %s", r.DivisionID, r.ParticipantID, r.Category)
		if r.Consumable {
			assert.Equal(t, r.Stock-r.Used, r.Remaining)
		}
	}
}
