package leaguetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleIsDoubleRoundRobin(t *testing.T) {
	fixtures := Schedule(TeamsPerDivision)
	require.Len(t, fixtures, FullSeason)

	perRound := make(map[int]map[int]bool)
	pairs := make(map[[2]int]int)
	for _, f := range fixtures {
		require.NotEqual(t, f.Home, f.Away)
		if perRound[f.Round] == nil {
			perRound[f.Round] = make(map[int]bool)
		}
		assert.False(t, perRound[f.Round][f.Home], "team %d twice in round %d", f.Home, f.Round)
		assert.False(t, perRound[f.Round][f.Away], "team %d twice in round %d", f.Away, f.Round)
		perRound[f.Round][f.Home] = true
		perRound[f.Round][f.Away] = true
		pairs[[2]int{f.Home, f.Away}]++
	}

	assert.Len(t, perRound, Rounds)
	// every ordered pairing exactly once: each side hosts the other once
	assert.Len(t, pairs, TeamsPerDivision*(TeamsPerDivision-1))
	for p, n := range pairs {
		assert.Equal(t, 1, n, "%v", p)
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a := New(17).History(4)
	b := New(17).History(4)
	assert.Equal(t, a, b)

	c := New(18).History(4)
	assert.NotEqual(t, a.Matches, c.Matches)
}

func TestHistoryShape(t *testing.T) {
	snap := New(1).History(4)
	require.Len(t, snap.Divisions, 6)

	x, z := snap.Divisions[4], snap.Divisions[5]
	assert.True(t, x.Anomalous)
	assert.Equal(t, 20, x.MatchCount)
	assert.True(t, z.InProgress)
	assert.Equal(t, 8, z.MatchCount)
	assert.Len(t, snap.Matches, 4*FullSeason+20+FullSeason)
	assert.Len(t, snap.Teams, 6*TeamsPerDivision)
}

func TestGeneratedBonusesWithinStock(t *testing.T) {
	snap := New(3).History(2)
	used := make(map[[2]string]int)
	for _, m := range snap.Matches {
		for k, n := range m.HomeBonuses {
			used[[2]string{m.HomeTeamID, k}] += n
		}
		for k, n := range m.AwayBonuses {
			used[[2]string{m.AwayTeamID, k}] += n
		}
	}
	stock := make(map[string]int)
	for _, e := range New(3).catalog {
		if e.Consumable {
			stock[e.Key] = e.Stock
		}
	}
	for k, n := range used {
		if s, ok := stock[k[1]]; ok {
			assert.LessOrEqual(t, n, s, "%v", k)
		}
	}
}
