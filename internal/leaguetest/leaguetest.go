// Package leaguetest generates deterministic synthetic league histories.
package leaguetest

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/pable/go-mpg-history/internal/config"
	"github.com/pable/go-mpg-history/internal/model"
)

// TeamsPerDivision and Rounds describe the nominal double round-robin.
const (
	TeamsPerDivision = 8
	Rounds           = 2 * (TeamsPerDivision - 1)
	MatchesPerRound  = TeamsPerDivision / 2
	FullSeason       = Rounds * MatchesPerRound
)

// DivisionSpec describes one generated division.
type DivisionSpec struct {
	ID     string
	Period int

	// Fixtures is the number of stored matches (0 = full season).
	Fixtures int
	// Scored is how many of the fixtures carry scores (-1 = all).
	Scored int

	Anomalous  bool
	InProgress bool
}

// Generator produces leagues from a fixed seed.
type Generator struct {
	faker        *gofakeit.Faker
	seed         uint64
	participants []string
	catalog      []config.BonusEntry
}

// New returns a generator with a pool of ten participants.
func New(seed uint64) *Generator {
	g := &Generator{
		faker:   gofakeit.New(seed),
		seed:    seed,
		catalog: config.DefaultCatalog(),
	}
	for i := 1; i <= 10; i++ {
		g.participants = append(g.participants, fmt.Sprintf("p%02d", i))
	}
	return g
}

// Participants returns the participant pool.
func (g *Generator) Participants() []string {
	out := make([]string, len(g.participants))
	copy(out, g.participants)
	return out
}

// Division generates the metadata, teams and matches of one division.
// Bonus usage never exceeds the catalog stock.
func (g *Generator) Division(spec DivisionSpec) (model.Division, []model.Team, []model.Match) {
	fixtures := spec.Fixtures
	if fixtures <= 0 || fixtures > FullSeason {
		fixtures = FullSeason
	}
	scored := spec.Scored
	if scored < 0 || scored > fixtures {
		scored = fixtures
	}

	pool := g.Participants()
	g.faker.ShuffleAnySlice(pool)
	members := pool[:TeamsPerDivision]

	teams := make([]model.Team, TeamsPerDivision)
	for i, p := range members {
		teams[i] = model.Team{
			ID:            fmt.Sprintf("%s_team_%d", spec.ID, i+1),
			DivisionID:    spec.ID,
			Name:          fmt.Sprintf("%s %s", g.faker.City(), g.faker.LastName()),
			ParticipantID: p,
		}
	}

	stock := make(map[string]map[string]int, TeamsPerDivision)
	for _, t := range teams {
		s := make(map[string]int)
		for _, e := range g.catalog {
			if e.Consumable {
				s[e.Key] = e.Stock
			}
		}
		stock[t.ID] = s
	}

	var matches []model.Match
	for _, f := range Schedule(TeamsPerDivision) {
		if len(matches) == fixtures {
			break
		}
		home, away := teams[f.Home], teams[f.Away]
		m := model.Match{
			ID:          fmt.Sprintf("%s_gw%02d_%d", spec.ID, f.Round, f.Slot),
			Period:      spec.Period,
			DivisionID:  spec.ID,
			Round:       f.Round,
			HomeTeamID:  home.ID,
			AwayTeamID:  away.ID,
			FinalResult: 1, // upstream placeholder
		}
		if len(matches) < scored {
			m.HomeScore = model.Score(float64(g.faker.Number(0, 4)))
			m.AwayScore = model.Score(float64(g.faker.Number(0, 4)))
			m.Finalized = true
			m.HomeBonuses = g.pickBonuses(stock[home.ID])
			m.AwayBonuses = g.pickBonuses(stock[away.ID])
		}
		matches = append(matches, m)
	}

	div := model.Division{
		ID:              spec.ID,
		Period:          spec.Period,
		Anomalous:       spec.Anomalous,
		InProgress:      spec.InProgress,
		ExpectedMatches: FullSeason,
		MatchCount:      scored,
		RoundMin:        1,
		RoundMax:        matches[len(matches)-1].Round,
	}
	return div, teams, matches
}

func (g *Generator) pickBonuses(left map[string]int) model.BonusUsage {
	usage := model.BonusUsage{}
	if g.faker.Number(0, 3) == 0 {
		usage["captain"] = 1
	}
	if g.faker.Number(0, 2) == 0 {
		var avail []string
		for _, e := range g.catalog {
			if e.Consumable && left[e.Key] > 0 {
				avail = append(avail, e.Key)
			}
		}
		if len(avail) > 0 {
			k := avail[g.faker.Number(0, len(avail)-1)]
			left[k]--
			usage[k] = 1
		}
	}
	if len(usage) == 0 {
		return nil
	}
	return usage
}

// League generates a snapshot from the given division specs.
func (g *Generator) League(specs ...DivisionSpec) *model.Snapshot {
	snap := &model.Snapshot{}
	for _, s := range specs {
		d, teams, matches := g.Division(s)
		snap.Divisions = append(snap.Divisions, d)
		snap.Teams = append(snap.Teams, teams...)
		snap.Matches = append(snap.Matches, matches...)
	}
	return snap
}

// HistorySpecs returns complete full-season divisions, two per period from
// 2014, followed by one anomalous division of 20 matches and one in-progress
// division with 8 of its 56 fixtures scored.
func HistorySpecs(complete int) []DivisionSpec {
	var specs []DivisionSpec
	period := 2014
	for i := 0; i < complete; i++ {
		specs = append(specs, DivisionSpec{
			ID:     fmt.Sprintf("mpg_division_%d_%d", period, i%2+1),
			Period: period,
			Scored: -1,
		})
		if i%2 == 1 {
			period++
		}
	}
	specs = append(specs,
		DivisionSpec{ID: fmt.Sprintf("mpg_division_%d_x", period), Period: period, Fixtures: 20, Scored: -1, Anomalous: true},
		DivisionSpec{ID: fmt.Sprintf("mpg_division_%d_z", period+1), Period: period + 1, Scored: 8, InProgress: true},
	)
	return specs
}

// History generates HistorySpecs(complete).
func (g *Generator) History(complete int) *model.Snapshot {
	return g.League(HistorySpecs(complete)...)
}

// Fixture is one pairing of the schedule, by team index.
type Fixture struct {
	Round int
	Slot  int
	Home  int
	Away  int
}

// Schedule returns a double round-robin for n teams (n even) using the
// circle method: the second half mirrors the first with sides swapped.
func Schedule(n int) []Fixture {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	half := n - 1
	var first []Fixture
	for r := 0; r < half; r++ {
		for s := 0; s < n/2; s++ {
			a, b := idx[s], idx[n-1-s]
			if r%2 == 1 && s == 0 {
				a, b = b, a
			}
			first = append(first, Fixture{Round: r + 1, Slot: s + 1, Home: a, Away: b})
		}
		// rotate all but the first
		last := idx[n-1]
		copy(idx[2:], idx[1:n-1])
		idx[1] = last
	}
	out := make([]Fixture, 0, 2*len(first))
	out = append(out, first...)
	for _, f := range first {
		out = append(out, Fixture{Round: f.Round + half, Slot: f.Slot, Home: f.Away, Away: f.Home})
	}
	return out
}
