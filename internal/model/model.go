package model

// Outcome is the three-way result of a match, derived from its scores.
type Outcome int

const (
	OutcomeUnplayed Outcome = 0
	OutcomeHomeWin  Outcome = 1
	OutcomeDraw     Outcome = 2
	OutcomeAwayWin  Outcome = 3
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHomeWin:
		return "H"
	case OutcomeDraw:
		return "D"
	case OutcomeAwayWin:
		return "A"
	default:
		return "-"
	}
}

// MarshalText encodes the outcome as its short label.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Played reports whether the outcome corresponds to a scored match.
func (o Outcome) Played() bool {
	return o != OutcomeUnplayed
}

// Result is a single match outcome seen from one participant.
type Result int

const (
	ResultLoss Result = iota
	ResultDraw
	ResultWin
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "W"
	case ResultDraw:
		return "D"
	default:
		return "L"
	}
}

// ForHome converts an outcome into the home side's result.
func (o Outcome) ForHome() Result {
	switch o {
	case OutcomeHomeWin:
		return ResultWin
	case OutcomeDraw:
		return ResultDraw
	default:
		return ResultLoss
	}
}

// ForAway converts an outcome into the away side's result.
func (o Outcome) ForAway() Result {
	switch o {
	case OutcomeAwayWin:
		return ResultWin
	case OutcomeDraw:
		return ResultDraw
	default:
		return ResultLoss
	}
}

// BonusUsage maps a bonus category key (e.g. "boostOnePlayer") to the number
// of times it was played in one match by one side.
type BonusUsage map[string]int

// ---- Persisted records (read-only for analytics) ----

// Match is one fixture between two teams of the same division.
type Match struct {
	ID         string
	Period     int // IRL season year
	DivisionID string
	Round      int // game week

	HomeTeamID string
	AwayTeamID string

	// Nil until the match has been scored.
	HomeScore *float64
	AwayScore *float64

	HomeBonuses BonusUsage
	AwayBonuses BonusUsage

	Finalized bool

	// FinalResult is the label supplied by the upstream API. It is known to be
	// a constant placeholder and is never consulted by analytics.
	FinalResult int
}

// Scored reports whether both scores are present.
func (m *Match) Scored() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Division is one round-robin instance (an MPG "season").
type Division struct {
	ID     string
	Period int

	// Curated by the operator, never derived from match data.
	Anomalous  bool
	InProgress bool

	ExpectedMatches int
	MatchCount      int
	RoundMin        int
	RoundMax        int
	Notes           string
}

// Team is a participant's entry in one division. The display name changes
// from one period to the next; ParticipantID is the stable identity.
type Team struct {
	ID            string
	DivisionID    string
	Name          string
	ParticipantID string // empty when unresolved
}

// Snapshot is a point-in-time, consistent view of the store.
type Snapshot struct {
	Divisions []Division
	Teams     []Team
	Matches   []Match
}

// DivisionByID returns the division metadata for id, or nil.
func (s *Snapshot) DivisionByID(id string) *Division {
	for i := range s.Divisions {
		if s.Divisions[i].ID == id {
			return &s.Divisions[i]
		}
	}
	return nil
}

// Score returns a pointer to v, for building matches in code.
func Score(v float64) *float64 {
	return &v
}
