package people_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/people"
)

const mapping = `
persons:
  pablo:
    display_name: Pablo
    aliases:
      - "Real Pablo FC"
      - "Les Étoiles d'Argent"
  jules:
    display_name: Jules
    aliases:
      - "Olympique Jules"
  nico:
    aliases: []
`

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Real Pablo FC", "real pablo fc"},
		{"  REAL   pablo\tfc ", "real pablo fc"},
		{"Les Étoiles d'Argent", "les etoiles d argent"},
		{"les-etoiles_d’argent", "les etoiles d argent"},
		{"A.S. Saint-Étienne", "a s saint etienne"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, people.Normalize(tt.in))
		})
	}
}

func TestParseAndResolve(t *testing.T) {
	m, err := people.Parse([]byte(mapping))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	for _, name := range []string{"pablo", "PABLO", "real pablo fc", "les etoiles d'argent", "LES ÉTOILES D’ARGENT"} {
		p, ok := m.Resolve(name)
		require.True(t, ok, name)
		assert.Equal(t, "pablo", p.ID, name)
	}

	p, ok := m.Resolve("nico")
	require.True(t, ok)
	assert.Equal(t, "nico", p.DisplayName)

	_, ok = m.Resolve("Unknown United")
	assert.False(t, ok)
}

func TestParseDuplicateAlias(t *testing.T) {
	_, err := people.Parse([]byte(`
persons:
  a:
    aliases: ["Shared FC"]
  b:
    aliases: ["shared-fc"]
`))
	require.Error(t, err)
	assert.True(t, model.IsConfiguration(err))
}

func TestParseSameAliasTwiceForOnePerson(t *testing.T) {
	_, err := people.Parse([]byte(`
persons:
  a:
    display_name: Shared FC
    aliases: ["Shared FC", "shared fc"]
`))
	assert.NoError(t, err)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := people.Parse([]byte("persons: [unclosed"))
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	m, err := people.Parse([]byte(mapping))
	require.NoError(t, err)
	assert.Equal(t, "Jules", m.DisplayName("jules"))
	assert.Equal(t, "ghost", m.DisplayName("ghost"))

	var nilMapping *people.Mapping
	assert.Equal(t, "jules", nilMapping.DisplayName("jules"))
}

func TestEnrich(t *testing.T) {
	m, err := people.Parse([]byte(mapping))
	require.NoError(t, err)

	teams := []model.Team{
		{ID: "t1", Name: "Olympique Jules"},
		{ID: "t2", Name: "real_pablo   FC"},
		{ID: "t3", Name: "Nobody's Team"},
		{ID: "t4", Name: "Olympique Jules", ParticipantID: "kept"},
	}
	mapped, unmapped := m.Enrich(teams)
	assert.Equal(t, 3, mapped)
	assert.Equal(t, []string{"Nobody's Team"}, unmapped)
	assert.Equal(t, "jules", teams[0].ParticipantID)
	assert.Equal(t, "pablo", teams[1].ParticipantID)
	assert.Empty(t, teams[2].ParticipantID)
	assert.Equal(t, "kept", teams[3].ParticipantID)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mapping), 0o600))

	m, err := people.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	_, err = people.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
