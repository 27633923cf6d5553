// Package people resolves team display names to stable participant ids
// through the operator-maintained alias mapping file.
package people

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/pable/go-mpg-history/internal/model"
)

// Person is one entry of the mapping file.
type Person struct {
	ID          string   `yaml:"-"`
	DisplayName string   `yaml:"display_name"`
	Aliases     []string `yaml:"aliases"`
}

type file struct {
	Persons map[string]Person `yaml:"persons"`
}

// Mapping indexes every normalized alias, display name and id.
type Mapping struct {
	persons map[string]Person
	index   map[string]string // normalized name -> person id
}

var separators = strings.NewReplacer(
	"'", " ", "’", " ", "‘", " ", "`", " ",
	"-", " ", "_", " ", ".", " ",
)

// Normalize folds a team name for comparison: case, accents, simple
// punctuation and repeated whitespace are ignored.
func Normalize(s string) string {
	s = cases.Fold().String(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = separators.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Load reads a mapping file.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read people mapping: %w", err)
	}
	return Parse(data)
}

// Parse decodes mapping YAML. Two persons claiming the same normalized alias
// is a ConfigurationError.
func Parse(data []byte) (*Mapping, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode people mapping: %w", err)
	}
	m := &Mapping{
		persons: make(map[string]Person, len(f.Persons)),
		index:   make(map[string]string),
	}
	ids := make([]string, 0, len(f.Persons))
	for id := range f.Persons {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := f.Persons[id]
		p.ID = id
		if p.DisplayName == "" {
			p.DisplayName = id
		}
		m.persons[id] = p
		names := append([]string{id, p.DisplayName}, p.Aliases...)
		for _, n := range names {
			key := Normalize(n)
			if key == "" {
				continue
			}
			if owner, ok := m.index[key]; ok && owner != id {
				return nil, &model.ConfigurationError{
					Field:  "people_mapping",
					Reason: fmt.Sprintf("alias %q claimed by %s and %s", n, owner, id),
				}
			}
			m.index[key] = id
		}
	}
	return m, nil
}

// Resolve returns the person whose id, display name or alias matches name.
func (m *Mapping) Resolve(name string) (Person, bool) {
	id, ok := m.index[Normalize(name)]
	if !ok {
		return Person{}, false
	}
	return m.persons[id], true
}

// DisplayName returns the display name for id, or id itself.
func (m *Mapping) DisplayName(id string) string {
	if m == nil {
		return id
	}
	if p, ok := m.persons[id]; ok {
		return p.DisplayName
	}
	return id
}

// Len returns the number of persons.
func (m *Mapping) Len() int {
	return len(m.persons)
}

// Enrich fills ParticipantID on every team that resolves and returns the
// display names of those that do not. Teams that already carry an id are
// left untouched.
func (m *Mapping) Enrich(teams []model.Team) (mapped int, unmapped []string) {
	for i := range teams {
		if teams[i].ParticipantID != "" {
			mapped++
			continue
		}
		if p, ok := m.Resolve(teams[i].Name); ok {
			teams[i].ParticipantID = p.ID
			mapped++
			continue
		}
		unmapped = append(unmapped, teams[i].Name)
	}
	return mapped, unmapped
}
