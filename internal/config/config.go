// Package config holds the league configuration object handed to every
// analytics engine at construction. Nothing in the engines reads ambient state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pable/go-mpg-history/internal/model"
)

// League is the full configuration of one league instance.
type League struct {
	Database      string `mapstructure:"database"`       // SQLite path
	PeopleMapping string `mapstructure:"people_mapping"` // alias mapping YAML

	ExpectedMatches int `mapstructure:"expected_matches"` // 8 teams x 14 rounds / 2
	PodiumSize      int `mapstructure:"podium_size"`

	Rating   Rating   `mapstructure:"rating"`
	Points   Points   `mapstructure:"points"`
	Seasonal Seasonal `mapstructure:"seasonal"`
	Bonus    Bonus    `mapstructure:"bonus"`
}

// Rating configures the ELO engine.
type Rating struct {
	Baseline  float64 `mapstructure:"baseline"`
	K         float64 `mapstructure:"k"`
	Tolerance float64 `mapstructure:"tolerance"` // allowed zero-sum drift
}

// Points is the standings scheme.
type Points struct {
	Win  int `mapstructure:"win"`
	Draw int `mapstructure:"draw"`
	Loss int `mapstructure:"loss"`
}

// Seasonal holds the operator-maintained facts that cannot be derived from
// match data: which divisions were interrupted and which one is still playing.
type Seasonal struct {
	AnomalousDivisions []string `mapstructure:"anomalous_divisions"`
	InProgressDivision string   `mapstructure:"in_progress_division"`
}

// Bonus holds the consumable catalog.
type Bonus struct {
	Catalog []BonusEntry `mapstructure:"catalog"`
}

// BonusEntry describes one bonus category. Permanent (non-consumable)
// categories are tracked for usage but never decremented.
type BonusEntry struct {
	Key        string `mapstructure:"key"`
	Label      string `mapstructure:"label"`
	Short      string `mapstructure:"short"`
	Stock      int    `mapstructure:"stock"`
	Consumable bool   `mapstructure:"consumable"`
}

// DefaultCatalog returns the MPG bonus catalog.
func DefaultCatalog() []BonusEntry {
	return []BonusEntry{
		{Key: "boostOnePlayer", Label: "McDo", Short: "McDo", Stock: 3, Consumable: true},
		{Key: "boostAllPlayers", Label: "Zahia", Short: "Boost", Stock: 1, Consumable: true},
		{Key: "removeGoal", Label: "Valise à Nanard", Short: "Sifflet", Stock: 1, Consumable: true},
		{Key: "mirror", Label: "Miroir", Short: "Miroir", Stock: 1, Consumable: true},
		{Key: "fourStrikers", Label: "Décathlon", Short: "4 att.", Stock: 1, Consumable: true},
		{Key: "blockTacticalSubs", Label: "Tonton Pat'", Short: "Blocage", Stock: 1, Consumable: true},
		{Key: "nerfGoalkeeper", Label: "Suarez", Short: "Nérf gk", Stock: 1, Consumable: true},
		{Key: "nerfAllPlayers", Label: "Cheat Code", Short: "Nérf", Stock: 1, Consumable: true},
		{Key: "captain", Label: "Capitaine", Short: "Cpt"},
		{Key: "boostDefense4", Label: "Bonus déf. 4", Short: "Déf4"},
		{Key: "boostDefense5", Label: "Bonus déf. 5", Short: "Déf5"},
	}
}

// Default returns the league configuration with every documented default.
func Default() *League {
	return &League{
		Database:        filepath.Join(userHome(), ".mpghistory", "mpg.db"),
		PeopleMapping:   filepath.Join(userHome(), ".mpghistory", "people_mapping.yaml"),
		ExpectedMatches: 56,
		PodiumSize:      3,
		Rating:          Rating{Baseline: 1500, K: 20, Tolerance: 1e-6},
		Points:          Points{Win: 3, Draw: 1, Loss: 0},
		Bonus:           Bonus{Catalog: DefaultCatalog()},
	}
}

// Load reads an optional .env file, then the YAML config at path (may be
// empty or missing), then MPG_-prefixed environment overrides.
func Load(path string) (*League, error) {
	_ = godotenv.Load() // .env is optional

	def := Default()
	v := viper.New()
	v.SetDefault("database", def.Database)
	v.SetDefault("people_mapping", def.PeopleMapping)
	v.SetDefault("expected_matches", def.ExpectedMatches)
	v.SetDefault("podium_size", def.PodiumSize)
	v.SetDefault("rating.baseline", def.Rating.Baseline)
	v.SetDefault("rating.k", def.Rating.K)
	v.SetDefault("rating.tolerance", def.Rating.Tolerance)
	v.SetDefault("points.win", def.Points.Win)
	v.SetDefault("points.draw", def.Points.Draw)
	v.SetDefault("points.loss", def.Points.Loss)
	v.SetDefault("seasonal.anomalous_divisions", []string{})
	v.SetDefault("seasonal.in_progress_division", "")

	v.SetEnvPrefix("MPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg League
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Bonus.Catalog) == 0 {
		cfg.Bonus.Catalog = DefaultCatalog()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that do not depend on division metadata.
func (c *League) Validate() error {
	if c.ExpectedMatches <= 0 {
		return &model.ConfigurationError{Field: "expected_matches", Reason: fmt.Sprintf("must be positive, got %d", c.ExpectedMatches)}
	}
	if c.PodiumSize <= 0 {
		return &model.ConfigurationError{Field: "podium_size", Reason: fmt.Sprintf("must be positive, got %d", c.PodiumSize)}
	}
	if c.Rating.K <= 0 {
		return &model.ConfigurationError{Field: "rating.k", Reason: fmt.Sprintf("must be positive, got %g", c.Rating.K)}
	}
	if c.Rating.Tolerance <= 0 {
		return &model.ConfigurationError{Field: "rating.tolerance", Reason: fmt.Sprintf("must be positive, got %g", c.Rating.Tolerance)}
	}
	if c.Points.Win < c.Points.Draw || c.Points.Draw < c.Points.Loss {
		return &model.ConfigurationError{Field: "points", Reason: "expected win >= draw >= loss"}
	}
	seen := make(map[string]struct{}, len(c.Bonus.Catalog))
	for i, e := range c.Bonus.Catalog {
		field := fmt.Sprintf("bonus.catalog[%d]", i)
		if e.Key == "" {
			return &model.ConfigurationError{Field: field, Reason: "empty key"}
		}
		if _, dup := seen[e.Key]; dup {
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("duplicate key %q", e.Key)}
		}
		seen[e.Key] = struct{}{}
		if e.Stock < 0 {
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("negative stock for %q", e.Key)}
		}
		if e.Consumable && e.Stock == 0 {
			return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf("consumable %q has no stock", e.Key)}
		}
	}
	return nil
}

// CatalogEntry returns the catalog entry for key.
func (c *League) CatalogEntry(key string) (BonusEntry, bool) {
	for _, e := range c.Bonus.Catalog {
		if e.Key == key {
			return e, true
		}
	}
	return BonusEntry{}, false
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
