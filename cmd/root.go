package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/analytics"
	"github.com/pable/go-mpg-history/internal/config"
	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/people"
	"github.com/pable/go-mpg-history/internal/storage"
)

var (
	dbPath     string
	configPath string
	peoplePath string
	logLevel   string
	logJSON    bool

	includeAnomalous  bool
	includeIncomplete bool
	includeInProgress bool

	cfg *config.League
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "mpghistory",
	Short: "MPG league history analytics",
	Long: `Replay the full history of an MPG league to compute ELO ratings, season
standings, all-time palmares, head-to-head records, streaks and bonus stock.

Every analysis reads one consistent snapshot of the database and recomputes
from scratch. By default only complete, non-anomalous, finished divisions are
included; widen with --include-anomalous, --include-incomplete and
--include-in-progress.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	defaultConfig := filepath.Join(mustUserHome(), ".mpghistory", "config.yaml")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", defaultConfig, "path to YAML config file")
	pf.StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")
	pf.StringVar(&peoplePath, "people", "", "path to people mapping YAML (overrides config)")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.BoolVar(&includeAnomalous, "include-anomalous", false, "include divisions flagged anomalous")
	pf.BoolVar(&includeIncomplete, "include-incomplete", false, "include divisions with fewer matches than expected")
	pf.BoolVar(&includeInProgress, "include-in-progress", false, "include the division currently being played")

	rootCmd.AddCommand(eloCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(palmaresCmd)
	rootCmd.AddCommand(h2hCmd)
	rootCmd.AddCommand(bonusCmd)
	rootCmd.AddCommand(streaksCmd)
	rootCmd.AddCommand(divisionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("parse --log-level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	if logJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	if peoplePath != "" {
		cfg.PeopleMapping = peoplePath
	}
	log.WithFields(logrus.Fields{
		"config":   configPath,
		"database": cfg.Database,
	}).Debug("configuration loaded")
	return nil
}

// policy is the division policy selected on the command line.
func policy() division.Policy {
	return division.Policy{
		IncludeAnomalous:  includeAnomalous,
		IncludeIncomplete: includeIncomplete,
		IncludeInProgress: includeInProgress,
	}
}

func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func newEngine() *analytics.Engine {
	return analytics.New(cfg, log)
}

// loadPeople returns the people mapping, or nil when no mapping file exists.
func loadPeople() (*people.Mapping, error) {
	m, err := people.Load(cfg.PeopleMapping)
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("path", cfg.PeopleMapping).Debug("no people mapping")
		return nil, nil
	}
	return m, err
}

// resolveParticipant accepts a person id, display name or alias.
func resolveParticipant(m *people.Mapping, arg string) string {
	if m == nil {
		return arg
	}
	if p, ok := m.Resolve(arg); ok {
		return p.ID
	}
	return arg
}

func exitCode(err error) int {
	switch {
	case model.IsConfiguration(err):
		return 2
	case model.IsDataIntegrity(err):
		return 3
	default:
		return 1
	}
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
