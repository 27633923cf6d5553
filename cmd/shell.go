package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/analytics"
	"github.com/pable/go-mpg-history/internal/bonus"
	"github.com/pable/go-mpg-history/internal/division"
	"github.com/pable/go-mpg-history/internal/model"
	"github.com/pable/go-mpg-history/internal/people"
	"github.com/pable/go-mpg-history/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session over one snapshot of the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellSession holds the snapshot and policy of one REPL session.
type shellSession struct {
	cmd    *cobra.Command
	snap   *model.Snapshot
	names  *people.Mapping
	engine *analytics.Engine
	policy division.Policy
}

func runShell(cmd *cobra.Command, _ []string) error {
	s := &shellSession{cmd: cmd, engine: newEngine(), policy: policy()}
	if err := s.reload(); err != nil {
		return err
	}

	cGreeting.Println("mpghistory shell")
	cMuted.Printf("%d divisions, %d matches loaded; type 'help' or 'exit'\n", len(s.snap.Divisions), len(s.snap.Matches))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("mpghistory")
		cMuted.Printf(" [%s]> ", s.policy)
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		var err error
		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "reload":
			err = s.reload()
		case "policy":
			err = s.setPolicy(args)
		case "elo":
			err = s.elo()
		case "palmares":
			err = s.palmares()
		case "standings":
			err = s.standings(args)
		case "streaks":
			err = s.streaks()
		case "divisions":
			err = s.divisions()
		case "h2h":
			if len(args) != 2 {
				cError.Fprintln(os.Stderr, "usage: h2h <participant-a> <participant-b>")
				continue
			}
			err = s.h2h(args[0], args[1])
		case "bonus":
			err = s.bonus(args)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"elo", "all-time ELO ranking"},
		{"palmares", "titles, podiums and last places"},
		{"standings [division-id]", "season tables (all included when omitted)"},
		{"streaks", "longest runs per participant"},
		{"h2h <a> <b>", "head-to-head record, every meeting listed"},
		{"bonus [division-id] [gw]", "remaining bonus stock, optionally at a game week"},
		{"divisions", "classification of every division"},
		{"policy [+|-]<anomalous|incomplete|in-progress>", "widen or narrow the policy; 'policy default' resets"},
		{"reload", "read a fresh snapshot from the database"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-48s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (s *shellSession) reload() error {
	snap, err := readSnapshot(s.cmd)
	if err != nil {
		return err
	}
	names, err := loadPeople()
	if err != nil {
		return err
	}
	s.snap, s.names = snap, names
	return nil
}

func (s *shellSession) setPolicy(args []string) error {
	if len(args) == 0 {
		cHeader.Printf("policy: %s\n", s.policy)
		return nil
	}
	for _, a := range args {
		if a == "default" {
			s.policy = division.DefaultPolicy()
			continue
		}
		on := !strings.HasPrefix(a, "-")
		switch strings.TrimLeft(a, "+-") {
		case "anomalous":
			s.policy.IncludeAnomalous = on
		case "incomplete":
			s.policy.IncludeIncomplete = on
		case "in-progress":
			s.policy.IncludeInProgress = on
		default:
			return fmt.Errorf("unknown policy switch %q", a)
		}
	}
	cHeader.Printf("policy: %s\n", s.policy)
	return nil
}

func (s *shellSession) run() (*analytics.Report, error) {
	return s.engine.Run(s.snap, s.policy)
}

func (s *shellSession) elo() error {
	rep, err := s.run()
	if err != nil {
		return err
	}
	report.PrintRunHeader(os.Stdout, rep)
	report.PrintRatingTable(os.Stdout, rep.Ratings, s.names)
	return nil
}

func (s *shellSession) palmares() error {
	rep, err := s.run()
	if err != nil {
		return err
	}
	report.PrintRunHeader(os.Stdout, rep)
	report.PrintPalmares(os.Stdout, rep.Standings.Palmares, s.names)
	fmt.Println()
	report.PrintChampions(os.Stdout, rep.Standings.Tables, s.names)
	return nil
}

func (s *shellSession) standings(args []string) error {
	rep, err := s.run()
	if err != nil {
		return err
	}
	for _, t := range rep.Standings.Tables {
		if len(args) > 0 && t.DivisionID != args[0] {
			continue
		}
		report.PrintStandings(os.Stdout, t, s.names)
	}
	return nil
}

func (s *shellSession) streaks() error {
	rep, err := s.run()
	if err != nil {
		return err
	}
	report.PrintStreaks(os.Stdout, rep.Streaks, s.names)
	return nil
}

func (s *shellSession) divisions() error {
	divs, err := s.engine.Divisions(s.snap, s.policy)
	if err != nil {
		return err
	}
	report.PrintDivisions(os.Stdout, divs)
	return nil
}

func (s *shellSession) h2h(a, b string) error {
	rep, err := s.engine.HeadToHead(s.snap, resolveParticipant(s.names, a), resolveParticipant(s.names, b), s.policy)
	if err != nil {
		return err
	}
	report.PrintHeadToHead(os.Stdout, rep, s.names, true)
	return nil
}

func (s *shellSession) bonus(args []string) error {
	scope := bonus.Scope{Mode: bonus.ScopeFiltered, Policy: s.policy}
	if len(args) > 0 {
		scope.Mode = bonus.ScopeDivision
		scope.DivisionID = args[0]
	}
	if len(args) > 1 {
		gw, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid game week %q", args[1])
		}
		scope.UpToRound = gw
	}
	ledger, err := s.engine.Bonuses(s.snap, scope)
	if err != nil {
		return err
	}
	report.PrintBonuses(os.Stdout, ledger, s.names)
	return nil
}
