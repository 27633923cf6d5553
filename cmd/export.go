package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-mpg-history/internal/export"
)

var (
	exportOut    string
	exportFormat string
	exportH2H    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full report as JSON or XLSX",
	Long: `Compute every aggregate under the current policy and write it as one
document: ratings, season tables, palmares, streaks and bonus ledger, plus a
meta block (schema version, snapshot id, policy, included divisions).

The snapshot id is a name-based UUID of the stored content, so two exports of
an unchanged database are byte-identical.

Example:
  mpghistory export --out history.json
  mpghistory export --format xlsx --out history.xlsx --include-in-progress`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file (- for stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "json or xlsx (default from --out extension, else json)")
	exportCmd.Flags().BoolVar(&exportH2H, "h2h", false, "include the head-to-head record of every pair")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	if format == "" {
		format = "json"
		if strings.EqualFold(filepath.Ext(exportOut), ".xlsx") {
			format = "xlsx"
		}
	}
	if format != "json" && format != "xlsx" {
		return fmt.Errorf("unknown --format %q", exportFormat)
	}
	if format == "xlsx" && exportOut == "-" {
		return fmt.Errorf("xlsx export needs --out")
	}

	snap, err := readSnapshot(cmd)
	if err != nil {
		return err
	}
	names, err := loadPeople()
	if err != nil {
		return err
	}
	eng := newEngine()
	rep, err := eng.Run(snap, policy())
	if err != nil {
		return err
	}

	doc := export.Build(snap, rep)
	if names != nil {
		doc.WithNames(names)
	}
	if exportH2H {
		if doc.HeadToHead, err = eng.Matrix(snap, policy()); err != nil {
			return err
		}
	}

	var w io.Writer = os.Stdout
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "xlsx" {
		err = export.WriteXLSX(w, doc)
	} else {
		err = export.WriteJSON(w, doc)
	}
	if err != nil {
		return err
	}
	if exportOut != "-" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d divisions, %d matches, snapshot %s)\n",
			exportOut, len(doc.Meta.Divisions), doc.Meta.Matches, doc.Meta.SnapshotID)
	}
	return nil
}
