package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/leapstack-labs/schemafix/internal/cli/output"
	"github.com/leapstack-labs/schemafix/internal/sqlident"
	"github.com/leapstack-labs/schemafix/pkg/core"
	"github.com/leapstack-labs/schemafix/pkg/reconcile"
	"github.com/spf13/cobra"
)

// ResolveOptions holds options for the resolve command.
type ResolveOptions struct {
	File    string
	Tables  []string
	Columns []string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	opts := &ResolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [sql]",
		Short: "Find replacements for table and column names missing from the schema",
		Long: `Extract the table and column names a query uses and, for each one the
target schema lacks, find the single semantically closest name that exists.

The query is read from the argument, --file, or stdin. Use --tables and
--columns to skip SQL extraction and pass names directly.

Exit codes:
  0  every name resolved (or already existed)
  1  configuration, connection or parse error
  2  a name had no candidate or more than one plausible candidate`,
		Example: `  # Resolve a query against a YAML catalog
  schemafix resolve --catalog catalog.yaml "SELECT surname FROM persons"

  # Resolve a query file against a SQLite database
  schemafix resolve --database app.db -f report.sql

  # Resolve names without SQL
  schemafix resolve --tables persons --columns surname,e_mail -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the query from a file")
	cmd.Flags().StringSliceVar(&opts.Tables, "tables", nil, "Table names to resolve (skips SQL extraction)")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Column names to resolve (skips SQL extraction)")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string, opts *ResolveOptions) error {
	ids, err := readIdentifiers(cmd, args, opts)
	if err != nil {
		return err
	}

	cmdCtx := NewCommandContext(cmd)
	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}
	factory, err := cmdCtx.NewFactory()
	if err != nil {
		return err
	}

	res, err := resolveIdentifiers(ids, cat, factory, cmdCtx.Logger)
	if err != nil {
		return resolutionError(err)
	}

	return renderResolution(cmdCtx.Renderer, ids, res)
}

// readIdentifiers collects the names to resolve from the flags, the argument,
// the query file or stdin, in that order.
func readIdentifiers(cmd *cobra.Command, args []string, opts *ResolveOptions) (reconcile.Identifiers, error) {
	direct := len(opts.Tables) > 0 || len(opts.Columns) > 0
	if direct {
		if len(args) > 0 || opts.File != "" {
			return reconcile.Identifiers{}, errors.New("use either a query or --tables/--columns, not both")
		}
		return reconcile.Identifiers{Tables: opts.Tables, Columns: opts.Columns}, nil
	}

	var query string
	switch {
	case len(args) > 0 && opts.File != "":
		return reconcile.Identifiers{}, errors.New("use either a query argument or --file, not both")
	case len(args) > 0:
		query = args[0]
	case opts.File != "":
		data, err := os.ReadFile(opts.File) //nolint:gosec // path is user-provided by design
		if err != nil {
			return reconcile.Identifiers{}, fmt.Errorf("failed to read query file: %w", err)
		}
		query = string(data)
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return reconcile.Identifiers{}, fmt.Errorf("failed to read query from stdin: %w", err)
		}
		query = string(data)
	}

	if strings.TrimSpace(query) == "" {
		return reconcile.Identifiers{}, errors.New("no query given\nHint: pass SQL as an argument, with --file, or on stdin")
	}
	return sqlident.Extract(query)
}

// resolveIdentifiers runs one reconciliation pass.
func resolveIdentifiers(ids reconcile.Identifiers, cat core.Catalog, factory core.MatcherFactory, logger *slog.Logger) (*reconcile.Result, error) {
	eng, err := reconcile.New(ids, cat, factory, reconcile.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return eng.Resolve()
}

// resolveOutput is the structured form of a resolution.
type resolveOutput struct {
	Identifiers reconcile.Identifiers        `json:"identifiers" yaml:"identifiers"`
	Tables      map[string]string            `json:"tables" yaml:"tables"`
	Columns     reconcile.ColumnReplacements `json:"columns" yaml:"columns"`
}

func renderResolution(r *output.Renderer, ids reconcile.Identifiers, res *reconcile.Result) error {
	out := resolveOutput{Identifiers: ids, Tables: res.Tables, Columns: res.Columns}
	if ok, err := r.Data(out); ok {
		return err
	}

	r.Header(2, "Tables")
	r.Table([]string{"Query name", "Replacement"}, tableRows(res.Tables), "No table replacements.")
	r.Println()
	r.Header(2, "Columns")
	r.Table([]string{"Query name", "Table", "Replacement"}, columnRows(res.Columns), "No column replacements.")
	return nil
}

func tableRows(tables map[string]string) [][]string {
	keys := make([]string, 0, len(tables))
	for k := range tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, tables[k]})
	}
	return rows
}

func columnRows(columns reconcile.ColumnReplacements) [][]string {
	var rows [][]string
	for _, k := range columns.Keys() {
		for _, m := range columns[k] {
			rows = append(rows, []string{k, m.Table, m.Column})
		}
	}
	return rows
}
