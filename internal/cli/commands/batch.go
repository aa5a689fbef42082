package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/schemafix/internal/cli/output"
	"github.com/leapstack-labs/schemafix/internal/sqlident"
	"github.com/leapstack-labs/schemafix/pkg/core"
	"github.com/leapstack-labs/schemafix/pkg/reconcile"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// BatchRequest is one entry of a batch file.
type BatchRequest struct {
	ID      string   `yaml:"id"`
	SQL     string   `yaml:"sql"`
	Tables  []string `yaml:"tables"`
	Columns []string `yaml:"columns"`
}

// Batch result statuses.
const (
	StatusOK          = "ok"
	StatusAmbiguous   = "ambiguous"
	StatusNoCandidate = "no_candidate"
	StatusError       = "error"
)

// BatchResult is the outcome of one request.
type BatchResult struct {
	ID      string                       `json:"id" yaml:"id"`
	Status  string                       `json:"status" yaml:"status"`
	Tables  map[string]string            `json:"tables,omitempty" yaml:"tables,omitempty"`
	Columns reconcile.ColumnReplacements `json:"columns,omitempty" yaml:"columns,omitempty"`
	Error   string                       `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Resolve many queries in parallel against one catalog",
		Long: `Resolve every request of a YAML file. Each request carries either sql or
tables/columns, and an optional id (a UUID is generated when absent).

  - id: monthly
    sql: SELECT surname FROM persons
  - tables: [kettle]
    columns: [e_mail]

Results are printed in file order. The command exits 2 when any request
failed.`,
		Example: `  schemafix batch requests.yaml --catalog catalog.yaml -o json
  schemafix batch requests.yaml --database app.db --concurrency 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], concurrency)
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Maximum requests resolved at once (default from config)")

	return cmd
}

func runBatch(cmd *cobra.Command, path string, concurrency int) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided by design
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}
	requests, err := ParseBatch(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	cmdCtx := NewCommandContext(cmd)
	if concurrency <= 0 {
		concurrency = cmdCtx.Cfg.Concurrency
	}
	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}
	factory, err := cmdCtx.NewFactory()
	if err != nil {
		return err
	}

	results, err := RunBatch(cmd.Context(), requests, cat, factory, cmdCtx.Logger, concurrency)
	if err != nil {
		return err
	}

	if err := renderBatch(cmdCtx.Renderer, results); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Status != StatusOK {
			failed++
		}
	}
	if failed > 0 {
		return &ExitError{Code: ExitCodeResolution, Err: fmt.Errorf("%d of %d requests failed", failed, len(results))}
	}
	return nil
}

// ParseBatch reads a YAML list of requests.
func ParseBatch(r io.Reader) ([]BatchRequest, error) {
	var requests []BatchRequest
	if err := yaml.NewDecoder(r).Decode(&requests); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("batch file is empty")
		}
		return nil, err
	}
	for i, req := range requests {
		hasSQL := strings.TrimSpace(req.SQL) != ""
		hasNames := len(req.Tables) > 0 || len(req.Columns) > 0
		if hasSQL == hasNames {
			return nil, fmt.Errorf("request #%d: needs either sql or tables/columns", i+1)
		}
	}
	return requests, nil
}

// RunBatch resolves requests concurrently. The catalog and factory are shared
// read-only. Per-request failures are recorded in the results; only
// cancellation aborts the batch.
func RunBatch(ctx context.Context, requests []BatchRequest, cat core.Catalog, factory core.MatcherFactory, logger *slog.Logger, concurrency int) ([]BatchResult, error) {
	results := make([]BatchResult, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, req := range requests {
		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reqLogger := logger.With(slog.String("request_id", id))
			results[i] = resolveRequest(id, req, cat, factory, reqLogger)
			reqLogger.Debug("request done", slog.String("status", results[i].Status))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func resolveRequest(id string, req BatchRequest, cat core.Catalog, factory core.MatcherFactory, logger *slog.Logger) BatchResult {
	ids := reconcile.Identifiers{Tables: req.Tables, Columns: req.Columns}
	if req.SQL != "" {
		var err error
		ids, err = sqlident.Extract(req.SQL)
		if err != nil {
			return BatchResult{ID: id, Status: StatusError, Error: err.Error()}
		}
	}

	res, err := resolveIdentifiers(ids, cat, factory, logger)
	if err != nil {
		return BatchResult{ID: id, Status: batchStatus(err), Error: err.Error()}
	}
	return BatchResult{ID: id, Status: StatusOK, Tables: res.Tables, Columns: res.Columns}
}

func batchStatus(err error) string {
	switch {
	case errors.Is(err, core.ErrAmbiguous):
		return StatusAmbiguous
	case errors.Is(err, core.ErrNoCandidate), errors.Is(err, reconcile.ErrNoReplacement):
		return StatusNoCandidate
	default:
		return StatusError
	}
}

func renderBatch(r *output.Renderer, results []BatchResult) error {
	if ok, err := r.Data(results); ok {
		return err
	}

	r.Header(2, fmt.Sprintf("Batch (%d requests)", len(results)))
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		detail := res.Error
		if res.Status == StatusOK {
			detail = summarizeReplacements(res)
		}
		rows = append(rows, []string{res.ID, res.Status, detail})
	}
	r.Table([]string{"ID", "Status", "Detail"}, rows, "No requests.")
	return nil
}

func summarizeReplacements(res BatchResult) string {
	var parts []string
	for _, row := range tableRows(res.Tables) {
		parts = append(parts, row[0]+"→"+row[1])
	}
	for _, row := range columnRows(res.Columns) {
		parts = append(parts, row[0]+"→"+row[1]+"."+row[2])
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}
