package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/schemafix/internal/cli/config"
	"github.com/leapstack-labs/schemafix/internal/cli/output"
	"github.com/leapstack-labs/schemafix/pkg/adapter"
	"github.com/leapstack-labs/schemafix/pkg/catalog"
	"github.com/leapstack-labs/schemafix/pkg/core"
	"github.com/leapstack-labs/schemafix/pkg/reconcile"
	"github.com/leapstack-labs/schemafix/pkg/semantic"
	"github.com/spf13/cobra"
)

// ExitCodeResolution is the exit code for a query that could not be repaired
// because an identifier had no candidate or too many.
const ExitCodeResolution = 2

// ExitError carries a process exit code alongside the error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// IsResolutionFailure reports whether err means an identifier could not be
// repaired, as opposed to a configuration or infrastructure failure.
func IsResolutionFailure(err error) bool {
	return errors.Is(err, core.ErrNoCandidate) ||
		errors.Is(err, core.ErrAmbiguous) ||
		errors.Is(err, reconcile.ErrNoReplacement)
}

// resolutionError tags resolution failures with ExitCodeResolution.
func resolutionError(err error) error {
	if err == nil || !IsResolutionFailure(err) {
		return err
	}
	return &ExitError{Code: ExitCodeResolution, Err: err}
}

// CommandContext holds what every command reads from the command context.
type CommandContext struct {
	Cfg      *config.Config
	Renderer *output.Renderer
	Logger   *slog.Logger
}

// NewCommandContext gathers the config, renderer and logger that the root
// command stored in the context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	return &CommandContext{
		Cfg:      config.GetConfig(ctx),
		Renderer: output.GetRenderer(ctx),
		Logger:   config.GetLogger(ctx),
	}
}

// LoadCatalog builds the catalog snapshot from the --catalog file or, without
// one, by introspecting the configured target.
func (c *CommandContext) LoadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	var opts []catalog.Option
	if c.Cfg.CaseInsensitive {
		opts = append(opts, catalog.WithCaseInsensitive())
	}

	if c.Cfg.Catalog != "" {
		c.Logger.Debug("loading catalog file", slog.String("path", c.Cfg.Catalog))
		return catalog.LoadFile(c.Cfg.Catalog, opts...)
	}

	if !c.Cfg.HasTarget() {
		return nil, errors.New("no catalog source\nHint: pass --catalog <file.yaml>, --database <path>, or configure target in schemafix.yaml")
	}

	a, err := adapter.NewAdapter(c.Cfg.Target.ToAdapterConfig(), c.Logger)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if err := a.Connect(ctx, c.Cfg.Target.ToAdapterConfig()); err != nil {
		return nil, fmt.Errorf("failed to connect to %s target: %w", c.Cfg.Target.Type, err)
	}
	defer func() { _ = a.Close() }()

	c.Logger.Debug("introspecting target",
		slog.String("type", c.Cfg.Target.Type),
		slog.String("schema", c.Cfg.Target.Schema))
	return catalog.Introspect(ctx, a, c.Cfg.Target.Schema, opts...)
}

// NewFactory builds the semantic matcher factory from the matcher settings.
func (c *CommandContext) NewFactory() (*semantic.Factory, error) {
	opts := []semantic.Option{
		semantic.WithMinScore(c.Cfg.Matcher.MinScore),
		semantic.WithMinGap(c.Cfg.Matcher.MinGap),
		semantic.WithLexicalFloor(c.Cfg.Matcher.LexicalFloor),
		semantic.WithLogger(c.Logger),
	}
	if c.Cfg.Matcher.Lexicon != "" {
		opts = append(opts, semantic.WithLexiconFile(c.Cfg.Matcher.Lexicon))
	}
	return semantic.NewFactory(opts...)
}
