package semantic

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/schemafix/pkg/core"
)

type config struct {
	minScore     float64
	minGap       float64
	lexicalFloor float64
	lexicon      *Lexicon
	lexiconFile  string
	logger       *slog.Logger
}

// Option configures a Factory.
type Option func(*config)

// WithMinScore sets the lowest score a winner may have.
func WithMinScore(v float64) Option {
	return func(c *config) { c.minScore = v }
}

// WithMinGap sets the margin the winner needs over the runner-up.
func WithMinGap(v float64) Option {
	return func(c *config) { c.minGap = v }
}

// WithLexicalFloor sets the similarity at which spelling alone counts.
func WithLexicalFloor(v float64) Option {
	return func(c *config) { c.lexicalFloor = v }
}

// WithLexicon replaces the built-in lexicon.
func WithLexicon(l *Lexicon) Option {
	return func(c *config) { c.lexicon = l }
}

// WithLexiconFile merges the concepts of a YAML file into the lexicon.
func WithLexiconFile(path string) Option {
	return func(c *config) { c.lexiconFile = path }
}

// WithLogger sets the logger for match decisions.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Factory builds matchers that share one validated lexicon.
// It implements core.MatcherFactory and is safe for concurrent use.
type Factory struct {
	lexicon *Lexicon
	cfg     config
	logger  *slog.Logger
}

// NewFactory validates the options and loads the lexicon.
func NewFactory(opts ...Option) (*Factory, error) {
	cfg := config{
		minScore:     DefaultMinScore,
		minGap:       DefaultMinGap,
		lexicalFloor: DefaultLexicalFloor,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, th := range []struct {
		name  string
		value float64
	}{
		{"min_score", cfg.minScore},
		{"min_gap", cfg.minGap},
		{"lexical_floor", cfg.lexicalFloor},
	} {
		if th.value < 0 || th.value > 1 {
			return nil, fmt.Errorf("matcher %s must be between 0 and 1, got %g", th.name, th.value)
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	lex := cfg.lexicon
	if lex == nil {
		var err error
		if lex, err = DefaultLexicon(); err != nil {
			return nil, err
		}
	}

	if cfg.lexiconFile != "" {
		extra, err := LoadLexiconFile(cfg.lexiconFile)
		if err != nil {
			return nil, err
		}
		if lex, err = lex.Extend(extra); err != nil {
			return nil, fmt.Errorf("failed to merge lexicon %s: %w", cfg.lexiconFile, err)
		}
		logger.Debug("merged lexicon file",
			slog.String("path", cfg.lexiconFile),
			slog.Int("concepts", len(extra)))
	}

	return &Factory{lexicon: lex, cfg: cfg, logger: logger}, nil
}

// New builds a matcher over vocabulary with default settings.
func New(vocabulary []string, opts ...Option) (*Matcher, error) {
	f, err := NewFactory(opts...)
	if err != nil {
		return nil, err
	}
	return f.Build(vocabulary)
}

// Build returns a concrete matcher over vocabulary.
func (f *Factory) Build(vocabulary []string) (*Matcher, error) {
	return newMatcher(f.lexicon, f.cfg, f.logger, vocabulary)
}

// NewMatcher implements core.MatcherFactory.
func (f *Factory) NewMatcher(vocabulary []string) (core.Matcher, error) {
	m, err := f.Build(vocabulary)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Lexicon returns the lexicon shared by the factory's matchers.
func (f *Factory) Lexicon() *Lexicon {
	return f.lexicon
}

var _ core.MatcherFactory = (*Factory)(nil)
