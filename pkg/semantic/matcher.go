package semantic

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/schemafix/pkg/core"
)

// Default decision thresholds.
const (
	// DefaultMinScore is the lowest score a winner may have.
	DefaultMinScore = 0.5
	// DefaultMinGap is the margin the winner needs over the runner-up.
	DefaultMinGap = 0.15
	// DefaultLexicalFloor is the similarity at which spelling alone counts.
	DefaultLexicalFloor = 0.8
)

// Matcher is a core.Matcher over a fixed vocabulary.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	lexicon *Lexicon
	cfg     config
	vocab   []term
	logger  *slog.Logger
}

// Match returns the vocabulary entry that best matches name.
//
// It fails with a *core.MatchError of kind:
//   - KindNoCandidate when no entry scores at least the minimum score
//   - KindAmbiguous when another entry is within the minimum gap of the best
//   - KindComputation when name cannot be normalized or resolved
func (m *Matcher) Match(name string) (string, error) {
	ranked, err := m.Rank(name)
	if err != nil {
		return "", err
	}

	kept := ranked.AboveThreshold(m.cfg.minScore)
	if len(kept) == 0 {
		m.logger.Debug("no candidate", slog.String("name", name))
		return "", core.NewNoCandidateError(name)
	}

	if tied := kept.Tied(m.cfg.minGap); len(tied) > 1 {
		m.logger.Debug("ambiguous match",
			slog.String("name", name),
			slog.Any("candidates", tied))
		return "", core.NewAmbiguousError(name, tied)
	}

	best := kept[0]
	m.logger.Debug("matched",
		slog.String("name", name),
		slog.String("match", best.Name),
		slog.Float64("score", best.Score),
		slog.String("relation", best.Relation.String()))
	return best.Name, nil
}

// Rank scores every vocabulary entry against name, best first.
func (m *Matcher) Rank(name string) (CandidateList, error) {
	q, err := m.lexicon.resolve(name)
	if err != nil {
		return nil, core.NewComputationError(name, err)
	}
	return rank(q, m.vocab, m.cfg.lexicalFloor), nil
}

// Vocabulary returns the entries the matcher chooses from.
func (m *Matcher) Vocabulary() []string {
	names := make([]string, len(m.vocab))
	for i, t := range m.vocab {
		names[i] = t.name
	}
	return names
}

func newMatcher(lex *Lexicon, cfg config, logger *slog.Logger, vocabulary []string) (*Matcher, error) {
	m := &Matcher{
		lexicon: lex,
		cfg:     cfg,
		logger:  logger,
		vocab:   make([]term, 0, len(vocabulary)),
	}

	seen := make(map[string]bool, len(vocabulary))
	for _, name := range vocabulary {
		if seen[name] {
			continue
		}
		seen[name] = true

		t, err := lex.resolve(name)
		if errors.Is(err, ErrEmptyIdentifier) {
			logger.Debug("skipping vocabulary entry", slog.String("name", name))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("vocabulary entry %q: %w", name, err)
		}
		m.vocab = append(m.vocab, t)
	}
	return m, nil
}

var _ core.Matcher = (*Matcher)(nil)
