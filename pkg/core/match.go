package core

import (
	"errors"
	"fmt"
	"strings"
)

// Matcher maps a query identifier to the single closest identifier of the
// vocabulary it was built over.
//
// Match returns a *MatchError when it cannot decide. Use KindOf to branch
// on the failure kind.
type Matcher interface {
	Match(name string) (string, error)
}

// MatcherFactory builds a Matcher scoped to a vocabulary. A fresh matcher is
// built for every vocabulary the reconciliation engine evaluates.
type MatcherFactory interface {
	NewMatcher(vocabulary []string) (Matcher, error)
}

// MatchErrorKind classifies a matcher failure.
type MatchErrorKind int

const (
	// KindNone means the error is not a matcher failure.
	KindNone MatchErrorKind = iota
	// KindNoCandidate means no vocabulary entry is semantically close enough.
	KindNoCandidate
	// KindAmbiguous means two or more vocabulary entries are equally plausible.
	KindAmbiguous
	// KindComputation means the similarity computation itself failed.
	KindComputation
)

// String returns the snake_case name of the kind.
func (k MatchErrorKind) String() string {
	switch k {
	case KindNoCandidate:
		return "no_candidate"
	case KindAmbiguous:
		return "ambiguous"
	case KindComputation:
		return "computation"
	default:
		return "none"
	}
}

// Sentinels matched by (*MatchError).Is.
var (
	ErrNoCandidate = errors.New("no candidate")
	ErrAmbiguous   = errors.New("ambiguous match")
	ErrComputation = errors.New("matcher computation failed")
)

// MatchError is returned by Matcher implementations.
type MatchError struct {
	Kind       MatchErrorKind
	Name       string   // The query identifier being matched
	Candidates []string // Tied candidates (KindAmbiguous only)
	Cause      error    // Underlying failure (KindComputation only)
}

// NewNoCandidateError reports that nothing in the vocabulary is close to name.
func NewNoCandidateError(name string) *MatchError {
	return &MatchError{Kind: KindNoCandidate, Name: name}
}

// NewAmbiguousError reports that name is equally close to every candidate.
func NewAmbiguousError(name string, candidates []string) *MatchError {
	return &MatchError{Kind: KindAmbiguous, Name: name, Candidates: candidates}
}

// NewComputationError reports that matching name could not be computed.
func NewComputationError(name string, cause error) *MatchError {
	return &MatchError{Kind: KindComputation, Name: name, Cause: cause}
}

func (e *MatchError) Error() string {
	switch e.Kind {
	case KindNoCandidate:
		return fmt.Sprintf("no semantically close candidate for %q", e.Name)
	case KindAmbiguous:
		return fmt.Sprintf("ambiguous match for %q (candidates: %s)", e.Name, strings.Join(e.Candidates, ", "))
	case KindComputation:
		if e.Cause != nil {
			return fmt.Sprintf("matching %q failed: %v", e.Name, e.Cause)
		}
		return fmt.Sprintf("matching %q failed", e.Name)
	default:
		return fmt.Sprintf("match error for %q", e.Name)
	}
}

// Unwrap returns the underlying cause.
func (e *MatchError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is compare a MatchError against the kind sentinels.
func (e *MatchError) Is(target error) bool {
	switch target {
	case ErrNoCandidate:
		return e.Kind == KindNoCandidate
	case ErrAmbiguous:
		return e.Kind == KindAmbiguous
	case ErrComputation:
		return e.Kind == KindComputation
	}
	return false
}

// KindOf returns the kind of the first MatchError in err's chain, or
// KindNone if there is none.
func KindOf(err error) MatchErrorKind {
	var me *MatchError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindNone
}
