package reconcile

import (
	"errors"
	"fmt"
)

// ErrNoReplacement is matched by errors.Is for any *NoReplacementError.
var ErrNoReplacement = errors.New("no replacement found")

// NoReplacementError reports a column that exists in no table and for which
// no table produced a match.
type NoReplacementError struct {
	Name string
}

func (e *NoReplacementError) Error() string {
	return fmt.Sprintf("no replacement name found for: %s", e.Name)
}

// Is lets errors.Is compare against ErrNoReplacement.
func (e *NoReplacementError) Is(target error) bool {
	return target == ErrNoReplacement
}

// ResolveError names the identifier whose resolution failed. It wraps the
// matcher's error so core.KindOf still sees the failure kind.
type ResolveError struct {
	Kind string // "table" or "column"
	Name string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
