package semantic

import (
	"errors"
	"slices"
	"strings"
)

// ErrEmptyIdentifier is the cause of a computation failure for names that
// normalize to nothing.
var ErrEmptyIdentifier = errors.New("identifier normalizes to nothing")

// term is an identifier resolved against the lexicon.
type term struct {
	name    string
	key     string
	concept string   // "" when the lexicon does not know the term
	derived bool     // resolved through a trailing run of tokens
	parents []string // hypernym chain, nearest first
}

// resolve normalizes name and places it in the concept hierarchy.
//
// A name that is not a lemma resolves through its head: the longest trailing
// run of tokens that names a concept. "customer_last_name" becomes a
// hyponym of the concept named by "last name".
func (l *Lexicon) resolve(name string) (term, error) {
	tokens := Tokens(name)
	t := term{name: name, key: strings.Join(tokens, "")}
	if t.key == "" {
		return t, ErrEmptyIdentifier
	}

	if id, ok := l.lookup(t.key); ok {
		t.concept = id
	} else {
		for i := 1; i < len(tokens); i++ {
			if id, ok := l.lookup(strings.Join(tokens[i:], "")); ok {
				t.concept = id
				t.derived = true
				break
			}
		}
	}

	if t.concept == "" {
		return t, nil
	}

	chain, err := l.ancestors(t.concept)
	if err != nil {
		return t, err
	}
	if t.derived {
		chain = append([]string{t.concept}, chain...)
	}
	t.parents = chain
	return t, nil
}

// lookup finds a key, falling back to a naive singular form.
func (l *Lexicon) lookup(key string) (string, bool) {
	if id, ok := l.index[key]; ok {
		return id, true
	}
	if s := singular(key); s != key {
		if id, ok := l.index[s]; ok {
			return id, true
		}
	}
	return "", false
}

// parent returns the immediate hypernym, or "".
func (t term) parent() string {
	if len(t.parents) == 0 {
		return ""
	}
	return t.parents[0]
}

// relate classifies candidate c relative to query q. depth counts hierarchy
// levels between them for narrower and broader relations.
func relate(q, c term) (rel Relation, depth int) {
	if q.key == c.key {
		return RelationEquivalent, 0
	}
	if q.concept == "" || c.concept == "" {
		return RelationNone, 0
	}
	if !q.derived && !c.derived && q.concept == c.concept {
		return RelationEquivalent, 0
	}
	if !c.derived {
		if i := slices.Index(q.parents, c.concept); i >= 0 {
			return RelationBroader, i + 1
		}
	}
	if !q.derived {
		if i := slices.Index(c.parents, q.concept); i >= 0 {
			return RelationNarrower, i + 1
		}
	}
	if p := q.parent(); p != "" && p == c.parent() {
		return RelationSibling, 0
	}
	return RelationNone, 0
}
