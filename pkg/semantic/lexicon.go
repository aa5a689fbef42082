package semantic

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var builtinLexicon []byte

// maxDepth bounds hierarchy walks.
const maxDepth = 64

// Concept is a lexicon entry: a meaning, the lemmas that name it and its
// hypernym.
type Concept struct {
	ID     string   `yaml:"id"`
	Lemmas []string `yaml:"lemmas"`
	Parent string   `yaml:"parent,omitempty"`
}

type lexiconFile struct {
	Concepts []Concept `yaml:"concepts"`
}

// LexiconError reports an invalid lexicon.
type LexiconError struct {
	File    string
	Concept string
	Message string
}

func (e *LexiconError) Error() string {
	msg := e.Message
	if e.Concept != "" {
		msg = fmt.Sprintf("concept %q: %s", e.Concept, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}

// Lexicon is a validated, immutable concept hierarchy.
type Lexicon struct {
	concepts map[string]*Concept
	index    map[string]string // normalized lemma key -> concept id
}

var defaultLexicon = sync.OnceValues(func() (*Lexicon, error) {
	concepts, err := parseConcepts(bytes.NewReader(builtinLexicon))
	if err != nil {
		return nil, fmt.Errorf("built-in lexicon: %w", err)
	}
	return NewLexicon(concepts)
})

// DefaultLexicon returns the built-in lexicon.
func DefaultLexicon() (*Lexicon, error) {
	return defaultLexicon()
}

// NewLexicon validates concepts and builds a lexicon.
func NewLexicon(concepts []Concept) (*Lexicon, error) {
	l := &Lexicon{
		concepts: make(map[string]*Concept, len(concepts)),
		index:    make(map[string]string),
	}

	for i := range concepts {
		c := concepts[i]
		if c.ID == "" {
			return nil, &LexiconError{Message: fmt.Sprintf("concept #%d has no id", i+1)}
		}
		if _, dup := l.concepts[c.ID]; dup {
			return nil, &LexiconError{Concept: c.ID, Message: "defined twice"}
		}
		c.Lemmas = append([]string(nil), c.Lemmas...)
		l.concepts[c.ID] = &c
	}

	if err := l.buildIndex(); err != nil {
		return nil, err
	}
	if err := l.checkHierarchy(); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadLexiconFile reads concepts from a YAML file in the same layout as the
// built-in lexicon.
func LoadLexiconFile(path string) ([]Concept, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided by design
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon file: %w", err)
	}
	defer func() { _ = f.Close() }()

	concepts, err := parseConcepts(f)
	if err != nil {
		var le *LexiconError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return concepts, nil
}

func parseConcepts(r io.Reader) ([]Concept, error) {
	var lf lexiconFile
	if err := yaml.NewDecoder(r).Decode(&lf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &LexiconError{Message: err.Error()}
	}
	return lf.Concepts, nil
}

// Extend returns a new lexicon with extra concepts merged in. A concept whose
// id already exists gains the extra lemmas, and its parent is replaced when
// one is given. The receiver is not modified.
func (l *Lexicon) Extend(extra []Concept) (*Lexicon, error) {
	merged := make(map[string]*Concept, len(l.concepts)+len(extra))
	order := make([]string, 0, len(l.concepts)+len(extra))
	for _, id := range l.ids() {
		c := *l.concepts[id]
		c.Lemmas = append([]string(nil), c.Lemmas...)
		merged[id] = &c
		order = append(order, id)
	}

	for i, e := range extra {
		if e.ID == "" {
			return nil, &LexiconError{Message: fmt.Sprintf("concept #%d has no id", i+1)}
		}
		c, ok := merged[e.ID]
		if !ok {
			c = &Concept{ID: e.ID}
			merged[e.ID] = c
			order = append(order, e.ID)
		}
		c.Lemmas = append(c.Lemmas, e.Lemmas...)
		if e.Parent != "" {
			c.Parent = e.Parent
		}
	}

	concepts := make([]Concept, 0, len(order))
	for _, id := range order {
		concepts = append(concepts, *merged[id])
	}
	return NewLexicon(concepts)
}

// Len returns the number of concepts.
func (l *Lexicon) Len() int {
	return len(l.concepts)
}

// Concept returns the concept with the given id.
func (l *Lexicon) Concept(id string) (Concept, bool) {
	c, ok := l.concepts[id]
	if !ok {
		return Concept{}, false
	}
	return *c, true
}

// Concepts returns every concept, sorted by id.
func (l *Lexicon) Concepts() []Concept {
	ids := l.ids()
	out := make([]Concept, 0, len(ids))
	for _, id := range ids {
		out = append(out, *l.concepts[id])
	}
	return out
}

// Lookup returns the id of the concept a normalized key names.
func (l *Lexicon) Lookup(key string) (string, bool) {
	id, ok := l.index[key]
	return id, ok
}

// ancestors returns the hypernym chain of a concept, nearest first.
func (l *Lexicon) ancestors(id string) ([]string, error) {
	var chain []string
	seen := map[string]bool{id: true}
	c, ok := l.concepts[id]
	if !ok {
		return nil, fmt.Errorf("unknown concept %q", id)
	}
	for c.Parent != "" {
		if seen[c.Parent] || len(chain) >= maxDepth {
			return nil, fmt.Errorf("concept %q has a cyclic hierarchy", id)
		}
		p, ok := l.concepts[c.Parent]
		if !ok {
			return nil, fmt.Errorf("concept %q has unknown parent %q", c.ID, c.Parent)
		}
		seen[p.ID] = true
		chain = append(chain, p.ID)
		c = p
	}
	return chain, nil
}

func (l *Lexicon) buildIndex() error {
	for _, id := range l.ids() {
		c := l.concepts[id]
		for _, lemma := range append([]string{c.ID}, c.Lemmas...) {
			key := Key(lemma)
			if key == "" {
				return &LexiconError{Concept: id, Message: fmt.Sprintf("lemma %q normalizes to nothing", lemma)}
			}
			if owner, dup := l.index[key]; dup && owner != id {
				return &LexiconError{Concept: id, Message: fmt.Sprintf("lemma %q is already used by concept %q", lemma, owner)}
			}
			l.index[key] = id
		}
	}
	return nil
}

func (l *Lexicon) checkHierarchy() error {
	for _, id := range l.ids() {
		c := l.concepts[id]
		if c.Parent != "" {
			if _, ok := l.concepts[c.Parent]; !ok {
				return &LexiconError{Concept: id, Message: fmt.Sprintf("unknown parent %q", c.Parent)}
			}
		}
		if _, err := l.ancestors(id); err != nil {
			return &LexiconError{Concept: id, Message: "parent chain forms a cycle"}
		}
	}
	return nil
}

// ids returns concept ids in sorted order so validation errors are stable.
func (l *Lexicon) ids() []string {
	ids := make([]string, 0, len(l.concepts))
	for id := range l.concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
