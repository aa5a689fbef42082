package reconcile

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/schemafix/internal/testutil"
	"github.com/leapstack-labs/schemafix/pkg/catalog"
	"github.com/leapstack-labs/schemafix/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// synonymFactory builds matchers that accept exactly the listed synonyms.
// One synonym in the vocabulary is a match, several are ambiguous, none is
// no candidate.
type synonymFactory struct {
	synonyms map[string][]string
	broken   map[string]bool // queries that fail to compute
	failOn   string          // vocabulary entry that makes NewMatcher fail
	built    int
}

func (f *synonymFactory) NewMatcher(vocab []string) (core.Matcher, error) {
	f.built++
	for _, v := range vocab {
		if f.failOn != "" && v == f.failOn {
			return nil, errors.New("vocabulary rejected")
		}
	}
	return &synonymMatcher{f: f, vocab: vocab}, nil
}

type synonymMatcher struct {
	f     *synonymFactory
	vocab []string
}

func (m *synonymMatcher) Match(name string) (string, error) {
	if m.f.broken[name] {
		return "", core.NewComputationError(name, errors.New("boom"))
	}
	var hits []string
	for _, v := range m.vocab {
		for _, s := range m.f.synonyms[name] {
			if v == s {
				hits = append(hits, v)
			}
		}
	}
	switch len(hits) {
	case 0:
		return "", core.NewNoCandidateError(name)
	case 1:
		return hits[0], nil
	default:
		return "", core.NewAmbiguousError(name, hits)
	}
}

// fixedMatcher always returns the same answer.
type fixedMatcher struct {
	match string
	err   error
}

func (m fixedMatcher) Match(string) (string, error) { return m.match, m.err }

func table(name string, columns ...string) core.TableMetadata {
	md := core.TableMetadata{Name: name}
	for _, c := range columns {
		md.Columns = append(md.Columns, core.Column{Name: c})
	}
	return md
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]core.TableMetadata{
		table("people", "id", "name", "lastname"),
		table("staff", "id", "last_name", "role"),
		table("kettles", "id", "kettle"),
	})
}

func newEngine(t *testing.T, ids Identifiers, f core.MatcherFactory, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
	e, err := New(ids, testCatalog(), f, opts...)
	require.NoError(t, err)
	return e
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Identifiers{}, nil, &synonymFactory{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog is required")

	_, err = New(Identifiers{}, testCatalog(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factory is required")

	_, err = New(Identifiers{}, testCatalog(), &synonymFactory{failOn: "people"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build table matcher")
}

func TestNew_InjectedTableMatcher(t *testing.T) {
	f := &synonymFactory{}
	e := newEngine(t, Identifiers{Tables: []string{"persons"}}, f,
		WithTableMatcher(fixedMatcher{match: "people"}))
	assert.Equal(t, 0, f.built)

	got, err := e.ResolveTables()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"persons": "people"}, got)
}

func TestResolveTables(t *testing.T) {
	f := &synonymFactory{synonyms: map[string][]string{
		"persons": {"people"},
		"boilers": {"kettles"},
	}}
	e := newEngine(t, Identifiers{Tables: []string{"people", "persons", "boilers", "persons"}}, f)

	got, err := e.ResolveTables()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"persons": "people", "boilers": "kettles"}, got)
	assert.NotContains(t, got, "people")
}

func TestResolveTables_Failures(t *testing.T) {
	tests := []struct {
		name     string
		factory  *synonymFactory
		wantKind core.MatchErrorKind
	}{
		{
			name:     "no candidate",
			factory:  &synonymFactory{},
			wantKind: core.KindNoCandidate,
		},
		{
			name:     "ambiguous",
			factory:  &synonymFactory{synonyms: map[string][]string{"persons": {"people", "staff"}}},
			wantKind: core.KindAmbiguous,
		},
		{
			name:     "computation",
			factory:  &synonymFactory{broken: map[string]bool{"persons": true}},
			wantKind: core.KindComputation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, Identifiers{Tables: []string{"persons"}}, tt.factory)

			got, err := e.ResolveTables()
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tt.wantKind, core.KindOf(err))

			var re *ResolveError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, "table", re.Kind)
			assert.Equal(t, "persons", re.Name)
			assert.Contains(t, err.Error(), `resolving table "persons"`)
		})
	}
}

func TestResolveTables_FailFast(t *testing.T) {
	e := newEngine(t, Identifiers{Tables: []string{"persons", "boilers"}},
		&synonymFactory{synonyms: map[string][]string{"boilers": {"kettles"}}})

	_, err := e.ResolveTables()
	require.Error(t, err)
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "persons", re.Name)
}

func TestResolveColumns(t *testing.T) {
	f := &synonymFactory{synonyms: map[string][]string{
		"surname": {"lastname", "last_name"},
		"job":     {"role"},
	}}
	e := newEngine(t, Identifiers{Columns: []string{"id", "surname", "job", "kettle", "surname"}}, f)

	got, err := e.ResolveColumns()
	require.NoError(t, err)

	assert.Equal(t, ColumnReplacements{
		"surname": {{Table: "people", Column: "lastname"}, {Table: "staff", Column: "last_name"}},
		"job":     {{Table: "staff", Column: "role"}},
	}, got)
	assert.Equal(t, []string{"job", "surname"}, got.Keys())
}

func TestResolveColumns_NoReplacement(t *testing.T) {
	e := newEngine(t, Identifiers{Columns: []string{"name", "france"}}, &synonymFactory{})

	got, err := e.ResolveColumns()
	require.Error(t, err)
	assert.Nil(t, got)

	var nre *NoReplacementError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, "france", nre.Name)
	assert.Equal(t, "no replacement name found for: france", err.Error())
	assert.ErrorIs(t, err, ErrNoReplacement)
	assert.Equal(t, core.KindNone, core.KindOf(err))
}

func TestResolveColumns_FatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		factory  *synonymFactory
		wantKind core.MatchErrorKind
	}{
		{
			// ambiguous inside one table, no candidate in the others
			name:     "ambiguous",
			factory:  &synonymFactory{synonyms: map[string][]string{"surname": {"name", "lastname"}}},
			wantKind: core.KindAmbiguous,
		},
		{
			name:     "computation",
			factory:  &synonymFactory{broken: map[string]bool{"surname": true}},
			wantKind: core.KindComputation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, Identifiers{Columns: []string{"surname"}}, tt.factory)

			_, err := e.ResolveColumns()
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, core.KindOf(err))

			var re *ResolveError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, "column", re.Kind)
			assert.Equal(t, "surname", re.Name)
		})
	}
}

func TestResolveColumns_ForeignMatcherError(t *testing.T) {
	boom := errors.New("oracle offline")
	f := &stubFactory{m: fixedMatcher{err: boom}}
	e, err := New(Identifiers{Columns: []string{"surname"}}, testCatalog(), f,
		WithTableMatcher(fixedMatcher{match: "people"}))
	require.NoError(t, err)

	_, err = e.ResolveColumns()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, core.KindNone, core.KindOf(err))
}

type stubFactory struct {
	m core.Matcher
}

func (f *stubFactory) NewMatcher([]string) (core.Matcher, error) { return f.m, nil }

func TestMatchInTables(t *testing.T) {
	f := &synonymFactory{synonyms: map[string][]string{"surname": {"lastname", "last_name"}}}
	e := newEngine(t, Identifiers{}, f, WithTableMatcher(fixedMatcher{}))
	c := testCatalog()

	t.Run("existing column", func(t *testing.T) {
		got, err := e.MatchInTables("kettle", c.Tables())
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 0, f.built)
	})

	t.Run("subset of tables", func(t *testing.T) {
		staff, ok := c.Table("staff")
		require.True(t, ok)
		got, err := e.MatchInTables("surname", []core.Table{staff})
		require.NoError(t, err)
		assert.Equal(t, ColumnReplacements{"surname": {{Table: "staff", Column: "last_name"}}}, got)
	})

	t.Run("fresh matcher per table", func(t *testing.T) {
		before := f.built
		_, err := e.MatchInTables("surname", c.Tables())
		require.NoError(t, err)
		assert.Equal(t, before+3, f.built)
	})

	t.Run("no table matches", func(t *testing.T) {
		got, err := e.MatchInTables("france", c.Tables())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMatchInTables_FactoryError(t *testing.T) {
	f := &synonymFactory{failOn: "kettle"}
	e := newEngine(t, Identifiers{}, f, WithTableMatcher(fixedMatcher{}))

	_, err := e.MatchInTables("surname", testCatalog().Tables())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build matcher for table kettles")
}

func TestResolve(t *testing.T) {
	f := &synonymFactory{synonyms: map[string][]string{
		"persons": {"people"},
		"surname": {"lastname"},
	}}
	ids := Identifiers{
		Tables:  []string{"persons", "kettles"},
		Columns: []string{"surname", "kettle"},
	}

	e := newEngine(t, ids, f)
	first, err := e.Resolve()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"persons": "people"}, first.Tables)
	assert.Equal(t, ColumnReplacements{"surname": {{Table: "people", Column: "lastname"}}}, first.Columns)

	second, err := e.Resolve()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := newEngine(t, ids, f).Resolve()
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestResolve_TableFailureStopsColumns(t *testing.T) {
	f := &synonymFactory{synonyms: map[string][]string{"surname": {"lastname"}}}
	e := newEngine(t, Identifiers{Tables: []string{"persons"}, Columns: []string{"surname"}}, f)
	built := f.built

	_, err := e.Resolve()
	require.Error(t, err)
	assert.Equal(t, core.KindNoCandidate, core.KindOf(err))
	assert.Equal(t, built, f.built, "columns must not be resolved after a table failure")
}

func TestEngine_LogsSwallowedNoCandidate(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	f := &synonymFactory{synonyms: map[string][]string{"surname": {"lastname"}}}
	e, err := New(Identifiers{Columns: []string{"name", "surname"}}, testCatalog(), f, WithLogger(logger))
	require.NoError(t, err)

	_, err = e.ResolveColumns()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "column exists, skipping")
	assert.Contains(t, out, "no candidate in table")
	assert.Contains(t, out, "table=kettles")
	assert.Contains(t, out, "resolved column")
}
