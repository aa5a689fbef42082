package reconcile_test

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/schemafix/internal/testutil"
	"github.com/leapstack-labs/schemafix/pkg/catalog"
	"github.com/leapstack-labs/schemafix/pkg/core"
	"github.com/leapstack-labs/schemafix/pkg/reconcile"
	"github.com/leapstack-labs/schemafix/pkg/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaYAML = `tables:
  - name: people
    columns: [id, name, lastname, middlename, username]
  - name: kettles
    columns: [id, kettle, capacity]
  - name: contacts
    columns: [id, family_name, email]
`

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(strings.NewReader(schemaYAML))
	require.NoError(t, err)
	return c
}

func newFactory(t *testing.T) *semantic.Factory {
	t.Helper()
	f, err := semantic.NewFactory(semantic.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	return f
}

func TestSemanticReconciliation(t *testing.T) {
	ids := reconcile.Identifiers{
		Tables:  []string{"persons", "kettles"},
		Columns: []string{"surname", "name", "e_mail"},
	}

	e, err := reconcile.New(ids, loadCatalog(t), newFactory(t),
		reconcile.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	res, err := e.Resolve()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"persons": "people"}, res.Tables)
	assert.Equal(t, reconcile.ColumnReplacements{
		"surname": {
			{Table: "contacts", Column: "family_name"},
			{Table: "people", Column: "lastname"},
		},
		"e_mail": {
			{Table: "contacts", Column: "email"},
		},
	}, res.Columns)
}

func TestSemanticReconciliation_Failures(t *testing.T) {
	tests := []struct {
		name    string
		ids     reconcile.Identifiers
		check   func(t *testing.T, err error)
		wantMsg string
	}{
		{
			name: "column absent everywhere",
			ids:  reconcile.Identifiers{Columns: []string{"france"}},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, reconcile.ErrNoReplacement)
			},
			wantMsg: "no replacement name found for: france",
		},
		{
			name: "unknown table",
			ids:  reconcile.Identifiers{Tables: []string{"france"}},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, core.ErrNoCandidate)
			},
			wantMsg: `resolving table "france"`,
		},
		{
			name: "empty identifier",
			ids:  reconcile.Identifiers{Columns: []string{"--"}},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, core.ErrComputation)
			},
			wantMsg: `resolving column "--"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := reconcile.New(tt.ids, loadCatalog(t), newFactory(t))
			require.NoError(t, err)

			_, err = e.Resolve()
			require.Error(t, err)
			tt.check(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSemanticReconciliation_Idempotent(t *testing.T) {
	ids := reconcile.Identifiers{Columns: []string{"surname"}}
	c := loadCatalog(t)
	f := newFactory(t)

	var results []*reconcile.Result
	for i := 0; i < 3; i++ {
		e, err := reconcile.New(ids, c, f)
		require.NoError(t, err)
		res, err := e.Resolve()
		require.NoError(t, err)
		results = append(results, res)
	}
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[1], results[2])
}
