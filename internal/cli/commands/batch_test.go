package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leapstack-labs/schemafix/internal/testutil"
	"github.com/leapstack-labs/schemafix/pkg/catalog"
	"github.com/leapstack-labs/schemafix/pkg/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchCatalog = `tables:
  - name: people
    columns: [id, lastname, middlename, username]
  - name: kettles
    columns: [id, kettle]
`

func TestParseBatch(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{
			name:  "sql and names",
			input: "- id: a\n  sql: SELECT 1 FROM t\n- tables: [persons]\n  columns: [surname]\n",
			want:  2,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: "batch file is empty",
		},
		{
			name:    "both sql and names",
			input:   "- sql: SELECT a FROM t\n  tables: [t]\n",
			wantErr: "request #1: needs either sql or tables/columns",
		},
		{
			name:    "neither",
			input:   "- tables: [t]\n- id: x\n",
			wantErr: "request #2",
		},
		{
			name:    "not a list",
			input:   "sql: SELECT a FROM t\n",
			wantErr: "cannot unmarshal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBatch(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRunBatch(t *testing.T) {
	cat, err := catalog.Load(strings.NewReader(batchCatalog))
	require.NoError(t, err)
	factory, err := semantic.NewFactory()
	require.NoError(t, err)

	requests := []BatchRequest{
		{ID: "tied", Columns: []string{"name"}},
		{Tables: []string{"persons"}},
		{ID: "broken", SQL: "SELECT 'x"},
		{ID: "unknown", Columns: []string{"france"}},
		{ID: "sql", SQL: "SELECT surname FROM people"},
	}

	logger, logs := testutil.NewCaptureLogger()
	results, err := RunBatch(context.Background(), requests, cat, factory, logger, 3)
	require.NoError(t, err)
	require.Len(t, results, len(requests))

	assert.Equal(t, "tied", results[0].ID)
	assert.Equal(t, StatusAmbiguous, results[0].Status)
	assert.Contains(t, results[0].Error, "ambiguous")

	_, err = uuid.Parse(results[1].ID)
	assert.NoError(t, err, "missing ids are generated")
	assert.Equal(t, StatusOK, results[1].Status)
	assert.Equal(t, map[string]string{"persons": "people"}, results[1].Tables)

	assert.Equal(t, StatusError, results[2].Status)
	assert.Contains(t, results[2].Error, "unterminated string literal")

	assert.Equal(t, StatusNoCandidate, results[3].Status)
	assert.Equal(t, "no replacement name found for: france", results[3].Error)

	assert.Equal(t, StatusOK, results[4].Status)
	assert.Empty(t, results[4].Tables)
	require.Len(t, results[4].Columns["surname"], 1)
	assert.Equal(t, "lastname", results[4].Columns["surname"][0].Column)

	assert.Contains(t, logs.String(), "request_id=unknown")
}

func TestRunBatch_Cancelled(t *testing.T) {
	cat, err := catalog.Load(strings.NewReader(batchCatalog))
	require.NoError(t, err)
	factory, err := semantic.NewFactory()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = RunBatch(ctx, []BatchRequest{{Tables: []string{"persons"}}}, cat, factory, testutil.NewTestLogger(t), 1)
	assert.ErrorIs(t, err, context.Canceled)
}
