package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/leapstack-labs/schemafix/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSeeded returns a connected adapter over a fresh in-memory database.
func newSeeded(t *testing.T) *Adapter {
	t.Helper()

	a := New(nil)
	ctx := context.Background()
	require.NoError(t, a.Connect(ctx, adapter.Config{Type: "sqlite", Path: ":memory:"}))
	t.Cleanup(func() { _ = a.Close() })

	// A single connection keeps the in-memory database alive across queries.
	a.DB.SetMaxOpenConns(1)

	stmts := []string{
		`CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT NOT NULL, lastname TEXT, middlename TEXT, username TEXT)`,
		`CREATE TABLE kettles (id INTEGER PRIMARY KEY, kettle TEXT)`,
		`CREATE VIEW people_names AS SELECT name, lastname FROM people`,
	}
	for _, s := range stmts {
		_, err := a.DB.ExecContext(ctx, s)
		require.NoError(t, err)
	}
	return a
}

func TestAdapter_ListTables(t *testing.T) {
	a := newSeeded(t)

	tables, err := a.ListTables(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"kettles", "people", "people_names"}, tables)
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	a := newSeeded(t)

	md, err := a.GetTableMetadata(context.Background(), "people")
	require.NoError(t, err)

	assert.Equal(t, "main", md.Schema)
	assert.Equal(t, "people", md.Name)
	require.Len(t, md.Columns, 5)

	assert.Equal(t, "id", md.Columns[0].Name)
	assert.True(t, md.Columns[0].PrimaryKey)
	assert.Equal(t, 1, md.Columns[0].Position)

	assert.Equal(t, "name", md.Columns[1].Name)
	assert.Equal(t, "TEXT", md.Columns[1].Type)
	assert.False(t, md.Columns[1].Nullable)

	assert.Equal(t, "lastname", md.Columns[2].Name)
	assert.True(t, md.Columns[2].Nullable)
}

func TestAdapter_GetTableMetadata_Qualified(t *testing.T) {
	a := newSeeded(t)

	md, err := a.GetTableMetadata(context.Background(), "main.kettles")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "kettle"}, md.ColumnNames())
}

func TestAdapter_GetTableMetadata_NotFound(t *testing.T) {
	a := newSeeded(t)

	_, err := a.GetTableMetadata(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table missing not found")
}

func TestAdapter_NotConnected(t *testing.T) {
	a := New(nil)

	_, err := a.ListTables(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")

	_, err = a.GetTableMetadata(context.Background(), "people")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
}

func TestAdapter_FileDatabase(t *testing.T) {
	path := t.TempDir() + "/app.db"

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER, surname TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	a := New(nil)
	require.NoError(t, a.Connect(context.Background(), adapter.Config{Path: path}))
	defer func() { _ = a.Close() }()

	tables, err := a.ListTables(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, tables)
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ":memory:"},
		{":memory:", ":memory:"},
		{"data/app.db", "file:data/app.db?mode=ro"},
		{"file:app.db?cache=shared", "file:app.db?cache=shared"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.path))
		})
	}
}

func TestAdapter_Defaults(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "sqlite", a.DialectName())
	assert.Equal(t, "main", a.DefaultSchema())

	a.Cfg.Schema = "aux"
	assert.Equal(t, "aux", a.DefaultSchema())
}

func TestRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("sqlite"))
}
