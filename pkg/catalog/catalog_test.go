package catalog

import (
	"sync"
	"testing"

	"github.com/leapstack-labs/schemafix/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cols(names ...string) []core.Column {
	out := make([]core.Column, len(names))
	for i, n := range names {
		out[i] = core.Column{Name: n}
	}
	return out
}

func sample() []core.TableMetadata {
	return []core.TableMetadata{
		{Name: "users", Columns: cols("name", "lastname", "id")},
		{Name: "accounts", Columns: cols("id", "username")},
	}
}

func TestNew(t *testing.T) {
	c := New(sample())

	assert.Equal(t, []string{"accounts", "users"}, c.TableNames())
	assert.Equal(t, 2, c.Len())

	tables := c.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "accounts", tables[0].Name())
	assert.Equal(t, []string{"id", "lastname", "name"}, tables[1].ColumnNames())
}

func TestNew_MergesDuplicates(t *testing.T) {
	c := New([]core.TableMetadata{
		{Name: "users", Columns: cols("id", "name", "id")},
		{Name: "users", Columns: cols("name", "email")},
		{Name: "", Columns: cols("ignored")},
	})

	assert.Equal(t, []string{"users"}, c.TableNames())
	tbl, ok := c.Table("users")
	require.True(t, ok)
	assert.Equal(t, []string{"email", "id", "name"}, tbl.ColumnNames())
	assert.False(t, c.ColumnExistsAnywhere("ignored"))
}

func TestCatalog_Membership(t *testing.T) {
	c := New(sample())

	tests := []struct {
		name  string
		check func() bool
		want  bool
	}{
		{"table present", func() bool { return c.ContainsTable("users") }, true},
		{"table absent", func() bool { return c.ContainsTable("people") }, false},
		{"table case sensitive", func() bool { return c.ContainsTable("Users") }, false},
		{"column in one table", func() bool { return c.ColumnExistsAnywhere("username") }, true},
		{"column in both tables", func() bool { return c.ColumnExistsAnywhere("id") }, true},
		{"column absent", func() bool { return c.ColumnExistsAnywhere("surname") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check())
		})
	}
}

func TestCatalog_CaseInsensitive(t *testing.T) {
	c := New([]core.TableMetadata{{Name: "Users", Columns: cols("LastName")}}, WithCaseInsensitive())

	assert.True(t, c.ContainsTable("users"))
	assert.True(t, c.ColumnExistsAnywhere("LASTNAME"))
	assert.Equal(t, []string{"Users"}, c.TableNames())

	tbl, ok := c.Table("USERS")
	require.True(t, ok)
	assert.True(t, tbl.ContainsColumn("lastname"))
	assert.Equal(t, []string{"LastName"}, tbl.ColumnNames())
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := New(sample())

	names := c.TableNames()
	names[0] = "mutated"
	assert.Equal(t, "accounts", c.TableNames()[0])

	tbl, _ := c.Table("users")
	cn := tbl.ColumnNames()
	cn[0] = "mutated"
	assert.Equal(t, "id", tbl.ColumnNames()[0])
}

func TestCatalog_Metadata(t *testing.T) {
	c := New([]core.TableMetadata{
		{Schema: "sales", Name: "orders", Columns: []core.Column{{Name: "total", Type: "numeric"}, {Name: "id"}}},
	})

	md := c.Metadata()
	require.Len(t, md, 1)
	assert.Equal(t, "sales", md[0].Schema)
	assert.Equal(t, []core.Column{
		{Name: "id", Position: 1},
		{Name: "total", Type: "numeric", Position: 2},
	}, md[0].Columns)

	tbl, _ := c.Table("orders")
	assert.Equal(t, "numeric", tbl.ColumnType("total"))
	assert.Equal(t, "sales", tbl.Schema())
}

func TestCatalog_ConcurrentReaders(t *testing.T) {
	c := New(sample(), WithCaseInsensitive())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, c.ColumnExistsAnywhere("USERNAME"))
				assert.Len(t, c.Tables(), 2)
			}
		}()
	}
	wg.Wait()
}
