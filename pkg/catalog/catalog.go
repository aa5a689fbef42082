// Package catalog provides immutable snapshots of a target schema's table and
// column names.
//
// A Catalog is built once (from metadata, a YAML file, or by introspecting a
// live database through an adapter) and never changes afterwards, so a single
// snapshot can back any number of concurrent reconciliation requests.
package catalog

import (
	"sort"

	"github.com/leapstack-labs/schemafix/pkg/core"
	"golang.org/x/text/cases"
)

// Option configures how a Catalog is built.
type Option func(*options)

type options struct {
	caseInsensitive bool
}

// WithCaseInsensitive makes every membership test fold case. Names returned by
// the catalog keep their original spelling.
func WithCaseInsensitive() Option {
	return func(o *options) {
		o.caseInsensitive = true
	}
}

// Catalog is an immutable snapshot implementing core.Catalog.
type Catalog struct {
	tables     []*Table
	byKey      map[string]*Table
	columnKeys map[string]struct{}
	names      []string
	fold       func(string) string
}

// Table is an immutable table snapshot implementing core.Table.
type Table struct {
	name    string
	schema  string
	columns []string
	types   map[string]string
	keys    map[string]struct{}
	fold    func(string) string
}

// New builds a catalog from table metadata.
// Tables with the same name are merged and repeated columns are collapsed.
func New(tables []core.TableMetadata, opts ...Option) *Catalog {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	fold := identity
	if o.caseInsensitive {
		// Casers are stateful, so each lookup gets its own.
		fold = func(s string) string { return cases.Fold().String(s) }
	}

	c := &Catalog{
		byKey:      make(map[string]*Table),
		columnKeys: make(map[string]struct{}),
		fold:       fold,
	}

	for _, md := range tables {
		if md.Name == "" {
			continue
		}
		key := fold(md.Name)
		t, ok := c.byKey[key]
		if !ok {
			t = &Table{
				name:   md.Name,
				schema: md.Schema,
				types:  make(map[string]string),
				keys:   make(map[string]struct{}),
				fold:   fold,
			}
			c.byKey[key] = t
			c.tables = append(c.tables, t)
		}
		for _, col := range md.Columns {
			t.addColumn(col)
		}
	}

	sort.Slice(c.tables, func(i, j int) bool { return c.tables[i].name < c.tables[j].name })
	c.names = make([]string, len(c.tables))
	for i, t := range c.tables {
		sort.Strings(t.columns)
		c.names[i] = t.name
		for k := range t.keys {
			c.columnKeys[k] = struct{}{}
		}
	}

	return c
}

func identity(s string) string { return s }

func (t *Table) addColumn(col core.Column) {
	if col.Name == "" {
		return
	}
	key := t.fold(col.Name)
	if _, dup := t.keys[key]; dup {
		return
	}
	t.keys[key] = struct{}{}
	t.columns = append(t.columns, col.Name)
	if col.Type != "" {
		t.types[col.Name] = col.Type
	}
}

// TableNames returns every table name, sorted.
func (c *Catalog) TableNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Tables returns every table, sorted by name.
func (c *Catalog) Tables() []core.Table {
	out := make([]core.Table, len(c.tables))
	for i, t := range c.tables {
		out[i] = t
	}
	return out
}

// Table returns the named table.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.byKey[c.fold(name)]
	return t, ok
}

// ContainsTable reports whether the table exists.
func (c *Catalog) ContainsTable(name string) bool {
	_, ok := c.byKey[c.fold(name)]
	return ok
}

// ColumnExistsAnywhere reports whether any table has the column.
func (c *Catalog) ColumnExistsAnywhere(name string) bool {
	_, ok := c.columnKeys[c.fold(name)]
	return ok
}

// Len returns the number of tables.
func (c *Catalog) Len() int {
	return len(c.tables)
}

// Metadata returns the snapshot as table metadata, sorted by table name.
func (c *Catalog) Metadata() []core.TableMetadata {
	out := make([]core.TableMetadata, 0, len(c.tables))
	for _, t := range c.tables {
		md := core.TableMetadata{Schema: t.schema, Name: t.name}
		for i, name := range t.columns {
			md.Columns = append(md.Columns, core.Column{Name: name, Type: t.types[name], Position: i + 1})
		}
		out = append(out, md)
	}
	return out
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the schema the table was read from, if known.
func (t *Table) Schema() string { return t.schema }

// ContainsColumn reports whether the table has the column.
func (t *Table) ContainsColumn(name string) bool {
	_, ok := t.keys[t.fold(name)]
	return ok
}

// ColumnNames returns the column names, sorted.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnType returns the declared type of a column, if known.
func (t *Table) ColumnType(name string) string {
	return t.types[name]
}

var (
	_ core.Catalog = (*Catalog)(nil)
	_ core.Table   = (*Table)(nil)
)
