package core

// Catalog is a read-only view of the real table and column names of a
// target schema. Implementations must not change while a reconciliation
// pass is reading them and must tolerate concurrent readers.
type Catalog interface {
	// TableNames returns every table name, sorted and unique.
	TableNames() []string

	// Tables returns every table, sorted by name.
	Tables() []Table

	// ContainsTable reports whether a table with this exact name exists.
	ContainsTable(name string) bool

	// ColumnExistsAnywhere reports whether at least one table has a column
	// with this name.
	ColumnExistsAnywhere(name string) bool
}

// Table describes a single table of a Catalog.
type Table interface {
	// Name returns the table name.
	Name() string

	// ContainsColumn reports whether the table has a column with this name.
	ContainsColumn(name string) bool

	// ColumnNames returns the table's column names, sorted and unique.
	// The same column name may appear in other tables.
	ColumnNames() []string
}
