// Package adapter provides the database introspection contract used to build
// schema catalogs from live databases.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves with this package's registry in their init functions.
package adapter

import (
	"context"

	"github.com/leapstack-labs/schemafix/pkg/core"
)

// Type aliases for the shared introspection types defined in pkg/core.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata
)

// Adapter defines the interface that all database adapters must implement.
// Adapters only read schema information; they never execute user queries.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// ListTables returns the base tables and views of a schema, sorted by name.
	// An empty schema selects the adapter's default schema.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// GetTableMetadata retrieves column metadata for a table.
	// The table may be qualified as schema.table.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// DialectName returns the SQL dialect name (e.g. "postgres").
	DialectName() string

	// DefaultSchema returns the schema used when none is configured.
	DefaultSchema() string
}
