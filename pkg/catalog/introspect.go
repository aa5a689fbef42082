package catalog

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/schemafix/pkg/adapter"
	"github.com/leapstack-labs/schemafix/pkg/core"
)

// Introspect builds a catalog from a connected adapter. An empty schema
// means the adapter's default schema.
func Introspect(ctx context.Context, a adapter.Adapter, schema string, opts ...Option) (*Catalog, error) {
	if schema == "" {
		schema = a.DefaultSchema()
	}

	names, err := a.ListTables(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", schema, err)
	}

	tables := make([]core.TableMetadata, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		md, err := a.GetTableMetadata(ctx, schema+"."+name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect table %s: %w", name, err)
		}
		tables = append(tables, *md)
	}

	return New(tables, opts...), nil
}
