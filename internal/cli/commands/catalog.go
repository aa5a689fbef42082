package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/schemafix/internal/cli/output"
	"github.com/leapstack-labs/schemafix/pkg/catalog"
	"github.com/spf13/cobra"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	var tablesOnly bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the tables and columns names are resolved against",
		Long: `Print the schema catalog loaded from --catalog or introspected from the
configured target.

With --output yaml the catalog is written in the same layout --catalog reads,
so a live schema can be snapshotted into a file.`,
		Example: `  # Inspect a SQLite database
  schemafix catalog --database app.db

  # Snapshot a Postgres schema for offline use
  schemafix catalog -t prod -o yaml > catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalog(cmd, tablesOnly)
		},
	}

	cmd.Flags().BoolVar(&tablesOnly, "tables-only", false, "List table names only")

	return cmd
}

// catalogTable is the JSON form of one table.
type catalogTable struct {
	Name    string   `json:"name"`
	Schema  string   `json:"schema,omitempty"`
	Columns []string `json:"columns"`
}

func runCatalog(cmd *cobra.Command, tablesOnly bool) error {
	cmdCtx := NewCommandContext(cmd)
	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if tablesOnly {
			return r.JSON(cat.TableNames())
		}
		tables := make([]catalogTable, 0, cat.Len())
		for _, md := range cat.Metadata() {
			tables = append(tables, catalogTable{Name: md.Name, Schema: md.Schema, Columns: md.ColumnNames()})
		}
		return r.JSON(tables)
	case output.ModeYAML:
		if tablesOnly {
			return r.YAML(cat.TableNames())
		}
		return catalog.Write(r.Writer(), cat)
	}

	r.Header(2, fmt.Sprintf("Catalog (%d tables)", cat.Len()))
	if tablesOnly {
		rows := make([][]string, 0, cat.Len())
		for _, name := range cat.TableNames() {
			rows = append(rows, []string{name})
		}
		r.Table([]string{"Table"}, rows, "No tables.")
		return nil
	}

	rows := make([][]string, 0, cat.Len())
	for _, md := range cat.Metadata() {
		rows = append(rows, []string{md.Name, strings.Join(md.ColumnNames(), ", ")})
	}
	r.Table([]string{"Table", "Columns"}, rows, "No tables.")
	return nil
}
