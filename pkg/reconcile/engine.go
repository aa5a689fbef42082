package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/schemafix/pkg/core"
)

// Identifiers are the table and column names a query uses, in query order.
// Names are compared with the catalog as given; the engine does not change
// their case.
type Identifiers struct {
	Tables  []string `json:"tables" yaml:"tables"`
	Columns []string `json:"columns" yaml:"columns"`
}

// ColumnMatch is one replacement for a column: the table it was found in and
// the column name that matched.
type ColumnMatch struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

// ColumnReplacements maps an unresolved column name to every match found
// across the catalog's tables, in table order.
type ColumnReplacements map[string][]ColumnMatch

// Keys returns the replaced column names, sorted.
func (r ColumnReplacements) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// merge appends other's matches to r. Existing matches are kept.
func (r ColumnReplacements) merge(other ColumnReplacements) {
	for name, matches := range other {
		r[name] = append(r[name], matches...)
	}
}

// Result holds the replacement maps of a full pass.
type Result struct {
	Tables  map[string]string  `json:"tables" yaml:"tables"`
	Columns ColumnReplacements `json:"columns" yaml:"columns"`
}

// Engine resolves one query's identifiers against one catalog.
// It is built per request and holds no state between passes.
type Engine struct {
	ids          Identifiers
	catalog      core.Catalog
	factory      core.MatcherFactory
	tableMatcher core.Matcher
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTableMatcher sets the matcher used for table names instead of one
// built by the factory over the catalog's table names.
func WithTableMatcher(m core.Matcher) Option {
	return func(e *Engine) { e.tableMatcher = m }
}

// WithLogger sets the logger. Decisions are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine for ids over catalog. Column matchers, and the
// table matcher unless one is given, are built by factory.
func New(ids Identifiers, catalog core.Catalog, factory core.MatcherFactory, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, errors.New("reconcile: catalog is required")
	}
	if factory == nil {
		return nil, errors.New("reconcile: matcher factory is required")
	}

	e := &Engine{
		ids:     ids,
		catalog: catalog,
		factory: factory,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	if e.tableMatcher == nil {
		m, err := factory.NewMatcher(catalog.TableNames())
		if err != nil {
			return nil, fmt.Errorf("failed to build table matcher: %w", err)
		}
		e.tableMatcher = m
	}

	return e, nil
}

// ResolveTables maps every query table the catalog lacks to its replacement.
// The first failure aborts the pass and no partial map is returned.
func (e *Engine) ResolveTables() (map[string]string, error) {
	out := make(map[string]string)

	for _, name := range e.ids.Tables {
		if e.catalog.ContainsTable(name) {
			e.logger.Debug("table exists, skipping", slog.String("table", name))
			continue
		}
		if _, done := out[name]; done {
			continue
		}

		matched, err := e.tableMatcher.Match(name)
		if err != nil {
			return nil, &ResolveError{Kind: "table", Name: name, Err: err}
		}

		e.logger.Debug("resolved table",
			slog.String("table", name),
			slog.String("replacement", matched))
		out[name] = matched
	}

	return out, nil
}

// ResolveColumns maps every query column that no table has to the matches
// found across all tables. A column with no match in any table fails with a
// *NoReplacementError.
func (e *Engine) ResolveColumns() (ColumnReplacements, error) {
	out := make(ColumnReplacements)
	tables := e.catalog.Tables()

	for _, name := range e.ids.Columns {
		if e.catalog.ColumnExistsAnywhere(name) {
			e.logger.Debug("column exists, skipping", slog.String("column", name))
			continue
		}
		if _, done := out[name]; done {
			continue
		}

		found, err := e.MatchInTables(name, tables)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, &NoReplacementError{Name: name}
		}

		out.merge(found)
	}

	return out, nil
}

// MatchInTables matches column against each table's columns with a fresh
// matcher per table. A table with no candidate is skipped; any other matcher
// failure is returned. A column that already exists somewhere yields an
// empty map.
func (e *Engine) MatchInTables(column string, tables []core.Table) (ColumnReplacements, error) {
	out := make(ColumnReplacements)
	if e.catalog.ColumnExistsAnywhere(column) {
		return out, nil
	}

	for _, table := range tables {
		m, err := e.factory.NewMatcher(table.ColumnNames())
		if err != nil {
			return nil, fmt.Errorf("failed to build matcher for table %s: %w", table.Name(), err)
		}

		matched, err := m.Match(column)
		if err != nil {
			switch core.KindOf(err) {
			case core.KindNoCandidate:
				e.logger.Debug("no candidate in table",
					slog.String("column", column),
					slog.String("table", table.Name()))
				continue
			default:
				// ambiguous, computation and foreign errors are fatal
				return nil, &ResolveError{Kind: "column", Name: column, Err: err}
			}
		}

		e.logger.Debug("resolved column",
			slog.String("column", column),
			slog.String("table", table.Name()),
			slog.String("replacement", matched))
		out[column] = append(out[column], ColumnMatch{Table: table.Name(), Column: matched})
	}

	return out, nil
}

// Resolve runs ResolveTables then ResolveColumns.
func (e *Engine) Resolve() (*Result, error) {
	tables, err := e.ResolveTables()
	if err != nil {
		return nil, err
	}
	columns, err := e.ResolveColumns()
	if err != nil {
		return nil, err
	}
	return &Result{Tables: tables, Columns: columns}, nil
}
