// Package reconcile repairs the identifiers of a query against a schema
// catalog.
//
// Given the table and column names a query uses, the Engine finds, for each
// name the catalog does not contain, the single semantically equivalent name
// that it does contain. Tables are matched against all table names of the
// catalog. Columns are matched against each table's columns independently
// and every table that yields a match is reported.
//
// The engine never guesses: a name with no plausible replacement, or with
// several equally plausible ones, fails the whole pass.
//
// Column names qualified by a table ("t.col") get no special treatment. A
// column is looked up by its bare name in every table, so a qualified column
// may be matched in a table other than the one its qualifier names.
package reconcile
