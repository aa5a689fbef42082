// Package core defines the shared language of schemafix.
//
// This package contains:
//   - Schema contracts (Catalog, Table) consumed by the reconciliation engine
//   - The semantic matcher contract (Matcher, MatcherFactory) and its error taxonomy
//   - Introspection types (AdapterConfig, TableMetadata, Column)
//   - Target configuration (TargetConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
