package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/schemafix/internal/cli/config"
)

// generateConfigDocs generates the schemafix.yaml reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "general", "matcher", "target"
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go Config and core.TargetConfig.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "catalog", Type: "string", Description: "YAML catalog file; skips database introspection", Category: "general"},
		{Name: "environment", Type: "string", Description: "Environment applied when --target is not given", Category: "general"},
		{Name: "case_insensitive", Type: "bool", Default: "false", Description: "Compare catalog names case-insensitively", Category: "general"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown, json, yaml", Category: "general"},
		{Name: "log_level", Type: "string", Default: config.DefaultLogLevel, Description: "Log level: debug, info, warn, error", Category: "general"},
		{Name: "log_format", Type: "string", Default: config.DefaultLogFormat, Description: "Log format: text or json", Category: "general"},
		{Name: "concurrency", Type: "int", Default: fmt.Sprint(config.DefaultConcurrency), Description: "Parallel requests in batch mode", Category: "general"},

		{Name: "lexicon", Type: "string", Description: "Extra lexicon YAML merged into the built-in one", Category: "matcher"},
		{Name: "min_score", Type: "float", Default: fmt.Sprint(config.DefaultMinScore), Description: "Lowest score a candidate may have", Category: "matcher"},
		{Name: "min_gap", Type: "float", Default: fmt.Sprint(config.DefaultMinGap), Description: "Score lead the best candidate needs over the runner-up", Category: "matcher"},
		{Name: "lexical_floor", Type: "float", Default: fmt.Sprint(config.DefaultLexicalFloor), Description: "Lowest spelling similarity accepted without a lexicon relation", Category: "matcher"},

		{Name: "type", Type: "string", Description: "Database type: sqlite, duckdb, postgres", Category: "target"},
		{Name: "database", Type: "string", Description: "File path (SQLite, DuckDB) or database name (PostgreSQL)", Category: "target"},
		{Name: "host", Type: "string", Description: "Database host", Category: "target"},
		{Name: "port", Type: "int", Default: "5432", Description: "Database port (PostgreSQL)", Category: "target"},
		{Name: "user", Type: "string", Description: "Database username", Category: "target"},
		{Name: "password", Type: "string", Description: "Database password", Category: "target"},
		{Name: "schema", Type: "string", Description: "Schema to introspect", Category: "target"},
		{Name: "options", Type: "map[string]string", Description: "Additional driver-specific options", Category: "target"},
		{Name: "params", Type: "map[string]any", Description: "Adapter-specific configuration (DuckDB extensions, settings)", Category: "target"},
	}
}

func fieldRows(fields []ConfigField, category string) [][]string {
	var rows [][]string
	for _, f := range fields {
		if f.Category != category {
			continue
		}
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		} else {
			defVal = InlineCode(defVal)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
	}
	return rows
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "schemafix configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("schemafix reads %s from the working directory or the nearest parent directory. "+
		"Settings are layered: defaults, the config file, %s environment variables, then command-line flags.",
		InlineCode(config.ConfigFileName), InlineCode(config.EnvPrefix+"*")))

	fields := getConfigSchema()
	headers := []string{"Field", "Type", "Default", "Description"}

	w.Header(2, "General Settings")
	w.Table(headers, fieldRows(fields, "general"))

	w.Header(2, "Matcher")
	w.Paragraph("Thresholds under the " + InlineCode("matcher") + " key. All three must be between 0 and 1.")
	w.Table(headers, fieldRows(fields, "matcher"))

	w.Header(2, "Target Configuration")
	w.Paragraph("The " + InlineCode("target") + " key names the database whose schema is introspected when no catalog file is given.")
	w.Table(headers, fieldRows(fields, "target"))

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# schemafix.yaml
environment: dev
output: markdown

matcher:
  min_gap: 0.2

target:
  type: sqlite
  database: ./data/app.db

environments:
  dev:
    target:
      type: duckdb
      database: ./data/dev.duckdb
      params:
        extensions:
          - parquet

  prod:
    target:
      type: postgres
      host: prod-db.example.com
      user: schemafix
      password: ${PROD_DB_PASSWORD}
      database: analytics
      schema: public

  offline:
    catalog: ./catalog.yaml`)

	w.Header(2, "Environment Variables")
	w.Paragraph("Use `${VAR_NAME}` syntax to reference environment variables in target settings:")
	w.CodeBlock("yaml", `target:
  type: postgres
  password: ${POSTGRES_PASSWORD}`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
