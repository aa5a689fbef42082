// Package config provides configuration management for the schemafix CLI.
//
// Settings are layered from defaults, a schemafix.yaml file, SCHEMAFIX_*
// environment variables and command-line flags. The shared TargetConfig type
// lives in pkg/core and is re-exported here as an alias.
package config

import (
	"github.com/leapstack-labs/schemafix/pkg/core"
	"github.com/leapstack-labs/schemafix/pkg/semantic"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	Catalog         string               `koanf:"catalog"`
	Environment     string               `koanf:"environment"`
	Target          *TargetConfig        `koanf:"target"`
	Environments    map[string]EnvConfig `koanf:"environments"`
	Matcher         MatcherConfig        `koanf:"matcher"`
	CaseInsensitive bool                 `koanf:"case_insensitive"`
	OutputFormat    string               `koanf:"output"`
	LogLevel        string               `koanf:"log_level"`
	LogFormat       string               `koanf:"log_format"`
	Verbose         bool                 `koanf:"verbose"`
	Concurrency     int                  `koanf:"concurrency"`

	// BaseDir is the directory relative paths from the config file resolve against.
	BaseDir string `koanf:"-"`
}

// MatcherConfig tunes the semantic matcher.
type MatcherConfig struct {
	Lexicon      string  `koanf:"lexicon"`
	MinScore     float64 `koanf:"min_score"`
	MinGap       float64 `koanf:"min_gap"`
	LexicalFloor float64 `koanf:"lexical_floor"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Catalog string        `koanf:"catalog"`
	Target  *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultConcurrency  = 4
	DefaultMinScore     = semantic.DefaultMinScore
	DefaultMinGap       = semantic.DefaultMinGap
	DefaultLexicalFloor = semantic.DefaultLexicalFloor
)

// HasTarget reports whether a database target is configured.
func (c *Config) HasTarget() bool {
	return c.Target != nil && c.Target.Type != ""
}
