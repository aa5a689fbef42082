package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/schemafix/pkg/adapter"
)

// Output modes accepted by the output key.
var validOutputs = []string{"auto", "text", "markdown", "json", "yaml"}

// UnknownEnvironmentError is returned when --target names an environment
// the config does not define.
type UnknownEnvironmentError struct {
	Name      string
	Available []string
}

func (e *UnknownEnvironmentError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown environment %q: no environments are configured", e.Name)
	}
	return fmt.Sprintf("unknown environment %q\nAvailable environments: %v", e.Name, e.Available)
}

func environmentNames(envs map[string]EnvConfig) []string {
	names := make([]string, 0, len(envs))
	for name := range envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Target != nil {
		if err := ValidateTarget(c.Target); err != nil {
			return fmt.Errorf("invalid target configuration: %w", err)
		}
	}

	thresholds := []struct {
		key string
		v   float64
	}{
		{"matcher.min_score", c.Matcher.MinScore},
		{"matcher.min_gap", c.Matcher.MinGap},
		{"matcher.lexical_floor", c.Matcher.LexicalFloor},
	}
	for _, th := range thresholds {
		if th.v < 0 || th.v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %g", th.key, th.v)
		}
	}

	if !contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output %q (expected one of: %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log_format %q (expected text or json)", c.LogFormat)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// ValidateTarget checks the target against the adapter registry.
// A target with neither type nor database is treated as unset.
func ValidateTarget(t *TargetConfig) error {
	if t.Type == "" {
		if t.Database == "" && t.Host == "" {
			return nil
		}
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// ParseLevel maps a log_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q (expected debug, info, warn or error)", s)
	}
	return lvl, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
