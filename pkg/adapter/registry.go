package adapter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Factory builds an introspection adapter. The logger is never nil.
type Factory func(*slog.Logger) Adapter

// registration is one database type known to the registry.
type registration struct {
	factory    Factory
	extensions []string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]registration)
)

// Register makes a database type available for schema introspection.
// Adapter packages call it from init(). Names are case-insensitive.
// extensions lists the file suffixes (".db") that identify databases of
// this type when only a path is given.
func Register(name string, factory Factory, extensions ...string) {
	exts := make([]string, len(extensions))
	for i, ext := range extensions {
		exts[i] = strings.ToLower(ext)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = registration{factory: factory, extensions: exts}
}

// Get returns the factory registered under name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[strings.ToLower(name)]
	return r.factory, ok
}

// IsRegistered reports whether name is a known database type.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// ListAdapters returns the registered database types in sorted order.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TypeForPath finds the database type whose registered extensions match the
// suffix of path. When several types claim the suffix the first in sorted
// order wins.
func TypeForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	var matches []string
	for name, r := range registry {
		if slices.Contains(r.extensions, ext) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	return slices.Min(matches), true
}

// NewAdapter builds the adapter for cfg.Type. A nil logger discards output.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger.With(slog.String("adapter", strings.ToLower(cfg.Type)))), nil
}

// UnknownAdapterError reports a target type no adapter package registered.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unknown adapter type %q", e.Type)
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, " (supported: %s)", strings.Join(e.Available, ", "))
	}
	b.WriteString("\nHint: set target.type in schemafix.yaml or pass --catalog to skip introspection")
	return b.String()
}
