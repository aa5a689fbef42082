package adapter

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres", "sqlite"},
	}

	msg := err.Error()

	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "duckdb, postgres, sqlite", "error should list available adapters")
	assert.Contains(t, msg, "schemafix.yaml", "error should mention config file")
	assert.Contains(t, msg, "--catalog", "error should offer the offline catalog")
}

func TestUnknownAdapterError_NoneAvailable(t *testing.T) {
	err := &UnknownAdapterError{Type: "oracle"}
	assert.NotContains(t, err.Error(), "supported")
}

func TestRegister(t *testing.T) {
	Register("test_adapter_internal", func(_ *slog.Logger) Adapter { return nil })

	assert.True(t, IsRegistered("test_adapter_internal"))

	factory, ok := Get("test_adapter_internal")
	assert.True(t, ok)
	assert.NotNil(t, factory)
	assert.Contains(t, ListAdapters(), "test_adapter_internal")
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, "adapter type not specified", err.Error())
}

func TestNewAdapter_UnknownType(t *testing.T) {
	_, err := NewAdapter(Config{Type: "nonexistent"}, nil)
	require.Error(t, err)

	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nonexistent", unknown.Type)
}

func TestNewAdapter_PassesLogger(t *testing.T) {
	var got *slog.Logger
	Register("test_logger_adapter", func(l *slog.Logger) Adapter {
		got = l
		return nil
	})

	_, err := NewAdapter(Config{Type: "test_logger_adapter"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, got, "nil logger should be replaced with a discard logger")
}

func TestRegister_CaseInsensitive(t *testing.T) {
	Register("Mixed_Case_DB", func(_ *slog.Logger) Adapter { return nil })

	assert.True(t, IsRegistered("mixed_case_db"))
	assert.True(t, IsRegistered("MIXED_CASE_DB"))
	assert.Contains(t, ListAdapters(), "mixed_case_db")
	assert.NotContains(t, ListAdapters(), "Mixed_Case_DB")

	_, err := NewAdapter(Config{Type: "MIXED_case_db"}, nil)
	assert.NoError(t, err)
}

func TestListAdapters_Sorted(t *testing.T) {
	Register("zz_sorted_adapter", func(_ *slog.Logger) Adapter { return nil })
	Register("aa_sorted_adapter", func(_ *slog.Logger) Adapter { return nil })

	names := ListAdapters()
	assert.IsNonDecreasing(t, names)
}

func TestTypeForPath(t *testing.T) {
	Register("test_file_adapter", func(_ *slog.Logger) Adapter { return nil }, ".TestDB", ".tdb")

	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"data/app.testdb", "test_file_adapter", true},
		{"APP.TESTDB", "test_file_adapter", true},
		{"/abs/path/x.tdb", "test_file_adapter", true},
		{"warehouse.unknownext", "", false},
		{"no_suffix", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := TypeForPath(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
