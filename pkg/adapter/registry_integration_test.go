package adapter_test

import (
	"testing"

	"github.com/leapstack-labs/schemafix/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/schemafix/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/schemafix/pkg/adapters/sqlite"
)

func TestSelfRegistration(t *testing.T) {
	tests := []struct {
		name        string
		adapterName string
		expected    bool
	}{
		{"postgres registered", "postgres", true},
		{"sqlite registered", "sqlite", true},
		{"unknown not registered", "unknown_db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.IsRegistered(tt.adapterName))
		})
	}
}

func TestNewAdapter_Registered(t *testing.T) {
	adp, err := adapter.NewAdapter(adapter.Config{Type: "sqlite"}, nil)
	require.NoError(t, err)
	require.NotNil(t, adp)
	assert.Equal(t, "sqlite", adp.DialectName())
	assert.Equal(t, "main", adp.DefaultSchema())

	adp, err = adapter.NewAdapter(adapter.Config{Type: "postgres"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", adp.DialectName())
	assert.Equal(t, "public", adp.DefaultSchema())
}

func TestTypeForPath_Registered(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"app.db", "sqlite", true},
		{"app.sqlite", "sqlite", true},
		{"data/app.sqlite3", "sqlite", true},
		{"analytics", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := adapter.TypeForPath(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
