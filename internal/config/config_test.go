package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	err := NewValidator().Validate(cfg)
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Core.BaseCurrency)
	assert.Equal(t, 6, cfg.Tools.MaxInFlight)
	assert.Equal(t, 2, cfg.Tools.MaxRetries)
	assert.Equal(t, 3, cfg.Planning.MaxRepairRounds)
	assert.Equal(t, 3, cfg.Planning.DefaultTripDays)
	assert.Equal(t, 0.35, cfg.Knowledge.SimilarityThreshold)
}

func TestLoader_LoadWithDefaults_MissingFile(t *testing.T) {
	loader := NewLoader(NewValidator())

	cfg, err := loader.LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_Load_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	content := `
core:
  base_currency: EUR
planning:
  max_repair_rounds: 5
tools:
  call_timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.Core.BaseCurrency)
	assert.Equal(t, 5, cfg.Planning.MaxRepairRounds)
	assert.Equal(t, 3*time.Second, cfg.Tools.CallTimeout)
	// Unmentioned fields keep defaults.
	assert.Equal(t, 6, cfg.Tools.MaxInFlight)
	assert.Equal(t, "memory", cfg.Session.Backend)
}

func TestLoader_Load_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad session backend",
			content: `
session:
  backend: dynamo
`,
		},
		{
			name: "too many in-flight calls",
			content: `
tools:
  max_in_flight: 500
`,
		},
		{
			name: "bad currency code",
			content: `
core:
  base_currency: DOLLARS
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "advisor.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := NewLoader(NewValidator()).Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidator_SQLiteRequiresPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Backend = "sqlite"
	cfg.Session.DBPath = ""

	err := NewValidator().Validate(cfg)
	assert.ErrorContains(t, err, "session.db_path")
}
