package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, DriverJSONFile, cfg.Store.Driver)
	assert.Equal(t, "General", cfg.Relay.FallbackLabel)
	assert.Equal(t, 30, cfg.Telegram.PollTimeout)
	assert.InDelta(t, 1.0, cfg.Relay.ReplayRate, 0.0001)
	assert.Equal(t, filepath.Join(dataDir, "state.json"), cfg.StateFile())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store:
  driver: sqlite
relay:
  default_thread_id: 7
  fallback_label: Misc
  replay_rate: 2.5
access:
  super_admins: [111, 222]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 7, cfg.Relay.DefaultThreadID)
	assert.Equal(t, "Misc", cfg.Relay.FallbackLabel)
	assert.InDelta(t, 2.5, cfg.Relay.ReplayRate, 0.0001)
	assert.Equal(t, []int64{111, 222}, cfg.Access.SuperAdmins)
	assert.Equal(t, 30, cfg.Telegram.PollTimeout, "unset values fall back to defaults")
	assert.Equal(t, filepath.Join(cfg.DataDir, "topicwala.db"), cfg.SQLitePath())
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: mongo\n"), 0o644))

	_, err := Load(path, t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "store.driver", fieldErrs[0].Field)
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{
			name:   "empty data dir",
			mutate: func(c *Config) { c.DataDir = "" },
			field:  "data_dir",
		},
		{
			name:   "postgres without dsn",
			mutate: func(c *Config) { c.Store.Driver = DriverPostgres },
			field:  "store.dsn",
		},
		{
			name:   "negative default thread",
			mutate: func(c *Config) { c.Relay.DefaultThreadID = -1 },
			field:  "relay.default_thread_id",
		},
		{
			name:   "blank fallback label",
			mutate: func(c *Config) { c.Relay.FallbackLabel = "   " },
			field:  "relay.fallback_label",
		},
		{
			name:   "fallback label too long",
			mutate: func(c *Config) { c.Relay.FallbackLabel = strings.Repeat("x", 200) },
			field:  "relay.fallback_label",
		},
		{
			name:   "zero replay rate",
			mutate: func(c *Config) { c.Relay.ReplayRate = 0 },
			field:  "relay.replay_rate",
		},
		{
			name:   "bad super admin",
			mutate: func(c *Config) { c.Access.SuperAdmins = []int64{5, -3} },
			field:  "access.super_admins[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Access.SuperAdmins = []int64{1}
	assert.Empty(t, cfg.Warnings())

	cfg.Access.SuperAdmins = nil
	cfg.Relay.ReplayRate = 5
	cfg.Telegram.Debug = true

	var items []string
	for _, w := range cfg.Warnings() {
		items = append(items, w.Item)
	}
	assert.Equal(t, []string{"super_admins", "replay_rate", "debug"}, items)
}
