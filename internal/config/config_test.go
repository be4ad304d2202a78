package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	d := DefaultConfig()
	assert.Equal(t, "associates", cfg.Collection)
	assert.Equal(t, d.DatabasePath, cfg.DatabasePath)
	assert.Equal(t, d.ModelPath, cfg.ModelPath)
	assert.InDelta(t, 0.25, cfg.TestFraction, 1e-12)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.InDelta(t, 1.0, cfg.Regularization, 1e-12)
	assert.Equal(t, 2000, cfg.MaxIter)
	assert.InDelta(t, 0.25, cfg.MaxDrift, 1e-12)
	assert.Empty(t, cfg.Exclude)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set(KeyCollection, " managers ")
	v.Set(KeyDatabasePath, ":memory:")
	v.Set(KeyModelPath, "$ATTRITION_TEST_DIR/model.json")
	v.Set(KeyTestFraction, 0.3)
	v.Set(KeySeed, 7)
	v.Set(KeyExclude, []string{"zip", "state"})
	v.Set(KeyLogLevel, "DEBUG")
	t.Setenv("ATTRITION_TEST_DIR", "/tmp/attrition")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "managers", cfg.Collection)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
	assert.Equal(t, "/tmp/attrition/model.json", cfg.ModelPath)
	assert.InDelta(t, 0.3, cfg.TestFraction, 1e-12)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, []string{"zip", "state"}, cfg.Exclude)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		wantErr error
		modify  func(*Config)
		name    string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "missing database", modify: func(c *Config) { c.DatabasePath = "" }, wantErr: common.ErrMissingConfig},
		{name: "missing model path", modify: func(c *Config) { c.ModelPath = "" }, wantErr: common.ErrMissingConfig},
		{name: "missing collection", modify: func(c *Config) { c.Collection = "" }, wantErr: common.ErrMissingConfig},
		{name: "zero test fraction", modify: func(c *Config) { c.TestFraction = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "test fraction of one", modify: func(c *Config) { c.TestFraction = 1 }, wantErr: common.ErrInvalidConfig},
		{name: "negative regularization", modify: func(c *Config) { c.Regularization = -1 }, wantErr: common.ErrInvalidConfig},
		{name: "zero iterations", modify: func(c *Config) { c.MaxIter = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "drift above one", modify: func(c *Config) { c.MaxDrift = 1.5 }, wantErr: common.ErrInvalidConfig},
		{name: "zero drift allowed", modify: func(c *Config) { c.MaxDrift = 0 }},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "verbose" }, wantErr: common.ErrInvalidConfig},
		{name: "bad log format", modify: func(c *Config) { c.LogFormat = "xml" }, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("ATTRITION_HOME", "/srv/hr")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: ":memory:", want: ":memory:"},
		{input: "~", want: home},
		{input: "~/data/hr.db", want: filepath.Join(home, "data", "hr.db")},
		{input: "$ATTRITION_HOME/hr.db", want: "/srv/hr/hr.db"},
		{input: "/abs/path.db", want: "/abs/path.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "attrition"), DataDir())
}
