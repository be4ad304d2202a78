package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyDatabasePath   = "database.path"
	KeyCollection     = "database.collection"
	KeyModelPath      = "model.path"
	KeyTestFraction   = "model.test_fraction"
	KeySeed           = "model.seed"
	KeyRegularization = "model.regularization"
	KeyMaxIter        = "model.max_iter"
	KeyMaxDrift       = "model.max_schema_drift"
	KeyExclude        = "features.exclude"
)

// Config holds the application settings.
type Config struct {
	LogLevel       string
	LogFormat      string
	DatabasePath   string
	Collection     string
	ModelPath      string
	Exclude        []string
	TestFraction   float64
	Regularization float64
	MaxDrift       float64
	Seed           int64
	MaxIter        int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	dir := DataDir()
	return Config{
		LogLevel:       "info",
		LogFormat:      "console",
		DatabasePath:   filepath.Join(dir, "attrition.db"),
		Collection:     "associates",
		ModelPath:      filepath.Join(dir, "model.json"),
		TestFraction:   0.25,
		Seed:           42,
		Regularization: 1.0,
		MaxIter:        2000,
		MaxDrift:       0.25,
	}
}

// SetDefaults registers the defaults on v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyDatabasePath, d.DatabasePath)
	v.SetDefault(KeyCollection, d.Collection)
	v.SetDefault(KeyModelPath, d.ModelPath)
	v.SetDefault(KeyTestFraction, d.TestFraction)
	v.SetDefault(KeySeed, d.Seed)
	v.SetDefault(KeyRegularization, d.Regularization)
	v.SetDefault(KeyMaxIter, d.MaxIter)
	v.SetDefault(KeyMaxDrift, d.MaxDrift)
	v.SetDefault(KeyExclude, []string{})
}

// Load reads the settings from v and validates them.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		LogLevel:       strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:      strings.ToLower(v.GetString(KeyLogFormat)),
		DatabasePath:   ExpandPath(v.GetString(KeyDatabasePath)),
		Collection:     strings.TrimSpace(v.GetString(KeyCollection)),
		ModelPath:      ExpandPath(v.GetString(KeyModelPath)),
		Exclude:        v.GetStringSlice(KeyExclude),
		TestFraction:   v.GetFloat64(KeyTestFraction),
		Seed:           v.GetInt64(KeySeed),
		Regularization: v.GetFloat64(KeyRegularization),
		MaxIter:        v.GetInt(KeyMaxIter),
		MaxDrift:       v.GetFloat64(KeyMaxDrift),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if c.ModelPath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyModelPath)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyCollection)
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("%w: %s must be between 0 and 1, got %v", common.ErrInvalidConfig, KeyTestFraction, c.TestFraction)
	}
	if c.Regularization <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyRegularization)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyMaxIter)
	}
	if c.MaxDrift < 0 || c.MaxDrift > 1 {
		return fmt.Errorf("%w: %s must be between 0 and 1, got %v", common.ErrInvalidConfig, KeyMaxDrift, c.MaxDrift)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: invalid log format: %s", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
