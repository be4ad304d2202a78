package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/config"
	"github.com/Veraticus/hr-attrition/internal/engine"
	"github.com/Veraticus/hr-attrition/internal/ingest"
	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/Veraticus/hr-attrition/internal/storage"
	"github.com/spf13/viper"
)

// loadConfig resolves the settings from flags, environment and config file.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the record store and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine wires the engine to the record store and the model bundle.
// The caller closes the returned store.
func initEngine(ctx context.Context) (*engine.Engine, *storage.SQLiteStorage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	artifacts, err := storage.NewFileArtifactStore(cfg.ModelPath)
	if err != nil {
		closeStore(store)
		return nil, nil, err
	}

	return engine.NewWithConfig(store, artifacts, engineConfig(cfg)), store, nil
}

func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		Collection:     cfg.Collection,
		Exclude:        cfg.Exclude,
		TestFraction:   cfg.TestFraction,
		Regularization: cfg.Regularization,
		MaxDrift:       cfg.MaxDrift,
		Seed:           cfg.Seed,
		MaxIter:        cfg.MaxIter,
	}
}

func closeStore(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}

// parseAssignments turns field=value pairs into record fields. Known header
// spellings map to their canonical field, numbers become float64 and an
// empty value becomes nil.
func parseAssignments(pairs []string) (model.Record, error) {
	fields := make(model.Record, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected field=value", pair)
		}
		field, _ := ingest.CanonicalHeader(key)
		fields[field] = parseValue(value)
	}
	return fields, nil
}

func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}
