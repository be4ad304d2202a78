// Package engine implements attrition-risk training and prediction over the
// record store.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/Veraticus/hr-attrition/internal/service"
)

// Config holds configuration options for the engine.
type Config struct {
	Collection     string
	Exclude        []string
	TestFraction   float64
	Regularization float64
	MaxDrift       float64
	Seed           int64
	MaxIter        int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Collection:     "associates",
		TestFraction:   0.25,
		Regularization: 1.0,
		MaxDrift:       0.25,
		Seed:           42,
		MaxIter:        2000,
	}
}

// Engine trains the attrition classifier and scores associates with it.
type Engine struct {
	records   service.RecordStore
	artifacts service.ArtifactStore
	now       func() time.Time
	config    Config
	mu        sync.Mutex
}

// New creates a new engine with the given dependencies.
func New(records service.RecordStore, artifacts service.ArtifactStore) *Engine {
	return NewWithConfig(records, artifacts, DefaultConfig())
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(records service.RecordStore, artifacts service.ArtifactStore, config Config) *Engine {
	defaults := DefaultConfig()
	if strings.TrimSpace(config.Collection) == "" {
		config.Collection = defaults.Collection
	}
	if config.TestFraction <= 0 || config.TestFraction >= 1 {
		config.TestFraction = defaults.TestFraction
	}
	if config.Regularization <= 0 {
		config.Regularization = defaults.Regularization
	}
	if config.MaxIter <= 0 {
		config.MaxIter = defaults.MaxIter
	}
	if config.MaxDrift < 0 {
		config.MaxDrift = defaults.MaxDrift
	}
	return &Engine{
		records:   records,
		artifacts: artifacts,
		config:    config,
		now:       time.Now,
	}
}

// Collection returns the record collection the engine reads.
func (e *Engine) Collection() string {
	return e.config.Collection
}

// FetchRecords reads every record of the configured collection and derives
// the terminated label where the status field exists.
func (e *Engine) FetchRecords(ctx context.Context) ([]model.Record, error) {
	records, err := e.records.GetRecords(ctx, e.config.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	if labeled := model.ApplyLabel(records); !labeled && len(records) > 0 {
		slog.Debug("Records carry no status field",
			"collection", e.config.Collection,
			"field", model.FieldEmploymentStatus)
	}

	slog.Debug("Fetched records",
		"collection", e.config.Collection,
		"count", len(records))

	return records, nil
}

// lookup finds the record matching key by exact name, then case-insensitive
// name, then associate id. It returns -1 when nothing matches.
func lookup(records []model.Record, key string) int {
	key = strings.TrimSpace(key)
	if key == "" {
		return -1
	}

	for i, r := range records {
		if strings.TrimSpace(r.Name()) == key {
			return i
		}
	}
	for i, r := range records {
		if strings.EqualFold(strings.TrimSpace(r.Name()), key) {
			return i
		}
	}
	for i, r := range records {
		if strings.TrimSpace(r.ID()) == key {
			return i
		}
	}
	return -1
}
