// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/hr-attrition/internal/model"
)

// RecordStore defines the contract for our persistence layer. Records are
// grouped into named collections such as "associates" and "managers".
type RecordStore interface {
	// Record operations
	SaveRecords(ctx context.Context, collection string, records []model.Record) (int, error)
	ReplaceRecords(ctx context.Context, collection string, records []model.Record) (int, error)
	GetRecords(ctx context.Context, collection string) ([]model.Record, error)
	FindRecord(ctx context.Context, collection, key string) (model.Record, error)
	UpdateRecord(ctx context.Context, collection, key string, fields model.Record) error
	DeleteRecord(ctx context.Context, collection, key string) error
	DeleteCollection(ctx context.Context, collection string) (int, error)
	CountRecords(ctx context.Context, collection string) (int, error)
	RecordNames(ctx context.Context, collection string) ([]string, error)

	// Training history
	SaveTrainingRun(ctx context.Context, run *model.TrainingRun) error
	ListTrainingRuns(ctx context.Context, limit int) ([]model.TrainingRun, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ArtifactStore persists the trained model bundle. Save replaces the bundle
// atomically; Load returns common.ErrArtifactsMissing before the first save.
type ArtifactStore interface {
	Load(ctx context.Context) (*model.Artifacts, error)
	Save(ctx context.Context, artifacts *model.Artifacts) error
}
