package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/hr-attrition/internal/model"
)

// SaveTrainingRun records a training run in the history table.
func (s *SQLiteStorage) SaveTrainingRun(ctx context.Context, run *model.TrainingRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if err := validateString(run.ID, "run.ID"); err != nil {
		return err
	}

	var accuracy sql.NullFloat64
	if run.Accuracy != nil {
		accuracy = sql.NullFloat64{Float64: *run.Accuracy, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_runs (id, collection, samples, features, degraded, accuracy, columns_hash, trained_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, normalizeCollection(run.Collection), run.Samples, run.Features, run.Degraded,
		accuracy, run.ColumnsHash, run.TrainedAt)
	if err != nil {
		return fmt.Errorf("failed to save training run: %w", err)
	}
	return nil
}

// ListTrainingRuns returns the most recent runs first, at most limit.
func (s *SQLiteStorage) ListTrainingRuns(ctx context.Context, limit int) ([]model.TrainingRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection, samples, features, degraded, accuracy, columns_hash, trained_at
		FROM training_runs
		ORDER BY trained_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, unreachable("failed to query training runs", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.TrainingRun
	for rows.Next() {
		var (
			run      model.TrainingRun
			accuracy sql.NullFloat64
		)
		if err := rows.Scan(&run.ID, &run.Collection, &run.Samples, &run.Features,
			&run.Degraded, &accuracy, &run.ColumnsHash, &run.TrainedAt); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		if accuracy.Valid {
			v := accuracy.Float64
			run.Accuracy = &v
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, unreachable("failed to read training runs", err)
	}

	return runs, nil
}
