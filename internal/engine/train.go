package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/features"
	"github.com/Veraticus/hr-attrition/internal/ml"
	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/google/uuid"
)

// MinSamplesPerClass is the class size below which training skips the
// held-out evaluation.
const MinSamplesPerClass = 2

// TrainResult describes a completed training run.
type TrainResult struct {
	Artifacts *model.Artifacts
	// Report is nil when training was degraded.
	Report      *ml.Report
	ClassCounts map[int]int
	// Warning is a *common.DegradedTrainingWarning when no evaluation split
	// was possible.
	Warning error
}

// Train fits the scaler and classifier on the current records and replaces
// the persisted bundle. Calls on one Engine are serialized.
func (e *Engine) Train(ctx context.Context) (*TrainResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: collection %q is empty", common.ErrNoData, e.config.Collection)
	}

	matrix, y, err := features.Build(records, features.Options{
		RequireLabel: true,
		Exclude:      e.config.Exclude,
	})
	if err != nil {
		return nil, err
	}

	counts := ml.ClassCounts(y)
	slog.Info("Training attrition model",
		"collection", e.config.Collection,
		"samples", len(y),
		"features", matrix.Width(),
		"active", counts[0],
		"terminated", counts[1])

	result := &TrainResult{ClassCounts: counts}

	var (
		scaler     *ml.StandardScaler
		classifier *ml.LogisticRegression
	)
	if degraded(counts) {
		warning := &common.DegradedTrainingWarning{
			ClassCounts: counts,
			MinPerClass: MinSamplesPerClass,
		}
		slog.Warn("Degraded training, fitting on all records without evaluation",
			"active", counts[0],
			"terminated", counts[1],
			"min_per_class", MinSamplesPerClass)

		scaler, classifier, err = e.fit(matrix.Rows, y)
		if err != nil {
			return nil, err
		}
		result.Warning = warning
	} else {
		train, test, err := ml.StratifiedSplit(y, e.config.TestFraction, e.config.Seed)
		if err != nil {
			return nil, fmt.Errorf("failed to split records: %w", err)
		}

		scaler, classifier, err = e.fit(matrix.Subset(train), pickLabels(y, train))
		if err != nil {
			return nil, err
		}

		report, err := evaluate(scaler, classifier, matrix.Subset(test), pickLabels(y, test))
		if err != nil {
			return nil, err
		}
		result.Report = report

		slog.Info("Evaluated attrition model",
			"train_size", len(train),
			"test_size", len(test),
			"accuracy", report.Accuracy,
			"macro_f1", report.MacroAvg.F1,
			"weighted_f1", report.WeightedAvg.F1)
		slog.Debug("Classification report", "report", report.String())
	}

	artifacts := &model.Artifacts{
		ID:          uuid.NewString(),
		TrainedAt:   e.now().UTC(),
		Collection:  e.config.Collection,
		Columns:     matrix.Columns,
		ColumnsHash: model.HashColumns(matrix.Columns),
		Scaler:      scaler.Params(),
		Classifier:  classifier.Params(),
		Samples:     len(y),
		Degraded:    result.Warning != nil,
	}
	if err := e.artifacts.Save(ctx, artifacts); err != nil {
		return nil, fmt.Errorf("failed to save model artifacts: %w", err)
	}
	result.Artifacts = artifacts

	e.recordRun(ctx, result)

	slog.Info("Saved attrition model",
		"model_id", artifacts.ID,
		"columns", len(artifacts.Columns),
		"degraded", artifacts.Degraded)

	return result, nil
}

func (e *Engine) fit(x [][]float64, y []int) (*ml.StandardScaler, *ml.LogisticRegression, error) {
	scaler, err := ml.FitScaler(x)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit scaler: %w", err)
	}
	scaled, err := scaler.Transform(x)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scale features: %w", err)
	}

	classifier := ml.NewLogisticRegression(ml.LogisticConfig{
		C:       e.config.Regularization,
		MaxIter: e.config.MaxIter,
	})
	if err := classifier.Fit(scaled, y); err != nil {
		return nil, nil, fmt.Errorf("failed to fit classifier: %w", err)
	}
	return scaler, classifier, nil
}

// recordRun stores the run in the history table. Failures are logged only;
// the bundle is already saved.
func (e *Engine) recordRun(ctx context.Context, result *TrainResult) {
	a := result.Artifacts
	run := &model.TrainingRun{
		ID:          a.ID,
		TrainedAt:   a.TrainedAt,
		Collection:  a.Collection,
		ColumnsHash: a.ColumnsHash,
		Samples:     a.Samples,
		Features:    len(a.Columns),
		Degraded:    a.Degraded,
	}
	if result.Report != nil {
		accuracy := result.Report.Accuracy
		run.Accuracy = &accuracy
	}
	if err := e.records.SaveTrainingRun(ctx, run); err != nil {
		common.LogWarn("Failed to record training run", common.Fields{
			"model_id": a.ID,
			"error":    err.Error(),
		})
	}
}

func evaluate(scaler *ml.StandardScaler, classifier *ml.LogisticRegression, x [][]float64, y []int) (*ml.Report, error) {
	scaled, err := scaler.Transform(x)
	if err != nil {
		return nil, fmt.Errorf("failed to scale held-out features: %w", err)
	}
	predicted, err := classifier.PredictAll(scaled)
	if err != nil {
		return nil, fmt.Errorf("failed to score held-out records: %w", err)
	}
	report, err := ml.Evaluate(y, predicted)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate model: %w", err)
	}
	return report, nil
}

// degraded reports whether the class balance rules out a held-out split.
func degraded(counts map[int]int) bool {
	if len(counts) < 2 {
		return true
	}
	for _, n := range counts {
		if n < MinSamplesPerClass {
			return true
		}
	}
	return false
}

func pickLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
