package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/features"
	"github.com/Veraticus/hr-attrition/internal/ml"
	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/shopspring/decimal"
)

// Predict scores the associate matching key against the saved model. The
// boolean is false, with a nil error, when no record matches.
func (e *Engine) Predict(ctx context.Context, key string) (*model.Prediction, bool, error) {
	records, err := e.FetchRecords(ctx)
	if err != nil {
		return nil, false, err
	}

	idx := lookup(records, key)
	if idx < 0 {
		slog.Info("No associate matches prediction key", "key", key)
		return nil, false, nil
	}

	artifacts, err := e.artifacts.Load(ctx)
	if err != nil {
		return nil, false, err
	}

	// Categorical vocabularies come from the whole fetch, not the target row.
	matrix, _, err := features.Build(records, features.Options{Exclude: e.config.Exclude})
	if err != nil {
		return nil, false, err
	}

	drift := features.Drift(artifacts.Columns, matrix.Columns)
	if drift > 0 {
		slog.Warn("Feature columns differ from trained model",
			"model_id", artifacts.ID,
			"drift", drift,
			"trained_columns", len(artifacts.Columns),
			"current_columns", matrix.Width())
	}
	if drift > e.config.MaxDrift {
		return nil, false, fmt.Errorf("%w: drift %.2f exceeds %.2f, retrain the model",
			common.ErrSchemaDrift, drift, e.config.MaxDrift)
	}
	row := matrix.Align(artifacts.Columns).Row(idx)

	scaler, err := ml.ScalerFromParams(artifacts.Scaler)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", common.ErrArtifactsCorrupted, err)
	}
	classifier := ml.ClassifierFromParams(artifacts.Classifier)

	scaled, err := scaler.Transform([][]float64{row})
	if err != nil {
		return nil, false, fmt.Errorf("failed to scale features: %w", err)
	}
	class, err := classifier.Predict(scaled[0])
	if err != nil {
		return nil, false, fmt.Errorf("failed to predict: %w", err)
	}
	p, err := classifier.PredictProba(scaled[0])
	if err != nil {
		return nil, false, fmt.Errorf("failed to predict: %w", err)
	}

	target := records[idx].Clone()
	delete(target, model.FieldTerminated)

	prediction := &model.Prediction{
		Name:        target.Name(),
		Class:       class,
		Label:       model.RiskLabel(class),
		Probability: decimal.NewFromFloat(p * 100).Round(2).InexactFloat64(),
		ModelID:     artifacts.ID,
		Details:     target,
	}

	slog.Info("Predicted attrition risk",
		"associate", prediction.Name,
		"label", prediction.Label,
		"probability", prediction.Probability,
		"model_id", artifacts.ID)

	return prediction, true, nil
}

// TrainAndPredict retrains before scoring, for callers that want every
// prediction to reflect the latest records.
func (e *Engine) TrainAndPredict(ctx context.Context, key string) (*model.Prediction, bool, *TrainResult, error) {
	result, err := e.Train(ctx)
	if err != nil {
		return nil, false, nil, err
	}
	prediction, found, err := e.Predict(ctx, key)
	if err != nil {
		return nil, false, result, err
	}
	return prediction, found, result, nil
}
