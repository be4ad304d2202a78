package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// ScalerParams are the fitted standardization parameters, one per column.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// ClassifierParams are the fitted logistic regression parameters.
type ClassifierParams struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Classes   []int     `json:"classes"`
}

// Artifacts is the persisted state produced by training. It is written as a
// single bundle so the scaler, classifier and column list never disagree.
type Artifacts struct {
	TrainedAt   time.Time        `json:"trained_at"`
	ID          string           `json:"id"`
	Collection  string           `json:"collection"`
	ColumnsHash string           `json:"columns_hash"`
	Columns     []string         `json:"columns"`
	Scaler      ScalerParams     `json:"scaler"`
	Classifier  ClassifierParams `json:"classifier"`
	Samples     int              `json:"samples"`
	Degraded    bool             `json:"degraded"`
}

// HashColumns fingerprints an ordered column list.
func HashColumns(columns []string) string {
	hash := sha256.Sum256([]byte(strings.Join(columns, "\x00")))
	return fmt.Sprintf("%x", hash)
}

// Validate checks that the bundle is internally consistent.
func (a *Artifacts) Validate() error {
	n := len(a.Columns)
	if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
		return fmt.Errorf("scaler has %d/%d params for %d columns", len(a.Scaler.Mean), len(a.Scaler.Scale), n)
	}
	if len(a.Classifier.Coef) != n {
		return fmt.Errorf("classifier has %d coefficients for %d columns", len(a.Classifier.Coef), n)
	}
	if a.ColumnsHash != HashColumns(a.Columns) {
		return fmt.Errorf("column hash mismatch")
	}
	return nil
}

// TrainingRun is the history entry recorded for each successful training.
type TrainingRun struct {
	TrainedAt   time.Time
	Accuracy    *float64
	ID          string
	Collection  string
	ColumnsHash string
	Samples     int
	Features    int
	Degraded    bool
}
