// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common application errors.
var (
	// Record store errors.
	ErrNotFound     = errors.New("not found")
	ErrConnectivity = errors.New("record store unreachable")

	// Training errors.
	ErrNoData = errors.New("no records available")
	ErrSchema = errors.New("label field missing")

	// Model artifact errors.
	ErrArtifactsMissing   = errors.New("model not trained")
	ErrArtifactsCorrupted = errors.New("model artifacts corrupted")
	ErrSchemaDrift        = errors.New("feature columns diverged from trained model")

	// Import errors.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// DegradedTrainingWarning reports that a model was fit without a held-out
// evaluation split because one of the classes had too few samples.
// Training still succeeds; evaluation metrics are unavailable.
type DegradedTrainingWarning struct {
	ClassCounts map[int]int
	MinPerClass int
}

func (w *DegradedTrainingWarning) Error() string {
	labels := make([]int, 0, len(w.ClassCounts))
	for label := range w.ClassCounts {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%d=%d", label, w.ClassCounts[label]))
	}

	return fmt.Sprintf("degraded training: each class needs at least %d samples (have %s); fit on full dataset without evaluation",
		w.MinPerClass, strings.Join(parts, ", "))
}

// IsDegraded reports whether err is, or wraps, a DegradedTrainingWarning.
func IsDegraded(err error) bool {
	var warning *DegradedTrainingWarning
	return errors.As(err, &warning)
}
