// Package ml holds the small numeric toolkit behind attrition scoring:
// standardization, L2-regularized logistic regression, stratified splitting
// and classification metrics.
package ml

import (
	"errors"
	"fmt"

	"github.com/Veraticus/hr-attrition/internal/model"
	"gonum.org/v1/gonum/stat"
)

// Input errors.
var (
	ErrEmptyInput = errors.New("empty input")
	ErrDimension  = errors.New("dimension mismatch")
	ErrLabels     = errors.New("labels must be 0 or 1")
)

// StandardScaler centers each column on its mean and divides by its
// population standard deviation. Constant columns keep a scale of 1.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// FitScaler learns per-column mean and scale from x.
func FitScaler(x [][]float64) (*StandardScaler, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	d := len(x[0])
	if err := checkRectangular(x, d); err != nil {
		return nil, err
	}

	s := &StandardScaler{
		mean:  make([]float64, d),
		scale: make([]float64, d),
	}

	column := make([]float64, len(x))
	for j := 0; j < d; j++ {
		for i, row := range x {
			column[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		s.mean[j] = mean
		if std == 0 {
			std = 1
		}
		s.scale[j] = std
	}

	return s, nil
}

// ScalerFromParams restores a fitted scaler.
func ScalerFromParams(p model.ScalerParams) (*StandardScaler, error) {
	if len(p.Mean) != len(p.Scale) {
		return nil, fmt.Errorf("%w: %d means, %d scales", ErrDimension, len(p.Mean), len(p.Scale))
	}
	for j, v := range p.Scale {
		if v == 0 {
			return nil, fmt.Errorf("zero scale for column %d", j)
		}
	}
	return &StandardScaler{
		mean:  append([]float64(nil), p.Mean...),
		scale: append([]float64(nil), p.Scale...),
	}, nil
}

// Params exports the fitted parameters.
func (s *StandardScaler) Params() model.ScalerParams {
	return model.ScalerParams{
		Mean:  append([]float64(nil), s.mean...),
		Scale: append([]float64(nil), s.scale...),
	}
}

// Width is the number of columns the scaler was fit on.
func (s *StandardScaler) Width() int {
	return len(s.mean)
}

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if err := checkRectangular(x, len(s.mean)); err != nil {
		return nil, err
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.mean[j]) / s.scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}

func checkRectangular(x [][]float64, width int) error {
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimension, i, len(row), width)
		}
	}
	return nil
}
