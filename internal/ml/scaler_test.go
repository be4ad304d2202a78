package ml

import (
	"testing"

	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitScaler(t *testing.T) {
	x := [][]float64{
		{1, 10, 0},
		{3, 10, 4},
	}

	scaler, err := FitScaler(x)
	require.NoError(t, err)

	params := scaler.Params()
	assert.Equal(t, []float64{2, 10, 2}, params.Mean)
	assert.Equal(t, []float64{1, 1, 2}, params.Scale, "constant column keeps unit scale")
	assert.Equal(t, 3, scaler.Width())

	scaled, err := scaler.Transform(x)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-1, 0, -1}, {1, 0, 1}}, scaled)

	// Input is not modified.
	assert.Equal(t, []float64{1, 10, 0}, x[0])
}

func TestFitScaler_Errors(t *testing.T) {
	_, err := FitScaler(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = FitScaler([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestScaler_TransformDimensionMismatch(t *testing.T) {
	scaler, err := FitScaler([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	_, err = scaler.Transform([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestScalerFromParams(t *testing.T) {
	scaler, err := ScalerFromParams(model.ScalerParams{Mean: []float64{5}, Scale: []float64{2}})
	require.NoError(t, err)

	out, err := scaler.Transform([][]float64{{9}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2}}, out)

	_, err = ScalerFromParams(model.ScalerParams{Mean: []float64{1, 2}, Scale: []float64{1}})
	assert.ErrorIs(t, err, ErrDimension)

	_, err = ScalerFromParams(model.ScalerParams{Mean: []float64{1}, Scale: []float64{0}})
	assert.Error(t, err)
}
