package ml

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/Veraticus/hr-attrition/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticConfig controls the classifier fit.
type LogisticConfig struct {
	// C is the inverse L2 regularization strength.
	C       float64
	Tol     float64
	MaxIter int
}

// DefaultLogisticConfig returns the default fit settings.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		C:       1.0,
		Tol:     1e-8,
		MaxIter: 2000,
	}
}

// LogisticRegression is a binary classifier over the labels 0 and 1. The
// intercept is not regularized.
type LogisticRegression struct {
	coef      []float64
	classes   []int
	config    LogisticConfig
	intercept float64
	iters     int
	converged bool
}

// NewLogisticRegression creates an unfitted classifier.
func NewLogisticRegression(config LogisticConfig) *LogisticRegression {
	defaults := DefaultLogisticConfig()
	if config.C <= 0 {
		config.C = defaults.C
	}
	if config.Tol <= 0 {
		config.Tol = defaults.Tol
	}
	if config.MaxIter <= 0 {
		config.MaxIter = defaults.MaxIter
	}
	return &LogisticRegression{config: config}
}

// ClassifierFromParams restores a fitted classifier.
func ClassifierFromParams(p model.ClassifierParams) *LogisticRegression {
	return &LogisticRegression{
		coef:      append([]float64(nil), p.Coef...),
		intercept: p.Intercept,
		classes:   append([]int(nil), p.Classes...),
		config:    DefaultLogisticConfig(),
		converged: true,
	}
}

// Params exports the fitted parameters.
func (m *LogisticRegression) Params() model.ClassifierParams {
	return model.ClassifierParams{
		Coef:      append([]float64(nil), m.coef...),
		Intercept: m.intercept,
		Classes:   append([]int(nil), m.classes...),
	}
}

// Classes returns the labels seen during fit.
func (m *LogisticRegression) Classes() []int {
	return m.classes
}

// Converged reports whether the last fit reached the tolerance.
func (m *LogisticRegression) Converged() bool {
	return m.converged
}

// Fit estimates coefficients by Newton's method on the penalized
// log-likelihood. A single-class y yields a constant predictor of that class
// rather than an error.
func (m *LogisticRegression) Fit(x [][]float64, y []int) error {
	n := len(x)
	if n == 0 {
		return ErrEmptyInput
	}
	if len(y) != n {
		return fmt.Errorf("%w: %d rows, %d labels", ErrDimension, n, len(y))
	}
	d := len(x[0])
	if err := checkRectangular(x, d); err != nil {
		return err
	}

	classes, err := distinctLabels(y)
	if err != nil {
		return err
	}
	m.classes = classes

	if len(classes) == 1 {
		m.fitConstant(classes[0], n, d)
		return nil
	}

	theta := make([]float64, d+1)
	loss := m.objective(x, y, theta)
	candidate := make([]float64, d+1)
	m.converged = false

	for m.iters = 1; m.iters <= m.config.MaxIter; m.iters++ {
		grad, hess := m.derivatives(x, y, theta)

		var chol mat.Cholesky
		if ok := chol.Factorize(hess); !ok {
			return fmt.Errorf("hessian not positive definite at iteration %d", m.iters)
		}
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, mat.NewVecDense(d+1, grad)); err != nil {
			return fmt.Errorf("failed to solve newton step: %w", err)
		}

		// Backtrack until the objective does not increase.
		t := 1.0
		var candidateLoss float64
		for {
			for j := range candidate {
				candidate[j] = theta[j] - t*step.AtVec(j)
			}
			candidateLoss = m.objective(x, y, candidate)
			if candidateLoss <= loss || t < 1e-10 {
				break
			}
			t /= 2
		}

		maxStep := 0.0
		for j := range theta {
			maxStep = math.Max(maxStep, math.Abs(candidate[j]-theta[j]))
		}
		copy(theta, candidate)
		loss = candidateLoss

		if maxStep < m.config.Tol {
			m.converged = true
			break
		}
	}

	if !m.converged {
		slog.Warn("Logistic regression did not converge",
			"max_iter", m.config.MaxIter,
			"loss", loss)
	}

	m.coef = theta[:d]
	m.intercept = theta[d]
	return nil
}

func (m *LogisticRegression) fitConstant(class, n, d int) {
	m.coef = make([]float64, d)
	// Smoothed log-odds of the only observed class.
	m.intercept = math.Log(float64(2*n + 1))
	if class == 0 {
		m.intercept = -m.intercept
	}
	m.converged = true
	m.iters = 0
}

// objective is C * sum(logloss) + 0.5 * ||w||^2.
func (m *LogisticRegression) objective(x [][]float64, y []int, theta []float64) float64 {
	d := len(theta) - 1
	total := 0.0
	for i, row := range x {
		z := floats.Dot(row, theta[:d]) + theta[d]
		total += log1pExp(z) - float64(y[i])*z
	}
	penalty := floats.Dot(theta[:d], theta[:d]) / 2
	return m.config.C*total + penalty
}

func (m *LogisticRegression) derivatives(x [][]float64, y []int, theta []float64) ([]float64, *mat.SymDense) {
	d := len(theta) - 1
	grad := make([]float64, d+1)
	hess := mat.NewSymDense(d+1, nil)
	c := m.config.C

	for i, row := range x {
		p := sigmoid(floats.Dot(row, theta[:d]) + theta[d])
		r := c * (p - float64(y[i]))
		w := c * p * (1 - p)

		for j := 0; j < d; j++ {
			grad[j] += r * row[j]
			for k := j; k < d; k++ {
				hess.SetSym(j, k, hess.At(j, k)+w*row[j]*row[k])
			}
			hess.SetSym(j, d, hess.At(j, d)+w*row[j])
		}
		grad[d] += r
		hess.SetSym(d, d, hess.At(d, d)+w)
	}

	for j := 0; j < d; j++ {
		grad[j] += theta[j]
		hess.SetSym(j, j, hess.At(j, j)+1)
	}
	hess.SetSym(d, d, hess.At(d, d)+1e-10)

	return grad, hess
}

// DecisionFunction returns the log-odds of class 1 for one row.
func (m *LogisticRegression) DecisionFunction(row []float64) (float64, error) {
	if len(row) != len(m.coef) {
		return 0, fmt.Errorf("%w: row has %d columns, model has %d", ErrDimension, len(row), len(m.coef))
	}
	return floats.Dot(row, m.coef) + m.intercept, nil
}

// PredictProba returns P(class 1) for one row.
func (m *LogisticRegression) PredictProba(row []float64) (float64, error) {
	z, err := m.DecisionFunction(row)
	if err != nil {
		return 0, err
	}
	return sigmoid(z), nil
}

// Predict returns the predicted class for one row.
func (m *LogisticRegression) Predict(row []float64) (int, error) {
	z, err := m.DecisionFunction(row)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

// PredictAll predicts every row of x.
func (m *LogisticRegression) PredictAll(x [][]float64) ([]int, error) {
	out := make([]int, len(x))
	for i, row := range x {
		class, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = class
	}
	return out, nil
}

func distinctLabels(y []int) ([]int, error) {
	seen := make(map[int]bool, 2)
	for _, label := range y {
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("%w: got %d", ErrLabels, label)
		}
		seen[label] = true
	}
	classes := make([]int, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Ints(classes)
	return classes, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// log1pExp computes log(1 + e^z) without overflow.
func log1pExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
