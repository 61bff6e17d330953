package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultRidge is the relative diagonal regularization that keeps the normal
// equations solvable when columns are constant or collinear.
const DefaultRidge = 1e-10

// ErrSingularSystem is returned when the regularized normal equations are
// not positive definite, e.g. when the features contain NaN or Inf.
var ErrSingularSystem = errors.New("normal equations not positive definite")

// LinearRegression is an ordinary least squares regressor with intercept.
type LinearRegression struct {
	Ridge float64

	coef      []float64
	intercept float64
	fitted    bool
}

// NewLinearRegression creates an OLS regressor.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{Ridge: DefaultRidge}
}

// Fit solves the centered ridge normal equations (XᵀX + λI)β = Xᵀy by
// Cholesky factorization.
func (m *LinearRegression) Fit(x [][]float64, y []float64) error {
	p, err := validateTrainingData(x, y)
	if err != nil {
		return err
	}
	n := len(x)

	// Center features and targets so the intercept drops out of the system.
	xMean := make([]float64, p)
	yMean := 0.0
	for i, row := range x {
		for j, v := range row {
			xMean[j] += v
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range x {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, xc.T())

	maxDiag := 0.0
	for j := 0; j < p; j++ {
		maxDiag = math.Max(maxDiag, gram.At(j, j))
	}
	lambda := m.Ridge * math.Max(1, maxDiag)
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+lambda)
	}

	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	beta, err := solveNormalEquations(&gram, &rhs)
	if err != nil {
		return err
	}

	coef := make([]float64, p)
	intercept := yMean
	for j := range coef {
		coef[j] = beta.AtVec(j)
		intercept -= coef[j] * xMean[j]
	}

	m.coef = coef
	m.intercept = intercept
	m.fitted = true
	return nil
}

// solveNormalEquations solves a·β = b for a symmetric positive definite a.
// An ill-conditioned system still yields the computed solution.
func solveNormalEquations(a *mat.SymDense, b *mat.VecDense) (*mat.VecDense, error) {
	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil, ErrSingularSystem
	}

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("solve normal equations: %w", err)
		}
	}
	return &beta, nil
}

// Predict returns intercept + β·x for every row.
func (m *LinearRegression) Predict(x [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if err := validatePredictData(x, len(m.coef)); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i, row := range x {
		v := m.intercept
		for j, c := range m.coef {
			v += c * row[j]
		}
		out[i] = v
	}
	return out, nil
}

// Coefficients returns a copy of the fitted coefficients and the intercept.
func (m *LinearRegression) Coefficients() ([]float64, float64) {
	return append([]float64(nil), m.coef...), m.intercept
}

var _ Regressor = (*LinearRegression)(nil)
