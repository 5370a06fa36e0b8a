package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is a binary L2-regularized logistic regression. Labels
// must be 0 or 1. The intercept is not penalized.
type LogisticRegression struct {
	// C is the inverse regularization strength.
	C float64
	// MaxIterations bounds the L-BFGS major iterations.
	MaxIterations int

	Coef      []float64
	Intercept float64
}

// NewLogisticRegression returns a model with C=1 and 100 iterations.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1, MaxIterations: 100}
}

// Fit minimizes 0.5*|w|^2 + C*sum(log(1+exp(-s*(w.x+b)))) with s = ±1.
func (m *LogisticRegression) Fit(x [][]float64, y []int) error {
	nFeatures, err := checkXY(x, y)
	if err != nil {
		return err
	}
	signs := make([]float64, len(y))
	var pos, neg bool
	for i, label := range y {
		switch label {
		case 0:
			signs[i], neg = -1, true
		case 1:
			signs[i], pos = 1, true
		default:
			return fmt.Errorf("ml: logistic regression label %d is not 0 or 1", label)
		}
	}
	if !pos || !neg {
		return errors.New("ml: logistic regression needs samples of both classes")
	}

	c := m.C
	if c <= 0 {
		c = 1
	}
	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			coef, b := w[:nFeatures], w[nFeatures]
			loss := 0.5 * floats.Dot(coef, coef)
			for i, row := range x {
				loss += c * softplus(-signs[i]*(floats.Dot(coef, row)+b))
			}
			return loss
		},
		Grad: func(grad, w []float64) {
			coef, b := w[:nFeatures], w[nFeatures]
			copy(grad[:nFeatures], coef)
			grad[nFeatures] = 0
			for i, row := range x {
				// d/dz softplus(-s z) = -s * sigmoid(-s z)
				g := -signs[i] * sigmoid(-signs[i]*(floats.Dot(coef, row)+b)) * c
				floats.AddScaled(grad[:nFeatures], g, row)
				grad[nFeatures] += g
			}
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   m.maxIterations(),
		GradientThreshold: 1e-6,
	}
	result, err := optimize.Minimize(problem, make([]float64, nFeatures+1), settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("ml: minimize logistic loss: %w", err)
	}
	m.Coef = append([]float64(nil), result.X[:nFeatures]...)
	m.Intercept = result.X[nFeatures]
	return nil
}

// Predict returns 1 where the decision function is positive.
func (m *LogisticRegression) Predict(x [][]float64) []int {
	out := make([]int, len(x))
	for i, row := range x {
		if floats.Dot(m.Coef, row)+m.Intercept > 0 {
			out[i] = 1
		}
	}
	return out
}

func (m *LogisticRegression) maxIterations() int {
	if m.MaxIterations > 0 {
		return m.MaxIterations
	}
	return 100
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
