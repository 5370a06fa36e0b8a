package ml

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultVarSmoothing is the share of the largest feature variance added to
// every variance.
const DefaultVarSmoothing = 1e-9

// ErrNoSamples is returned when fitting on an empty set.
var ErrNoSamples = errors.New("ml: no samples")

// GaussianNB is a Gaussian naive Bayes classifier.
type GaussianNB struct {
	VarSmoothing float64

	classes []int
	priors  []float64
	means   [][]float64
	vars    [][]float64
}

// NewGaussianNB returns a classifier with the default smoothing.
func NewGaussianNB() *GaussianNB {
	return &GaussianNB{VarSmoothing: DefaultVarSmoothing}
}

// Fit estimates class priors and per-class feature means and population
// variances.
func (m *GaussianNB) Fit(x [][]float64, y []int) error {
	nFeatures, err := checkXY(x, y)
	if err != nil {
		return err
	}

	epsilon := 0.0
	for j := 0; j < nFeatures; j++ {
		_, v := stat.PopMeanVariance(column(x, j), nil)
		epsilon = math.Max(epsilon, v)
	}
	epsilon *= m.VarSmoothing
	if epsilon == 0 {
		// Every feature is constant; keep the densities finite.
		epsilon = DefaultVarSmoothing
	}

	m.classes = distinct(y)
	m.priors = make([]float64, len(m.classes))
	m.means = make([][]float64, len(m.classes))
	m.vars = make([][]float64, len(m.classes))
	for k, class := range m.classes {
		var rows [][]float64
		for i, label := range y {
			if label == class {
				rows = append(rows, x[i])
			}
		}
		m.priors[k] = float64(len(rows)) / float64(len(y))
		m.means[k] = make([]float64, nFeatures)
		m.vars[k] = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			mean, v := stat.PopMeanVariance(column(rows, j), nil)
			m.means[k][j] = mean
			m.vars[k][j] = v + epsilon
		}
	}
	return nil
}

// Predict returns the most likely class of every row. Ties go to the
// smallest class.
func (m *GaussianNB) Predict(x [][]float64) []int {
	out := make([]int, len(x))
	for i, row := range x {
		best, bestLL := 0, math.Inf(-1)
		for k := range m.classes {
			ll := math.Log(m.priors[k])
			for j, v := range row {
				ll += distuv.Normal{Mu: m.means[k][j], Sigma: math.Sqrt(m.vars[k][j])}.LogProb(v)
			}
			if ll > bestLL {
				best, bestLL = k, ll
			}
		}
		if len(m.classes) > 0 {
			out[i] = m.classes[best]
		}
	}
	return out
}

func checkXY(x [][]float64, y []int) (int, error) {
	if len(x) == 0 {
		return 0, ErrNoSamples
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("ml: %d samples but %d labels", len(x), len(y))
	}
	n := len(x[0])
	for i, row := range x {
		if len(row) != n {
			return 0, fmt.Errorf("ml: row %d has %d features, want %d", i, len(row), n)
		}
	}
	return n, nil
}

func column(x [][]float64, j int) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = row[j]
	}
	return out
}

func distinct(y []int) []int {
	out := slices.Clone(y)
	slices.Sort(out)
	return slices.Compact(out)
}
