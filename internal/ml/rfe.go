package ml

import (
	"fmt"
	"math"
	"sort"
)

// RFE recursively eliminates the feature with the smallest absolute
// logistic regression coefficient until NFeatures remain.
type RFE struct {
	NFeatures int
	// NewModel builds the estimator refitted each round. Defaults to
	// NewLogisticRegression.
	NewModel func() *LogisticRegression
}

// Fit returns the support mask of the selected features.
func (r RFE) Fit(x [][]float64, y []int) ([]bool, error) {
	nFeatures, err := checkXY(x, y)
	if err != nil {
		return nil, err
	}
	target := r.NFeatures
	if target <= 0 || target > nFeatures {
		target = nFeatures
	}
	newModel := r.NewModel
	if newModel == nil {
		newModel = NewLogisticRegression
	}

	support := make([]bool, nFeatures)
	for j := range support {
		support[j] = true
	}
	remaining := nFeatures
	for remaining > target {
		features := selected(support)
		model := newModel()
		if err := model.Fit(SelectColumns(x, support), y); err != nil {
			return nil, fmt.Errorf("rfe with %d features: %w", remaining, err)
		}
		order := make([]int, len(features))
		for k := range order {
			order[k] = k
		}
		sort.SliceStable(order, func(a, b int) bool {
			return math.Abs(model.Coef[order[a]]) < math.Abs(model.Coef[order[b]])
		})
		support[features[order[0]]] = false
		remaining--
	}
	return support, nil
}

// SelectColumns keeps the columns of x whose support entry is true.
func SelectColumns(x [][]float64, support []bool) [][]float64 {
	keep := selected(support)
	out := make([][]float64, len(x))
	for i, row := range x {
		nr := make([]float64, len(keep))
		for k, j := range keep {
			nr[k] = row[j]
		}
		out[i] = nr
	}
	return out
}

func selected(support []bool) []int {
	var out []int
	for j, ok := range support {
		if ok {
			out = append(out, j)
		}
	}
	return out
}
