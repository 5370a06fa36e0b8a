package ml

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// TrainTestSplit shuffles n sample indices and returns the train and test
// partitions. The test set holds ceil(testFraction*n) samples.
func TrainTestSplit(n int, testFraction float64, rng *rand.Rand) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("ml: test fraction %v must be in (0, 1)", testFraction)
	}
	nTest := int(math.Ceil(testFraction * float64(n)))
	if n < 2 || nTest >= n {
		return nil, nil, fmt.Errorf("ml: cannot split %d samples with test fraction %v", n, testFraction)
	}
	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// Rows returns the rows of x at idx.
func Rows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for k, i := range idx {
		out[k] = x[i]
	}
	return out
}

// Labels returns the labels of y at idx.
func Labels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for k, i := range idx {
		out[k] = y[i]
	}
	return out
}
