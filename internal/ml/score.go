package ml

// Accuracy is the fraction of predictions equal to the truth.
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0
	}
	hits := 0
	for i := range truth {
		if truth[i] == pred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

// Confusion is a binary confusion matrix: rows are true labels, columns are
// predicted labels.
type Confusion [2][2]float64

// ConfusionMatrix counts truth/prediction pairs for labels 0 and 1. Other
// labels are ignored.
func ConfusionMatrix(truth, pred []int) Confusion {
	var cm Confusion
	for i := range truth {
		t, p := truth[i], pred[i]
		if t < 0 || t > 1 || p < 0 || p > 1 {
			continue
		}
		cm[t][p]++
	}
	return cm
}

// Add accumulates o into c.
func (c *Confusion) Add(o Confusion) {
	for i := range c {
		for j := range c[i] {
			c[i][j] += o[i][j]
		}
	}
}

// Scale multiplies every cell by f.
func (c *Confusion) Scale(f float64) {
	for i := range c {
		for j := range c[i] {
			c[i][j] *= f
		}
	}
}
