// Package ml holds the small classifiers used by the mentions analysis:
// Gaussian naive Bayes, L2 logistic regression, recursive feature
// elimination and the split/scoring helpers around them. Samples are rows of
// a [][]float64 and labels are small non-negative ints.
package ml
