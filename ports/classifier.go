package ports

import (
	"context"
)

// Classifier is one trainable model family. Implementations must be
// deterministic for a fixed seed: repeated Fit calls over the same matrix
// yield identical parameters, and Predict/Scores never mutate state.
type Classifier interface {
	// Family names the model for reports and training-failure attribution.
	Family() string

	// Fit trains on the feature matrix and label vector. The matrix is
	// never mutated.
	Fit(ctx context.Context, features [][]float64, labels []int) error

	// Predict returns the hard 0/1 label per row.
	Predict(features [][]float64) ([]int, error)

	// Scores returns the positive-class score per row, monotone in
	// confidence, for ROC threshold sweeps.
	Scores(features [][]float64) ([]float64, error)
}
