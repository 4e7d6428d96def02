// Package model implements the two classifier families the audit compares:
// a regularized logistic regression and a random forest. Both train from the
// same standardized matrix and expose calibrated scores so downstream metrics
// treat them uniformly. Training is deterministic for a fixed seed.
package model

import (
	"fmt"
	"math"

	"fairlens/domain/core"
)

// validateTrainingSet checks the shape constraints shared by every family and
// returns the positive-label count.
func validateTrainingSet(features [][]float64, labels []int) (int, error) {
	if len(features) == 0 {
		return 0, fmt.Errorf("empty training matrix")
	}
	if len(labels) != len(features) {
		return 0, fmt.Errorf("feature rows %d do not match labels %d", len(features), len(labels))
	}
	width := len(features[0])
	if width == 0 {
		return 0, fmt.Errorf("training matrix has no columns")
	}
	positives := 0
	for i, row := range features {
		if len(row) != width {
			return 0, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("row %d column %d is not finite", i, j)
			}
		}
		switch labels[i] {
		case 1:
			positives++
		case 0:
		default:
			return 0, fmt.Errorf("label %d at row %d is not binary", labels[i], i)
		}
	}
	if positives == 0 || positives == len(labels) {
		return 0, fmt.Errorf("training labels contain a single class")
	}
	return positives, nil
}

// checkPredictionSet validates a matrix against the width the model trained on.
func checkPredictionSet(features [][]float64, width int) error {
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("row %d has %d columns, model trained on %d", i, len(row), width)
		}
	}
	return nil
}

func trainingFailed(family string, cause error) error {
	return core.NewTrainingFailedError(family, cause)
}
