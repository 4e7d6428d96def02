package model

import (
	"context"
	"fmt"
	"math"

	"fairlens/domain/audit"
)

const (
	logisticEpochs    = 300
	logisticLearnRate = 0.1
)

// Logistic is a binary logistic regression trained by full-batch gradient
// descent with an L2 penalty. Weights start at zero, so training is
// reproducible without any random state.
type Logistic struct {
	regularization float64
	weights        []float64
	bias           float64
}

// NewLogistic builds an untrained model. regularization is the inverse
// penalty strength: larger values mean a weaker penalty.
func NewLogistic(regularization float64) *Logistic {
	return &Logistic{regularization: regularization}
}

func (m *Logistic) Family() string { return audit.FamilyLinear }

// Fit runs gradient descent over the full training matrix for a fixed number
// of epochs. The penalty applies to weights only, never the bias.
func (m *Logistic) Fit(ctx context.Context, features [][]float64, labels []int) error {
	if _, err := validateTrainingSet(features, labels); err != nil {
		return trainingFailed(m.Family(), err)
	}

	n := len(features)
	width := len(features[0])
	weights := make([]float64, width)
	bias := 0.0
	lambda := 1.0 / m.regularization
	scale := 1.0 / float64(n)

	gradW := make([]float64, width)
	for epoch := 0; epoch < logisticEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return trainingFailed(m.Family(), err)
		}

		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0
		for i, row := range features {
			d := sigmoid(dot(weights, row)+bias) - float64(labels[i])
			for j, v := range row {
				gradW[j] += d * v
			}
			gradB += d
		}
		for j := range weights {
			weights[j] -= logisticLearnRate * (gradW[j]*scale + lambda*scale*weights[j])
		}
		bias -= logisticLearnRate * gradB * scale
	}

	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return trainingFailed(m.Family(), fmt.Errorf("parameters diverged"))
		}
	}

	m.weights = weights
	m.bias = bias
	return nil
}

// Scores returns the positive-class probability for each row.
func (m *Logistic) Scores(features [][]float64) ([]float64, error) {
	if m.weights == nil {
		return nil, fmt.Errorf("logistic model is not fitted")
	}
	if err := checkPredictionSet(features, len(m.weights)); err != nil {
		return nil, err
	}
	out := make([]float64, len(features))
	for i, row := range features {
		out[i] = sigmoid(dot(m.weights, row) + m.bias)
	}
	return out, nil
}

// Predict thresholds Scores at 0.5.
func (m *Logistic) Predict(features [][]float64) ([]int, error) {
	scores, err := m.Scores(features)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scores))
	for i, s := range scores {
		if s >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// Weights returns a copy of the trained coefficients, aligned with the
// feature order the model was fitted on.
func (m *Logistic) Weights() []float64 {
	out := make([]float64, len(m.weights))
	copy(out, m.weights)
	return out
}

func (m *Logistic) Bias() float64 { return m.bias }

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(w, x []float64) float64 {
	sum := 0.0
	for j, v := range x {
		sum += w[j] * v
	}
	return sum
}
