package model

import (
	"time"

	"fairlens/ports"
)

// Trained pairs one fitted classifier with the configuration and feature
// order it was trained under. The feature order is what makes linear
// coefficients interpretable downstream.
type Trained struct {
	Family       string        `json:"family"`
	Hyper        Config        `json:"hyper"`
	FeatureNames []string      `json:"feature_names"`
	Duration     time.Duration `json:"duration"`

	Classifier ports.Classifier `json:"-"`
}

// Coefficients returns the per-feature weights and the intercept when the
// family exposes them; ok is false for the ensemble.
func (t Trained) Coefficients() (weights []float64, intercept float64, ok bool) {
	linear, ok := t.Classifier.(*Logistic)
	if !ok {
		return nil, 0, false
	}
	return linear.Weights(), linear.Bias(), true
}
