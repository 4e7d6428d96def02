package model

import (
	"fmt"
	"math"

	"fairlens/domain/core"
)

// Config carries the hyperparameters a single audit run trains with. Values
// come from server defaults overridden per request, so Validate rejects rather
// than clamps anything out of range.
type Config struct {
	Seed           int64   `json:"seed"`
	TreeCount      int     `json:"tree_count"`
	MaxDepth       int     `json:"max_depth"`      // 0 means unlimited
	Regularization float64 `json:"regularization"` // inverse strength for the linear family
}

func (c Config) Validate() error {
	if c.TreeCount < 1 {
		return core.NewInvalidParameterError("tree_count", fmt.Sprintf("must be at least 1, got %d", c.TreeCount))
	}
	if c.MaxDepth < 0 {
		return core.NewInvalidParameterError("max_depth", fmt.Sprintf("must be non-negative, got %d", c.MaxDepth))
	}
	if c.Regularization <= 0 || math.IsNaN(c.Regularization) || math.IsInf(c.Regularization, 0) {
		return core.NewInvalidParameterError("regularization", fmt.Sprintf("must be a positive finite number, got %v", c.Regularization))
	}
	return nil
}

// Key returns the canonical parameter strings that identify this configuration
// inside a run cache key.
func (c Config) Key() []string {
	return []string{
		fmt.Sprintf("seed=%d", c.Seed),
		fmt.Sprintf("trees=%d", c.TreeCount),
		fmt.Sprintf("depth=%d", c.MaxDepth),
		fmt.Sprintf("reg=%s", formatParam(c.Regularization)),
	}
}

func formatParam(v float64) string {
	return fmt.Sprintf("%g", v)
}
