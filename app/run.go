package app

import (
	"fairlens/domain/audit"
	"fairlens/domain/core"
	"fairlens/domain/dataset"
	"fairlens/internal/ingest"
	"fairlens/internal/model"
	"fairlens/internal/transform"
)

// RunRequest carries per-run overrides for the audit pipeline. Nil fields
// fall back to the configured defaults, so a zero MaxDepth override (meaning
// unlimited) stays distinguishable from no override at all.
type RunRequest struct {
	Seed           *int64   `json:"seed,omitempty"`
	TestFraction   *float64 `json:"test_fraction,omitempty"`
	TreeCount      *int     `json:"tree_count,omitempty"`
	MaxDepth       *int     `json:"max_depth,omitempty"`
	Regularization *float64 `json:"regularization,omitempty"`
}

// TrainingFailure records one family that failed while its sibling survived.
type TrainingFailure struct {
	Family string `json:"family"`
	Error  string `json:"error"`
}

// AuditRun is everything one pipeline execution produced. It is the unit the
// result cache stores and the repository persists; the heavyweight members
// stay out of the JSON projection and serve the drill-down endpoints.
type AuditRun struct {
	ID           core.RunID        `json:"id"`
	Fingerprint  core.Fingerprint  `json:"fingerprint"`
	Seed         int64             `json:"seed"`
	TestFraction float64           `json:"test_fraction"`
	ModelConfig  model.Config      `json:"model_config"`
	CleanReport  ingest.Report     `json:"clean_report"`
	TrainSize    int               `json:"train_size"`
	TestSize     int               `json:"test_size"`
	FeatureNames []string          `json:"feature_names"`
	Reports      []audit.Report    `json:"reports"`
	Failures     []TrainingFailure `json:"failures,omitempty"`
	CreatedAt    core.Timestamp    `json:"created_at"`
	DurationMs   int64             `json:"duration_ms"`

	Dataset   *dataset.Dataset  `json:"-"`
	Transform *transform.Fitted `json:"-"`
	Models    []model.Trained   `json:"-"`
}

// Summaries projects every report down to its fairness signal for the
// explanation formatter.
func (r *AuditRun) Summaries() []audit.Summary {
	out := make([]audit.Summary, 0, len(r.Reports))
	for i := range r.Reports {
		out = append(out, r.Reports[i].Summary())
	}
	return out
}

// Explanation is the narrative view of one run.
type Explanation struct {
	RunID     core.RunID      `json:"run_id"`
	Summaries []audit.Summary `json:"summaries"`
	Narrative string          `json:"narrative"`
}

// FeatureView exposes the trained feature order plus the linear family's
// coefficients for interpretability display. Coefficients are absent when the
// linear family failed.
type FeatureView struct {
	RunID        core.RunID `json:"run_id"`
	FeatureNames []string   `json:"feature_names"`
	Coefficients []float64  `json:"coefficients,omitempty"`
	Intercept    *float64   `json:"intercept,omitempty"`
}

// DatasetPage is one window of cleaned records for display.
type DatasetPage struct {
	RunID   core.RunID       `json:"run_id"`
	Total   int              `json:"total"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	Records []dataset.Record `json:"records"`
}
