package audit

import (
	"fairlens/domain/core"
)

// Model family names as they appear in reports and error messages.
const (
	FamilyLinear   = "logistic_regression"
	FamilyEnsemble = "random_forest"
)

// ROCPoint is one (false-positive-rate, true-positive-rate) pair at a
// decision threshold.
type ROCPoint struct {
	Threshold float64 `json:"threshold"`
	FPR       float64 `json:"fpr"`
	TPR       float64 `json:"tpr"`
}

// GroupMetrics is the confusion-derived metric set restricted to one
// protected-attribute value.
type GroupMetrics struct {
	Group     string    `json:"group"`
	Support   int       `json:"support"`
	Positives int       `json:"positives"`
	Confusion Confusion `json:"confusion"`
	Precision Rate      `json:"precision"`
	Recall    Rate      `json:"recall"`
	F1        Rate      `json:"f1"`
}

// Report is one model's evaluation over the test subset: global metrics plus
// the per-group decomposition. Read-only after creation; bit-for-bit
// reproducible for a fixed model and test subset.
type Report struct {
	Family    string         `json:"family"`
	TestSize  int            `json:"test_size"`
	Accuracy  Rate           `json:"accuracy"`
	Precision Rate           `json:"precision"`
	Recall    Rate           `json:"recall"`
	F1        Rate           `json:"f1"`
	Confusion Confusion      `json:"confusion"`
	ROC       []ROCPoint     `json:"roc"`
	AUC       Rate           `json:"auc"`
	Groups    []GroupMetrics `json:"groups"`
	RecallGap Rate           `json:"recall_gap"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// Group returns the metrics for one protected-attribute value.
func (r *Report) Group(name string) (GroupMetrics, bool) {
	for _, g := range r.Groups {
		if g.Group == name {
			return g, true
		}
	}
	return GroupMetrics{}, false
}

// RecallGap is max minus min over the defined group recalls. Fewer than two
// defined recalls leave nothing to compare, so the gap itself is undefined.
func RecallGap(groups []GroupMetrics) Rate {
	var min, max float64
	defined := 0
	for _, g := range groups {
		if !g.Recall.Defined {
			continue
		}
		if defined == 0 || g.Recall.Value < min {
			min = g.Recall.Value
		}
		if defined == 0 || g.Recall.Value > max {
			max = g.Recall.Value
		}
		defined++
	}
	if defined < 2 {
		return UndefinedRate()
	}
	return DefinedRate(max - min)
}

// GroupRecall pairs a protected-attribute value with its recall for the
// plain-language summary.
type GroupRecall struct {
	Group  string `json:"group"`
	Recall Rate   `json:"recall"`
}

// Summary is the presentation-boundary object the explanation formatter
// consumes: per-group recalls and the headline gap, nothing else.
type Summary struct {
	Family       string        `json:"family"`
	GroupRecalls []GroupRecall `json:"group_recalls"`
	Gap          Rate          `json:"gap"`
}

// Summary projects the report down to its fairness signal.
func (r *Report) Summary() Summary {
	s := Summary{Family: r.Family, Gap: r.RecallGap}
	for _, g := range r.Groups {
		s.GroupRecalls = append(s.GroupRecalls, GroupRecall{Group: g.Group, Recall: g.Recall})
	}
	return s
}
