// Package fairness evaluates a trained classifier over the test subset and
// decomposes the standard metrics by the protected attribute.
package fairness

import (
	"fmt"
	"sort"

	"fairlens/domain/audit"
	"fairlens/domain/core"
	"fairlens/ports"
)

// Evaluate scores the test matrix exactly once, derives predictions at the
// 0.5 threshold, and builds the full report: global confusion metrics, the
// ROC sweep, the per-group decomposition, and the recall gap. For a fixed
// model and test subset the report is bit-for-bit reproducible.
func Evaluate(clf ports.Classifier, features [][]float64, labels []int, groups []string) (*audit.Report, error) {
	if len(labels) != len(features) || len(groups) != len(features) {
		return nil, fmt.Errorf("evaluate %s: %d rows, %d labels, %d groups", clf.Family(), len(features), len(labels), len(groups))
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("evaluate %s: empty test subset", clf.Family())
	}

	scores, err := clf.Scores(features)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", clf.Family(), err)
	}

	predictions := make([]int, len(scores))
	for i, s := range scores {
		if s >= 0.5 {
			predictions[i] = 1
		}
	}

	var global audit.Confusion
	for i, label := range labels {
		global.Observe(label, predictions[i])
	}

	roc, auc := rocCurve(scores, labels)
	groupMetrics := groupBreakdown(labels, predictions, groups)

	report := &audit.Report{
		Family:    clf.Family(),
		TestSize:  len(features),
		Accuracy:  global.Accuracy(),
		Precision: global.Precision(),
		Recall:    global.Recall(),
		F1:        global.F1(),
		Confusion: global,
		ROC:       roc,
		AUC:       auc,
		Groups:    groupMetrics,
		RecallGap: audit.RecallGap(groupMetrics),
		CreatedAt: core.Now(),
	}
	return report, nil
}

// groupBreakdown computes the confusion-derived metrics restricted to each
// distinct protected-attribute value, in sorted group order.
func groupBreakdown(labels, predictions []int, groups []string) []audit.GroupMetrics {
	byGroup := make(map[string]*audit.Confusion)
	names := make([]string, 0, 2)
	for i, g := range groups {
		c, ok := byGroup[g]
		if !ok {
			c = &audit.Confusion{}
			byGroup[g] = c
			names = append(names, g)
		}
		c.Observe(labels[i], predictions[i])
	}
	sort.Strings(names)

	out := make([]audit.GroupMetrics, 0, len(names))
	for _, name := range names {
		c := byGroup[name]
		out = append(out, audit.GroupMetrics{
			Group:     name,
			Support:   c.Total(),
			Positives: c.Positives(),
			Confusion: *c,
			Precision: c.Precision(),
			Recall:    c.Recall(),
			F1:        c.F1(),
		})
	}
	return out
}

// rocCurve sweeps the decision threshold over the distinct scores in
// descending order. Each point classifies score >= threshold as positive, so
// false-positive rate never decreases along the curve. The curve opens at
// (0,0) with a threshold above every score and closes at (1,1) naturally at
// the lowest score. With no positives or no negatives there is no rate to
// sweep and both the curve and the area are undefined.
func rocCurve(scores []float64, labels []int) ([]audit.ROCPoint, audit.Rate) {
	positives := 0
	for _, label := range labels {
		positives += label
	}
	negatives := len(labels) - positives
	if positives == 0 || negatives == 0 {
		return nil, audit.UndefinedRate()
	}

	type scored struct {
		score float64
		label int
	}
	ordered := make([]scored, len(scores))
	for i, s := range scores {
		ordered[i] = scored{score: s, label: labels[i]}
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].score > ordered[b].score })

	points := []audit.ROCPoint{{Threshold: ordered[0].score + 1, FPR: 0, TPR: 0}}
	tp, fp := 0, 0
	for i := 0; i < len(ordered); {
		threshold := ordered[i].score
		for i < len(ordered) && ordered[i].score == threshold {
			if ordered[i].label == 1 {
				tp++
			} else {
				fp++
			}
			i++
		}
		points = append(points, audit.ROCPoint{
			Threshold: threshold,
			FPR:       float64(fp) / float64(negatives),
			TPR:       float64(tp) / float64(positives),
		})
	}

	area := 0.0
	for i := 1; i < len(points); i++ {
		area += (points[i].FPR - points[i-1].FPR) * (points[i].TPR + points[i-1].TPR) / 2
	}
	return points, audit.DefinedRate(area)
}
