package fairness

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"

	"fairlens/domain/audit"
)

// scriptedModel returns a fixed score vector, letting every metric be checked
// by hand.
type scriptedModel struct {
	family string
	scores []float64
	err    error
}

func (s *scriptedModel) Family() string { return s.family }

func (s *scriptedModel) Fit(ctx context.Context, features [][]float64, labels []int) error {
	return nil
}

func (s *scriptedModel) Scores(features [][]float64) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func (s *scriptedModel) Predict(features [][]float64) ([]int, error) {
	scores, err := s.Scores(features)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scores))
	for i, v := range scores {
		if v >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

func rows(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = []float64{float64(i)}
	}
	return out
}

func TestEvaluateComputesGlobalAndGroupMetrics(t *testing.T) {
	clf := &scriptedModel{
		family: audit.FamilyLinear,
		scores: []float64{0.9, 0.8, 0.7, 0.6, 0.4, 0.3, 0.2, 0.1},
	}
	labels := []int{1, 1, 0, 1, 1, 0, 0, 0}
	groups := []string{"A", "A", "A", "A", "B", "B", "B", "B"}

	report, err := Evaluate(clf, rows(8), labels, groups)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if report.TestSize != 8 {
		t.Errorf("Expected test size 8, got %d", report.TestSize)
	}
	want := audit.Confusion{TP: 3, FP: 1, TN: 3, FN: 1}
	if report.Confusion != want {
		t.Errorf("Expected confusion %+v, got %+v", want, report.Confusion)
	}
	if !report.Accuracy.Defined || report.Accuracy.Value != 0.75 {
		t.Errorf("Expected accuracy 0.75, got %v", report.Accuracy)
	}
	if !report.Precision.Defined || report.Precision.Value != 0.75 {
		t.Errorf("Expected precision 0.75, got %v", report.Precision)
	}
	if !report.Recall.Defined || report.Recall.Value != 0.75 {
		t.Errorf("Expected recall 0.75, got %v", report.Recall)
	}
	if !report.F1.Defined || report.F1.Value != 0.75 {
		t.Errorf("Expected f1 0.75, got %v", report.F1)
	}

	if len(report.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(report.Groups))
	}
	a, b := report.Groups[0], report.Groups[1]
	if a.Group != "A" || b.Group != "B" {
		t.Fatalf("Expected sorted groups A,B, got %s,%s", a.Group, b.Group)
	}
	if a.Support != 4 || a.Positives != 3 {
		t.Errorf("Group A: expected support 4 positives 3, got %d %d", a.Support, a.Positives)
	}
	if !a.Recall.Defined || a.Recall.Value != 1 {
		t.Errorf("Group A: expected recall 1, got %v", a.Recall)
	}
	if !b.Recall.Defined || b.Recall.Value != 0 {
		t.Errorf("Group B: expected defined recall 0, got %v", b.Recall)
	}
	if b.Precision.Defined {
		t.Errorf("Group B: expected undefined precision with no positive predictions, got %v", b.Precision)
	}
	if !report.RecallGap.Defined || report.RecallGap.Value != 1 {
		t.Errorf("Expected recall gap 1, got %v", report.RecallGap)
	}
}

func TestEvaluateROCSweep(t *testing.T) {
	clf := &scriptedModel{
		family: audit.FamilyEnsemble,
		scores: []float64{0.9, 0.8, 0.7, 0.6, 0.4, 0.3, 0.2, 0.1},
	}
	labels := []int{1, 1, 0, 1, 1, 0, 0, 0}
	groups := []string{"A", "A", "A", "A", "B", "B", "B", "B"}

	report, err := Evaluate(clf, rows(8), labels, groups)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.ROC) != 9 {
		t.Fatalf("Expected 9 ROC points, got %d", len(report.ROC))
	}
	first := report.ROC[0]
	if first.FPR != 0 || first.TPR != 0 {
		t.Errorf("Expected opening point (0,0), got (%v,%v)", first.FPR, first.TPR)
	}
	if first.Threshold <= 0.9 {
		t.Errorf("Expected opening threshold above every score, got %v", first.Threshold)
	}
	last := report.ROC[len(report.ROC)-1]
	if last.FPR != 1 || last.TPR != 1 {
		t.Errorf("Expected closing point (1,1), got (%v,%v)", last.FPR, last.TPR)
	}
	for i := 1; i < len(report.ROC); i++ {
		if report.ROC[i].FPR < report.ROC[i-1].FPR {
			t.Errorf("FPR decreased at point %d", i)
		}
		if report.ROC[i].Threshold >= report.ROC[i-1].Threshold {
			t.Errorf("Threshold did not decrease at point %d", i)
		}
	}
	if !report.AUC.Defined || math.Abs(report.AUC.Value-0.875) > 1e-12 {
		t.Errorf("Expected AUC 0.875, got %v", report.AUC)
	}
}

func TestEvaluateTiedScoresShareOnePoint(t *testing.T) {
	clf := &scriptedModel{
		family: audit.FamilyLinear,
		scores: []float64{0.8, 0.8, 0.8, 0.2},
	}
	labels := []int{1, 1, 0, 0}
	groups := []string{"A", "A", "B", "B"}

	report, err := Evaluate(clf, rows(4), labels, groups)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// Opening anchor, the tied 0.8 batch, then 0.2.
	if len(report.ROC) != 3 {
		t.Fatalf("Expected 3 ROC points, got %d", len(report.ROC))
	}
	batch := report.ROC[1]
	if batch.TPR != 1 || batch.FPR != 0.5 {
		t.Errorf("Expected tied batch point (0.5,1), got (%v,%v)", batch.FPR, batch.TPR)
	}
}

func TestEvaluateSingleClassTestSet(t *testing.T) {
	clf := &scriptedModel{
		family: audit.FamilyLinear,
		scores: []float64{0.9, 0.4, 0.6},
	}
	labels := []int{0, 0, 0}
	groups := []string{"A", "B", "A"}

	report, err := Evaluate(clf, rows(3), labels, groups)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.ROC != nil {
		t.Errorf("Expected no ROC points without positives, got %d", len(report.ROC))
	}
	if report.AUC.Defined {
		t.Errorf("Expected undefined AUC, got %v", report.AUC)
	}
	if report.Recall.Defined {
		t.Errorf("Expected undefined global recall, got %v", report.Recall)
	}
	if report.RecallGap.Defined {
		t.Errorf("Expected undefined recall gap, got %v", report.RecallGap)
	}
}

func TestEvaluateScoreFailurePropagates(t *testing.T) {
	clf := &scriptedModel{family: audit.FamilyLinear, err: fmt.Errorf("boom")}
	if _, err := Evaluate(clf, rows(2), []int{0, 1}, []string{"A", "B"}); err == nil {
		t.Error("Expected score failure to propagate")
	}
}

func TestEvaluateRejectsMismatchedLengths(t *testing.T) {
	clf := &scriptedModel{family: audit.FamilyLinear, scores: []float64{0.5}}
	if _, err := Evaluate(clf, rows(2), []int{0}, []string{"A", "B"}); err == nil {
		t.Error("Expected label length mismatch to fail")
	}
	if _, err := Evaluate(clf, rows(2), []int{0, 1}, []string{"A"}); err == nil {
		t.Error("Expected group length mismatch to fail")
	}
	if _, err := Evaluate(clf, nil, nil, nil); err == nil {
		t.Error("Expected empty test subset to fail")
	}
}

func TestEvaluateIsReproducible(t *testing.T) {
	clf := &scriptedModel{
		family: audit.FamilyEnsemble,
		scores: []float64{0.9, 0.1, 0.7, 0.3},
	}
	labels := []int{1, 0, 1, 0}
	groups := []string{"B", "A", "A", "B"}

	first, err := Evaluate(clf, rows(4), labels, groups)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := Evaluate(clf, rows(4), labels, groups)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !reflect.DeepEqual(first.ROC, second.ROC) {
		t.Error("Expected identical ROC curves")
	}
	if first.Confusion != second.Confusion {
		t.Error("Expected identical confusion counts")
	}
	if !reflect.DeepEqual(first.Groups, second.Groups) {
		t.Error("Expected identical group metrics")
	}
	if first.Groups[0].Group != "A" {
		t.Errorf("Expected groups sorted by name, got %s first", first.Groups[0].Group)
	}
}
