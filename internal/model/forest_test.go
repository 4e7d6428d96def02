package model

import (
	"context"
	"testing"

	"fairlens/domain/audit"
	"fairlens/domain/core"
)

// clusteredSet builds two well-separated clusters so every bootstrap split
// lands between them.
func clusteredSet() ([][]float64, []int) {
	features := make([][]float64, 0, 40)
	labels := make([]int, 0, 40)
	for i := 0; i < 20; i++ {
		features = append(features, []float64{-2 + float64(i)*0.05})
		labels = append(labels, 0)
		features = append(features, []float64{1 + float64(i)*0.05})
		labels = append(labels, 1)
	}
	return features, labels
}

func TestForestSeparatesClusteredData(t *testing.T) {
	features, labels := clusteredSet()
	f := NewForest(42, 25, 0)
	if err := f.Fit(context.Background(), features, labels); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if f.Family() != audit.FamilyEnsemble {
		t.Errorf("Expected family %s, got %s", audit.FamilyEnsemble, f.Family())
	}
	if f.TreeCount() != 25 {
		t.Errorf("Expected 25 trees, got %d", f.TreeCount())
	}

	preds, err := f.Predict(features)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i, p := range preds {
		if p != labels[i] {
			t.Errorf("Row %d: expected %d, got %d", i, labels[i], p)
		}
	}

	scores, err := f.Scores([][]float64{{-5}, {5}})
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if scores[0] >= scores[1] {
		t.Errorf("Expected deep-negative score below deep-positive, got %v", scores)
	}
	for _, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("Score %v outside [0,1]", s)
		}
	}
}

func TestForestIsDeterministicForSeed(t *testing.T) {
	features, labels := clusteredSet()

	a := NewForest(7, 15, 4)
	b := NewForest(7, 15, 4)
	if err := a.Fit(context.Background(), features, labels); err != nil {
		t.Fatalf("Fit a: %v", err)
	}
	if err := b.Fit(context.Background(), features, labels); err != nil {
		t.Fatalf("Fit b: %v", err)
	}

	sa, err := a.Scores(features)
	if err != nil {
		t.Fatalf("Scores a: %v", err)
	}
	sb, err := b.Scores(features)
	if err != nil {
		t.Fatalf("Scores b: %v", err)
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Errorf("Row %d: scores differ between identical seeds: %v vs %v", i, sa[i], sb[i])
		}
	}
}

func TestForestRejectsSingleClass(t *testing.T) {
	f := NewForest(1, 5, 0)
	err := f.Fit(context.Background(), [][]float64{{1}, {2}}, []int{1, 1})
	if err == nil {
		t.Fatal("Expected single-class training to fail")
	}
	if !core.IsTrainingFailedError(err) {
		t.Errorf("Expected training failure classification, got %v", err)
	}
}

func TestForestScoresRequireFit(t *testing.T) {
	f := NewForest(1, 5, 0)
	if _, err := f.Scores([][]float64{{1}}); err == nil {
		t.Error("Expected scoring an unfitted forest to fail")
	}
}

func TestForestHonorsCancellation(t *testing.T) {
	features, labels := clusteredSet()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewForest(42, 50, 0)
	err := f.Fit(ctx, features, labels)
	if err == nil {
		t.Fatal("Expected cancelled training to fail")
	}
	if !core.IsTrainingFailedError(err) {
		t.Errorf("Expected training failure classification, got %v", err)
	}
}
