package split

import (
	"sort"
	"testing"

	"fairlens/domain/core"
	"fairlens/domain/dataset"
	"fairlens/domain/schema"
)

func splitTable() schema.Table {
	return schema.Table{
		Version: 1,
		Name:    "toy",
		Columns: []schema.Column{
			{Name: "age", Kind: schema.KindNumeric},
			{Name: "sex", Kind: schema.KindCategorical},
			{Name: "income", Kind: schema.KindCategorical},
		},
		Protected:       "sex",
		Target:          "income",
		PositiveTarget:  ">50K",
		MissingSentinel: "?",
	}
}

func buildDataset(t *testing.T, labels []int, groups []string) *dataset.Dataset {
	t.Helper()
	records := make([]dataset.Record, len(labels))
	for i, label := range labels {
		records[i] = dataset.Record{
			Numeric:     map[string]float64{"age": float64(20 + i)},
			Categorical: map[string]string{"sex": groups[i]},
			Group:       groups[i],
			Label:       label,
		}
	}
	ds, err := dataset.New(splitTable(), records, dataset.Origin{Kind: dataset.OriginFallback, Location: "data/toy.csv"})
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestStratifiedIdempotent tests that equal inputs give identical partitions
func TestStratifiedIdempotent(t *testing.T) {
	labels := make([]int, 40)
	groups := make([]string, 40)
	for i := range labels {
		if i%4 == 0 {
			labels[i] = 1
		}
		if i%2 == 0 {
			groups[i] = "Female"
		} else {
			groups[i] = "Male"
		}
	}
	ds := buildDataset(t, labels, groups)

	for _, seed := range []int64{1, 7, 42, 99991} {
		first, err := Stratified(ds, 0.25, seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		second, err := Stratified(ds, 0.25, seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		if !equalInts(first.TrainIndices, second.TrainIndices) || !equalInts(first.TestIndices, second.TestIndices) {
			t.Errorf("seed %d: repeated split produced different partitions", seed)
		}
		if err := first.Validate(ds); err != nil {
			t.Errorf("seed %d: partition invariant broken: %v", seed, err)
		}
		if !sort.IntsAreSorted(first.TrainIndices) || !sort.IntsAreSorted(first.TestIndices) {
			t.Errorf("seed %d: indices not in ascending order", seed)
		}
	}
}

// TestStratifiedProportions tests per-label apportioning
func TestStratifiedProportions(t *testing.T) {
	labels := make([]int, 100)
	groups := make([]string, 100)
	for i := range labels {
		if i < 30 {
			labels[i] = 1
		}
		if i%2 == 0 {
			groups[i] = "Female"
		} else {
			groups[i] = "Male"
		}
	}
	ds := buildDataset(t, labels, groups)

	s, err := Stratified(ds, 0.2, 42)
	if err != nil {
		t.Fatalf("Stratified: %v", err)
	}

	if s.TestSize() != 20 || s.TrainSize() != 80 {
		t.Fatalf("Expected 80/20 rows, got %d/%d", s.TrainSize(), s.TestSize())
	}

	positives := 0
	for _, rec := range s.Test {
		if rec.Label == 1 {
			positives++
		}
	}
	if positives != 6 {
		t.Errorf("Expected 6 positive test rows (30 of 100 at 0.2), got %d", positives)
	}
}

// TestStratifiedFourRowScenario tests the fixed tiny-dataset partition
func TestStratifiedFourRowScenario(t *testing.T) {
	// Two positive rows in group A, two negative rows in group B.
	ds := buildDataset(t, []int{1, 1, 0, 0}, []string{"A", "A", "B", "B"})

	first, err := Stratified(ds, 0.5, 42)
	if err != nil {
		t.Fatalf("Stratified: %v", err)
	}

	// Stratification puts exactly one row of each label in test.
	if first.TestSize() != 2 || first.TrainSize() != 2 {
		t.Fatalf("Expected a 2/2 partition, got %d/%d", first.TrainSize(), first.TestSize())
	}
	testLabels := map[int]int{}
	for _, rec := range first.Test {
		testLabels[rec.Label]++
	}
	if testLabels[0] != 1 || testLabels[1] != 1 {
		t.Errorf("Expected one row per label in test, got %v", testLabels)
	}

	// The pair is fixed across repeated runs.
	for i := 0; i < 5; i++ {
		again, err := Stratified(ds, 0.5, 42)
		if err != nil {
			t.Fatalf("Stratified: %v", err)
		}
		if !equalInts(first.TestIndices, again.TestIndices) {
			t.Fatalf("Run %d moved the test pair: %v vs %v", i, first.TestIndices, again.TestIndices)
		}
	}
}

// TestStratifiedRejectsBadFractions tests the (0,1) constraint
func TestStratifiedRejectsBadFractions(t *testing.T) {
	ds := buildDataset(t, []int{1, 0, 1, 0}, []string{"A", "B", "A", "B"})

	for _, fraction := range []float64{0, 1, -0.2, 1.5} {
		_, err := Stratified(ds, fraction, 42)
		if err == nil {
			t.Errorf("Expected fraction %v to be rejected", fraction)
			continue
		}
		if !core.IsInvalidParameterError(err) {
			t.Errorf("Expected InvalidParameter for fraction %v, got %v", fraction, err)
		}
	}
}

// TestStratifiedDegenerateData tests too-small datasets
func TestStratifiedDegenerateData(t *testing.T) {
	// Two rows at fraction 0.9: every stratum rounds to test, leaving no train.
	ds := buildDataset(t, []int{1, 0}, []string{"A", "B"})
	_, err := Stratified(ds, 0.9, 42)
	if err == nil {
		t.Fatal("Expected degenerate partition to fail")
	}
	if !core.IsInsufficientDataError(err) {
		t.Errorf("Expected InsufficientData, got %v", err)
	}

	empty := buildDataset(t, nil, nil)
	if _, err := Stratified(empty, 0.5, 42); !core.IsInsufficientDataError(err) {
		t.Errorf("Expected InsufficientData for empty dataset, got %v", err)
	}
}
