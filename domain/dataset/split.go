package dataset

import (
	"fmt"
)

// Split is a disjoint train/test partition of a dataset. Indices refer to the
// source dataset's row order; the record slices are materialized once so the
// transform and the models never touch the dataset again.
type Split struct {
	TrainIndices []int    `json:"train_indices"`
	TestIndices  []int    `json:"test_indices"`
	Train        []Record `json:"-"`
	Test         []Record `json:"-"`
	Seed         int64    `json:"seed"`
	TestFraction float64  `json:"test_fraction"`
}

// NewSplit materializes a partition from index sets.
func NewSplit(d *Dataset, trainIdx, testIdx []int, seed int64, testFraction float64) (*Split, error) {
	train, err := d.Subset(trainIdx)
	if err != nil {
		return nil, fmt.Errorf("train subset: %w", err)
	}
	test, err := d.Subset(testIdx)
	if err != nil {
		return nil, fmt.Errorf("test subset: %w", err)
	}
	return &Split{
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
		Train:        train,
		Test:         test,
		Seed:         seed,
		TestFraction: testFraction,
	}, nil
}

// Validate checks the partition invariant: disjoint index sets that together
// cover the dataset exactly.
func (s *Split) Validate(d *Dataset) error {
	seen := make(map[int]bool, d.Len())
	for _, idx := range s.TrainIndices {
		if seen[idx] {
			return fmt.Errorf("index %d assigned twice", idx)
		}
		seen[idx] = true
	}
	for _, idx := range s.TestIndices {
		if seen[idx] {
			return fmt.Errorf("index %d in both partitions", idx)
		}
		seen[idx] = true
	}
	if len(seen) != d.Len() {
		return fmt.Errorf("partition covers %d of %d rows", len(seen), d.Len())
	}
	return nil
}

// TrainSize returns the training row count.
func (s *Split) TrainSize() int { return len(s.TrainIndices) }

// TestSize returns the test row count.
func (s *Split) TestSize() int { return len(s.TestIndices) }
