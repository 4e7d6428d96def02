package split

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"fairlens/domain/core"
	"fairlens/domain/dataset"
)

// Stratified partitions a dataset into train and test subsets, preserving the
// label proportions per stratum. The only entropy source is the supplied
// seed, so a fixed (dataset, fraction, seed) triple always produces the same
// partition. Indices are emitted in ascending dataset order.
func Stratified(ds *dataset.Dataset, testFraction float64, seed int64) (*dataset.Split, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, core.NewInvalidParameterError("testFraction", "must be in (0,1)")
	}
	if ds.Len() == 0 {
		return nil, core.NewInsufficientDataError(0, 2)
	}

	labels := ds.Labels()
	strata := strataByLabel(labels)

	rng := rand.New(rand.NewSource(seed))

	var trainIdx, testIdx []int
	// Strata are visited in fixed label order so the RNG stream is consumed
	// identically on every run.
	for _, label := range []int{0, 1} {
		stratum := strata[label]
		if len(stratum) == 0 {
			continue
		}
		shuffled := make([]int, len(stratum))
		copy(shuffled, stratum)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		take := int(math.Round(float64(len(shuffled)) * testFraction))
		testIdx = append(testIdx, shuffled[:take]...)
		trainIdx = append(trainIdx, shuffled[take:]...)
	}

	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, fmt.Errorf("%w: fraction %v left train=%d test=%d", core.ErrInsufficientData, testFraction, len(trainIdx), len(testIdx))
	}

	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	s, err := dataset.NewSplit(ds, trainIdx, testIdx, seed, testFraction)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(ds); err != nil {
		return nil, err
	}
	return s, nil
}

// strataByLabel groups row indices by binary label, preserving dataset order
// within each stratum.
func strataByLabel(labels []int) map[int][]int {
	strata := make(map[int][]int, 2)
	for i, label := range labels {
		strata[label] = append(strata[label], i)
	}
	return strata
}
