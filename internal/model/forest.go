package model

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"fairlens/domain/audit"
)

// Forest is a random forest of CART trees. Each tree draws a bootstrap sample
// and a feature subsample from its own source seeded at seed+treeIndex, so the
// ensemble is reproducible no matter how the goroutines are scheduled.
type Forest struct {
	seed      int64
	treeCount int
	maxDepth  int
	trees     []*decisionTree
	width     int
}

func NewForest(seed int64, treeCount, maxDepth int) *Forest {
	return &Forest{seed: seed, treeCount: treeCount, maxDepth: maxDepth}
}

func (f *Forest) Family() string { return audit.FamilyEnsemble }

// Fit trains the trees concurrently into index-addressed slots.
func (f *Forest) Fit(ctx context.Context, features [][]float64, labels []int) error {
	if _, err := validateTrainingSet(features, labels); err != nil {
		return trainingFailed(f.Family(), err)
	}
	if f.treeCount < 1 {
		return trainingFailed(f.Family(), fmt.Errorf("tree count %d", f.treeCount))
	}

	n := len(features)
	width := len(features[0])
	subsample := int(math.Round(math.Sqrt(float64(width))))
	if subsample < 1 {
		subsample = 1
	}

	trees := make([]*decisionTree, f.treeCount)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < f.treeCount; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			treeSeed := f.seed + int64(i)
			rng := rand.New(rand.NewSource(treeSeed))
			sample := make([]int, n)
			for j := range sample {
				sample[j] = rng.Intn(n)
			}
			tree := newDecisionTree(treeConfig{
				maxDepth:        f.maxDepth,
				minSamplesSplit: 2,
				minSamplesLeaf:  1,
				maxFeatures:     subsample,
				seed:            treeSeed,
			})
			tree.fit(features, labels, sample)
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return trainingFailed(f.Family(), err)
	}

	f.trees = trees
	f.width = width
	return nil
}

// Scores averages the per-tree leaf probabilities in tree order, keeping the
// floating-point sum reproducible.
func (f *Forest) Scores(features [][]float64) ([]float64, error) {
	if f.trees == nil {
		return nil, fmt.Errorf("forest is not fitted")
	}
	if err := checkPredictionSet(features, f.width); err != nil {
		return nil, err
	}
	out := make([]float64, len(features))
	for i, row := range features {
		sum := 0.0
		for _, tree := range f.trees {
			sum += tree.score(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// Predict thresholds Scores at 0.5.
func (f *Forest) Predict(features [][]float64) ([]int, error) {
	scores, err := f.Scores(features)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scores))
	for i, s := range scores {
		if s >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// TreeCount reports how many trees were trained.
func (f *Forest) TreeCount() int { return len(f.trees) }
