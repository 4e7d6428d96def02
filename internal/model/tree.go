package model

import (
	"math/rand"
	"sort"
)

// treeConfig holds the growth limits for a single CART tree.
type treeConfig struct {
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // 0 means consider every feature
	seed            int64
}

// decisionTree is a binary CART classifier splitting on the gini criterion.
// Features are scanned in ascending index order and ties keep the first best
// split, so growth is deterministic for a fixed seed.
type decisionTree struct {
	cfg  treeConfig
	root *treeNode
}

type treeNode struct {
	leaf        bool
	feature     int
	threshold   float64 // value <= threshold goes left
	left        *treeNode
	right       *treeNode
	probability float64 // positive-class fraction at the leaf
	samples     int
}

func newDecisionTree(cfg treeConfig) *decisionTree {
	if cfg.minSamplesSplit < 2 {
		cfg.minSamplesSplit = 2
	}
	if cfg.minSamplesLeaf < 1 {
		cfg.minSamplesLeaf = 1
	}
	return &decisionTree{cfg: cfg}
}

// fit grows the tree over the rows named by indices. Indices may repeat, which
// is how bootstrap samples arrive.
func (t *decisionTree) fit(features [][]float64, labels []int, indices []int) {
	rng := rand.New(rand.NewSource(t.cfg.seed))
	t.root = t.grow(features, labels, indices, 0, rng)
}

// score walks a row to its leaf and returns the positive-class fraction.
func (t *decisionTree) score(row []float64) float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.probability
}

func (t *decisionTree) grow(features [][]float64, labels []int, indices []int, depth int, rng *rand.Rand) *treeNode {
	positives := 0
	for _, i := range indices {
		positives += labels[i]
	}
	node := &treeNode{samples: len(indices), probability: float64(positives) / float64(len(indices))}

	pure := positives == 0 || positives == len(indices)
	depthReached := t.cfg.maxDepth > 0 && depth >= t.cfg.maxDepth
	if pure || depthReached || len(indices) < t.cfg.minSamplesSplit {
		node.leaf = true
		return node
	}

	best := t.bestSplit(features, labels, indices, positives, rng)
	if best.feature < 0 {
		node.leaf = true
		return node
	}

	node.feature = best.feature
	node.threshold = best.threshold
	node.left = t.grow(features, labels, best.leftIndices, depth+1, rng)
	node.right = t.grow(features, labels, best.rightIndices, depth+1, rng)
	return node
}

type split struct {
	gain         float64
	feature      int
	threshold    float64
	leftIndices  []int
	rightIndices []int
}

type valueIndex struct {
	value float64
	index int
}

// bestSplit scans candidate features for the threshold with the highest gini
// gain. The candidate set is either every feature or a seeded subsample,
// always visited in ascending order.
func (t *decisionTree) bestSplit(features [][]float64, labels []int, indices []int, positives int, rng *rand.Rand) split {
	width := len(features[0])
	candidates := t.candidateFeatures(width, rng)

	n := len(indices)
	parent := gini(positives, n-positives)
	best := split{feature: -1}

	ordered := make([]valueIndex, n)
	for _, f := range candidates {
		for k, i := range indices {
			ordered[k] = valueIndex{value: features[i][f], index: i}
		}
		sort.Slice(ordered, func(a, b int) bool {
			if ordered[a].value != ordered[b].value {
				return ordered[a].value < ordered[b].value
			}
			return ordered[a].index < ordered[b].index
		})

		leftPos := 0
		for s := 1; s < n; s++ {
			leftPos += labels[ordered[s-1].index]
			if ordered[s].value == ordered[s-1].value {
				continue
			}
			if s < t.cfg.minSamplesLeaf || n-s < t.cfg.minSamplesLeaf {
				continue
			}
			rightPos := positives - leftPos
			weighted := (float64(s)*gini(leftPos, s-leftPos) + float64(n-s)*gini(rightPos, n-s-rightPos)) / float64(n)
			gain := parent - weighted
			if gain > best.gain {
				best = split{
					gain:      gain,
					feature:   f,
					threshold: (ordered[s-1].value + ordered[s].value) / 2,
				}
				best.leftIndices = make([]int, s)
				best.rightIndices = make([]int, n-s)
				for k := 0; k < s; k++ {
					best.leftIndices[k] = ordered[k].index
				}
				for k := s; k < n; k++ {
					best.rightIndices[k-s] = ordered[k].index
				}
			}
		}
	}
	return best
}

func (t *decisionTree) candidateFeatures(width int, rng *rand.Rand) []int {
	all := make([]int, width)
	for j := range all {
		all[j] = j
	}
	if t.cfg.maxFeatures <= 0 || t.cfg.maxFeatures >= width {
		return all
	}
	rng.Shuffle(width, func(a, b int) { all[a], all[b] = all[b], all[a] })
	chosen := all[:t.cfg.maxFeatures]
	sort.Ints(chosen)
	return chosen
}

func gini(positives, negatives int) float64 {
	total := positives + negatives
	if total == 0 {
		return 0
	}
	p := float64(positives) / float64(total)
	return 2 * p * (1 - p)
}
