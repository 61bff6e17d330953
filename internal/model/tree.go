package model

import (
	"math/rand/v2"
	"sort"
)

// treeOptions controls CART growth.
type treeOptions struct {
	maxDepth       int     // 0 = unlimited
	minSamplesLeaf int     // minimum rows per leaf
	lambda         float64 // L2 shrinkage on leaf values; 0 gives the plain mean
	maxFeatures    int     // features considered per split; 0 = all
}

// treeNode is one node of a fitted regression tree.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      int
	right     int
}

// regressionTree is a CART tree with squared-error splits.
type regressionTree struct {
	opts  treeOptions
	nodes []treeNode
	width int
}

// splitCandidate is the best split found for a node.
type splitCandidate struct {
	feature   int
	threshold float64
	gain      float64
}

const minSplitGain = 1e-12

// fitTree grows a tree on the rows listed in idx. idx may contain duplicates
// (bootstrap samples). rng may be nil when maxFeatures selects all features.
func fitTree(x [][]float64, y []float64, idx []int, width int, opts treeOptions, rng *rand.Rand) *regressionTree {
	if opts.minSamplesLeaf < 1 {
		opts.minSamplesLeaf = 1
	}
	t := &regressionTree{opts: opts, width: width}
	t.build(x, y, idx, 0, rng)
	return t
}

// build grows the subtree for idx and returns its node index.
func (t *regressionTree) build(x [][]float64, y []float64, idx []int, depth int, rng *rand.Rand) int {
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	n := len(idx)

	nodeID := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{leaf: true, value: t.leafValue(sum, n)})

	if n < 2*t.opts.minSamplesLeaf {
		return nodeID
	}
	if t.opts.maxDepth > 0 && depth >= t.opts.maxDepth {
		return nodeID
	}

	best, ok := t.bestSplit(x, y, idx, sum, rng)
	if !ok {
		return nodeID
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if x[i][best.feature] <= best.threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	left := t.build(x, y, leftIdx, depth+1, rng)
	right := t.build(x, y, rightIdx, depth+1, rng)

	t.nodes[nodeID] = treeNode{
		feature:   best.feature,
		threshold: best.threshold,
		left:      left,
		right:     right,
	}
	return nodeID
}

// bestSplit scans candidate features for the split with the largest gain.
// Gain = GL²/(nL+λ) + GR²/(nR+λ) − G²/(n+λ), which is the squared-error
// reduction when λ = 0.
func (t *regressionTree) bestSplit(x [][]float64, y []float64, idx []int, sum float64, rng *rand.Rand) (splitCandidate, bool) {
	n := len(idx)
	parentScore := t.score(sum, n)
	best := splitCandidate{gain: minSplitGain}
	found := false

	sorted := make([]int, n)
	for _, f := range t.featureSubset(rng) {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool {
			return x[sorted[a]][f] < x[sorted[b]][f]
		})

		leftSum := 0.0
		for k := 1; k < n; k++ {
			leftSum += y[sorted[k-1]]

			lo, hi := x[sorted[k-1]][f], x[sorted[k]][f]
			if lo == hi {
				continue
			}
			if k < t.opts.minSamplesLeaf || n-k < t.opts.minSamplesLeaf {
				continue
			}

			gain := t.score(leftSum, k) + t.score(sum-leftSum, n-k) - parentScore
			if gain > best.gain {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				best = splitCandidate{feature: f, threshold: threshold, gain: gain}
				found = true
			}
		}
	}

	return best, found
}

// featureSubset returns the features to consider at one node.
func (t *regressionTree) featureSubset(rng *rand.Rand) []int {
	if t.opts.maxFeatures <= 0 || t.opts.maxFeatures >= t.width || rng == nil {
		all := make([]int, t.width)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(t.width)[:t.opts.maxFeatures]
	sort.Ints(perm)
	return perm
}

func (t *regressionTree) score(sum float64, n int) float64 {
	return sum * sum / (float64(n) + t.opts.lambda)
}

func (t *regressionTree) leafValue(sum float64, n int) float64 {
	den := float64(n) + t.opts.lambda
	if den == 0 {
		return 0
	}
	return sum / den
}

// predictRow walks the tree for one row.
func (t *regressionTree) predictRow(row []float64) float64 {
	i := 0
	for {
		node := &t.nodes[i]
		if node.leaf {
			return node.value
		}
		if row[node.feature] <= node.threshold {
			i = node.left
		} else {
			i = node.right
		}
	}
}

// depth returns the maximum depth of the tree (root = 0).
func (t *regressionTree) depth() int {
	var walk func(i, d int) int
	walk = func(i, d int) int {
		node := &t.nodes[i]
		if node.leaf {
			return d
		}
		return max(walk(node.left, d+1), walk(node.right, d+1))
	}
	return walk(0, 0)
}
