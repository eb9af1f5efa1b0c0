// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import (
	"math"
	"math/rand"
)

// TreeNode is one node of a CART decision tree. Internal nodes route on
// Feature <= Threshold; leaves carry either a regression mean (Value) or a
// class distribution (Probs). Fields are exported for gob serialization.
type TreeNode struct {
	IsLeaf    bool
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode

	// Value is the leaf prediction for regression trees.
	Value float64

	// Probs is the leaf class distribution for classification trees.
	Probs []float64
}

// predictRow routes a feature vector to its leaf.
func (n *TreeNode) predictRow(row []float64) *TreeNode {
	node := n
	for !node.IsLeaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// treeTargets carries the training targets for one tree. Exactly one of
// reg/cls is used, selected by numClasses (0 = regression).
type treeTargets struct {
	reg        []float64
	cls        []int
	numClasses int
}

func (t treeTargets) isClassification() bool { return t.numClasses > 0 }

// treeBuilder grows a single CART tree and accumulates impurity-decrease
// feature importances.
type treeBuilder struct {
	x           [][]float64
	targets     treeTargets
	maxDepth    int
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand

	// importances accumulates weighted impurity decrease per feature.
	importances []float64
}

// build grows the tree over the given row indices.
func (b *treeBuilder) build(rows []int, depth int) *TreeNode {
	impurity := b.impurity(rows)

	if depth >= b.maxDepth || len(rows) < 2*b.minLeaf || impurity == 0 {
		return b.leaf(rows)
	}

	feature, threshold, gain, left, right := b.bestSplit(rows, impurity)
	if feature < 0 {
		return b.leaf(rows)
	}

	b.importances[feature] += gain

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// leaf builds a terminal node from the rows that reached it.
func (b *treeBuilder) leaf(rows []int) *TreeNode {
	node := &TreeNode{IsLeaf: true}

	if b.targets.isClassification() {
		counts := make([]float64, b.targets.numClasses)
		for _, i := range rows {
			counts[b.targets.cls[i]]++
		}
		total := float64(len(rows))
		probs := make([]float64, b.targets.numClasses)
		if total > 0 {
			for c := range counts {
				probs[c] = counts[c] / total
			}
		}
		node.Probs = probs
		return node
	}

	var sum float64
	for _, i := range rows {
		sum += b.targets.reg[i]
	}
	if len(rows) > 0 {
		node.Value = sum / float64(len(rows))
	}
	return node
}

// impurity computes variance (regression) or Gini impurity (classification)
// over the given rows.
func (b *treeBuilder) impurity(rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}

	if b.targets.isClassification() {
		counts := make([]float64, b.targets.numClasses)
		for _, i := range rows {
			counts[b.targets.cls[i]]++
		}
		total := float64(len(rows))
		gini := 1.0
		for _, c := range counts {
			p := c / total
			gini -= p * p
		}
		return gini
	}

	var sum, sumSq float64
	for _, i := range rows {
		v := b.targets.reg[i]
		sum += v
		sumSq += v * v
	}
	n := float64(len(rows))
	mean := sum / n
	return sumSq/n - mean*mean
}

// bestSplit searches a random feature subset for the split with the highest
// weighted impurity decrease. Returns feature = -1 when no split improves.
func (b *treeBuilder) bestSplit(rows []int, parentImpurity float64) (feature int, threshold, gain float64, left, right []int) {
	feature = -1

	numFeatures := len(b.x[0])
	candidates := b.sampleFeatures(numFeatures)

	n := float64(len(rows))
	bestGain := 0.0

	for _, f := range candidates {
		// Collect distinct values for the candidate thresholds.
		sorted := make([]int, len(rows))
		copy(sorted, rows)
		sortRowsByFeature(sorted, b.x, f)

		for k := 0; k+1 < len(sorted); k++ {
			lo := b.x[sorted[k]][f]
			hi := b.x[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			mid := (lo + hi) / 2

			l := sorted[:k+1]
			r := sorted[k+1:]
			if len(l) < b.minLeaf || len(r) < b.minLeaf {
				continue
			}

			weighted := (float64(len(l))*b.impurity(l) + float64(len(r))*b.impurity(r)) / n
			g := parentImpurity - weighted
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = mid
				left = append([]int(nil), l...)
				right = append([]int(nil), r...)
			}
		}
	}

	// Weight the gain by the node's share of samples so importances
	// reflect both purity improvement and reach.
	gain = bestGain * n
	return feature, threshold, gain, left, right
}

// sampleFeatures returns the feature subset considered at each split. When
// maxFeatures covers all features the order is irrelevant and no sampling
// happens.
func (b *treeBuilder) sampleFeatures(numFeatures int) []int {
	all := make([]int, numFeatures)
	for i := range all {
		all[i] = i
	}
	if b.maxFeatures <= 0 || b.maxFeatures >= numFeatures {
		return all
	}
	b.rng.Shuffle(numFeatures, func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	return all[:b.maxFeatures]
}

// sortRowsByFeature sorts row indices ascending by one feature column.
func sortRowsByFeature(rows []int, x [][]float64, f int) {
	// Insertion sort keeps ties stable; node row counts are small.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && x[rows[j]][f] < x[rows[j-1]][f]; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

// Forest is a bag of CART trees with averaged predictions. Fields are
// exported for gob serialization.
type Forest struct {
	Trees []*TreeNode

	// NumClasses is 0 for regression forests.
	NumClasses int

	// Importances is the normalized impurity-decrease importance per
	// feature, averaged over all trees.
	Importances []float64
}

// forestParams configures forest growth.
type forestParams struct {
	numTrees    int
	maxDepth    int
	minLeaf     int
	maxFeatures int
	seed        int64
}

// growForest trains a forest on bootstrap samples of the rows.
func growForest(x [][]float64, targets treeTargets, p forestParams) *Forest {
	numFeatures := 0
	if len(x) > 0 {
		numFeatures = len(x[0])
	}

	forest := &Forest{
		Trees:       make([]*TreeNode, 0, p.numTrees),
		NumClasses:  targets.numClasses,
		Importances: make([]float64, numFeatures),
	}
	if len(x) == 0 {
		return forest
	}

	rng := rand.New(rand.NewSource(p.seed)) //nolint:gosec // deterministic training, not security

	n := len(x)
	for t := 0; t < p.numTrees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}

		builder := &treeBuilder{
			x:           x,
			targets:     targets,
			maxDepth:    p.maxDepth,
			minLeaf:     p.minLeaf,
			maxFeatures: p.maxFeatures,
			rng:         rng,
			importances: make([]float64, numFeatures),
		}
		forest.Trees = append(forest.Trees, builder.build(sample, 0))

		for f := range builder.importances {
			forest.Importances[f] += builder.importances[f]
		}
	}

	// Normalize importances to sum to 1.
	var total float64
	for _, v := range forest.Importances {
		total += v
	}
	if total > 0 {
		for f := range forest.Importances {
			forest.Importances[f] /= total
		}
	}

	return forest
}

// predictValue averages the regression prediction over all trees.
func (f *Forest) predictValue(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, tree := range f.Trees {
		sum += tree.predictRow(row).Value
	}
	return sum / float64(len(f.Trees))
}

// predictProbs averages the class distribution over all trees.
func (f *Forest) predictProbs(row []float64) []float64 {
	probs := make([]float64, f.NumClasses)
	if len(f.Trees) == 0 {
		return probs
	}
	for _, tree := range f.Trees {
		leaf := tree.predictRow(row)
		for c, p := range leaf.Probs {
			probs[c] += p
		}
	}
	for c := range probs {
		probs[c] /= float64(len(f.Trees))
	}
	return probs
}

// argmax returns the index of the largest value; ties resolve to the lowest
// index, matching the ordinal class order.
func argmax(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

// clampScore bounds a predicted score to the valid 0-100 range.
func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
