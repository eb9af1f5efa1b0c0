// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import (
	"math/rand"
)

// testFraction is the held-out share of the train/test split.
const testFraction = 0.2

// splitIndices shuffles row indices with the given seed and splits them
// 80/20. Small datasets degrade gracefully: with fewer than five rows the
// test partition is empty and evaluation falls back to the training rows.
func splitIndices(n int, seed int64) (train, test []int) {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic split, not security
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	testSize := int(float64(n) * testFraction)
	return indices[testSize:], indices[:testSize]
}

// stratifiedSplitIndices splits 80/20 while preserving class proportions.
// Rows are grouped by label, each group is shuffled and split separately.
// Classes too small to contribute a test row stay entirely in training.
func stratifiedSplitIndices(labels []int, seed int64) (train, test []int) {
	byClass := make(map[int][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	// Iterate classes in a fixed order for determinism.
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sortInts(classes)

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic split, not security
	for _, c := range classes {
		group := byClass[c]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		testSize := int(float64(len(group)) * testFraction)
		test = append(test, group[:testSize]...)
		train = append(train, group[testSize:]...)
	}

	return train, test
}

// sortInts is a small insertion sort; class counts are tiny.
func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// selectRows gathers matrix rows by index.
func selectRows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}

// selectFloats gathers slice elements by index.
func selectFloats(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}

// selectInts gathers slice elements by index.
func selectInts(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
