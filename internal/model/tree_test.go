package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func TestRegressionTree_StepFunction(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{0, 0, 0, 100, 100, 100}

	tree := fitTree(x, y, allRows(len(x)), 1, treeOptions{}, nil)

	assert.Equal(t, 1, tree.depth())
	assert.Equal(t, 0.0, tree.predictRow([]float64{2.5}))
	assert.Equal(t, 100.0, tree.predictRow([]float64{50}))
	// Threshold sits between 3 and 10
	assert.Equal(t, 0.0, tree.predictRow([]float64{6.5}))
	assert.Equal(t, 100.0, tree.predictRow([]float64{6.6}))
}

func TestRegressionTree_MaxDepth(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}}
	y := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	tree := fitTree(x, y, allRows(len(x)), 1, treeOptions{maxDepth: 2}, nil)
	assert.LessOrEqual(t, tree.depth(), 2)

	full := fitTree(x, y, allRows(len(x)), 1, treeOptions{}, nil)
	for i, row := range x {
		assert.Equal(t, y[i], full.predictRow(row))
	}
}

func TestRegressionTree_ConstantTargetIsLeaf(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{5, 5, 5}

	tree := fitTree(x, y, allRows(3), 1, treeOptions{}, nil)
	require.Len(t, tree.nodes, 1)
	assert.Equal(t, 5.0, tree.predictRow([]float64{99}))
}

func TestRegressionTree_LambdaShrinksLeaves(t *testing.T) {
	x := [][]float64{{1}, {2}}
	y := []float64{4, 4}

	tree := fitTree(x, y, allRows(2), 1, treeOptions{lambda: 2}, nil)
	// sum 8 / (2 + 2)
	assert.Equal(t, 2.0, tree.predictRow([]float64{1}))
}

func TestRegressionTree_MinSamplesLeaf(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{0, 10, 10, 10}

	tree := fitTree(x, y, allRows(4), 1, treeOptions{minSamplesLeaf: 2}, nil)
	for _, n := range tree.nodes {
		if !n.leaf {
			// The only admissible split is 2|2
			assert.Equal(t, 2.5, n.threshold)
		}
	}
}
