package feature

import (
	"math"
	"math/rand"
	"sort"
)

// ForestConfig controls how the regression forest is grown.
type ForestConfig struct {
	Trees       int
	MaxDepth    int
	MinLeafSize int
	Seed        int64
}

// DefaultForestConfig returns the settings used when configuration leaves the
// model section untouched.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:       50,
		MaxDepth:    8,
		MinLeafSize: 2,
		Seed:        42,
	}
}

func (c ForestConfig) normalized() ForestConfig {
	def := DefaultForestConfig()
	if c.Trees <= 0 {
		c.Trees = def.Trees
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = def.MaxDepth
	}
	if c.MinLeafSize <= 0 {
		c.MinLeafSize = def.MinLeafSize
	}
	return c
}

// Forest is a bagged ensemble of regression trees. Fields are exported so a
// fitted forest can be serialized into a model snapshot.
type Forest struct {
	Roots []*TreeNode `json:"roots"`
}

// TreeNode is one node of a regression tree. Leaves carry the mean target of
// the samples that reached them.
type TreeNode struct {
	Leaf      bool      `json:"leaf"`
	Value     float64   `json:"value,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

// GrowForest fits the ensemble on the encoded feature matrix. Each tree is
// grown on a bootstrap sample with a random feature subset considered at
// every split. The seed makes repeated fits on the same corpus identical.
func GrowForest(cfg ForestConfig, matrix [][]float64, targets []float64) *Forest {
	cfg = cfg.normalized()
	forest := &Forest{Roots: make([]*TreeNode, cfg.Trees)}
	for t := 0; t < cfg.Trees; t++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(t)))
		indices := make([]int, len(targets))
		for i := range indices {
			indices[i] = rng.Intn(len(targets))
		}
		forest.Roots[t] = growNode(matrix, targets, indices, 0, cfg, rng)
	}
	return forest
}

// Predict evaluates the ensemble as the mean of the per-tree predictions.
func (f *Forest) Predict(vec []float64) float64 {
	if f == nil || len(f.Roots) == 0 {
		return 0
	}
	var sum float64
	for _, root := range f.Roots {
		node := root
		for !node.Leaf {
			if vec[node.Feature] <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		sum += node.Value
	}
	return sum / float64(len(f.Roots))
}

func growNode(matrix [][]float64, targets []float64, indices []int, depth int, cfg ForestConfig, rng *rand.Rand) *TreeNode {
	if depth >= cfg.MaxDepth || len(indices) <= cfg.MinLeafSize || pureTargets(targets, indices) {
		return &TreeNode{Leaf: true, Value: meanAt(targets, indices)}
	}

	feature, threshold, ok := bestSplit(matrix, targets, indices, cfg, rng)
	if !ok {
		return &TreeNode{Leaf: true, Value: meanAt(targets, indices)}
	}

	var left, right []int
	for _, i := range indices {
		if matrix[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{Leaf: true, Value: meanAt(targets, indices)}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growNode(matrix, targets, left, depth+1, cfg, rng),
		Right:     growNode(matrix, targets, right, depth+1, cfg, rng),
	}
}

// bestSplit scans a random subset of features for the threshold with the
// lowest weighted squared error.
func bestSplit(matrix [][]float64, targets []float64, indices []int, cfg ForestConfig, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(matrix[0])
	mtry := numFeatures / 3
	if mtry < 1 {
		mtry = 1
	}
	candidates := rng.Perm(numFeatures)[:mtry]
	sort.Ints(candidates)

	bestErr := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for _, feature := range candidates {
		values := make([]float64, 0, len(indices))
		for _, i := range indices {
			values = append(values, matrix[i][feature])
		}
		sort.Float64s(values)

		for k := 0; k+1 < len(values); k++ {
			if values[k] == values[k+1] {
				continue
			}
			threshold := (values[k] + values[k+1]) / 2
			if err, ok := splitError(matrix, targets, indices, feature, threshold); ok && err < bestErr {
				bestErr = err
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func splitError(matrix [][]float64, targets []float64, indices []int, feature int, threshold float64) (float64, bool) {
	var leftSum, rightSum float64
	var leftN, rightN int
	for _, i := range indices {
		if matrix[i][feature] <= threshold {
			leftSum += targets[i]
			leftN++
		} else {
			rightSum += targets[i]
			rightN++
		}
	}
	if leftN == 0 || rightN == 0 {
		return 0, false
	}

	leftMean := leftSum / float64(leftN)
	rightMean := rightSum / float64(rightN)
	var sse float64
	for _, i := range indices {
		var diff float64
		if matrix[i][feature] <= threshold {
			diff = targets[i] - leftMean
		} else {
			diff = targets[i] - rightMean
		}
		sse += diff * diff
	}
	return sse, true
}

func pureTargets(targets []float64, indices []int) bool {
	first := targets[indices[0]]
	for _, i := range indices[1:] {
		if targets[i] != first {
			return false
		}
	}
	return true
}

func meanAt(targets []float64, indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += targets[i]
	}
	return sum / float64(len(indices))
}
