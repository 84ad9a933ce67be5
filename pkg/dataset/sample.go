package dataset

import (
	"fmt"
	"math/rand"
)

// StratifiedIndices draws counts[i] indices without replacement from the
// rows whose label equals classes[i], then shuffles the concatenation so no
// class ordering survives into the result. The indices can be passed to
// Take / TakeLabels to materialize the subsample.
func StratifiedIndices(classes []int, y []int, counts []int, rng *rand.Rand) ([]int, error) {
	if len(classes) != len(counts) {
		return nil, fmt.Errorf("dataset: %d classes but %d counts", len(classes), len(counts))
	}

	byClass := make(map[int][]int, len(classes))
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	var result []int
	for i, class := range classes {
		members := byClass[class]
		if counts[i] > len(members) {
			return nil, fmt.Errorf("dataset: class %d has %d rows, want %d", class, len(members), counts[i])
		}
		for _, j := range rng.Perm(len(members))[:counts[i]] {
			result = append(result, members[j])
		}
	}

	rng.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})

	return result, nil
}

// Take returns the rows of X selected by indices. Rows are shared, not
// copied; callers must not mutate them.
func Take(X [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = X[idx]
	}
	return out
}

// TakeLabels returns the labels selected by indices.
func TakeLabels(y []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = y[idx]
	}
	return out
}

// Classes returns the distinct labels of y in ascending first-seen order.
func Classes(y []int) []int {
	seen := make(map[int]bool)
	var classes []int
	for _, label := range y {
		if !seen[label] {
			seen[label] = true
			classes = append(classes, label)
		}
	}
	return classes
}
