package index

import "sort"

// SelectTopK returns the indices of the k highest scores, ordered by
// descending score with ties in ascending index order.
//
// This is the single canonical top-k-descending selection for the whole
// pipeline. It must be applied exactly once to a raw score slice: feeding
// its output back through another descending selection silently reverses
// the order, so callers pass raw scores here and nothing else.
func SelectTopK(scores []float32, k int) []int {
	if len(scores) == 0 || k <= 0 {
		return nil
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	return order[:k]
}
