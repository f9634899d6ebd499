// SPDX-License-Identifier: MIT

package grouping

import "fmt"

// ConnectedSets counts the connected components of the bipartite graph whose
// vertices are the levels of a and b and whose edges are the observations
// (level a.Code(i) — level b.Code(i)).
//
// With two fixed-effect dimensions exactly one level per component is
// redundant, so the absorbed degrees of freedom are Ga + Gb − ConnectedSets.
//
// Implementation:
//   - BFS over a-levels; neighbors are reached through the member lists, so
//     each level and each observation is visited once.
//
// Complexity: O(N + Ga + Gb) time and space.
func ConnectedSets(a, b *Index) (int, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("ConnectedSets: %w", ErrNilIndex)
	}
	if a.N() != b.N() {
		return 0, fmt.Errorf("ConnectedSets: N=%d vs N=%d: %w", a.N(), b.N(), ErrLengthMismatch)
	}

	seenA := make([]bool, a.G())
	seenB := make([]bool, b.G())
	queue := make([]int, 0, a.G())
	sets := 0

	for root := 0; root < a.G(); root++ {
		if seenA[root] {
			continue
		}
		sets++
		seenA[root] = true
		queue = append(queue[:0], root)
		for qi := 0; qi < len(queue); qi++ {
			la := queue[qi]
			for _, i := range a.members[la] {
				lb := b.codes[i]
				if seenB[lb] {
					continue
				}
				seenB[lb] = true
				for _, j := range b.members[lb] {
					if next := a.codes[j]; !seenA[next] {
						seenA[next] = true
						queue = append(queue, next)
					}
				}
			}
		}
	}

	return sets, nil
}
