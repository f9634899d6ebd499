// SPDX-License-Identifier: MIT

package grouping

// PruneSingletons marks the observations that survive iterative singleton
// removal across all dims. An observation is dropped when its group in any
// dimension has exactly one surviving member; dropping it can turn another
// group into a singleton, so passes repeat until nothing changes.
//
// Returns keep (len N) and the number of dropped observations. With no dims,
// or dims of mismatched length, every observation is kept.
//
// Complexity: O(passes · N · len(dims)); passes is small in practice.
func PruneSingletons(dims []*Index) (keep []bool, dropped int) {
	if len(dims) == 0 || dims[0] == nil {
		return nil, 0
	}
	n := dims[0].N()
	keep = make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for _, d := range dims {
		if d == nil || d.N() != n {
			return keep, 0
		}
	}

	counts := make([][]int, len(dims))
	for k, d := range dims {
		counts[k] = d.Sizes()
	}

	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			if !keep[i] {
				continue
			}
			for k, d := range dims {
				if counts[k][d.codes[i]] == 1 {
					keep[i] = false
					dropped++
					changed = true
					for kk, dd := range dims {
						counts[kk][dd.codes[i]]--
					}
					break
				}
			}
		}
	}

	return keep, dropped
}
