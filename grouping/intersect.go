// SPDX-License-Identifier: MIT

package grouping

import "fmt"

// Intersect returns the Cartesian-product grouping of idx: two observations
// share a code iff they share a code in every input. The result is a regular
// Index (first-seen order over the code tuple) and is not validated, since an
// intersection of clusters may legitimately be all singletons.
//
// Implementation:
//   - Fold left: combine (acc, next) by the key acc.code*next.G + next.code.
//     The combined G never exceeds N, so the key stays below N*G.
//
// Labels are the component labels joined by "^".
//
// Complexity: O(N·len(idx)) time, O(N) space.
func Intersect(name string, idx ...*Index) (*Index, error) {
	if len(idx) == 0 {
		return nil, fmt.Errorf("Intersect(%q): %w", name, ErrEmpty)
	}
	for _, x := range idx {
		if x == nil {
			return nil, fmt.Errorf("Intersect(%q): %w", name, ErrNilIndex)
		}
		if x.N() != idx[0].N() {
			return nil, fmt.Errorf("Intersect(%q): %s has N=%d, want %d: %w",
				name, x.name, x.N(), idx[0].N(), ErrLengthMismatch)
		}
	}

	acc := idx[0]
	for _, next := range idx[1:] {
		acc = combine(name, acc, next)
	}
	if len(idx) == 1 {
		// Rename without sharing the codes slice.
		return fromCodes(name, acc.Codes(), acc.Levels()), nil
	}

	return acc, nil
}

func combine(name string, a, b *Index) *Index {
	n := a.N()
	gb := b.G()
	seen := make(map[int]int)
	codes := make([]int, n)
	levels := make([]string, 0)
	for i := 0; i < n; i++ {
		ca, cb := a.codes[i], b.codes[i]
		key := ca*gb + cb
		c, ok := seen[key]
		if !ok {
			c = len(levels)
			seen[key] = c
			levels = append(levels, a.levels[ca]+"^"+b.levels[cb])
		}
		codes[i] = c
	}

	return fromCodes(name, codes, levels)
}

// Subset re-indexes x on the observations with keep[i] == true.
// Levels that lose all members disappear; surviving levels keep their
// relative first-seen order. The result is not validated.
func (x *Index) Subset(keep []bool) (*Index, error) {
	if len(keep) != x.N() {
		return nil, fmt.Errorf("Subset(%q): mask has %d entries, want %d: %w",
			x.name, len(keep), x.N(), ErrLengthMismatch)
	}

	remap := make([]int, x.G())
	for g := range remap {
		remap[g] = -1
	}
	codes := make([]int, 0, x.N())
	levels := make([]string, 0)
	for i, k := range keep {
		if !k {
			continue
		}
		old := x.codes[i]
		if remap[old] < 0 {
			remap[old] = len(levels)
			levels = append(levels, x.levels[old])
		}
		codes = append(codes, remap[old])
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("Subset(%q): %w", x.name, ErrEmpty)
	}

	return fromCodes(x.name, codes, levels), nil
}
