// SPDX-License-Identifier: MIT

package grouping

import "fmt"

// Index is an immutable dense coding of one categorical column.
//   - codes[i] is the group of observation i, in [0, G).
//   - levels[g] is the printable label of group g (first-seen order).
//   - members[g] lists the observations of group g in ascending order.
type Index struct {
	name    string
	codes   []int
	levels  []string
	members [][]int
}

// Build codes a fixed-effect column and validates that it carries variation.
//
// Implementation:
//   - Stage 1: Encode the column (first-seen order, O(N)).
//   - Stage 2: Validate: reject G == 1 and G >= N with *DegenerateError.
//
// Errors:
//   - ErrEmpty for len(raw) == 0.
//   - *DegenerateError (errors.Is ErrDegenerateGrouping).
//
// Complexity: O(N) time, O(N + G) space.
func Build[T comparable](name string, raw []T) (*Index, error) {
	idx, err := Encode(name, raw)
	if err != nil {
		return nil, err
	}
	if err = idx.Validate(); err != nil {
		return nil, err
	}

	return idx, nil
}

// Encode codes raw without the degeneracy checks of Build. Cluster
// dimensions use it: one cluster per observation is a legal clustering.
func Encode[T comparable](name string, raw []T) (*Index, error) {
	n := len(raw)
	if n == 0 {
		return nil, fmt.Errorf("Encode(%q): %w", name, ErrEmpty)
	}

	seen := make(map[T]int)
	codes := make([]int, n)
	levels := make([]string, 0)
	for i, v := range raw {
		c, ok := seen[v]
		if !ok {
			c = len(levels)
			seen[v] = c
			levels = append(levels, fmt.Sprint(v))
		}
		codes[i] = c
	}

	return fromCodes(name, codes, levels), nil
}

// fromCodes assembles an Index from dense codes; codes is owned by the result.
func fromCodes(name string, codes []int, levels []string) *Index {
	sizes := make([]int, len(levels))
	for _, c := range codes {
		sizes[c]++
	}
	// One backing array for all member lists keeps the groups contiguous.
	flat := make([]int, len(codes))
	members := make([][]int, len(levels))
	off := 0
	for g, s := range sizes {
		members[g] = flat[off : off : off+s]
		off += s
	}
	for i, c := range codes {
		members[c] = append(members[c], i)
	}

	return &Index{name: name, codes: codes, levels: levels, members: members}
}

// Validate reports a *DegenerateError when the index cannot serve as a fixed effect.
func (x *Index) Validate() error {
	if x == nil {
		return ErrNilIndex
	}
	n, g := len(x.codes), len(x.levels)
	if g < 2 || g >= n {
		return &DegenerateError{Dimension: x.name, Levels: g, N: n}
	}

	return nil
}

// Name returns the dimension label given at construction.
func (x *Index) Name() string { return x.name }

// N returns the number of observations.
func (x *Index) N() int { return len(x.codes) }

// G returns the number of distinct levels.
func (x *Index) G() int { return len(x.levels) }

// Code returns the group of observation i.
func (x *Index) Code(i int) int { return x.codes[i] }

// Codes returns a copy of the per-observation codes.
func (x *Index) Codes() []int {
	out := make([]int, len(x.codes))
	copy(out, x.codes)

	return out
}

// Level returns the label of group g.
func (x *Index) Level(g int) string { return x.levels[g] }

// Levels returns a copy of the labels in code order.
func (x *Index) Levels() []string {
	out := make([]string, len(x.levels))
	copy(out, x.levels)

	return out
}

// Members returns the observations of group g. The slice is shared; do not modify.
func (x *Index) Members(g int) []int { return x.members[g] }

// Sizes returns the number of observations per group.
func (x *Index) Sizes() []int {
	out := make([]int, len(x.members))
	for g, m := range x.members {
		out[g] = len(m)
	}

	return out
}

// Singletons returns the codes whose group holds exactly one observation.
// Each one absorbs a degree of freedom without contributing residual variation.
func (x *Index) Singletons() []int {
	var out []int
	for g, m := range x.members {
		if len(m) == 1 {
			out = append(out, g)
		}
	}

	return out
}

// String implements fmt.Stringer.
func (x *Index) String() string {
	return fmt.Sprintf("Index(%s: N=%d, G=%d)", x.name, len(x.codes), len(x.levels))
}
