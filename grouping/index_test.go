// SPDX-License-Identifier: MIT

package grouping_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hdfe/grouping"
)

func TestBuild_FirstSeenOrder(t *testing.T) {
	idx, err := grouping.Build("firm", []string{"b", "a", "b", "c", "a", "c"})
	require.NoError(t, err)

	assert.Equal(t, 6, idx.N())
	assert.Equal(t, 3, idx.G())
	assert.Equal(t, []int{0, 1, 0, 2, 1, 2}, idx.Codes())
	assert.Equal(t, []string{"b", "a", "c"}, idx.Levels())
	assert.Equal(t, []int{0, 2}, idx.Members(0))
	assert.Equal(t, []int{1, 4}, idx.Members(1))
	assert.Equal(t, []int{3, 5}, idx.Members(2))
	assert.Equal(t, []int{2, 2, 2}, idx.Sizes())
	assert.Empty(t, idx.Singletons())
	assert.Equal(t, "firm", idx.Name())
}

// Same category sequence under different value types yields identical codes.
func TestBuild_TypeIndependent(t *testing.T) {
	s, err := grouping.Build("s", []string{"7", "3", "7", "9"})
	require.NoError(t, err)
	n, err := grouping.Build("n", []int{7, 3, 7, 9})
	require.NoError(t, err)

	assert.Equal(t, s.Codes(), n.Codes())
	assert.Equal(t, s.Levels(), n.Levels())
}

func TestBuild_Degenerate(t *testing.T) {
	_, err := grouping.Build("one", []int{4, 4, 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, grouping.ErrDegenerateGrouping)

	var de *grouping.DegenerateError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "one", de.Dimension)
	assert.Equal(t, 1, de.Levels)
	assert.Equal(t, 3, de.N)

	_, err = grouping.Build("saturated", []int{1, 2, 3})
	assert.ErrorIs(t, err, grouping.ErrDegenerateGrouping)

	_, err = grouping.Build("empty", []int{})
	assert.ErrorIs(t, err, grouping.ErrEmpty)
}

func TestEncode_AllowsSingletonClusters(t *testing.T) {
	idx, err := grouping.Encode("obs", []int{10, 11, 12})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.G())
	assert.Equal(t, []int{0, 1, 2}, idx.Singletons())
	assert.ErrorIs(t, idx.Validate(), grouping.ErrDegenerateGrouping)
}

func TestIntersect(t *testing.T) {
	a, err := grouping.Encode("a", []string{"x", "x", "y", "y", "x"})
	require.NoError(t, err)
	b, err := grouping.Encode("b", []int{1, 2, 1, 1, 1})
	require.NoError(t, err)

	ab, err := grouping.Intersect("a^b", a, b)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 2, 0}, ab.Codes())
	assert.Equal(t, []string{"x^1", "x^2", "y^1"}, ab.Levels())
	assert.Equal(t, "a^b", ab.Name())

	single, err := grouping.Intersect("copy", a)
	require.NoError(t, err)
	assert.Equal(t, a.Codes(), single.Codes())
	assert.Equal(t, "copy", single.Name())

	short, err := grouping.Encode("short", []int{1, 2})
	require.NoError(t, err)
	_, err = grouping.Intersect("bad", a, short)
	assert.ErrorIs(t, err, grouping.ErrLengthMismatch)

	_, err = grouping.Intersect("none")
	assert.ErrorIs(t, err, grouping.ErrEmpty)
}

func TestSubset(t *testing.T) {
	idx, err := grouping.Build("g", []string{"a", "b", "c", "a", "b"})
	require.NoError(t, err)

	sub, err := idx.Subset([]bool{false, true, false, true, true})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0}, sub.Codes())
	assert.Equal(t, []string{"b", "a"}, sub.Levels())

	_, err = idx.Subset([]bool{true})
	assert.ErrorIs(t, err, grouping.ErrLengthMismatch)
	_, err = idx.Subset(make([]bool, 5))
	assert.ErrorIs(t, err, grouping.ErrEmpty)
}
