// SPDX-License-Identifier: MIT

package demean_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hdfe/grouping"
)

// twoWay builds a reproducible unbalanced two-way layout with n rows and a
// column that depends on both dimensions plus noise.
func twoWay(t testing.TB, n, g1, g2 int, seed int64) ([]*grouping.Index, []float64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	a := make([]int, n)
	b := make([]int, n)
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = i % g1
		b[i] = (a[i]*3 + rng.Intn(g2)) % g2
		x[i] = float64(a[i]) - 0.5*float64(b[i]) + rng.NormFloat64()
	}
	fa, err := grouping.Build("a", a)
	require.NoError(t, err)
	fb, err := grouping.Build("b", b)
	require.NoError(t, err)

	return []*grouping.Index{fa, fb}, x
}

// sparsePanel builds a two-way layout with 200 and 100 levels where most
// observations of a level of "a" share one level of "b" and only about one
// in ten links elsewhere, so alternating projections converge slowly.
// It returns the indices and the integer codes behind them.
func sparsePanel(t testing.TB, seed int64) ([]*grouping.Index, []int, []int) {
	t.Helper()
	const n = 2000
	rng := rand.New(rand.NewSource(seed))
	a := make([]int, n)
	b := make([]int, n)
	for i := range a {
		a[i] = i % 200
		b[i] = a[i] / 2
		if rng.Float64() < 0.1 {
			b[i] = rng.Intn(100)
		}
	}
	fa, err := grouping.Build("a", a)
	require.NoError(t, err)
	fb, err := grouping.Build("b", b)
	require.NoError(t, err)

	return []*grouping.Index{fa, fb}, a, b
}

func norm2(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}

	return math.Sqrt(s)
}

func diffNorm(x, y []float64) float64 {
	var s float64
	for i := range x {
		s += (x[i] - y[i]) * (x[i] - y[i])
	}

	return math.Sqrt(s)
}

// groupMeans returns the weighted mean of x per level of idx (w may be nil).
func groupMeans(idx *grouping.Index, x, w []float64) []float64 {
	sum := make([]float64, idx.G())
	tot := make([]float64, idx.G())
	for i, v := range x {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		sum[idx.Code(i)] += wi * v
		tot[idx.Code(i)] += wi
	}
	for g := range sum {
		sum[g] /= tot[g]
	}

	return sum
}

func maxAbs(x []float64) float64 {
	var m float64
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}

	return m
}
