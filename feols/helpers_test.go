// SPDX-License-Identifier: MIT

package feols_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/hdfe/grouping"
)

// dummyOLS regresses y on the given columns (dummies included explicitly)
// and returns β, the residuals and the classical covariance σ²(XᵀX)⁻¹.
func dummyOLS(t *testing.T, cols [][]float64, y []float64) ([]float64, []float64, *mat.Dense) {
	t.Helper()
	n, k := len(y), len(cols)
	a := mat.NewDense(n, k, nil)
	for j, col := range cols {
		a.SetCol(j, col)
	}
	var beta mat.VecDense
	require.NoError(t, beta.SolveVec(a, mat.NewVecDense(n, append([]float64(nil), y...))))

	resid := make([]float64, n)
	var rss float64
	for i := range y {
		resid[i] = y[i] - mat.Dot(a.RowView(i), &beta)
		rss += resid[i] * resid[i]
	}
	var xtx, inv, v mat.Dense
	xtx.Mul(a.T(), a)
	require.NoError(t, inv.Inverse(&xtx))
	v.Scale(rss/float64(n-k), &inv)

	return mat.Col(nil, 0, &beta), resid, &v
}

// dummies returns one indicator column per level (skipping the first when
// dropFirst is set).
func dummies(codes []int, levels int, dropFirst bool) [][]float64 {
	var out [][]float64
	for g := 0; g < levels; g++ {
		if dropFirst && g == 0 {
			continue
		}
		d := make([]float64, len(codes))
		for i, c := range codes {
			if c == g {
				d[i] = 1
			}
		}
		out = append(out, d)
	}

	return out
}

func relDiff(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
}

// sparsePanel is a slowly mixing two-way layout: 2000 rows, 200 levels of
// "a" paired two by two onto 100 levels of "b", with about one row in ten
// linked to a random level of "b" instead.
func sparsePanel(t *testing.T, seed int64) ([]*grouping.Index, []int, []int) {
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
