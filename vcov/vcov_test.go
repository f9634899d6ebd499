// SPDX-License-Identifier: MIT

package vcov_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/hdfe/grouping"
	"github.com/katalvlaran/hdfe/vcov"
)

func randomInput(n, k int, seed int64) vcov.Input {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, k)
	for j := range X {
		X[j] = make([]float64, n)
		for i := range X[j] {
			X[j][i] = rng.NormFloat64()
		}
	}
	e := make([]float64, n)
	for i := range e {
		e[i] = rng.NormFloat64() * (1 + 0.5*X[0][i]*X[0][i])
	}

	return vcov.Input{Xw: X, Ew: e, N: n, DFResid: n - k}
}

func assertSymEqual(t *testing.T, want, got mat.Symmetric, tol float64) {
	t.Helper()
	require.Equal(t, want.SymmetricDim(), got.SymmetricDim())
	for a := 0; a < want.SymmetricDim(); a++ {
		for b := 0; b < want.SymmetricDim(); b++ {
			assert.InDelta(t, want.At(a, b), got.At(a, b), tol, "(%d,%d)", a, b)
		}
	}
}

func TestHC1EqualsClassicalUnderConstantSquaredResiduals(t *testing.T) {
	in := randomInput(40, 3, 1)
	for i := range in.Ew {
		in.Ew[i] = 0.8
		if i%2 == 1 {
			in.Ew[i] = -0.8
		}
	}
	in.DFResid = 30 // absorbed fixed effects shrink DF the same way for both

	classical, err := vcov.Compute(vcov.Classical, in)
	require.NoError(t, err)
	hc1, err := vcov.Compute(vcov.HC1, in)
	require.NoError(t, err)

	assertSymEqual(t, classical.V, hc1.V, 1e-12)
}

func TestSingletonClustersReduceToHC1(t *testing.T) {
	in := randomInput(30, 2, 2)
	ids := make([]int, in.N)
	for i := range ids {
		ids[i] = i
	}
	c, err := grouping.Encode("id", ids)
	require.NoError(t, err)
	in.Clusters = []*grouping.Index{c}

	crv, err := vcov.Compute(vcov.Cluster, in)
	require.NoError(t, err)
	hc0, err := vcov.Compute(vcov.HC0, in)
	require.NoError(t, err)
	hc1, err := vcov.Compute(vcov.HC1, in)
	require.NoError(t, err)

	// C/(C−1)·(N−1)/DF with C = N is N/DF, the HC1 factor.
	assertSymEqual(t, hc1.V, crv.V, 1e-12)
	f := float64(in.N) / float64(in.DFResid)
	for a := 0; a < 2; a++ {
		assert.InDelta(t, f*hc0.V.At(a, a), crv.V.At(a, a), 1e-12)
	}
	assert.Equal(t, []int{in.N}, crv.Clusters)
	assert.Equal(t, in.N, crv.MinClusters())
}

func TestTwoWayClusterIsInclusionExclusion(t *testing.T) {
	in := randomInput(120, 2, 3)
	firm := make([]int, in.N)
	year := make([]int, in.N)
	for i := range firm {
		firm[i] = i % 12
		year[i] = (i / 7) % 5
	}
	cf, err := grouping.Encode("firm", firm)
	require.NoError(t, err)
	cy, err := grouping.Encode("year", year)
	require.NoError(t, err)
	cfy, err := grouping.Intersect("firm^year", cf, cy)
	require.NoError(t, err)

	one := func(c *grouping.Index) *mat.SymDense {
		x := in
		x.Clusters = []*grouping.Index{c}
		r, err := vcov.Compute(vcov.Cluster, x)
		require.NoError(t, err)

		return r.V
	}
	want := mat.NewSymDense(2, nil)
	want.AddSym(one(cf), one(cy))
	for a := 0; a < 2; a++ {
		for b := a; b < 2; b++ {
			want.SetSym(a, b, want.At(a, b)-one(cfy).At(a, b))
		}
	}

	in.Clusters = []*grouping.Index{cf, cy}
	got, err := vcov.Compute(vcov.Cluster, in)
	require.NoError(t, err)
	assertSymEqual(t, want, got.V, 1e-12)
	assert.Equal(t, []int{12, 5}, got.Clusters)
	assert.Equal(t, 5, got.MinClusters())
}

func TestHC2HC3SingleColumn(t *testing.T) {
	x := []float64{1, 2, -1, 3, 0.5, -2}
	e := []float64{0.3, -0.2, 0.5, -0.1, 0.4, 0.2}
	in := vcov.Input{Xw: [][]float64{x}, Ew: e, N: len(x), DFResid: len(x) - 1}

	var sxx float64
	for _, v := range x {
		sxx += v * v
	}
	var m2, m3 float64
	for i, v := range x {
		h := v * v / sxx
		m2 += v * v * e[i] * e[i] / (1 - h)
		m3 += v * v * e[i] * e[i] / ((1 - h) * (1 - h))
	}

	hc2, err := vcov.Compute(vcov.HC2, in)
	require.NoError(t, err)
	hc3, err := vcov.Compute(vcov.HC3, in)
	require.NoError(t, err)
	assert.InDelta(t, m2/(sxx*sxx), hc2.V.At(0, 0), 1e-14)
	assert.InDelta(t, m3/(sxx*sxx), hc3.V.At(0, 0), 1e-14)
	assert.Greater(t, hc3.V.At(0, 0), hc2.V.At(0, 0))
}

func TestLeverageOfOneIsSingular(t *testing.T) {
	in := vcov.Input{
		Xw:      [][]float64{{0, 0, 0, 1}, {1, 1, 1, 0}},
		Ew:      []float64{0.1, -0.1, 0.2, 0.3},
		N:       4,
		DFResid: 2,
	}
	_, err := vcov.Compute(vcov.HC3, in)
	var se *vcov.SingularError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Observation)

	_, err = vcov.Compute(vcov.HC0, in)
	assert.NoError(t, err)
}

func TestSingularGram(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	in := vcov.Input{Xw: [][]float64{x, x}, Ew: []float64{1, -1, 1, -1}, N: 4, DFResid: 2}
	_, err := vcov.Compute(vcov.Classical, in)
	assert.ErrorIs(t, err, vcov.ErrSingularCovariance)
}

func TestSuppliedBreadIsUsed(t *testing.T) {
	in := randomInput(25, 2, 4)
	computed, err := vcov.Compute(vcov.HC1, in)
	require.NoError(t, err)

	var gram mat.SymDense
	xm := mat.NewDense(in.N, 2, nil)
	for j, col := range in.Xw {
		xm.SetCol(j, col)
	}
	gram.SymOuterK(1, xm.T())
	var chol mat.Cholesky
	require.True(t, chol.Factorize(&gram))
	bread := mat.NewSymDense(2, nil)
	require.NoError(t, chol.InverseTo(bread))

	in.Bread = bread
	supplied, err := vcov.Compute(vcov.HC1, in)
	require.NoError(t, err)
	assertSymEqual(t, computed.V, supplied.V, 1e-12)
}

func TestComputeErrors(t *testing.T) {
	in := randomInput(10, 1, 5)

	_, err := vcov.Compute(vcov.Scheme(42), in)
	assert.ErrorIs(t, err, vcov.ErrInvalidScheme)

	_, err = vcov.Compute(vcov.Cluster, in)
	assert.ErrorIs(t, err, vcov.ErrNoClusters)

	one, err := grouping.Encode("c", make([]int, in.N))
	require.NoError(t, err)
	in.Clusters = []*grouping.Index{one}
	_, err = vcov.Compute(vcov.Cluster, in)
	var ice *vcov.InsufficientClustersError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, "c", ice.Dimension)
	assert.Equal(t, 1, ice.Count)

	bad := in
	bad.DFResid = 0
	_, err = vcov.Compute(vcov.Classical, bad)
	assert.ErrorIs(t, err, vcov.ErrDegreesOfFreedom)

	bad = in
	bad.N = 9
	_, err = vcov.Compute(vcov.Classical, bad)
	assert.ErrorIs(t, err, vcov.ErrLengthMismatch)

	_, err = vcov.Compute(vcov.Classical, vcov.Input{})
	assert.ErrorIs(t, err, vcov.ErrNoColumns)
}

func TestParseScheme(t *testing.T) {
	for in, want := range map[string]vcov.Scheme{
		"iid":       vcov.Classical,
		"classical": vcov.Classical,
		"hetero":    vcov.HC1,
		"HC0":       vcov.HC0,
		"hc2":       vcov.HC2,
		"HC3":       vcov.HC3,
		"CRV1":      vcov.Cluster,
		"cluster":   vcov.Cluster,
	} {
		got, err := vcov.ParseScheme(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := vcov.ParseScheme("HC9")
	var ise *vcov.InvalidSchemeError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "HC9", ise.Name)
	assert.ErrorIs(t, err, vcov.ErrInvalidScheme)
	assert.Equal(t, "CRV1", vcov.Cluster.String())
}
