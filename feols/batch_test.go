// SPDX-License-Identifier: MIT

package feols_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hdfe/feols"
	"github.com/katalvlaran/hdfe/grouping"
	"github.com/katalvlaran/hdfe/vcov"
)

func batchInput(t *testing.T, seed int64) feols.Input {
	t.Helper()
	const n = 120
	rng := rand.New(rand.NewSource(seed))
	a := make([]int, n)
	b := make([]int, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range y {
		a[i] = i % 10
		b[i] = rng.Intn(4)
		x[i] = rng.NormFloat64()
		y[i] = x[i] + float64(a[i]) + float64(b[i]) + rng.NormFloat64()
	}
	fa, err := grouping.Build("a", a)
	require.NoError(t, err)
	fb, err := grouping.Build("b", b)
	require.NoError(t, err)

	return feols.Input{Y: y, X: [][]float64{x}, FixedEffects: []*grouping.Index{fa, fb}, Clusters: []*grouping.Index{fa}}
}

func TestEstimateBatch_OrderAndIsolation(t *testing.T) {
	in := batchInput(t, 1)
	specs := []feols.Spec{
		{Name: "iid", Input: in},
		{Name: "bad", Input: feols.Input{Y: in.Y, X: [][]float64{in.X[0][:3]}}},
		{Name: "cluster", Input: in, Options: []feols.Option{feols.WithScheme(vcov.Cluster)}},
		{Name: "hc1", Input: batchInput(t, 2), Options: []feols.Option{feols.WithScheme(vcov.HC1)}},
	}

	res := feols.EstimateBatch(context.Background(), specs, 2)
	require.Len(t, res, len(specs))
	for i, r := range res {
		assert.Equal(t, specs[i].Name, r.Name)
	}
	assert.NoError(t, res[0].Err)
	assert.ErrorIs(t, res[1].Err, feols.ErrLengthMismatch)
	assert.Nil(t, res[1].Fit)
	require.NoError(t, res[2].Err)
	require.NoError(t, res[3].Err)

	direct, err := feols.Estimate(in)
	require.NoError(t, err)
	assert.Equal(t, direct.Coef(), res[0].Fit.Coef())
	assert.Equal(t, direct.SE(), res[0].Fit.SE())
	assert.Equal(t, direct.Coef(), res[2].Fit.Coef(), "the scheme does not change β")
	assert.Equal(t, vcov.Cluster, res[2].Fit.Scheme())
}

func TestEstimateBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := batchInput(t, 3)
	res := feols.EstimateBatch(ctx, []feols.Spec{{Name: "a", Input: in}, {Name: "b", Input: in}}, 0)
	require.Len(t, res, 2)
	for _, r := range res {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Fit)
	}
}
