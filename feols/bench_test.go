package feols_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/katalvlaran/hdfe/feols"
	"github.com/katalvlaran/hdfe/grouping"
	"github.com/katalvlaran/hdfe/vcov"
)

// panel returns a worker×firm layout with three regressors.
func panel(b *testing.B, n, workers, firms int) feols.Input {
	rng := rand.New(rand.NewSource(1))
	w := make([]int, n)
	f := make([]int, n)
	X := make([][]float64, 3)
	for j := range X {
		X[j] = make([]float64, n)
	}
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = i % workers
		f[i] = rng.Intn(firms)
		for j := range X {
			X[j][i] = rng.NormFloat64()
			y[i] += float64(j+1) * X[j][i]
		}
		y[i] += float64(w[i]%7) - float64(f[i]%5) + rng.NormFloat64()
	}
	fw, err := grouping.Build("worker", w)
	if err != nil {
		b.Fatal(err)
	}
	ff, err := grouping.Build("firm", f)
	if err != nil {
		b.Fatal(err)
	}

	return feols.Input{Y: y, X: X, FixedEffects: []*grouping.Index{fw, ff}, Clusters: []*grouping.Index{ff}}
}

func BenchmarkEstimate_TwoWayCluster(b *testing.B) {
	in := panel(b, 50000, 5000, 500)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := feols.Estimate(in, feols.WithScheme(vcov.Cluster)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEstimateBatch(b *testing.B) {
	in := panel(b, 20000, 2000, 200)
	specs := make([]feols.Spec, 8)
	for i := range specs {
		specs[i] = feols.Spec{Name: "s", Input: in, Options: []feols.Option{feols.WithScheme(vcov.HC1)}}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, r := range feols.EstimateBatch(context.Background(), specs, 0) {
			if r.Err != nil {
				b.Fatal(r.Err)
			}
		}
	}
}
