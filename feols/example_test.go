package feols_test

import (
	"fmt"

	"github.com/katalvlaran/hdfe/feols"
	"github.com/katalvlaran/hdfe/grouping"
	"github.com/katalvlaran/hdfe/vcov"
)

// ExampleEstimate absorbs one fixed effect and recovers its levels.
func ExampleEstimate() {
	shop, _ := grouping.Build("shop", []string{"a", "a", "b", "b", "c", "c", "a"})
	x := []float64{1, 2, 3, 5, 4, 7, 6}
	effect := map[string]float64{"a": 1, "b": -1, "c": 5}
	labels := []string{"a", "a", "b", "b", "c", "c", "a"}
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 2*x[i] + effect[labels[i]]
	}
	y[6] += 0.5 // a little noise keeps σ² > 0

	fit, err := feols.Estimate(
		feols.Input{Y: y, X: [][]float64{x}, Names: []string{"price"}, FixedEffects: []*grouping.Index{shop}},
		feols.WithScheme(vcov.HC1),
		feols.WithFixedEffects(true),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s: %.3f, df=%d, absorbed=%d\n", fit.Names()[0], fit.Coef()[0], fit.DFResid(), fit.AbsorbedDF())
	fe := fit.FixedEffects()[0]
	fmt.Println(fe.Name, fe.Levels)
	// Output:
	// price: 2.073, df=3, absorbed=3
	// shop [a b c]
}
