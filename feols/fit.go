// SPDX-License-Identifier: MIT

package feols

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/hdfe/demean"
	"github.com/katalvlaran/hdfe/vcov"
)

const panicConfLevel = "feols: ConfInt: level must be in (0, 1)"

// FixedEffect holds the recovered per-level effects of one dimension.
type FixedEffect struct {
	Name   string
	Levels []string
	Values []float64
}

// Fit is the immutable result of one estimation.
type Fit struct {
	names     []string
	coef      []float64
	vcov      *mat.SymDense // K×K; NaN rows and columns for dropped regressors
	resid     []float64
	fitted    []float64
	n         int
	rank      int
	absorbed  int
	dfResid   int
	dfT       float64 // degrees of freedom of the t reference distribution
	scheme    vcov.Scheme
	clusters  []int
	collinear []string
	pruned    int
	stats     []demean.Stats
	fixef     []FixedEffect
	warnings  []Warning
	r2        float64
	withinR2  float64
	rmse      float64
}

// Names returns the regressor names in input order.
func (f *Fit) Names() []string { return append([]string(nil), f.names...) }

// Coef returns the coefficients in input order; NaN for dropped regressors.
func (f *Fit) Coef() []float64 { return append([]float64(nil), f.coef...) }

// CoefOf returns the coefficient of the named regressor.
func (f *Fit) CoefOf(name string) (float64, bool) {
	for j, nm := range f.names {
		if nm == name {
			return f.coef[j], true
		}
	}

	return math.NaN(), false
}

// Vcov returns a copy of the K×K coefficient covariance.
func (f *Fit) Vcov() *mat.SymDense {
	out := mat.NewSymDense(f.vcov.SymmetricDim(), nil)
	out.CopySym(f.vcov)

	return out
}

// SE returns the standard errors √diag(Vcov).
func (f *Fit) SE() []float64 {
	se := make([]float64, len(f.coef))
	for j := range se {
		se[j] = math.Sqrt(f.vcov.At(j, j))
	}

	return se
}

// TStat returns Coef / SE.
func (f *Fit) TStat() []float64 {
	t := f.SE()
	for j := range t {
		t[j] = f.coef[j] / t[j]
	}

	return t
}

func (f *Fit) studentsT() distuv.StudentsT {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: f.dfT}
}

// PValue returns two-sided p-values from Student's t with TDF degrees of
// freedom.
func (f *Fit) PValue() []float64 {
	dist := f.studentsT()
	p := f.TStat()
	for j, t := range p {
		p[j] = 2 * dist.Survival(math.Abs(t))
	}

	return p
}

// ConfInt returns the lower and upper bounds of the two-sided confidence
// interval at level (e.g. 0.95). Panics on a level outside (0, 1).
func (f *Fit) ConfInt(level float64) (lower, upper []float64) {
	if !(level > 0 && level < 1) {
		panic(panicConfLevel)
	}
	q := f.studentsT().Quantile(1 - (1-level)/2)
	se := f.SE()
	lower = make([]float64, len(se))
	upper = make([]float64, len(se))
	for j, s := range se {
		lower[j] = f.coef[j] - q*s
		upper[j] = f.coef[j] + q*s
	}

	return lower, upper
}

// TDF is the degrees of freedom used for inference: DFResid, or the smallest
// cluster count minus one under the cluster scheme.
func (f *Fit) TDF() float64 { return f.dfT }

// Residuals returns y − Xβ − fixed effects for the estimation sample.
func (f *Fit) Residuals() []float64 { return append([]float64(nil), f.resid...) }

// Fitted returns y − residuals.
func (f *Fit) Fitted() []float64 { return append([]float64(nil), f.fitted...) }

// N is the number of observations used (after singleton pruning).
func (f *Fit) N() int { return f.n }

// Rank is the numerical rank of the demeaned design (K_eff).
func (f *Fit) Rank() int { return f.rank }

// DFResid is N − Rank − AbsorbedDF.
func (f *Fit) DFResid() int { return f.dfResid }

// AbsorbedDF is the degrees of freedom absorbed by the fixed effects.
func (f *Fit) AbsorbedDF() int { return f.absorbed }

// Scheme is the covariance estimator used.
func (f *Fit) Scheme() vcov.Scheme { return f.scheme }

// ClusterCounts returns the number of clusters per dimension (cluster scheme).
func (f *Fit) ClusterCounts() []int { return append([]int(nil), f.clusters...) }

// Collinear names the regressors dropped for collinearity.
func (f *Fit) Collinear() []string { return append([]string(nil), f.collinear...) }

// PrunedSingletons is the number of observations removed as singletons.
func (f *Fit) PrunedSingletons() int { return f.pruned }

// Warnings returns the non-fatal diagnostics.
func (f *Fit) Warnings() []Warning { return append([]Warning(nil), f.warnings...) }

// DemeanStats returns per-column convergence statistics: one per regressor,
// then one for the response. Empty without fixed effects.
func (f *Fit) DemeanStats() []demean.Stats { return append([]demean.Stats(nil), f.stats...) }

// FixedEffects returns the recovered fixed effects, or nil when recovery was
// not requested or did not complete.
func (f *Fit) FixedEffects() []FixedEffect {
	if f.fixef == nil {
		return nil
	}
	out := make([]FixedEffect, len(f.fixef))
	for d, fe := range f.fixef {
		out[d] = FixedEffect{
			Name:   fe.Name,
			Levels: append([]string(nil), fe.Levels...),
			Values: append([]float64(nil), fe.Values...),
		}
	}

	return out
}

// R2 is 1 − RSS/TSS with TSS around the weighted mean of y.
func (f *Fit) R2() float64 { return f.r2 }

// WithinR2 is 1 − RSS/Σ w ỹ² on the demeaned response; NaN without fixed effects.
func (f *Fit) WithinR2() float64 { return f.withinR2 }

// RMSE is √(RSS / Σ w).
func (f *Fit) RMSE() float64 { return f.rmse }
