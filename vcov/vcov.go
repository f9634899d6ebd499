// SPDX-License-Identifier: MIT

package vcov

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/hdfe/grouping"
)

const opCompute = "Compute"

// LeverageLimit is the largest leverage HC2/HC3 accept.
const LeverageLimit = 1 - 1e-12

// Input is the data every estimator needs. Nothing is modified.
type Input struct {
	Xw       [][]float64       // weighted demeaned design, kept columns, column-major
	Ew       []float64         // weighted residuals √w·e
	N        int               // observations
	DFResid  int               // N − K_eff − absorbed
	Clusters []*grouping.Index // Cluster scheme only
	Bread    *mat.SymDense     // optional (XwᵀXw)⁻¹
}

// Result is a covariance matrix with its diagnostics.
type Result struct {
	V        *mat.SymDense
	Scheme   Scheme
	Clusters []int // cluster count per dimension (Cluster scheme)
	Warnings []string
}

// MinClusters returns the smallest cluster count, or 0 without clusters.
func (r *Result) MinClusters() int {
	m := 0
	for i, c := range r.Clusters {
		if i == 0 || c < m {
			m = c
		}
	}

	return m
}

// Compute evaluates the covariance of the coefficients under scheme.
//
// Errors:
//   - ErrNoColumns, ErrLengthMismatch, ErrDegreesOfFreedom on input.
//   - *InvalidSchemeError for an unknown Scheme value.
//   - *SingularError when XᵀX cannot be inverted or a leverage reaches one.
//   - *InsufficientClustersError when a cluster dimension has C < 2.
//
// Complexity: O(N·K²) plus O(N) per cluster subset.
func Compute(scheme Scheme, in Input) (*Result, error) {
	if err := in.validate(scheme); err != nil {
		return nil, fmt.Errorf("%s: %w", opCompute, err)
	}
	res := &Result{Scheme: scheme}

	bread := in.Bread
	if bread == nil {
		var (
			warn string
			err  error
		)
		bread, warn, err = invertGram(in.Xw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opCompute, err)
		}
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
	}

	k := len(in.Xw)
	n := len(in.Ew)
	df := float64(in.DFResid)

	switch scheme {
	case Classical:
		var rss float64
		for _, e := range in.Ew {
			rss += e * e
		}
		res.V = mat.NewSymDense(k, nil)
		res.V.ScaleSym(rss/df, bread)

	case HC0, HC1, HC2, HC3:
		u := make([]float64, n)
		for i, e := range in.Ew {
			u[i] = e * e
		}
		if scheme == HC2 || scheme == HC3 {
			for i := range u {
				h := leverage(in.Xw, bread, i)
				if h >= LeverageLimit {
					return nil, fmt.Errorf("%s: %w", opCompute, &SingularError{
						Reason:      fmt.Sprintf("leverage %.15g reaches one under %s", h, scheme),
						Observation: i,
					})
				}
				if scheme == HC2 {
					u[i] /= 1 - h
				} else {
					u[i] /= (1 - h) * (1 - h)
				}
			}
		}
		adj := 1.0
		if scheme == HC1 {
			adj = float64(in.N) / df
		}
		res.V = sandwich(bread, weightedGram(in.Xw, u), adj)

	case Cluster:
		v, counts, warns, err := clustered(in, bread)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opCompute, err)
		}
		res.V, res.Clusters = v, counts
		res.Warnings = append(res.Warnings, warns...)

	default:
		return nil, fmt.Errorf("%s: %w", opCompute, &InvalidSchemeError{Name: scheme.String()})
	}

	return res, nil
}

func (in Input) validate(scheme Scheme) error {
	k := len(in.Xw)
	if k == 0 {
		return ErrNoColumns
	}
	n := len(in.Ew)
	if n == 0 || in.N != n {
		return fmt.Errorf("N=%d with %d residuals: %w", in.N, n, ErrLengthMismatch)
	}
	for j, col := range in.Xw {
		if len(col) != n {
			return fmt.Errorf("column %d has %d rows, want %d: %w", j, len(col), n, ErrLengthMismatch)
		}
	}
	if in.DFResid < 1 {
		return fmt.Errorf("DFResid=%d: %w", in.DFResid, ErrDegreesOfFreedom)
	}
	if in.Bread != nil && in.Bread.SymmetricDim() != k {
		return fmt.Errorf("bread is %d×%d for %d columns: %w", in.Bread.SymmetricDim(), in.Bread.SymmetricDim(), k, ErrLengthMismatch)
	}
	if scheme != Cluster {
		return nil
	}
	if len(in.Clusters) == 0 {
		return ErrNoClusters
	}
	for d, c := range in.Clusters {
		if c == nil {
			return fmt.Errorf("cluster dimension %d: %w", d, grouping.ErrNilIndex)
		}
		if c.N() != n {
			return fmt.Errorf("cluster %s has N=%d, want %d: %w", c.Name(), c.N(), n, ErrLengthMismatch)
		}
		if c.G() < 2 {
			return &InsufficientClustersError{Dimension: c.Name(), Count: c.G()}
		}
	}

	return nil
}

// invertGram returns (XᵀX)⁻¹ by Cholesky, falling back to LU when XᵀX is not
// numerically positive definite. An ill-conditioned but finite inverse comes
// back with a warning; an exactly singular one is a *SingularError.
func invertGram(X [][]float64) (*mat.SymDense, string, error) {
	k := len(X)
	gram := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			var s float64
			for i, v := range X[a] {
				s += v * X[b][i]
			}
			gram.SetSym(a, b, s)
		}
	}

	out := mat.NewSymDense(k, nil)
	var chol mat.Cholesky
	if chol.Factorize(gram) {
		err := chol.InverseTo(out)
		if err == nil {
			return out, "", nil
		}
		var cond mat.Condition
		if errors.As(err, &cond) && !math.IsInf(float64(cond), 1) {
			return out, fmt.Sprintf("near-singular XᵀX: condition %.3g", float64(cond)), nil
		}
	}

	var inv mat.Dense
	err := inv.Inverse(gram)
	warn := "XᵀX not positive definite; inverted by LU"
	if err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, "", &SingularError{Reason: "XᵀX is singular", Observation: -1}
		}
		warn = fmt.Sprintf("near-singular XᵀX: condition %.3g; inverted by LU", float64(cond))
	}
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			out.SetSym(a, b, 0.5*(inv.At(a, b)+inv.At(b, a)))
		}
	}

	return out, warn, nil
}

// leverage returns h_ii = x_iᵀ B x_i.
func leverage(X [][]float64, bread *mat.SymDense, i int) float64 {
	var h float64
	k := len(X)
	for a := 0; a < k; a++ {
		xa := X[a][i]
		h += xa * xa * bread.At(a, a)
		for b := a + 1; b < k; b++ {
			h += 2 * xa * X[b][i] * bread.At(a, b)
		}
	}

	return h
}

// weightedGram returns Σ_i u_i x_i x_iᵀ.
func weightedGram(X [][]float64, u []float64) *mat.SymDense {
	k := len(X)
	m := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			var s float64
			for i, ui := range u {
				s += ui * X[a][i] * X[b][i]
			}
			m.SetSym(a, b, s)
		}
	}

	return m
}

// sandwich returns adj · B M B, symmetrized.
func sandwich(bread, meat *mat.SymDense, adj float64) *mat.SymDense {
	k := bread.SymmetricDim()
	var bm, bmb mat.Dense
	bm.Mul(bread, meat)
	bmb.Mul(&bm, bread)

	out := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			out.SetSym(a, b, 0.5*adj*(bmb.At(a, b)+bmb.At(b, a)))
		}
	}

	return out
}
