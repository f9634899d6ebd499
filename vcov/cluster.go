// SPDX-License-Identifier: MIT

package vcov

import (
	"fmt"
	"math/bits"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/hdfe/grouping"
)

// PSDTolerance is the relative eigenvalue floor below which a multi-way
// result is reported as not positive semi-definite.
const PSDTolerance = 1e-12

// clustered combines one-way CRV1 estimators over every non-empty subset of
// the cluster dimensions by inclusion–exclusion.
func clustered(in Input, bread *mat.SymDense) (*mat.SymDense, []int, []string, error) {
	dims := in.Clusters
	counts := make([]int, len(dims))
	for d, c := range dims {
		counts[d] = c.G()
	}

	k := bread.SymmetricDim()
	total := mat.NewSymDense(k, nil)
	var subset []*grouping.Index
	for mask := 1; mask < 1<<len(dims); mask++ {
		subset = subset[:0]
		names := make([]string, 0, len(dims))
		for d, c := range dims {
			if mask&(1<<d) != 0 {
				subset = append(subset, c)
				names = append(names, c.Name())
			}
		}
		idx, err := grouping.Intersect(strings.Join(names, "^"), subset...)
		if err != nil {
			return nil, nil, nil, err
		}

		v := oneWay(in, bread, idx)
		sign := 1.0
		if bits.OnesCount(uint(mask))%2 == 0 {
			sign = -1
		}
		total.AddSym(total, scaled(v, sign))
	}

	var warns []string
	if len(dims) > 1 {
		if w := psdWarning(total); w != "" {
			warns = append(warns, w)
		}
	}

	return total, counts, warns, nil
}

// oneWay is B (Σ_c s_c s_cᵀ) B · C/(C−1) · (N−1)/DFResid for one grouping.
func oneWay(in Input, bread *mat.SymDense, idx *grouping.Index) *mat.SymDense {
	k := len(in.Xw)
	C := idx.G()
	scores := mat.NewDense(C, k, nil)
	for j, col := range in.Xw {
		for i, x := range col {
			c := idx.Code(i)
			scores.Set(c, j, scores.At(c, j)+x*in.Ew[i])
		}
	}
	meat := mat.NewSymDense(k, nil)
	meat.SymOuterK(1, scores.T())

	adj := float64(C) / float64(C-1) * float64(in.N-1) / float64(in.DFResid)

	return sandwich(bread, meat, adj)
}

func scaled(v *mat.SymDense, f float64) *mat.SymDense {
	out := mat.NewSymDense(v.SymmetricDim(), nil)
	out.ScaleSym(f, v)

	return out
}

// psdWarning reports a negative eigenvalue of v, if any.
func psdWarning(v *mat.SymDense) string {
	var eig mat.EigenSym
	if !eig.Factorize(v, false) {
		return "multi-way cluster covariance: eigen decomposition failed"
	}
	vals := eig.Values(nil)
	lo, hi := vals[0], vals[0]
	for _, x := range vals[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	if lo < -PSDTolerance*max(hi, 1e-300) {
		return fmt.Sprintf("multi-way cluster covariance is not positive semi-definite: min eigenvalue %.3g", lo)
	}

	return ""
}
