// SPDX-License-Identifier: MIT

package demean

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/hdfe/grouping"
	"github.com/katalvlaran/hdfe/internal/converge"
)

// Operation tags for error wrapping.
const (
	opNew     = "New"
	opColumn  = "Column"
	opColumns = "Columns"
)

// Engine demeans columns against a fixed set of grouping indices and
// (optional) observation weights. Immutable after New.
type Engine struct {
	dims    []*grouping.Index
	weights []float64   // nil means unit weights
	groupW  [][]float64 // groupW[d][g] = Σ w over group g of dimension d
	n       int
	opts    Options
}

// Stats describes how one column converged.
type Stats struct {
	Sweeps        int       // full sweeps performed (1 for a single dimension)
	Accelerations int       // Irons–Tuck steps applied
	MaxChanges    []float64 // max |Δ| per sweep
	L2Changes     []float64 // weighted ‖Δ‖₂ per sweep
	Target        float64   // Tolerance · ‖residual after the first sweep‖₂
	Rate          float64   // estimated contraction per sweep, NaN if unknown
	Remaining     float64   // estimated weighted ‖Δ‖₂ to the exact projection
	Converged     bool
}

// New validates the indices and weights and precomputes per-group weight sums.
//
// Errors:
//   - ErrNoDimensions for an empty dims slice.
//   - ErrLengthMismatch when indices or weights disagree on N.
//   - ErrNaNInf / ErrNegativeWeight for invalid weights.
//   - ErrZeroWeightGroup when a group's weights sum to zero.
//
// Complexity: O(N · len(dims)).
func New(dims []*grouping.Index, weights []float64, opts ...Option) (*Engine, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%s: %w", opNew, ErrNoDimensions)
	}
	for d, idx := range dims {
		if idx == nil {
			return nil, fmt.Errorf("%s: dimension %d: %w", opNew, d, grouping.ErrNilIndex)
		}
	}
	n := dims[0].N()
	for _, idx := range dims[1:] {
		if idx.N() != n {
			return nil, fmt.Errorf("%s: %s has N=%d, want %d: %w", opNew, idx.Name(), idx.N(), n, ErrLengthMismatch)
		}
	}

	var w []float64
	if weights != nil {
		if len(weights) != n {
			return nil, fmt.Errorf("%s: %d weights for %d observations: %w", opNew, len(weights), n, ErrLengthMismatch)
		}
		for i, v := range weights {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%s: weight %d: %w", opNew, i, ErrNaNInf)
			}
			if v < 0 {
				return nil, fmt.Errorf("%s: weight %d = %g: %w", opNew, i, v, ErrNegativeWeight)
			}
		}
		w = make([]float64, n)
		copy(w, weights)
	}

	e := &Engine{
		dims:    append([]*grouping.Index(nil), dims...),
		weights: w,
		groupW:  make([][]float64, len(dims)),
		n:       n,
		opts:    gatherOptions(opts...),
	}
	for d, idx := range dims {
		sums := make([]float64, idx.G())
		for i := 0; i < n; i++ {
			sums[idx.Code(i)] += e.weight(i)
		}
		for g, s := range sums {
			if s <= 0 {
				return nil, fmt.Errorf("%s: %s level %q: %w", opNew, idx.Name(), idx.Level(g), ErrZeroWeightGroup)
			}
		}
		e.groupW[d] = sums
	}

	return e, nil
}

// N returns the number of observations the engine was built for.
func (e *Engine) N() int { return e.n }

// Dims returns the grouping indices in sweep order.
func (e *Engine) Dims() []*grouping.Index { return append([]*grouping.Index(nil), e.dims...) }

func (e *Engine) weight(i int) float64 {
	if e.weights == nil {
		return 1
	}

	return e.weights[i]
}

// Column returns a freshly allocated demeaned copy of x. x is never written.
func (e *Engine) Column(x []float64) ([]float64, Stats, error) {
	out, st, err := e.column(0, "", x)
	if e.opts.observer != nil {
		e.opts.observer.ObserveDemean("", st, err)
	}
	if err != nil {
		return nil, st, fmt.Errorf("%s: %w", opColumn, err)
	}

	return out, st, nil
}

// Columns demeans every column independently on at most Workers goroutines.
// names may be nil. The result is identical to calling Column in order; on
// failure the error of the lowest-index failing column is returned.
func (e *Engine) Columns(cols [][]float64, names []string) ([][]float64, []Stats, error) {
	if names != nil && len(names) != len(cols) {
		return nil, nil, fmt.Errorf("%s: %d names for %d columns: %w", opColumns, len(names), len(cols), ErrLengthMismatch)
	}
	out := make([][]float64, len(cols))
	stats := make([]Stats, len(cols))
	errs := make([]error, len(cols))

	var g errgroup.Group
	g.SetLimit(e.opts.workers)
	for j := range cols {
		j := j
		name := ""
		if names != nil {
			name = names[j]
		}
		g.Go(func() error {
			out[j], stats[j], errs[j] = e.column(j, name, cols[j])
			if e.opts.observer != nil {
				e.opts.observer.ObserveDemean(name, stats[j], errs[j])
			}

			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, stats, fmt.Errorf("%s: %w", opColumns, err)
		}
	}

	return out, stats, nil
}

// column runs the projection loop for one column on buffers it owns.
func (e *Engine) column(col int, name string, x []float64) ([]float64, Stats, error) {
	var st Stats
	if len(x) != e.n {
		return nil, st, fmt.Errorf("column %d (%s): len %d, want %d: %w", col, name, len(x), e.n, ErrLengthMismatch)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, st, fmt.Errorf("column %d (%s) row %d: %w", col, name, i, ErrNaNInf)
		}
	}

	r := make([]float64, e.n)
	copy(r, x)
	st.Rate = math.NaN()
	if e.dot(r, r) == 0 {
		st.Converged = true

		return r, st, nil
	}

	means := make([][]float64, len(e.dims))
	for d, idx := range e.dims {
		means[d] = make([]float64, idx.G())
	}

	// A single dimension is an exact orthogonal projection.
	if len(e.dims) == 1 {
		e.project(r, 0, means[0])
		st.Sweeps = 1
		st.Converged = true

		return r, st, nil
	}

	// The target scales with what is left after the first sweep: the part of
	// x the fixed effects absorb (offsets, group levels) must not loosen it.
	stop := converge.New(e.opts.tol)
	prev := make([]float64, e.n)  // iterate before the current sweep
	prev2 := make([]float64, e.n) // iterate two sweeps back
	extrapolated := false
	for sweep := 1; sweep <= e.opts.maxSweeps; sweep++ {
		prev, prev2 = prev2, prev
		copy(prev, r)
		for d := range e.dims {
			e.project(r, d, means[d])
		}
		st.Sweeps = sweep
		if sweep == 1 {
			stop.Scale(math.Sqrt(e.dot(r, r)))
			st.Target = stop.Target()
		}

		maxAbs, l2 := e.change(r, prev)
		st.MaxChanges = append(st.MaxChanges, maxAbs)
		st.L2Changes = append(st.L2Changes, l2)
		// The first change still carries the absorbed component, so the rate
		// is read from sweep 3 on and never across an extrapolation.
		done := stop.Observe(l2, sweep > 2 && !extrapolated)
		st.Rate, st.Remaining = stop.Rate(), stop.Remaining()
		if done {
			st.Converged = true

			return r, st, nil
		}

		// prev2 → prev → r are three consecutive iterates only when no
		// extrapolation happened in between; sweep ≥ 2 guarantees prev2 is set.
		extrapolated = false
		if e.opts.accelEvery > 0 && sweep >= 2 && sweep%e.opts.accelEvery == 0 {
			if e.ironsTuck(r, prev, prev2) {
				st.Accelerations++
				extrapolated = true
			}
		}
	}

	return nil, st, &NotConvergedError{
		Column:   col,
		Name:     name,
		Sweeps:   st.Sweeps,
		Achieved: st.Remaining,
		Target:   st.Target,
	}
}
