// SPDX-License-Identifier: MIT

package demean

import (
	"math"
	"runtime"
)

// Defaults (single source of truth for zero-value behavior).
const (
	// DefaultTolerance bounds the estimated distance to the exact projection,
	// relative to the norm of the residual after the first sweep.
	DefaultTolerance = 1e-8

	// DefaultMaxSweeps caps the number of full sweeps per column.
	DefaultMaxSweeps = 10000

	// DefaultAccelEvery is the sweep period of the Irons–Tuck extrapolation.
	DefaultAccelEvery = 3
)

const (
	panicToleranceInvalid = "demean: WithTolerance: tol must be finite and > 0"
	panicMaxSweepsInvalid = "demean: WithMaxSweeps: n must be > 0"
	panicAccelInvalid     = "demean: WithAccelEvery: k must be >= 2"
	panicWorkersInvalid   = "demean: WithWorkers: n must be > 0"
)

// Observer receives per-column results. Implementations must be safe for
// concurrent use; Columns calls it from worker goroutines.
type Observer interface {
	ObserveDemean(name string, st Stats, err error)
}

// Option mutates Options. Constructors panic only on nonsensical values.
type Option func(*Options)

// Options is the resolved engine configuration.
type Options struct {
	tol        float64
	maxSweeps  int
	accelEvery int // 0 disables acceleration
	workers    int
	observer   Observer
}

// WithTolerance sets the relative tolerance used in the convergence test.
func WithTolerance(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.tol = tol }
}

// WithMaxSweeps caps full sweeps per column. Reaching the cap is an error,
// never a silent partial result.
func WithMaxSweeps(n int) Option {
	if n <= 0 {
		panic(panicMaxSweepsInvalid)
	}

	return func(o *Options) { o.maxSweeps = n }
}

// WithAccelEvery applies Irons–Tuck extrapolation every k sweeps.
func WithAccelEvery(k int) Option {
	if k < 2 {
		panic(panicAccelInvalid)
	}

	return func(o *Options) { o.accelEvery = k }
}

// WithoutAcceleration runs plain alternating projections.
func WithoutAcceleration() Option {
	return func(o *Options) { o.accelEvery = 0 }
}

// WithWorkers bounds the goroutines used by Columns.
func WithWorkers(n int) Option {
	if n <= 0 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = n }
}

// WithObserver installs a per-column hook (metrics, logging). nil disables it.
func WithObserver(obs Observer) Option {
	return func(o *Options) { o.observer = obs }
}

func gatherOptions(user ...Option) Options {
	o := Options{
		tol:        DefaultTolerance,
		maxSweeps:  DefaultMaxSweeps,
		accelEvery: DefaultAccelEvery,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, set := range user {
		if set != nil {
			set(&o)
		}
	}

	return o
}
