// SPDX-License-Identifier: MIT

package feols

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Spec is one named specification of a batch.
type Spec struct {
	Name    string
	Input   Input
	Options []Option
}

// Result pairs a specification with its outcome. Exactly one of Fit and Err
// is set.
type Result struct {
	Name string
	Fit  *Fit
	Err  error
}

// EstimateBatch estimates every spec on at most workers goroutines
// (workers ≤ 0 means GOMAXPROCS). Results keep the order of specs and each
// carries its own error; one failing spec does not affect the others. Once
// ctx is done no new spec is started and the remaining ones report ctx.Err().
//
// Specs share nothing mutable: every Estimate builds its own demeaning engine
// and buffers, and grouping indices are read-only.
func EstimateBatch(ctx context.Context, specs []Spec, workers int) []Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(specs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range specs {
		i := i
		results[i].Name = specs[i].Name
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			fit, err := Estimate(specs[i].Input, specs[i].Options...)
			if err != nil {
				results[i].Err = fmt.Errorf("spec %q: %w", specs[i].Name, err)
				return nil
			}
			results[i].Fit = fit

			return nil
		})
	}
	_ = g.Wait()

	return results
}
