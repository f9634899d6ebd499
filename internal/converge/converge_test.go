// SPDX-License-Identifier: MIT

package converge_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hdfe/internal/converge"
)

// A geometric sequence of changes with rate ρ has tail Σ_{j>k} = δ_k·ρ/(1−ρ).
func TestTracker_GeometricTail(t *testing.T) {
	const rho = 0.99
	tr := converge.New(1e-8)
	tr.Scale(1)

	change := 1.0
	require.False(t, tr.Observe(change, true), "no rate after one step")
	steps := 1
	for !tr.Observe(change*rho, true) {
		change *= rho
		steps++
		require.Less(t, steps, 100000)
	}
	change *= rho
	tail := change * rho / (1 - rho)

	assert.InDelta(t, rho, tr.Rate(), 1e-12)
	assert.InDelta(t, tail, tr.Remaining(), 1e-12*tail+1e-300)
	assert.LessOrEqual(t, tr.Remaining(), tr.Target())
	// A test on the raw change would have stopped at 1e-8, far from the limit.
	assert.Less(t, change, 1e-9)
}

func TestTracker_NotComparableNeverStops(t *testing.T) {
	tr := converge.New(1e-3)
	tr.Scale(1)
	tr.Observe(1, true)
	assert.False(t, tr.Observe(1e-6, false))
	assert.True(t, math.IsInf(tr.Remaining(), 1))
	assert.True(t, tr.Observe(1e-7, true))
}

func TestTracker_ZeroAndFloor(t *testing.T) {
	tr := converge.New(1e-8)
	tr.Scale(0)
	assert.True(t, tr.Observe(0, false))
	assert.Zero(t, tr.Remaining())

	tr = converge.New(1e-14)
	tr.Scale(10)
	tr.Observe(1, true)
	assert.True(t, tr.Observe(1e-14, true), "changes at rounding level stop the loop")
}

func TestTracker_RateAtOrAboveOneKeepsGoing(t *testing.T) {
	tr := converge.New(1e-2)
	tr.Scale(1)
	tr.Observe(1e-3, true)
	assert.False(t, tr.Observe(1e-3, true))
	assert.True(t, math.IsInf(tr.Remaining(), 1))
}
