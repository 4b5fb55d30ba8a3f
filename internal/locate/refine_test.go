package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/fault"
)

func TestRefineBall_ConvergesFromNearby(t *testing.T) {
	const radius = 50.0
	centers := []r3.Vec{
		{X: 0, Y: 0, Z: 1000},
		{X: 150, Y: -90, Z: 1400},
		{X: -40, Y: 25, Z: 600},
	}
	offsets := []r3.Vec{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
		{X: 0.577, Y: 0.577, Z: 0.577},
		{X: -0.6, Y: 0.48, Z: -0.64},
	}

	for _, c := range centers {
		cone := tangentCone(c, radius, 16)
		for _, off := range offsets {
			start := r3.Add(c, r3.Scale(0.2*radius, off))
			got, err := RefineBall(start, cone, radius, DefaultOptions())
			require.NoError(t, err)
			assert.LessOrEqual(t, r3.Norm(r3.Sub(got, c)), 1e-3*radius, "center %v from %v", c, start)
		}
	}
}

func TestRefineBall_FromAnalyticFit(t *testing.T) {
	c := r3.Vec{X: 60, Y: 20, Z: 1100}
	cone := tangentCone(c, 50, 30)

	initial, err := FitBall(cone, 50)
	require.NoError(t, err)
	got, err := RefineBall(initial, cone, 50, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(got, c)), 1e-6)
}

func TestRefineBall_Check(t *testing.T) {
	c := r3.Vec{Z: 1000}
	cone := tangentCone(c, 50, 10)
	// One ray belongs to a much larger sphere, so no point fits every ray.
	cone[3] = tangentCone(c, 120, 10)[3]

	opts := DefaultOptions()
	_, err := RefineBall(c, cone, 50, opts)
	assert.NoError(t, err, "the solver's termination is trusted by default")

	opts.CheckRefinement = true
	_, err = RefineBall(c, cone, 50, opts)
	assert.ErrorIs(t, err, fault.ErrNonConvergence)

	opts.RefineTolerance = 1e6
	_, err = RefineBall(c, cone, 50, opts)
	assert.NoError(t, err)
}

func TestRefineBall_NoContourRays(t *testing.T) {
	_, err := RefineBall(r3.Vec{Z: 1}, Cone{{Direction: r3.Vec{Z: 1}}}, 1, DefaultOptions())
	assert.ErrorIs(t, err, fault.ErrDegenerateGeometry)
}
