package locate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/fault"
	"github.com/ironsheep/ball-locator-mcp/internal/lsq"
)

// RefineBall adjusts the ball center to fit every contour ray of the cone,
// minimizing Σ (dist(ray_i, p) − radius)² over the contour rays from
// initial. The center ray is not used.
//
// The solver's own termination is trusted unless opts.CheckRefinement is
// set, in which case an RMS residual at or above opts.RefineTolerance fails
// with fault.ErrNonConvergence.
func RefineBall(initial r3.Vec, cone Cone, radius float64, opts Options) (r3.Vec, error) {
	rays := cone.Contour()
	if len(rays) == 0 {
		return r3.Vec{}, fmt.Errorf("%w: cone has no contour rays", fault.ErrDegenerateGeometry)
	}

	problem := lsq.Problem{
		Dim:  3,
		Size: len(rays),
		Func: func(dst, x []float64) error {
			p := r3.Vec{X: x[0], Y: x[1], Z: x[2]}
			for i, ray := range rays {
				d, err := ray.Distance(p)
				if err != nil {
					return err
				}
				dst[i] = d - radius
			}
			return nil
		},
		// d(|d|)/dp = −d/|d| where d is the offset from p to the line.
		Jac: func(dst *mat.Dense, x []float64) error {
			p := r3.Vec{X: x[0], Y: x[1], Z: x[2]}
			for i, ray := range rays {
				d, err := ray.Offset(p)
				if err != nil {
					return err
				}
				n := r3.Norm(d)
				if n == 0 {
					dst.SetRow(i, []float64{0, 0, 0})
					continue
				}
				dst.SetRow(i, []float64{-d.X / n, -d.Y / n, -d.Z / n})
			}
			return nil
		},
	}

	solver := opts.Solver
	if solver == nil {
		solver = &lsq.LevenbergMarquardt{}
	}
	res, err := solver.Solve(problem, []float64{initial.X, initial.Y, initial.Z})
	if err != nil {
		return r3.Vec{}, fmt.Errorf("refine ball: %w", err)
	}

	if opts.CheckRefinement && res.RMS() >= opts.RefineTolerance {
		return r3.Vec{}, fmt.Errorf("%w: refined RMS residual %g exceeds %g",
			fault.ErrNonConvergence, res.RMS(), opts.RefineTolerance)
	}
	return r3.Vec{X: res.X[0], Y: res.X[1], Z: res.X[2]}, nil
}
