package camera

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/fault"
	"github.com/ironsheep/ball-locator-mcp/internal/lsq"
)

// DefaultTolerance is the default allowed reprojection residual, in pixels,
// when convergence checking is requested.
const DefaultTolerance = 1e-3

// InverseOptions controls inverse projection.
type InverseOptions struct {
	// Tolerance is the allowed reprojection residual in pixels. Zero means
	// DefaultTolerance.
	Tolerance float64

	// CheckConvergence makes ViewRay fail when the residual exceeds Tolerance.
	CheckConvergence bool

	// Solver defaults to a Levenberg-Marquardt solver.
	Solver lsq.Solver
}

// PinholeInverse returns the direction (wx, wy, 1) whose distortion-free
// projection is q. It is exact for cameras without distortion or tilt.
//
// Project negates x and y, so PinholeInverse negates them too and differs
// from the plain ((u−cx)/fx, (v−cy)/fy). ViewRay reaches the same minimum
// from either seed; this one starts it at the right sign.
func (in *Intrinsics) PinholeInverse(q r2.Vec) r3.Vec {
	return r3.Vec{X: -(q.X - in.Cx) / in.Fx, Y: -(q.Y - in.Cy) / in.Fy, Z: 1}
}

// ViewRay returns the direction of the view ray through sensor point q,
// normalized to z = 1. The direction is found by minimizing
// ‖Project(wx, wy, 1) − q‖ starting from PinholeInverse(q).
func (in *Intrinsics) ViewRay(q r2.Vec, opts InverseOptions) (r3.Vec, error) {
	w0 := in.PinholeInverse(q)

	solver := opts.Solver
	if solver == nil {
		solver = &lsq.LevenbergMarquardt{}
	}

	problem := lsq.Problem{
		Dim:  2,
		Size: 2,
		Func: func(dst, w []float64) error {
			p, err := in.Project(r3.Vec{X: w[0], Y: w[1], Z: 1})
			if err != nil {
				return err
			}
			dst[0] = p.X - q.X
			dst[1] = p.Y - q.Y
			return nil
		},
	}

	res, err := solver.Solve(problem, []float64{w0.X, w0.Y})
	if err != nil {
		return r3.Vec{}, errors.Wrapf(err, "view ray through (%g, %g)", q.X, q.Y)
	}
	w := r3.Vec{X: res.X[0], Y: res.X[1], Z: 1}

	if opts.CheckConvergence {
		tol := opts.Tolerance
		if tol <= 0 {
			tol = DefaultTolerance
		}
		if res.Norm() >= tol {
			return r3.Vec{}, errors.Wrapf(fault.ErrNonConvergence,
				"view ray through (%g, %g): residual %g px exceeds %g", q.X, q.Y, res.Norm(), tol)
		}
	}
	return w, nil
}
