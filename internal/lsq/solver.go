package lsq

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// ErrDimension is returned for a problem whose sizes do not match its initial point.
var ErrDimension = errors.New("lsq: invalid problem dimensions")

// Problem is a nonlinear least-squares problem min ½‖Func(x)‖².
type Problem struct {
	// Dim is the number of parameters.
	Dim int

	// Size is the number of residuals.
	Size int

	// Func writes the Size residuals at x into dst.
	Func func(dst, x []float64) error

	// Jac writes the Size×Dim Jacobian at x into dst. Optional; when nil the
	// Jacobian is estimated with central differences.
	Jac func(dst *mat.Dense, x []float64) error
}

func (p Problem) validate(x0 []float64) error {
	if p.Func == nil {
		return fmt.Errorf("%w: nil residual function", ErrDimension)
	}
	if p.Dim < 1 || p.Size < 1 || len(x0) != p.Dim {
		return fmt.Errorf("%w: dim=%d size=%d len(x0)=%d", ErrDimension, p.Dim, p.Size, len(x0))
	}
	return nil
}

// jacobian returns the Jacobian evaluator for p, falling back to central
// differences. The first residual error seen during differencing is returned.
func (p Problem) jacobian() func(dst *mat.Dense, x []float64) error {
	if p.Jac != nil {
		return p.Jac
	}
	return func(dst *mat.Dense, x []float64) error {
		var ferr error
		fn := func(y, x []float64) {
			if err := p.Func(y, x); err != nil && ferr == nil {
				ferr = err
			}
		}
		fd.Jacobian(dst, fn, x, &fd.JacobianSettings{Formula: fd.Central})
		return ferr
	}
}

// Result is the outcome of a solve.
type Result struct {
	// X is the final parameter vector.
	X []float64

	// Residuals are the residuals at X.
	Residuals []float64

	// Cost is ½‖Residuals‖².
	Cost float64

	// Iterations counts outer solver iterations.
	Iterations int

	// Evaluations counts residual function calls, excluding differencing.
	Evaluations int

	// Converged reports whether the solver's own termination test was met.
	Converged bool
}

// Norm returns ‖Residuals‖.
func (r *Result) Norm() float64 {
	return math.Sqrt(2 * r.Cost)
}

// RMS returns the root mean square of the residuals.
func (r *Result) RMS() float64 {
	if len(r.Residuals) == 0 {
		return 0
	}
	return math.Sqrt(2 * r.Cost / float64(len(r.Residuals)))
}

// Solver minimizes a Problem from an initial point.
type Solver interface {
	Solve(p Problem, x0 []float64) (*Result, error)
}

func halfSumSq(f []float64) float64 {
	var s float64
	for _, v := range f {
		s += v * v
	}
	return 0.5 * s
}
