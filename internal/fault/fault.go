// Package fault defines the error kinds shared by the localization pipeline.
//
// Every numerical failure is reported as one of a small set of sentinel errors,
// wrapped with context by the package that detected it. Callers classify a
// failure with errors.Is or with KindOf when aggregating per-image results.
package fault

import "errors"

var (
	// ErrDegenerateGeometry reports a zero or near-zero denominator in the
	// projection, tangency or line-projection formulas.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrNoRealSolution reports a negative discriminant in the tangency quadratic.
	ErrNoRealSolution = errors.New("no real tangent solution")

	// ErrOutOfBounds reports a sample outside the image extent.
	ErrOutOfBounds = errors.New("sample out of image bounds")

	// ErrNonConvergence reports a solver residual above the requested tolerance.
	ErrNonConvergence = errors.New("solver did not converge")

	// ErrInvalidContour reports a contour with too few points to fit.
	ErrInvalidContour = errors.New("invalid contour")
)

// Kind names the class of a pipeline error.
type Kind string

const (
	KindNone               Kind = ""
	KindDegenerateGeometry Kind = "degenerate_geometry"
	KindNoRealSolution     Kind = "no_real_solution"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindNonConvergence     Kind = "non_convergence"
	KindInvalidContour     Kind = "invalid_contour"
	KindOther              Kind = "other"
)

// KindOf classifies err. A nil error has KindNone; errors that wrap none of
// the sentinels are KindOther.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrDegenerateGeometry):
		return KindDegenerateGeometry
	case errors.Is(err, ErrNoRealSolution):
		return KindNoRealSolution
	case errors.Is(err, ErrOutOfBounds):
		return KindOutOfBounds
	case errors.Is(err, ErrNonConvergence):
		return KindNonConvergence
	case errors.Is(err, ErrInvalidContour):
		return KindInvalidContour
	default:
		return KindOther
	}
}
