package locate

import (
	"fmt"
	"runtime"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
	"github.com/ironsheep/ball-locator-mcp/internal/lsq"
)

// FitStrategy selects the contour ray paired with the center ray in the
// analytic fit.
type FitStrategy int

const (
	// FitFirstRay uses the first contour ray in sampling order.
	FitFirstRay FitStrategy = iota

	// FitMostTransverse uses the contour ray with the largest angle to the
	// center ray. It is better conditioned but changes results on edge cases.
	FitMostTransverse
)

// String returns the config name of s.
func (s FitStrategy) String() string {
	switch s {
	case FitFirstRay:
		return "first"
	case FitMostTransverse:
		return "transverse"
	}
	return fmt.Sprintf("FitStrategy(%d)", int(s))
}

// ParseFitStrategy is the inverse of FitStrategy.String. The empty string
// selects FitFirstRay.
func ParseFitStrategy(s string) (FitStrategy, error) {
	switch s {
	case "", "first":
		return FitFirstRay, nil
	case "transverse":
		return FitMostTransverse, nil
	}
	return 0, fmt.Errorf("unknown fit strategy %q (want \"first\" or \"transverse\")", s)
}

// Options configures a Locator. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// MinRelScale and MaxRelScale bound the radial walk as multiples of the
	// candidate radius.
	MinRelScale float64
	MaxRelScale float64

	// ContourPoints is the number of angles sampled per candidate.
	ContourPoints int

	// ReprojectPoints is the number of points per verification ring.
	ReprojectPoints int

	// Inverse controls view-ray inversion.
	Inverse camera.InverseOptions

	// Fit selects the analytic fit ray.
	Fit FitStrategy

	// Solver refines the ball center. Nil means Levenberg-Marquardt.
	Solver lsq.Solver

	// CheckRefinement fails a candidate whose refined RMS residual is at or
	// above RefineTolerance.
	CheckRefinement bool
	RefineTolerance float64

	// Workers bounds the candidates processed concurrently. Zero means
	// GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		MinRelScale:     0.75,
		MaxRelScale:     1.25,
		ContourPoints:   30,
		ReprojectPoints: 20,
		Inverse:         camera.InverseOptions{Tolerance: camera.DefaultTolerance},
		Fit:             FitFirstRay,
		RefineTolerance: 1e-3,
	}
}

// Validate reports options that cannot produce detections.
func (o Options) Validate() error {
	if !(o.MinRelScale >= 0) || !(o.MaxRelScale > o.MinRelScale) {
		return fmt.Errorf("contour scale range [%g, %g) is empty", o.MinRelScale, o.MaxRelScale)
	}
	if o.ContourPoints < 1 {
		return fmt.Errorf("contour points must be positive, got %d", o.ContourPoints)
	}
	if o.ReprojectPoints < 0 {
		return fmt.Errorf("reprojection points must not be negative, got %d", o.ReprojectPoints)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	if o.CheckRefinement && !(o.RefineTolerance > 0) {
		return fmt.Errorf("refine tolerance must be positive when checking refinement, got %g", o.RefineTolerance)
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}
