package locate

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
	"github.com/ironsheep/ball-locator-mcp/internal/fault"
)

// Locator runs the per-candidate pipeline for one camera.
type Locator struct {
	cam  *camera.Intrinsics
	opts Options
}

// New returns a Locator for cam.
func New(cam *camera.Intrinsics, opts Options) (*Locator, error) {
	if err := cam.CheckValid(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Locator{cam: cam, opts: opts}, nil
}

// Camera returns the locator's camera.
func (l *Locator) Camera() *camera.Intrinsics { return l.cam }

// Options returns the locator's options.
func (l *Locator) Options() Options { return l.opts }

// LocateCandidate samples the contour of c on edges and locates a ball of
// the given radius from it. A contour that is too small yields
// fault.ErrInvalidContour.
func (l *Locator) LocateCandidate(edges EdgeIndicator, radius float64, c Candidate) (*Detection, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	contour, err := FindContour(c, edges, l.opts)
	if err != nil {
		return nil, fmt.Errorf("find contour: %w", err)
	}
	return l.LocateContour(radius, c, contour)
}

// LocateContour locates a ball of the given radius from a candidate and
// its contour points.
func (l *Locator) LocateContour(radius float64, c Candidate, contour []r2.Vec) (*Detection, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("ball radius must be positive, got %g", radius)
	}
	if !ValidContour(contour) {
		return nil, fmt.Errorf("%w: %d contour points, need %d", fault.ErrInvalidContour, len(contour), MinContourPoints)
	}

	cone, err := BuildCone(l.cam, c, contour, l.opts.Inverse)
	if err != nil {
		return nil, fmt.Errorf("build cone: %w", err)
	}

	ray := 1
	if l.opts.Fit == FitMostTransverse {
		ray = MostTransverse(cone)
	}
	initial, err := FitBallRay(cone, radius, ray)
	if err != nil {
		return nil, fmt.Errorf("fit ball: %w", err)
	}

	ball, err := RefineBall(initial, cone, radius, l.opts)
	if err != nil {
		return nil, err
	}

	center, err := ProjectCenter(l.cam, ball)
	if err != nil {
		return nil, err
	}
	rings, err := ProjectContour(l.cam, ball, radius, l.opts.ReprojectPoints)
	if err != nil {
		return nil, err
	}

	return &Detection{
		Target:    Target{X: ball.X, Y: ball.Y, Z: ball.Z, Radius: radius},
		Center2D:  PointOf(center),
		Contour2D: pointsOf(rings),
		Candidate: c,
		Contour:   pointsOf(contour),
	}, nil
}

// Locate runs every candidate through the pipeline concurrently and returns
// the detections in candidate order.
//
// Candidates with too few contour points are dropped silently. Any other
// candidate failure is logged and joined into the returned error; it does
// not affect the other candidates. The context is checked before each
// candidate starts. A nil error means every candidate either produced a
// detection or was dropped.
func (l *Locator) Locate(ctx context.Context, edges EdgeIndicator, radius float64, candidates []Candidate) ([]Detection, error) {
	results := make([]*Detection, len(candidates))
	errs := make([]error, len(candidates))

	var g errgroup.Group
	g.SetLimit(l.opts.workers())
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = l.locateSafe(edges, radius, c)
			return nil
		})
	}
	_ = g.Wait()

	var (
		dets   []Detection
		failed []error
		ctxErr error
	)
	for i, c := range candidates {
		err := errs[i]
		switch {
		case err == nil:
			dets = append(dets, *results[i])
		case errors.Is(err, fault.ErrInvalidContour):
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			ctxErr = err
		default:
			Logf("[Locate] candidate (%.1f, %.1f, %.1f) failed (%s): %v", c.X, c.Y, c.R, fault.KindOf(err), err)
			failed = append(failed, fmt.Errorf("candidate %d (%.1f, %.1f, %.1f): %w", i, c.X, c.Y, c.R, err))
		}
	}
	if ctxErr != nil {
		failed = append(failed, ctxErr)
	}
	return dets, errors.Join(failed...)
}

// locateSafe converts a panic inside one candidate into an error so the
// other workers keep running.
func (l *Locator) locateSafe(edges EdgeIndicator, radius float64, c Candidate) (det *Detection, err error) {
	defer func() {
		if r := recover(); r != nil {
			det, err = nil, fmt.Errorf("panic locating candidate: %v", r)
		}
	}()
	return l.LocateCandidate(edges, radius, c)
}
