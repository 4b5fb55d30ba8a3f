package locate

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/ball-locator-mcp/internal/fault"
)

// EdgeIndicator reports whether the pixel nearest to (x, y) is an edge.
// Lookups outside the image must fail with fault.ErrOutOfBounds rather than
// clamp.
type EdgeIndicator interface {
	Edge(x, y float64) (bool, error)
}

// EdgeFunc adapts a function to EdgeIndicator.
type EdgeFunc func(x, y float64) (bool, error)

// Edge calls f(x, y).
func (f EdgeFunc) Edge(x, y float64) (bool, error) {
	return f(x, y)
}

// FindRadial walks from the candidate center along the direction
// (sin θ, cos θ), θ = angleDeg, in unit steps from MinRelScale·r up to but
// excluding MaxRelScale·r, and returns the first sample on an edge.
//
// ok is false when nothing was found or the walk left the image. Errors other
// than fault.ErrOutOfBounds from the indicator are returned.
func FindRadial(c Candidate, edges EdgeIndicator, angleDeg float64, opts Options) (p r2.Vec, ok bool, err error) {
	sin, cos := math.Sincos(angleDeg * math.Pi / 180)
	dir := r2.Vec{X: sin, Y: cos}
	origin := c.Center()

	lo, hi := opts.MinRelScale*c.R, opts.MaxRelScale*c.R
	for i := 0; ; i++ {
		s := lo + float64(i)
		if s >= hi {
			return r2.Vec{}, false, nil
		}
		q := r2.Add(origin, r2.Scale(s, dir))
		edge, err := edges.Edge(q.X, q.Y)
		if errors.Is(err, fault.ErrOutOfBounds) {
			return r2.Vec{}, false, nil
		}
		if err != nil {
			return r2.Vec{}, false, err
		}
		if edge {
			return q, true, nil
		}
	}
}

// FindContour samples opts.ContourPoints angles 360·i/N, i = 0..N-1, and
// returns the radial hits in angle order.
func FindContour(c Candidate, edges EdgeIndicator, opts Options) ([]r2.Vec, error) {
	n := opts.ContourPoints
	contour := make([]r2.Vec, 0, n)
	for i := 0; i < n; i++ {
		p, ok, err := FindRadial(c, edges, 360*float64(i)/float64(n), opts)
		if err != nil {
			return nil, err
		}
		if ok {
			contour = append(contour, p)
		}
	}
	return contour, nil
}

// MinContourPoints is the smallest usable contour.
const MinContourPoints = 5

// ValidContour reports whether a contour has enough points to fit.
func ValidContour(contour []r2.Vec) bool {
	return len(contour) >= MinContourPoints
}
