package locate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/fault"
)

// Epsilon is the relative threshold below which a geometric denominator is
// treated as zero.
const Epsilon = 1e-12

// Candidate is an approximate circle in pixel space believed to contain the
// target.
type Candidate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Center returns the candidate center.
func (c Candidate) Center() r2.Vec {
	return r2.Vec{X: c.X, Y: c.Y}
}

// Validate rejects candidates without a positive finite radius.
func (c Candidate) Validate() error {
	if !(c.R > 0) || math.IsInf(c.R, 0) || math.IsNaN(c.X) || math.IsNaN(c.Y) {
		return fmt.Errorf("invalid candidate (%g, %g, %g): radius must be positive", c.X, c.Y, c.R)
	}
	return nil
}

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointOf converts a vector to a Point.
func PointOf(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Vec converts p to a vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func pointsOf(vs []r2.Vec) []Point {
	ps := make([]Point, len(vs))
	for i, v := range vs {
		ps[i] = PointOf(v)
	}
	return ps
}

// ViewRay is a line through Origin along Direction, in camera coordinates.
// Direction is not normalized.
type ViewRay struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// Foot returns the point of the ray's line closest to p. Only a zero
// direction is rejected; the result does not depend on its length.
func (r ViewRay) Foot(p r3.Vec) (r3.Vec, error) {
	rr := r3.Dot(r.Direction, r.Direction)
	if rr == 0 {
		return r3.Vec{}, fmt.Errorf("%w: view ray has no direction", fault.ErrDegenerateGeometry)
	}
	a := -r3.Dot(r3.Sub(r.Origin, p), r.Direction) / rr
	return r3.Add(r.Origin, r3.Scale(a, r.Direction)), nil
}

// Offset returns the perpendicular vector from p to the ray's line.
func (r ViewRay) Offset(p r3.Vec) (r3.Vec, error) {
	f, err := r.Foot(p)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Sub(f, p), nil
}

// Distance returns the perpendicular distance from p to the ray's line.
func (r ViewRay) Distance(p r3.Vec) (float64, error) {
	d, err := r.Offset(p)
	if err != nil {
		return 0, err
	}
	return r3.Norm(d), nil
}

// Cone is the set of view rays of one candidate. Index 0 is the ray through
// the candidate center; the rest pass through contour points.
type Cone []ViewRay

// Axis returns the center ray.
func (c Cone) Axis() ViewRay {
	return c[0]
}

// Contour returns the contour rays.
func (c Cone) Contour() []ViewRay {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// Target is a located sphere: its center in camera coordinates and the
// radius it was located with.
type Target struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
}

// Center returns the sphere center.
func (t Target) Center() r3.Vec {
	return r3.Vec{X: t.X, Y: t.Y, Z: t.Z}
}

// Detection is the result for one candidate.
type Detection struct {
	// Target is the refined 3D center and the radius.
	Target Target `json:"target"`

	// Center2D is the projection of the refined center.
	Center2D Point `json:"center_2d"`

	// Contour2D holds the projected verification rings in draw order; see
	// ProjectContour.
	Contour2D []Point `json:"contour_2d"`

	// Candidate is the candidate the detection was made from.
	Candidate Candidate `json:"candidate"`

	// Contour holds the edge points found for the candidate.
	Contour []Point `json:"contour,omitempty"`
}
