package locate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/fault"
)

// FitBall estimates the ball center from the center ray and the first
// contour ray.
func FitBall(cone Cone, radius float64) (r3.Vec, error) {
	return FitBallRay(cone, radius, 1)
}

// FitBallRay estimates the ball center from the center ray and cone[i].
//
// The tangent point pe = oe + ae·re on the contour ray is the point at
// distance radius from the center ray. With do = oc − oe, ae is the larger
// root of
//
//	A = (re·re)(rc·rc) − (re·rc)²
//	B = 2((do·rc)(re·rc) − (do·re)(rc·rc))
//	C = (do·do)(rc·rc) − (do·rc)² − radius²(rc·rc)
//
// and the estimate is the foot of pe on the center ray.
func FitBallRay(cone Cone, radius float64, i int) (r3.Vec, error) {
	if len(cone) < 2 {
		return r3.Vec{}, fmt.Errorf("%w: cone has %d rays, need at least 2", fault.ErrDegenerateGeometry, len(cone))
	}
	if i < 1 || i >= len(cone) {
		return r3.Vec{}, fmt.Errorf("fit ray %d outside cone of %d rays", i, len(cone))
	}
	pc, _, err := fitTangent(cone[0], cone[i], radius)
	return pc, err
}

// MostTransverse returns the index of the contour ray with the largest angle
// to the center ray, or 1 when every ray is degenerate.
func MostTransverse(cone Cone) int {
	best, bestSin := 1, -1.0
	if len(cone) < 2 {
		return best
	}
	rc := cone[0].Direction
	for i := 1; i < len(cone); i++ {
		re := cone[i].Direction
		n := r3.Norm(rc) * r3.Norm(re)
		if n == 0 {
			continue
		}
		if s := r3.Norm(r3.Cross(rc, re)) / n; s > bestSin {
			best, bestSin = i, s
		}
	}
	return best
}

// fitTangent returns the center estimate pc and the tangent point pe.
func fitTangent(center, contour ViewRay, radius float64) (pc, pe r3.Vec, err error) {
	oc, rc := center.Origin, center.Direction
	oe, re := contour.Origin, contour.Direction

	do := r3.Sub(oc, oe)
	reRe := r3.Dot(re, re)
	rcRc := r3.Dot(rc, rc)
	doDo := r3.Dot(do, do)
	reRc := r3.Dot(re, rc)
	doRe := r3.Dot(do, re)
	doRc := r3.Dot(do, rc)

	if rcRc == 0 || reRe == 0 {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("%w: view ray has no direction", fault.ErrDegenerateGeometry)
	}

	a := reRe*rcRc - reRc*reRc
	b := 2 * (doRc*reRc - doRe*rcRc)
	c := doDo*rcRc - doRc*doRc - radius*radius*rcRc

	// A is |re|²|rc|²·sin²θ; compare it relative to the ray lengths.
	if math.Abs(a) <= Epsilon*reRe*rcRc {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("%w: center and contour rays are parallel", fault.ErrDegenerateGeometry)
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("%w: discriminant %g", fault.ErrNoRealSolution, disc)
	}
	ae := (-b + math.Sqrt(disc)) / (2 * a)

	pe = r3.Add(oe, r3.Scale(ae, re))
	ac := -r3.Dot(r3.Sub(oc, pe), rc) / rcRc
	pc = r3.Add(oc, r3.Scale(ac, rc))
	return pc, pe, nil
}
