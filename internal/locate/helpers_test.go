package locate

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
	"github.com/ironsheep/ball-locator-mcp/internal/fault"
)

// tangentDirections returns n directions from the origin tangent to the
// sphere of the given radius at center.
func tangentDirections(center r3.Vec, radius float64, n int) []r3.Vec {
	dist := r3.Norm(center)
	a := r3.Scale(1/dist, center)

	ref := r3.Vec{X: 1}
	if math.Abs(a.X) > 0.9 {
		ref = r3.Vec{Y: 1}
	}
	u := r3.Unit(r3.Cross(a, ref))
	v := r3.Cross(a, u)

	sinA := radius / dist
	cosA := math.Sqrt(1 - sinA*sinA)

	dirs := make([]r3.Vec, n)
	for k := range dirs {
		phi := 2 * math.Pi * float64(k) / float64(n)
		side := r3.Add(r3.Scale(math.Cos(phi), u), r3.Scale(math.Sin(phi), v))
		dirs[k] = r3.Add(r3.Scale(cosA, a), r3.Scale(sinA, side))
	}
	return dirs
}

// tangentCone is the exact cone of a sphere seen from the origin.
func tangentCone(center r3.Vec, radius float64, n int) Cone {
	cone := Cone{{Direction: center}}
	for _, d := range tangentDirections(center, radius, n) {
		cone = append(cone, ViewRay{Direction: d})
	}
	return cone
}

// silhouette projects the tangent directions of a sphere to pixels.
func silhouette(cam *camera.Intrinsics, center r3.Vec, radius float64, n int) ([]r2.Vec, error) {
	var pts []r2.Vec
	for _, d := range tangentDirections(center, radius, n) {
		q, err := cam.Project(d)
		if err != nil {
			return nil, err
		}
		pts = append(pts, q)
	}
	return pts, nil
}

// ringEdges is a width×height edge image holding one circle of radius r
// around (cx, cy), one pixel wide.
func ringEdges(cx, cy, r float64, width, height int) EdgeFunc {
	return bandEdges(cx, cy, r, 0.5, width, height)
}

// bandEdges marks the pixels whose centers lie within halfWidth of the circle
// of radius r around (cx, cy).
func bandEdges(cx, cy, r, halfWidth float64, width, height int) EdgeFunc {
	return func(x, y float64) (bool, error) {
		if x < 0 || y < 0 || x > float64(width-1) || y > float64(height-1) {
			return false, fault.ErrOutOfBounds
		}
		px, py := math.Round(x), math.Round(y)
		return math.Abs(math.Hypot(px-cx, py-cy)-r) <= halfWidth, nil
	}
}

func pinhole() *camera.Intrinsics {
	return camera.Pinhole(1000, 1000, 500, 500)
}

func distortedCamera() *camera.Intrinsics {
	return &camera.Intrinsics{
		Fx: 1210.5, Fy: 1205.25, Cx: 962.3, Cy: 541.7,
		K1: -0.21, K2: 0.08, K3: -0.012,
		K4: 0.015, K5: -0.004, K6: 0.0007,
		P1: 0.0011, P2: -0.0007,
		S1: 0.0005, S2: -0.0002, S3: 0.0003, S4: -0.0001,
		Tx: 0.004, Ty: -0.003,
	}
}
