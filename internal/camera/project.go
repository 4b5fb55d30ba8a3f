package camera

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/fault"
)

// Epsilon is the threshold below which a projection denominator is treated as zero.
const Epsilon = 1e-8

// Project maps a 3D point in camera coordinates to sensor pixel coordinates.
//
// The model follows OpenCV's calibration model:
//
//	x' = -x/z,  y' = -y/z,  r² = x'² + y'²
//	x'' = x'·(1+k1r²+k2r⁴+k3r⁶)/(1+k4r²+k5r⁴+k6r⁶) + 2p1x'y' + p2(r²+2x'²) + s1r² + s2r⁴
//	y'' = y'·(1+k1r²+k2r⁴+k3r⁶)/(1+k4r²+k5r⁴+k6r⁶) + p1(r²+2y'²) + 2p2x'y' + s3r² + s4r⁴
//	(xu, yu, zu) = T(tx,ty)·R(tx,ty)·(x'', y'', 1)
//	u = fx·xu/zu + cx,  v = fy·yu/zu + cy
//
// The sign flip in the first line accounts for the image y-axis pointing
// down. Project fails with fault.ErrDegenerateGeometry when z, the radial
// denominator or zu is within Epsilon of zero.
func (in *Intrinsics) Project(p r3.Vec) (r2.Vec, error) {
	if math.Abs(p.Z) <= Epsilon {
		return r2.Vec{}, errors.Wrapf(fault.ErrDegenerateGeometry, "project %v: point on the camera plane", p)
	}
	xp, yp := -p.X/p.Z, -p.Y/p.Z

	rr := xp*xp + yp*yp
	r4 := rr * rr
	r6 := r4 * rr

	ffn := 1 + in.K1*rr + in.K2*r4 + in.K3*r6
	ffd := 1 + in.K4*rr + in.K5*r4 + in.K6*r6
	if math.Abs(ffd) <= Epsilon {
		return r2.Vec{}, errors.Wrapf(fault.ErrDegenerateGeometry, "project %v: radial denominator %g", p, ffd)
	}
	radial := ffn / ffd

	xpp := xp*radial + 2*in.P1*xp*yp + in.P2*(rr+2*xp*xp) + in.S1*rr + in.S2*r4
	ypp := yp*radial + in.P1*(rr+2*yp*yp) + 2*in.P2*xp*yp + in.S3*rr + in.S4*r4

	xu, yu, zu := xpp, ypp, 1.0
	if in.Tx != 0 || in.Ty != 0 {
		m := tiltMatrix(in.Tx, in.Ty)
		xu = m[0][0]*xpp + m[0][1]*ypp + m[0][2]
		yu = m[1][0]*xpp + m[1][1]*ypp + m[1][2]
		zu = m[2][0]*xpp + m[2][1]*ypp + m[2][2]
	}
	if math.Abs(zu) <= Epsilon {
		return r2.Vec{}, errors.Wrapf(fault.ErrDegenerateGeometry, "project %v: tilt normalization %g", p, zu)
	}

	return r2.Vec{X: in.Fx*xu/zu + in.Cx, Y: in.Fy*yu/zu + in.Cy}, nil
}

// tiltMatrix returns T(tx,ty)·R(tx,ty), the sensor tilt transform of the
// OpenCV model.
func tiltMatrix(tx, ty float64) [3][3]float64 {
	sx, cx := math.Sincos(tx)
	sy, cy := math.Sincos(ty)

	t := [3][3]float64{
		{cy * cx, 0, sy * cx},
		{0, cy * cx, -sx},
		{0, 0, 1},
	}
	r := [3][3]float64{
		{cy, sy * sx, -sy * cx},
		{0, cx, sx},
		{sy, -cy * sx, cy * cx},
	}

	var m [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				m[i][j] += t[i][k] * r[k][j]
			}
		}
	}
	return m
}
