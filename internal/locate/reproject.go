package locate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
)

// ProjectCenter projects the ball center onto the sensor.
func ProjectCenter(cam *camera.Intrinsics, ball r3.Vec) (r2.Vec, error) {
	q, err := cam.Project(ball)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("project center: %w", err)
	}
	return q, nil
}

// ProjectContour projects three great circles of the ball, cut parallel to
// the yz, xz and xy planes, each sampled at n angles evenly spaced over
// [0, 2π] inclusive. The rings are separated by the projected center:
//
//	center, ring yz, center, ring xz, center, ring xy, center
//
// so the result has 3n+4 points.
func ProjectContour(cam *camera.Intrinsics, ball r3.Vec, radius float64, n int) ([]r2.Vec, error) {
	ctr, err := ProjectCenter(cam, ball)
	if err != nil {
		return nil, err
	}

	angles := linspace(0, 2*math.Pi, n)
	out := make([]r2.Vec, 0, 3*n+4)
	out = append(out, ctr)

	rings := []func(u, v float64) r3.Vec{
		func(u, v float64) r3.Vec { return r3.Vec{Y: u, Z: v} },
		func(u, v float64) r3.Vec { return r3.Vec{X: u, Z: v} },
		func(u, v float64) r3.Vec { return r3.Vec{X: u, Y: v} },
	}
	for k, offset := range rings {
		for _, a := range angles {
			sin, cos := math.Sincos(a)
			q, err := cam.Project(r3.Add(ball, offset(radius*sin, radius*cos)))
			if err != nil {
				return nil, fmt.Errorf("project ring %d: %w", k, err)
			}
			out = append(out, q)
		}
		out = append(out, ctr)
	}
	return out, nil
}

// linspace returns n evenly spaced values over [lo, hi], endpoints included.
func linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
