package camera

import (
	"github.com/pkg/errors"
)

// NumParams is the length of the flat intrinsic parameter vector.
const NumParams = 18

// Intrinsics holds the 18 intrinsic parameters of a camera. The zero
// distortion terms reduce the model to a pinhole camera.
type Intrinsics struct {
	Fx float64 `json:"fx"`
	Fy float64 `json:"fy"`
	Cx float64 `json:"cx"`
	Cy float64 `json:"cy"`

	// Rational radial distortion: numerator K1..K3, denominator K4..K6.
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	K3 float64 `json:"k3"`
	K4 float64 `json:"k4"`
	K5 float64 `json:"k5"`
	K6 float64 `json:"k6"`

	// Tangential distortion.
	P1 float64 `json:"p1"`
	P2 float64 `json:"p2"`

	// Thin-prism distortion.
	S1 float64 `json:"s1"`
	S2 float64 `json:"s2"`
	S3 float64 `json:"s3"`
	S4 float64 `json:"s4"`

	// Sensor tilt angles in radians.
	Tx float64 `json:"tx"`
	Ty float64 `json:"ty"`
}

// Pinhole returns distortion-free intrinsics.
func Pinhole(fx, fy, cx, cy float64) *Intrinsics {
	return &Intrinsics{Fx: fx, Fy: fy, Cx: cx, Cy: cy}
}

// NewIntrinsics expands an OpenCV camera matrix and distortion vector into
// the 18-parameter form. The distortion vector follows OpenCV's order
// (k1, k2, p1, p2[, k3[, k4, k5, k6[, s1, s2, s3, s4[, tx, ty]]]]) and must
// have 4, 5, 8, 12 or 14 elements; missing terms are zero.
func NewIntrinsics(cameraMatrix [3][3]float64, dist []float64) (*Intrinsics, error) {
	switch len(dist) {
	case 4, 5, 8, 12, 14:
	default:
		return nil, errors.Errorf("distortion vector must have 4, 5, 8, 12 or 14 coefficients, got %d", len(dist))
	}
	padded := make([]float64, 14)
	copy(padded, dist)

	in := &Intrinsics{
		Fx: cameraMatrix[0][0],
		Fy: cameraMatrix[1][1],
		Cx: cameraMatrix[0][2],
		Cy: cameraMatrix[1][2],
		K1: padded[0], K2: padded[1],
		P1: padded[2], P2: padded[3],
		K3: padded[4],
		K4: padded[5], K5: padded[6], K6: padded[7],
		S1: padded[8], S2: padded[9], S3: padded[10], S4: padded[11],
		Tx: padded[12], Ty: padded[13],
	}
	if err := in.CheckValid(); err != nil {
		return nil, err
	}
	return in, nil
}

// FromParams builds Intrinsics from the flat vector
// (fx, fy, cx, cy, k1, k2, p1, p2, k3, k4, k5, k6, s1, s2, s3, s4, tx, ty).
func FromParams(p []float64) (*Intrinsics, error) {
	if len(p) != NumParams {
		return nil, errors.Errorf("expected %d intrinsic parameters, got %d", NumParams, len(p))
	}
	in := &Intrinsics{
		Fx: p[0], Fy: p[1], Cx: p[2], Cy: p[3],
		K1: p[4], K2: p[5], P1: p[6], P2: p[7],
		K3: p[8], K4: p[9], K5: p[10], K6: p[11],
		S1: p[12], S2: p[13], S3: p[14], S4: p[15],
		Tx: p[16], Ty: p[17],
	}
	if err := in.CheckValid(); err != nil {
		return nil, err
	}
	return in, nil
}

// Params returns the flat 18-parameter vector, the inverse of FromParams.
func (in *Intrinsics) Params() []float64 {
	return []float64{
		in.Fx, in.Fy, in.Cx, in.Cy,
		in.K1, in.K2, in.P1, in.P2,
		in.K3, in.K4, in.K5, in.K6,
		in.S1, in.S2, in.S3, in.S4,
		in.Tx, in.Ty,
	}
}

// CameraMatrix returns the 3×3 OpenCV camera matrix.
func (in *Intrinsics) CameraMatrix() [3][3]float64 {
	return [3][3]float64{
		{in.Fx, 0, in.Cx},
		{0, in.Fy, in.Cy},
		{0, 0, 1},
	}
}

// Distortion returns all 14 distortion coefficients in OpenCV order.
func (in *Intrinsics) Distortion() []float64 {
	return in.Params()[4:]
}

// CheckValid rejects intrinsics that cannot project any point.
func (in *Intrinsics) CheckValid() error {
	if in == nil {
		return errors.New("camera intrinsics not provided")
	}
	if in.Fx == 0 || in.Fy == 0 {
		return errors.Errorf("focal lengths must be non-zero, got fx=%g fy=%g", in.Fx, in.Fy)
	}
	return nil
}

// HasDistortion reports whether any distortion or tilt term is non-zero.
func (in *Intrinsics) HasDistortion() bool {
	for _, v := range in.Distortion() {
		if v != 0 {
			return true
		}
	}
	return false
}
