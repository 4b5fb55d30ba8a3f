package camera

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Calibration is the on-disk camera description.
//
// Two layouts are accepted. The OpenCV layout:
//
//	{"intrinsics": {"camera_matrix": [[fx,0,cx],[0,fy,cy],[0,0,1]],
//	                "distortion_coefficients": [k1,k2,p1,p2,...]}}
//
// and the normalized layout, an 18-parameter vector whose focal lengths are
// fractions of the frame size and whose principal point is relative to the
// frame center:
//
//	{"normalized_param": [fx,fy,cx,cy,k1,k2,p1,p2,k3,k4,k5,k6,s1,s2,s3,s4,tx,ty]}
//
// The normalized layout needs the frame size to resolve; see Intrinsics.
type Calibration struct {
	OpenCV *OpenCVIntrinsics `json:"intrinsics,omitempty"`

	NormalizedParam []float64 `json:"normalized_param,omitempty"`
}

// OpenCVIntrinsics is the camera matrix and distortion vector as OpenCV
// writes them.
type OpenCVIntrinsics struct {
	CameraMatrix           [][]float64 `json:"camera_matrix"`
	DistortionCoefficients []float64   `json:"distortion_coefficients"`
}

// LoadCalibration reads a calibration file.
func LoadCalibration(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read camera calibration")
	}
	return ParseCalibration(data)
}

// ParseCalibration decodes a calibration document.
func ParseCalibration(data []byte) (*Calibration, error) {
	var c Calibration
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to decode camera calibration")
	}
	if c.OpenCV == nil && c.NormalizedParam == nil {
		return nil, errors.New("camera calibration has neither intrinsics nor normalized_param")
	}
	return &c, nil
}

// Intrinsics resolves the calibration for a frame of the given size. The
// frame size is only consulted for the normalized layout.
func (c *Calibration) Intrinsics(width, height int) (*Intrinsics, error) {
	if c.OpenCV != nil {
		cm := c.OpenCV.CameraMatrix
		if len(cm) != 3 {
			return nil, errors.Errorf("camera_matrix must be 3x3, got %d rows", len(cm))
		}
		var m [3][3]float64
		for i, row := range cm {
			if len(row) != 3 {
				return nil, errors.Errorf("camera_matrix row %d has %d columns", i, len(row))
			}
			copy(m[i][:], row)
		}
		return NewIntrinsics(m, c.OpenCV.DistortionCoefficients)
	}
	return FromNormalized(c.NormalizedParam, width, height)
}

// FromNormalized resolves a normalized 18-parameter vector for a frame of
// width×height pixels: fx·=W, fy·=H, cx=(cx+0.5)·W, cy=(cy+0.5)·H.
func FromNormalized(p []float64, width, height int) (*Intrinsics, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("normalized calibration needs a frame size, got %dx%d", width, height)
	}
	if len(p) != NumParams {
		return nil, errors.Errorf("expected %d normalized parameters, got %d", NumParams, len(p))
	}
	scaled := append([]float64(nil), p...)
	w, h := float64(width), float64(height)
	scaled[0] *= w
	scaled[1] *= h
	scaled[2] = (scaled[2] + 0.5) * w
	scaled[3] = (scaled[3] + 0.5) * h
	return FromParams(scaled)
}

// MarshalCalibration encodes in into the OpenCV layout.
func MarshalCalibration(in *Intrinsics) ([]byte, error) {
	cm := in.CameraMatrix()
	c := Calibration{OpenCV: &OpenCVIntrinsics{
		CameraMatrix:           [][]float64{cm[0][:], cm[1][:], cm[2][:]},
		DistortionCoefficients: in.Distortion(),
	}}
	return json.MarshalIndent(c, "", "  ")
}
