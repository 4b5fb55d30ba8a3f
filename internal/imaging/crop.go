package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	// X and Y are the top-left corner of the crop in the source frame.
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts the region (x1,y1)-(x2,y2), x2 and y2 exclusive, optionally
// rescaled with Lanczos resampling.
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()

	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(img, image.Rect(x1, y1, x2, y2))

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X:           x1,
		Y:           y1,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropAround extracts the square of half-size margin·r around (x, y),
// clipped to the image. It is used to inspect a candidate or a detection.
func CropAround(img image.Image, x, y, r, margin, scale float64) (*CropResult, error) {
	if !(r > 0) || !(margin > 0) {
		return nil, fmt.Errorf("crop radius and margin must be positive, got %g and %g", r, margin)
	}
	bounds := img.Bounds()
	half := r * margin
	x1 := max(bounds.Min.X, int(math.Floor(x-half)))
	y1 := max(bounds.Min.Y, int(math.Floor(y-half)))
	x2 := min(bounds.Max.X, int(math.Ceil(x+half))+1)
	y2 := min(bounds.Max.Y, int(math.Ceil(y+half))+1)
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("crop around (%g, %g) lies outside the image", x, y)
	}
	return Crop(img, x1, y1, x2, y2, scale)
}
