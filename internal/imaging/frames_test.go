package imaging

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// solidImage returns a width×height image of one color.
func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// diskImage draws a filled disk of radius r around (cx, cy), the way a ball
// appears against a plain background.
func diskImage(width, height int, cx, cy, r float64, fg, bg color.Color) *image.RGBA {
	img := solidImage(width, height, bg)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				img.Set(x, y, fg)
			}
		}
	}
	return img
}

// writeFrame encodes img as PNG into the test's temp dir.
func writeFrame(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create frame: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	return path
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	gray  = color.RGBA{128, 128, 128, 255}
)
