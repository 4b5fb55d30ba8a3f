package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"
)

func decodeCrop(t *testing.T, r *CropResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestCrop(t *testing.T) {
	img := diskImage(100, 100, 50, 50, 10, white, black)

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		scale          float64
		wantW, wantH   int
	}{
		{"quarter", 0, 0, 50, 50, 1, 50, 50},
		{"scale up", 0, 0, 50, 50, 2, 100, 100},
		{"scale down", 0, 0, 100, 100, 0.5, 50, 50},
		{"full image", 0, 0, 100, 100, 1, 100, 100},
		{"zero scale keeps size", 10, 10, 30, 40, 0, 20, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
			if result.X != tt.x1 || result.Y != tt.y1 {
				t.Errorf("origin: got (%d,%d), want (%d,%d)", result.X, result.Y, tt.x1, tt.y1)
			}
			if result.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", result.MimeType)
			}
		})
	}
}

func TestCrop_Invalid(t *testing.T) {
	img := solidImage(100, 100, gray)
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"negative", -1, 0, 50, 50},
		{"past right", 50, 0, 101, 50},
		{"inverted", 50, 50, 10, 10},
		{"empty", 10, 10, 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2, 1); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCropAround(t *testing.T) {
	img := diskImage(200, 100, 100, 50, 20, white, black)

	result, err := CropAround(img, 100, 50, 20, 1.5, 1)
	if err != nil {
		t.Fatalf("CropAround failed: %v", err)
	}
	if result.X != 70 || result.Y != 20 || result.Width != 61 || result.Height != 61 {
		t.Errorf("got %dx%d at (%d,%d), want 61x61 at (70,20)", result.Width, result.Height, result.X, result.Y)
	}

	// The disk center is the crop center.
	c := decodeCrop(t, result)
	if r, _, _, _ := c.At(30, 30).RGBA(); r>>8 != 255 {
		t.Errorf("crop center is not on the disk: red=%d", r>>8)
	}
	if r, _, _, _ := c.At(0, 0).RGBA(); r>>8 != 0 {
		t.Errorf("crop corner is not background: red=%d", r>>8)
	}
}

func TestCropAround_ClipsToImage(t *testing.T) {
	img := solidImage(100, 100, gray)

	result, err := CropAround(img, 5, 95, 20, 1, 1)
	if err != nil {
		t.Fatalf("CropAround failed: %v", err)
	}
	if result.X != 0 || result.Y != 75 || result.Width != 26 || result.Height != 25 {
		t.Errorf("got %dx%d at (%d,%d), want 26x25 at (0,75)", result.Width, result.Height, result.X, result.Y)
	}

	if _, err := CropAround(img, 500, 500, 10, 1, 1); err == nil {
		t.Error("expected an error for a crop outside the image")
	}
	if _, err := CropAround(img, 50, 50, 0, 1, 1); err == nil {
		t.Error("expected an error for a zero radius")
	}
}
