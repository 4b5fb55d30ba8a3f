package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/ball-locator-mcp/internal/fault"
)

// CannyParams configures edge map construction.
type CannyParams struct {
	// KernelSize is the Gaussian kernel size. It must be odd; 1 disables the blur.
	KernelSize int `json:"ksize"`

	// Sigma is the Gaussian standard deviation. Zero derives it from KernelSize
	// as 0.3·((KernelSize−1)·0.5 − 1) + 0.8.
	Sigma float64 `json:"sigma"`

	// Threshold1 and Threshold2 are the hysteresis thresholds on the L1
	// gradient magnitude of the 8-bit grayscale image. Their order does not
	// matter; the smaller is the low threshold.
	Threshold1 float64 `json:"threshold1"`
	Threshold2 float64 `json:"threshold2"`
}

// DefaultCannyParams returns the stock edge settings.
func DefaultCannyParams() CannyParams {
	return CannyParams{KernelSize: 5, Threshold1: 125, Threshold2: 96}
}

// Validate rejects unusable parameters.
func (p CannyParams) Validate() error {
	if p.KernelSize < 1 || p.KernelSize%2 == 0 {
		return fmt.Errorf("gaussian kernel size must be a positive odd number, got %d", p.KernelSize)
	}
	if p.Sigma < 0 {
		return fmt.Errorf("gaussian sigma must not be negative, got %g", p.Sigma)
	}
	if p.Threshold1 < 0 || p.Threshold2 < 0 {
		return fmt.Errorf("canny thresholds must not be negative, got %g and %g", p.Threshold1, p.Threshold2)
	}
	return nil
}

// BlurSigma returns the effective Gaussian standard deviation.
func (p CannyParams) BlurSigma() float64 {
	if p.Sigma > 0 {
		return p.Sigma
	}
	return 0.3*((float64(p.KernelSize)-1)*0.5-1) + 0.8
}

// EdgeMap is a binary edge image. It answers nearest-pixel queries over
// [0, Width−1] × [0, Height−1] and fails outside, so it can be sampled
// along rays that leave the image.
type EdgeMap struct {
	img *image.Gray
}

// NewEdgeMap wraps a binary image; any non-zero pixel is an edge.
func NewEdgeMap(img *image.Gray) *EdgeMap {
	return &EdgeMap{img: img}
}

// Width returns the map width in pixels.
func (m *EdgeMap) Width() int { return m.img.Bounds().Dx() }

// Height returns the map height in pixels.
func (m *EdgeMap) Height() int { return m.img.Bounds().Dy() }

// Image returns the edge image; edges are 255.
func (m *EdgeMap) Image() *image.Gray { return m.img }

// At reports whether pixel (x, y) is an edge. Pixels outside are not.
func (m *EdgeMap) At(x, y int) bool {
	b := m.img.Bounds()
	if x < 0 || y < 0 || x >= b.Dx() || y >= b.Dy() {
		return false
	}
	return m.img.GrayAt(b.Min.X+x, b.Min.Y+y).Y != 0
}

// Edge reports whether the pixel nearest to (x, y) is an edge. Coordinates
// outside the pixel grid fail with fault.ErrOutOfBounds.
func (m *EdgeMap) Edge(x, y float64) (bool, error) {
	maxX, maxY := float64(m.Width()-1), float64(m.Height()-1)
	if !(x >= 0 && x <= maxX && y >= 0 && y <= maxY) {
		return false, fmt.Errorf("%w: (%g, %g) outside [0, %g]×[0, %g]", fault.ErrOutOfBounds, x, y, maxX, maxY)
	}
	return m.At(int(math.Round(x)), int(math.Round(y))), nil
}

// Count returns the number of edge pixels.
func (m *EdgeMap) Count() int {
	n := 0
	for _, v := range m.img.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// EdgeDetectResult contains an edge map encoded as base64 PNG.
//
// The image is grayscale with edges marked in white (255).
type EdgeDetectResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	EdgePixels  int    `json:"edge_pixels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode renders the edge map as a PNG result.
func (m *EdgeMap) Encode() (*EdgeDetectResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.img); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}
	return &EdgeDetectResult{
		Width:       m.Width(),
		Height:      m.Height(),
		EdgePixels:  m.Count(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EdgeDetect builds the edge map of img and encodes it.
func EdgeDetect(img image.Image, p CannyParams) (*EdgeDetectResult, error) {
	m, err := Canny(img, p)
	if err != nil {
		return nil, err
	}
	return m.Encode()
}

// Canny builds the binary edge map of an image.
//
// # Algorithm
//
//  1. Grayscale conversion (ITU-R BT.601 luminance, 0-255 scale)
//
//  2. Gaussian blur with the kernel's sigma (see CannyParams.BlurSigma)
//
//  3. Sobel gradients; magnitude |Gx| + |Gy|
//
//  4. Non-maximum suppression along the gradient direction quantized to
//     0°, 45°, 90° and 135°
//
//  5. Hysteresis: pixels at or above the high threshold seed edges, which
//     grow through 8-connected pixels at or above the low threshold
//
// Border pixels are never edges.
func Canny(img image.Image, p CannyParams) (*EdgeMap, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("image too small for edge detection: %dx%d", width, height)
	}

	src := imaging.Grayscale(img)
	if p.KernelSize > 1 {
		src = imaging.Blur(src, p.BlurSigma())
	}

	gray := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < width; x++ {
			gray[y*width+x] = float64(row[4*x])
		}
	}

	// Gradients, interior pixels only.
	mag := make([]float64, width*height)
	dir := make([]uint8, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			at := func(dx, dy int) float64 { return gray[(y+dy)*width+x+dx] }
			gx := (at(1, -1) + 2*at(1, 0) + at(1, 1)) - (at(-1, -1) + 2*at(-1, 0) + at(-1, 1))
			gy := (at(-1, 1) + 2*at(0, 1) + at(1, 1)) - (at(-1, -1) + 2*at(0, -1) + at(1, -1))
			i := y*width + x
			mag[i] = math.Abs(gx) + math.Abs(gy)
			dir[i] = quantizeDirection(gx, gy)
		}
	}

	// Non-maximum suppression
	thin := make([]float64, width*height)
	offsets := [4][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}}
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			if mag[i] == 0 {
				continue
			}
			o := offsets[dir[i]]
			n1 := mag[(y+o[1])*width+x+o[0]]
			n2 := mag[(y-o[1])*width+x-o[0]]
			if mag[i] > n1 && mag[i] >= n2 {
				thin[i] = mag[i]
			}
		}
	}

	low, high := math.Min(p.Threshold1, p.Threshold2), math.Max(p.Threshold1, p.Threshold2)
	out := image.NewGray(image.Rect(0, 0, width, height))
	stack := make([]int, 0, 1024)
	for i, v := range thin {
		if v >= high && v > 0 {
			out.Pix[i] = 255
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if out.Pix[j] == 0 && thin[j] >= low && thin[j] > 0 {
					out.Pix[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}

	return NewEdgeMap(out), nil
}

// quantizeDirection maps a gradient to the index of the neighbor offset
// along it: 0 horizontal, 1 diagonal down-right, 2 vertical, 3 diagonal
// down-left.
func quantizeDirection(gx, gy float64) uint8 {
	angle := math.Atan2(gy, gx) * 180 / math.Pi
	if angle < 0 {
		angle += 180
	}
	switch {
	case angle < 22.5 || angle >= 157.5:
		return 0
	case angle < 67.5:
		return 1
	case angle < 112.5:
		return 2
	default:
		return 3
	}
}
