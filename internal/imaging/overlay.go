package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/ball-locator-mcp/internal/locate"
)

// OverlayOptions controls how detections are drawn.
type OverlayOptions struct {
	// Color is the hex color of contours, centers and labels. Default "#ffff00".
	Color string

	// SelectedColor is the hex color of the selected detection. Default "#00ff00".
	SelectedColor string

	// Selected is the index of the highlighted detection, or -1.
	Selected int

	// Base is the index of the detection the labels are relative to, or -1
	// for absolute coordinates. Lines are drawn from the base to the others.
	Base int

	// Labels enables the X/Y/Z coordinate labels.
	Labels bool
}

// DefaultOverlayOptions returns absolute labels with no selection.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{Color: "#ffff00", SelectedColor: "#00ff00", Selected: -1, Base: -1, Labels: true}
}

// OverlayResult contains the annotated image
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Detections  int    `json:"detections"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// LineThickness returns the stroke width for an image of the given height:
// one pixel per 1500 rows, at least 2.
func LineThickness(height int) int {
	t := int(math.Ceil(float64(height) / 1500))
	if t <= 1 {
		return 2
	}
	return t
}

// DrawDetections draws the reprojected contour, the center cross and
// optionally the coordinate labels of every detection onto a copy of img.
//
// Contour points outside the image are dropped before the outline is drawn.
func DrawDetections(img image.Image, dets []locate.Detection, opts OverlayOptions) (*image.RGBA, error) {
	normal, err := parseHexColor(opts.Color, "#ffff00")
	if err != nil {
		return nil, err
	}
	selected, err := parseHexColor(opts.SelectedColor, "#00ff00")
	if err != nil {
		return nil, err
	}
	if opts.Base >= len(dets) {
		return nil, fmt.Errorf("base detection %d out of range (%d detections)", opts.Base, len(dets))
	}

	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	thick := LineThickness(bounds.Dy())

	for i, d := range dets {
		col := normal
		if i == opts.Selected {
			col = selected
		}
		drawPolygon(out, visiblePoints(out.Bounds(), d.Contour2D), thick, col)
		drawCross(out, d.Center2D, 5*thick, thick, normal)
	}

	if opts.Base >= 0 {
		from := dets[opts.Base].Center2D
		for i, d := range dets {
			if i != opts.Base && inside(out.Bounds(), from) && inside(out.Bounds(), d.Center2D) {
				drawLine(out, from, d.Center2D, thick, selected)
			}
		}
	}

	if opts.Labels {
		for i, d := range dets {
			t := d.Target
			if opts.Base >= 0 {
				b := dets[opts.Base].Target
				t = locate.Target{X: t.X - b.X, Y: t.Y - b.Y, Z: t.Z - b.Z, Radius: t.Radius}
			}
			col := normal
			if i == opts.Selected {
				col = selected
			}
			drawTargetLabel(out, d.Contour2D, t, col)
		}
	}
	return out, nil
}

// Overlay draws detections and encodes the result as PNG.
func Overlay(img image.Image, dets []locate.Detection, opts OverlayOptions) (*OverlayResult, error) {
	out, err := DrawDetections(img, dets, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &OverlayResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Detections:  len(dets),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// parseHexColor parses "#RRGGBB", falling back to def for the empty string.
func parseHexColor(hex, def string) (color.RGBA, error) {
	if hex == "" {
		hex = def
	}
	if len(hex) > 0 && hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func inside(r image.Rectangle, p locate.Point) bool {
	return p.X >= float64(r.Min.X) && p.X <= float64(r.Max.X) && p.Y >= float64(r.Min.Y) && p.Y <= float64(r.Max.Y)
}

func visiblePoints(r image.Rectangle, pts []locate.Point) []locate.Point {
	out := make([]locate.Point, 0, len(pts))
	for _, p := range pts {
		if inside(r, p) {
			out = append(out, p)
		}
	}
	return out
}

func drawPolygon(img *image.RGBA, pts []locate.Point, thick int, col color.RGBA) {
	if len(pts) == 0 {
		return
	}
	for i := range pts {
		drawLine(img, pts[i], pts[(i+1)%len(pts)], thick, col)
	}
}

func drawCross(img *image.RGBA, c locate.Point, half, thick int, col color.RGBA) {
	if !inside(img.Bounds(), c) {
		return
	}
	h := float64(half)
	drawLine(img, locate.Point{X: c.X - h, Y: c.Y}, locate.Point{X: c.X + h, Y: c.Y}, thick, col)
	drawLine(img, locate.Point{X: c.X, Y: c.Y - h}, locate.Point{X: c.X, Y: c.Y + h}, thick, col)
}

// drawLine draws a segment with a square brush using Bresenham's algorithm.
func drawLine(img *image.RGBA, a, b locate.Point, thick int, col color.RGBA) {
	x0, y0 := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(b.X)), int(math.Round(b.Y))
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		stamp(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func stamp(img *image.RGBA, x, y, thick int, col color.RGBA) {
	lo := -(thick - 1) / 2
	for dy := lo; dy < lo+thick; dy++ {
		for dx := lo; dx < lo+thick; dx++ {
			if (image.Point{X: x + dx, Y: y + dy}).In(img.Bounds()) {
				img.SetRGBA(x+dx, y+dy, col)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawTargetLabel writes the X/Y/Z lines right of the contour's bounding box.
func drawTargetLabel(img *image.RGBA, contour []locate.Point, t locate.Target, col color.RGBA) {
	if len(contour) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range contour {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	face := basicfont.Face7x13
	lineHeight := int(float64(face.Height) * 1.5)
	x := int(maxX) + 10
	y := int(minY+maxY) / 2

	lines := []string{
		fmt.Sprintf("X: %.2f mm", t.X),
		fmt.Sprintf("Y: %.2f mm", t.Y),
		fmt.Sprintf("Z: %.2f mm", t.Z),
	}
	for j, line := range lines {
		ty := y + j*lineHeight
		if !(image.Point{X: x, Y: ty}).In(img.Bounds()) {
			continue
		}
		// Dark outline first so the label reads on any background.
		for _, o := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			drawText(img, x+o[0], ty+o[1], line, color.Black, face)
		}
		drawText(img, x, ty, line, col, face)
	}
}

func drawText(img *image.RGBA, x, y int, text string, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
