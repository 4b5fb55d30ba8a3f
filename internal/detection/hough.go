package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/ball-locator-mcp/internal/imaging"
	"github.com/ironsheep/ball-locator-mcp/internal/locate"
)

// DilateParams thickens the edge map before voting so that broken ball
// outlines still form closed bands.
type DilateParams struct {
	// Kernel is the side of the square structuring element in pixels.
	Kernel int `json:"kernel"`

	// Iterations is how many times the element is applied. Zero disables dilation.
	Iterations int `json:"iterations"`
}

// Window returns the side of the square that Iterations applications of a
// Kernel×Kernel element add up to, or 1 when dilation is disabled.
func (d DilateParams) Window() int {
	if d.Kernel <= 1 || d.Iterations <= 0 {
		return 1
	}
	return d.Iterations*(d.Kernel-1) + 1
}

// dilate grows the edge pixels of a binary map over d.Window(). An all-ones
// kernel saturates at 255 wherever the window holds an edge, so a row pass
// and a column pass give the same map as a square max filter in linear time
// per pixel.
func dilate(img image.Image, d DilateParams) image.Image {
	n := d.Window()
	if n <= 1 {
		return img
	}
	row := convolution.NewKernel(n, 1)
	col := convolution.NewKernel(1, n)
	for i := 0; i < n; i++ {
		row.Matrix[i] = 1
		col.Matrix[i] = 1
	}
	opts := &convolution.Options{KeepAlpha: true}
	return convolution.Convolve(convolution.Convolve(img, row, opts), col, opts)
}

// HoughParams configures the circle transform used to propose ball candidates.
type HoughParams struct {
	// DP is the inverse ratio of accumulator resolution to image resolution.
	// 1 votes on the pixel grid, 2 on a grid of half the size.
	DP float64 `json:"dp"`

	// MinDist is the minimum distance in pixels between accepted centers.
	MinDist float64 `json:"minDist"`

	// Param1 is the high edge threshold applied to the dilated, inverted
	// edge map; the low threshold is half of it.
	Param1 float64 `json:"param1"`

	// Param2 is the accumulator threshold: centers with fewer votes are dropped.
	Param2 int `json:"param2"`

	// MinRadius and MaxRadius bound the radii searched. MaxRadius <= 0 means
	// the larger image side.
	MinRadius int `json:"minRadius"`
	MaxRadius int `json:"maxRadius"`

	Dilate DilateParams `json:"dilate"`
}

// DefaultHoughParams returns the stock detector settings.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		DP:        1,
		MinDist:   600,
		Param1:    30,
		Param2:    17,
		MinRadius: 50,
		MaxRadius: 200,
		Dilate:    DilateParams{Kernel: 8, Iterations: 3},
	}
}

// Validate rejects unusable parameters.
func (p HoughParams) Validate() error {
	if p.DP < 1 {
		return fmt.Errorf("hough dp must be >= 1, got %g", p.DP)
	}
	if p.MinDist <= 0 {
		return fmt.Errorf("hough minDist must be positive, got %g", p.MinDist)
	}
	if p.Param1 <= 0 {
		return fmt.Errorf("hough param1 must be positive, got %g", p.Param1)
	}
	if p.Param2 < 1 {
		return fmt.Errorf("hough param2 must be >= 1, got %d", p.Param2)
	}
	if p.MinRadius < 0 || p.MaxRadius < 0 {
		return fmt.Errorf("hough radii must not be negative, got %d and %d", p.MinRadius, p.MaxRadius)
	}
	if p.MaxRadius > 0 && p.MaxRadius < p.MinRadius {
		return fmt.Errorf("hough maxRadius %d is below minRadius %d", p.MaxRadius, p.MinRadius)
	}
	if p.Dilate.Kernel < 1 || p.Dilate.Iterations < 0 {
		return fmt.Errorf("invalid dilation kernel %d / iterations %d", p.Dilate.Kernel, p.Dilate.Iterations)
	}
	return nil
}

// Circle is a circle proposed by the Hough transform.
type Circle struct {
	// Center is the sub-pixel center.
	Center locate.Point `json:"center"`

	// Radius is the apparent radius in pixels, estimated from the undilated edges.
	Radius float64 `json:"radius"`

	// Votes is the accumulator count at the center.
	Votes int `json:"votes"`

	// Confidence is the fraction of the circumference 2πr backed by edge
	// pixels at the estimated radius, capped at 1.
	Confidence float64 `json:"confidence"`
}

// Candidate converts the circle into a locator candidate.
func (c Circle) Candidate() locate.Candidate {
	return locate.Candidate{X: c.Center.X, Y: c.Center.Y, R: c.Radius}
}

// CirclesResult contains all circles detected in an edge map.
type CirclesResult struct {
	// Circles is sorted by votes (strongest first).
	Circles []Circle `json:"circles"`

	// Count is the number of circles detected.
	Count int `json:"count"`
}

// Candidates returns the circles as locator candidates, strongest first.
func (r *CirclesResult) Candidates() []locate.Candidate {
	out := make([]locate.Candidate, 0, len(r.Circles))
	for _, c := range r.Circles {
		out = append(out, c.Candidate())
	}
	return out
}

// DetectHough proposes ball candidates from an edge map with a gradient
// Hough circle transform.
//
// # Algorithm
//
//  1. Dilation: edge pixels are grown by p.Dilate so gaps in the outline close
//  2. Inversion: the dilated map is inverted, turning each outline into a dark band
//  3. Boundaries: the band borders are extracted with Canny (Param1, Param1/2)
//  4. Voting: every border pixel votes along both directions of its gradient
//     for radii in [MinRadius, MaxRadius], on an accumulator of resolution DP
//  5. Peaks: local maxima above Param2 are accepted strongest first, skipping
//     any closer than MinDist to an accepted center
//  6. Radius: for each center, the distance histogram of the undilated edge
//     pixels picks the best supported radius
//
// Centers without any supporting edge pixel are dropped. An empty result is
// not an error.
func DetectHough(edges *imaging.EdgeMap, p HoughParams) (*CirclesResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	width, height := edges.Width(), edges.Height()

	inverted := effect.Invert(dilate(edges.Image(), p.Dilate))

	borders, err := imaging.Canny(inverted, imaging.CannyParams{
		KernelSize: 1,
		Threshold1: p.Param1 / 2,
		Threshold2: p.Param1,
	})
	if err != nil {
		return nil, fmt.Errorf("band borders: %w", err)
	}

	minR, maxR := radiusRange(p, width, height)

	// Accumulate votes
	aw := int(math.Ceil(float64(width)/p.DP)) + 1
	ah := int(math.Ceil(float64(height)/p.DP)) + 1
	acc := make([]int, aw*ah)
	gray := grayPlane(inverted)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			if !borders.At(x, y) {
				continue
			}
			gx, gy := sobel(gray, width, x, y)
			norm := math.Hypot(gx, gy)
			if norm == 0 {
				continue
			}
			ux, uy := gx/norm, gy/norm
			for _, sign := range [2]float64{1, -1} {
				for r := minR; r <= maxR; r++ {
					cx := float64(x) + sign*float64(r)*ux
					cy := float64(y) + sign*float64(r)*uy
					ax := int(math.Round(cx / p.DP))
					ay := int(math.Round(cy / p.DP))
					if ax < 0 || ay < 0 || ax >= aw || ay >= ah {
						break
					}
					acc[ay*aw+ax]++
				}
			}
		}
	}

	// Find local maxima in accumulator
	type peak struct {
		x, y  float64
		votes int
	}
	peaks := make([]peak, 0)
	for ay := 0; ay < ah; ay++ {
		for ax := 0; ax < aw; ax++ {
			v := acc[ay*aw+ax]
			if v < p.Param2 || !isPeak(acc, aw, ah, ax, ay) {
				continue
			}
			cx, cy := centroid(acc, aw, ah, ax, ay)
			peaks = append(peaks, peak{x: cx * p.DP, y: cy * p.DP, votes: v})
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	circles := make([]Circle, 0)
	for _, pk := range peaks {
		c := Circle{Center: locate.Point{X: pk.x, Y: pk.y}, Votes: pk.votes}
		if isDuplicate(circles, c, p.MinDist) {
			continue
		}
		radius, support := estimateRadius(edges, pk.x, pk.y, minR, maxR)
		if support == 0 {
			continue
		}
		c.Radius = radius
		c.Confidence = math.Min(float64(support)/(2*math.Pi*radius), 1.0)
		circles = append(circles, c)
	}

	return &CirclesResult{
		Circles: circles,
		Count:   len(circles),
	}, nil
}

func radiusRange(p HoughParams, width, height int) (int, int) {
	minR := p.MinRadius
	if minR < 1 {
		minR = 1
	}
	maxR := p.MaxRadius
	if maxR <= 0 {
		maxR = max(width, height)
	}
	return minR, maxR
}

// grayPlane extracts the red channel of a grayscale RGBA image.
func grayPlane(img *image.RGBA) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			out[y*w+x] = float64(row[4*x])
		}
	}
	return out
}

func sobel(gray []float64, width, x, y int) (gx, gy float64) {
	at := func(dx, dy int) float64 { return gray[(y+dy)*width+x+dx] }
	gx = (at(1, -1) + 2*at(1, 0) + at(1, 1)) - (at(-1, -1) + 2*at(-1, 0) + at(-1, 1))
	gy = (at(-1, 1) + 2*at(0, 1) + at(1, 1)) - (at(-1, -1) + 2*at(0, -1) + at(1, -1))
	return gx, gy
}

// isPeak reports whether cell (x, y) is a local maximum of its 8-neighborhood.
// Ties are broken towards the first cell in scan order.
func isPeak(acc []int, w, h, x, y int) bool {
	v := acc[y*w+x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			n := acc[ny*w+nx]
			if n > v || (n == v && (dy < 0 || (dy == 0 && dx < 0))) {
				return false
			}
		}
	}
	return true
}

// centroid returns the vote-weighted center of the 3x3 cells around (x, y).
func centroid(acc []int, w, h, x, y int) (float64, float64) {
	var sx, sy, sum float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			v := float64(acc[ny*w+nx])
			sx += v * float64(nx)
			sy += v * float64(ny)
			sum += v
		}
	}
	return sx / sum, sy / sum
}

// isDuplicate reports whether c lies within minDist of an accepted circle.
func isDuplicate(accepted []Circle, c Circle, minDist float64) bool {
	for _, f := range accepted {
		dx := c.Center.X - f.Center.X
		dy := c.Center.Y - f.Center.Y
		if math.Hypot(dx, dy) < minDist {
			return true
		}
	}
	return false
}

// estimateRadius builds a 1-pixel histogram of distances from (cx, cy) to
// the edge pixels within [minR, maxR] and returns the mean distance of the
// best three-bin window together with its pixel count.
func estimateRadius(edges *imaging.EdgeMap, cx, cy float64, minR, maxR int) (float64, int) {
	hist := make([]int, maxR+2)
	sums := make([]float64, maxR+2)

	x0 := max(int(math.Floor(cx))-maxR-1, 0)
	x1 := min(int(math.Ceil(cx))+maxR+1, edges.Width()-1)
	y0 := max(int(math.Floor(cy))-maxR-1, 0)
	y1 := min(int(math.Ceil(cy))+maxR+1, edges.Height()-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !edges.At(x, y) {
				continue
			}
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d < float64(minR) || d > float64(maxR) {
				continue
			}
			bin := int(math.Round(d))
			hist[bin]++
			sums[bin] += d
		}
	}

	best, bestCount := -1, 0
	for b := minR; b <= maxR; b++ {
		n := hist[b-1] + hist[b] + hist[b+1]
		if n > bestCount {
			best, bestCount = b, n
		}
	}
	if best < 0 {
		return 0, 0
	}
	sum := sums[best-1] + sums[best] + sums[best+1]
	return sum / float64(bestCount), bestCount
}
