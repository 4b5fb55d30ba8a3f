package detection

import (
	"math"

	"github.com/ironsheep/ball-locator-mcp/internal/locate"
)

// SportsBallClass is the COCO class id of "sports ball", the class learned
// detectors report balls under.
const SportsBallClass = 32

// Box is an axis-aligned detection box reported by an external object
// detector, in pixel coordinates.
type Box struct {
	X1 float64 `json:"x1"` // Left edge
	Y1 float64 `json:"y1"` // Top edge
	X2 float64 `json:"x2"` // Right edge
	Y2 float64 `json:"y2"` // Bottom edge

	// Confidence is the detector score in [0, 1].
	Confidence float64 `json:"confidence"`

	// Class is the detector class id.
	Class int `json:"class"`
}

// BoxFilter selects which boxes become candidates.
type BoxFilter struct {
	// MinConfidence drops boxes scoring below it.
	MinConfidence float64 `json:"minConfidence"`

	// ClassID keeps only boxes of this class. A negative value keeps every class.
	ClassID int `json:"classId"`
}

// DefaultBoxFilter keeps sports balls with confidence of at least 0.1.
func DefaultBoxFilter() BoxFilter {
	return BoxFilter{MinConfidence: 0.1, ClassID: SportsBallClass}
}

// Candidate converts the box into a circle guess: its center, and a radius
// of half the mean side length.
func (b Box) Candidate() locate.Candidate {
	xa, xb := math.Min(b.X1, b.X2), math.Max(b.X1, b.X2)
	ya, yb := math.Min(b.Y1, b.Y2), math.Max(b.Y1, b.Y2)
	return locate.Candidate{
		X: 0.5 * (xa + xb),
		Y: 0.5 * (ya + yb),
		R: 0.25 * ((xb - xa) + (yb - ya)),
	}
}

// FromBoxes turns detector boxes into locator candidates, keeping input
// order. Boxes rejected by the filter or with zero extent are skipped.
func FromBoxes(boxes []Box, f BoxFilter) []locate.Candidate {
	cands := make([]locate.Candidate, 0, len(boxes))
	for _, b := range boxes {
		if b.Confidence < f.MinConfidence {
			continue
		}
		if f.ClassID >= 0 && b.Class != f.ClassID {
			continue
		}
		c := b.Candidate()
		if c.R <= 0 {
			continue
		}
		cands = append(cands, c)
	}
	return cands
}
