package locate

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
)

// BuildCone inverse projects the candidate center and every contour point.
// All rays start at the camera center; the order of contour is kept.
func BuildCone(cam *camera.Intrinsics, c Candidate, contour []r2.Vec, inv camera.InverseOptions) (Cone, error) {
	cone := make(Cone, 0, len(contour)+1)

	dir, err := cam.ViewRay(c.Center(), inv)
	if err != nil {
		return nil, fmt.Errorf("center ray: %w", err)
	}
	cone = append(cone, ViewRay{Direction: dir})

	for i, q := range contour {
		dir, err := cam.ViewRay(q, inv)
		if err != nil {
			return nil, fmt.Errorf("contour ray %d: %w", i, err)
		}
		cone = append(cone, ViewRay{Direction: dir})
	}
	return cone, nil
}
