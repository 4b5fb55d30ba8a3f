// Package finder runs the whole frame pipeline: edge map, candidate
// proposal, and 3D localization of every candidate.
package finder

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
	"github.com/ironsheep/ball-locator-mcp/internal/config"
	"github.com/ironsheep/ball-locator-mcp/internal/detection"
	"github.com/ironsheep/ball-locator-mcp/internal/imaging"
	"github.com/ironsheep/ball-locator-mcp/internal/locate"
)

// Request describes one frame to search.
type Request struct {
	// Image is the camera frame.
	Image image.Image

	// Radius is the physical ball radius, in the units of the result.
	Radius float64

	// Camera is the calibrated camera that took the frame.
	Camera *camera.Intrinsics

	// Boxes feed the BOXES detector. Ignored by HOUGH.
	Boxes []detection.Box

	// Candidates, when non-empty, skip candidate detection entirely.
	Candidates []locate.Candidate
}

// Result is the outcome for one frame.
type Result struct {
	// Detections are in candidate order.
	Detections []locate.Detection `json:"detections"`

	// Candidates are the circles the locator was given.
	Candidates []locate.Candidate `json:"candidates"`

	// Detector names the candidate source used.
	Detector string `json:"detector"`

	// Edges is the frame's edge map.
	Edges *imaging.EdgeMap `json:"-"`
}

// Finder holds one validated configuration. It is safe for concurrent use.
type Finder struct {
	cfg  config.Config
	opts locate.Options
}

// New validates cfg and returns a Finder for it.
func New(cfg config.Config) (*Finder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.LocateOptions()
	if err != nil {
		return nil, err
	}
	return &Finder{cfg: cfg, opts: opts}, nil
}

// Config returns the configuration the Finder was built with.
func (f *Finder) Config() config.Config { return f.cfg }

// Candidates proposes circles for an edge map with the configured detector.
func (f *Finder) Candidates(edges *imaging.EdgeMap, boxes []detection.Box) ([]locate.Candidate, string, error) {
	detector, err := config.ParseDetector(f.cfg.Detector)
	if err != nil {
		return nil, "", err
	}
	if detector == config.DetectorBoxes {
		return detection.FromBoxes(boxes, f.cfg.BoxFilter()), detector, nil
	}
	circles, err := detection.DetectHough(edges, f.cfg.HoughParams())
	if err != nil {
		return nil, detector, fmt.Errorf("hough: %w", err)
	}
	return circles.Candidates(), detector, nil
}

// Find locates every ball in the frame.
//
// Candidate failures do not fail the frame: the returned Result holds all
// detections that succeeded and the error joins the failures (see
// locate.Locator.Locate). A panic anywhere in the frame is recovered and
// returned as an error with a nil Result.
func (f *Finder) Find(ctx context.Context, req Request) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			locate.Logf("[Finder] frame failed: %v", r)
			res, err = nil, fmt.Errorf("find balls: panic: %v", r)
		}
	}()

	if req.Image == nil {
		return nil, errors.New("find balls: no image")
	}
	if req.Camera == nil {
		return nil, errors.New("find balls: no camera")
	}
	if !(req.Radius > 0) {
		return nil, fmt.Errorf("find balls: ball radius must be positive, got %g", req.Radius)
	}

	edges, err := imaging.Canny(req.Image, f.cfg.CannyParams())
	if err != nil {
		return nil, fmt.Errorf("find balls: edges: %w", err)
	}

	res = &Result{Edges: edges, Candidates: req.Candidates, Detector: "explicit"}
	if len(req.Candidates) == 0 {
		res.Candidates, res.Detector, err = f.Candidates(edges, req.Boxes)
		if err != nil {
			return nil, fmt.Errorf("find balls: candidates: %w", err)
		}
	}

	loc, err := locate.New(req.Camera, f.opts)
	if err != nil {
		return nil, fmt.Errorf("find balls: %w", err)
	}
	res.Detections, err = loc.Locate(ctx, edges, req.Radius, res.Candidates)
	if res.Detections == nil {
		res.Detections = []locate.Detection{}
	}
	if res.Candidates == nil {
		res.Candidates = []locate.Candidate{}
	}
	return res, err
}

// FindBalls locates every ball in img with the configured detector.
func (f *Finder) FindBalls(ctx context.Context, img image.Image, radius float64, cam *camera.Intrinsics) (*Result, error) {
	return f.Find(ctx, Request{Image: img, Radius: radius, Camera: cam})
}
