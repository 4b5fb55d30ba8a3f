package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
	"github.com/ironsheep/ball-locator-mcp/internal/config"
	"github.com/ironsheep/ball-locator-mcp/internal/detection"
	"github.com/ironsheep/ball-locator-mcp/internal/finder"
	"github.com/ironsheep/ball-locator-mcp/internal/imaging"
	"github.com/ironsheep/ball-locator-mcp/internal/locate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "ball_locate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies defaults, from the detector config where one exists
//  3. Loads images from cache as needed
//  4. Calls the imaging/detection/locate/camera function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Ball Detection
	case "ball_detect_candidates":
		return s.handleBallDetectCandidates(args)
	case "ball_find_contour":
		return s.handleBallFindContour(args)
	case "ball_locate":
		return s.handleBallLocate(args)
	case "ball_crop":
		return s.handleBallCrop(args)

	// Camera Model
	case "camera_project":
		return s.handleCameraProject(args)
	case "camera_view_ray":
		return s.handleCameraViewRay(args)

	// Configuration
	case "detector_config":
		return s.handleDetectorConfig(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// errorStrings splits a joined error into its messages.
func errorStrings(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// === Camera Arguments ===

type cameraArgs struct {
	Camera       *camera.Calibration `json:"camera,omitempty"`
	CameraPath   string              `json:"camera_path,omitempty"`
	CameraParams []float64           `json:"camera_params,omitempty"`
}

// resolve builds the camera for a frame of the given size.
func (a cameraArgs) resolve(width, height int) (*camera.Intrinsics, error) {
	given := 0
	for _, set := range []bool{a.Camera != nil, a.CameraPath != "", a.CameraParams != nil} {
		if set {
			given++
		}
	}
	if given != 1 {
		return nil, errors.New("exactly one of camera, camera_path or camera_params is required")
	}

	var (
		cam *camera.Intrinsics
		err error
	)
	switch {
	case a.CameraParams != nil:
		cam, err = camera.FromParams(a.CameraParams)
	case a.CameraPath != "":
		var cal *camera.Calibration
		if cal, err = camera.LoadCalibration(a.CameraPath); err == nil {
			cam, err = cal.Intrinsics(width, height)
		}
	default:
		cam, err = a.Camera.Intrinsics(width, height)
	}
	if err != nil {
		return nil, err
	}
	return cam, cam.CheckValid()
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageEdgeDetectArgs struct {
	Path       string   `json:"path"`
	KSize      *int     `json:"ksize"`
	Sigma      *float64 `json:"sigma"`
	Threshold1 *float64 `json:"threshold1"`
	Threshold2 *float64 `json:"threshold2"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p := s.current().Config().CannyParams()
	if a.KSize != nil {
		p.KernelSize = *a.KSize
	}
	if a.Sigma != nil {
		p.Sigma = *a.Sigma
	}
	if a.Threshold1 != nil {
		p.Threshold1 = *a.Threshold1
	}
	if a.Threshold2 != nil {
		p.Threshold2 = *a.Threshold2
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, p)
}

// === Ball Detection Handlers ===

type ballDetectCandidatesArgs struct {
	Path  string          `json:"path"`
	Boxes []detection.Box `json:"boxes"`
}

type candidatesResult struct {
	Detector   string             `json:"detector"`
	Candidates []locate.Candidate `json:"candidates"`
	Count      int                `json:"count"`
}

func (s *Server) handleBallDetectCandidates(args json.RawMessage) (interface{}, error) {
	var a ballDetectCandidatesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	f := s.current()
	edges, err := imaging.Canny(img, f.Config().CannyParams())
	if err != nil {
		return nil, err
	}
	cands, detector, err := f.Candidates(edges, a.Boxes)
	if err != nil {
		return nil, err
	}
	return &candidatesResult{Detector: detector, Candidates: cands, Count: len(cands)}, nil
}

type ballFindContourArgs struct {
	Path string  `json:"path"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	R    float64 `json:"r"`
}

type contourResult struct {
	Candidate locate.Candidate `json:"candidate"`
	Points    []locate.Point   `json:"points"`
	Count     int              `json:"count"`
	Valid     bool             `json:"valid"`
}

func (s *Server) handleBallFindContour(args json.RawMessage) (interface{}, error) {
	var a ballFindContourArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c := locate.Candidate{X: a.X, Y: a.Y, R: a.R}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	cfg := s.current().Config()
	opts, err := cfg.LocateOptions()
	if err != nil {
		return nil, err
	}
	edges, err := imaging.Canny(img, cfg.CannyParams())
	if err != nil {
		return nil, err
	}
	contour, err := locate.FindContour(c, edges, opts)
	if err != nil {
		return nil, err
	}

	points := make([]locate.Point, len(contour))
	for i, p := range contour {
		points[i] = locate.PointOf(p)
	}
	return &contourResult{
		Candidate: c,
		Points:    points,
		Count:     len(points),
		Valid:     locate.ValidContour(contour),
	}, nil
}

type ballLocateArgs struct {
	cameraArgs
	Path       string             `json:"path"`
	Radius     float64            `json:"radius"`
	Candidates []locate.Candidate `json:"candidates"`
	Boxes      []detection.Box    `json:"boxes"`
	Overlay    bool               `json:"overlay"`
	Selected   *int               `json:"selected"`
	Base       *int               `json:"base"`
}

type locateResult struct {
	*finder.Result
	Count   int                    `json:"count"`
	Errors  []string               `json:"errors,omitempty"`
	Overlay *imaging.OverlayResult `json:"overlay,omitempty"`
}

func (s *Server) handleBallLocate(args json.RawMessage) (interface{}, error) {
	var a ballLocateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	cam, err := a.resolve(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	res, err := s.current().Find(context.Background(), finder.Request{
		Image:      img,
		Radius:     a.Radius,
		Camera:     cam,
		Boxes:      a.Boxes,
		Candidates: a.Candidates,
	})
	if res == nil {
		return nil, err
	}

	out := &locateResult{Result: res, Count: len(res.Detections), Errors: errorStrings(err)}
	if a.Overlay {
		opts := imaging.DefaultOverlayOptions()
		if a.Selected != nil {
			opts.Selected = *a.Selected
		}
		if a.Base != nil {
			opts.Base = *a.Base
		}
		out.Overlay, err = imaging.Overlay(img, res.Detections, opts)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type ballCropArgs struct {
	Path   string  `json:"path"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	R      float64 `json:"r"`
	Margin float64 `json:"margin"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleBallCrop(args json.RawMessage) (interface{}, error) {
	var a ballCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Margin == 0 {
		a.Margin = 1.5
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.CropAround(img, a.X, a.Y, a.R, a.Margin, a.Scale)
}

// === Camera Model Handlers ===

type cameraProjectArgs struct {
	cameraArgs
	Points [][3]float64 `json:"points"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
}

type projectedPoint struct {
	Point [3]float64    `json:"point"`
	Pixel *locate.Point `json:"pixel,omitempty"`
	Error string        `json:"error,omitempty"`
}

type projectResult struct {
	Pixels []projectedPoint `json:"pixels"`
	Count  int              `json:"count"`
}

func (s *Server) handleCameraProject(args json.RawMessage) (interface{}, error) {
	var a cameraProjectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cam, err := a.resolve(a.Width, a.Height)
	if err != nil {
		return nil, err
	}

	out := make([]projectedPoint, len(a.Points))
	for i, p := range a.Points {
		out[i].Point = p
		q, err := cam.Project(r3.Vec{X: p[0], Y: p[1], Z: p[2]})
		if err != nil {
			out[i].Error = err.Error()
			continue
		}
		px := locate.PointOf(q)
		out[i].Pixel = &px
	}
	return &projectResult{Pixels: out, Count: len(out)}, nil
}

type cameraViewRayArgs struct {
	cameraArgs
	Pixels [][2]float64 `json:"pixels"`
	Check  bool         `json:"check"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
}

type viewRay struct {
	Pixel     [2]float64  `json:"pixel"`
	Direction *[3]float64 `json:"direction,omitempty"`
	Error     string      `json:"error,omitempty"`
}

type viewRayResult struct {
	Rays  []viewRay `json:"rays"`
	Count int       `json:"count"`
}

func (s *Server) handleCameraViewRay(args json.RawMessage) (interface{}, error) {
	var a cameraViewRayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cam, err := a.resolve(a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	opts, err := s.current().Config().LocateOptions()
	if err != nil {
		return nil, err
	}
	inv := opts.Inverse
	inv.CheckConvergence = a.Check

	out := make([]viewRay, len(a.Pixels))
	for i, px := range a.Pixels {
		out[i].Pixel = px
		w, err := cam.ViewRay(r2.Vec{X: px[0], Y: px[1]}, inv)
		if err != nil {
			out[i].Error = err.Error()
			continue
		}
		out[i].Direction = &[3]float64{w.X, w.Y, w.Z}
	}
	return &viewRayResult{Rays: out, Count: len(out)}, nil
}

// === Configuration Handlers ===

type detectorConfigArgs struct {
	Action string          `json:"action"`
	Name   string          `json:"name"`
	Value  json.RawMessage `json:"value"`
}

type configResult struct {
	Config config.Config  `json:"config"`
	Limits []config.Limit `json:"limits"`
	Saved  string         `json:"saved,omitempty"`
}

func (s *Server) handleDetectorConfig(args json.RawMessage) (interface{}, error) {
	var a detectorConfigArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.finder.Config()

	var saved string
	switch strings.ToLower(a.Action) {
	case "", "get":
	case "reset":
		cfg = config.Default()
	case "set":
		next, err := applySetting(cfg, a.Name, a.Value)
		if err != nil {
			return nil, err
		}
		cfg = next
	case "save":
		if s.configPath == "" {
			return nil, errors.New("no config file configured (set BALL_MCP_CONFIG)")
		}
		if err := cfg.Save(s.configPath); err != nil {
			return nil, err
		}
		saved = s.configPath
	default:
		return nil, fmt.Errorf("unknown action %q (want get, set, reset or save)", a.Action)
	}

	f, err := finder.New(cfg)
	if err != nil {
		return nil, err
	}
	s.finder = f
	return &configResult{Config: cfg, Limits: cfg.Limits(), Saved: saved}, nil
}

// applySetting sets one named value: the detector name, a string
// setting of the Locate section, or a numeric tunable.
func applySetting(cfg config.Config, name string, raw json.RawMessage) (config.Config, error) {
	if name == "" {
		return cfg, errors.New("set needs a setting name")
	}
	if len(raw) == 0 {
		return cfg, fmt.Errorf("set %s needs a value", name)
	}

	var str string
	isString := json.Unmarshal(raw, &str) == nil
	switch strings.ToLower(name) {
	case "detector":
		if !isString {
			return cfg, errors.New("detector must be a string")
		}
		d, err := config.ParseDetector(str)
		if err != nil {
			return cfg, err
		}
		cfg.Detector = d
		return cfg, nil
	case "locate.fit", "locate.solver":
		if !isString {
			return cfg, fmt.Errorf("%s must be a string", name)
		}
		if strings.EqualFold(name, "locate.fit") {
			cfg.Locate.Fit = str
		} else {
			cfg.Locate.Solver = str
		}
		return cfg, cfg.Validate()
	case "locate.checkrefinement", "locate.checkviewrays":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return cfg, fmt.Errorf("%s must be a boolean", name)
		}
		if strings.EqualFold(name, "locate.checkrefinement") {
			cfg.Locate.CheckRefinement = b
		} else {
			cfg.Locate.CheckViewRays = b
		}
		return cfg, cfg.Validate()
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return cfg, fmt.Errorf("%s must be a number", name)
	}
	return cfg.With(name, v)
}
