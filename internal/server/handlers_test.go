package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/ball-locator-mcp/internal/camera"
	"github.com/ironsheep/ball-locator-mcp/internal/config"
	"github.com/ironsheep/ball-locator-mcp/internal/imaging"
)

var (
	testCamera = camera.Pinhole(500, 500, 200, 150)
	testBall   = r3.Vec{X: 30, Y: -20, Z: 500}
)

const testRadius = 40.0

func testCameraParams() []float64 {
	return testCamera.Params()
}

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writePNG(t, img)
}

// createBallImageFile renders testBall as seen by testCamera, white on black.
func createBallImageFile(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			d := r3.Unit(testCamera.PinholeInverse(r2.Vec{X: float64(x), Y: float64(y)}))
			along := r3.Dot(testBall, d)
			if along > 0 && r3.Norm(r3.Sub(testBall, r3.Scale(along, d))) <= testRadius {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return writePNG(t, img)
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return f.Name()
}

// newTestServer returns a server whose Hough settings find testBall.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.HoughCircles.MinDist = 50
	cfg.HoughCircles.MinRadius = 10
	cfg.HoughCircles.MaxRadius = 80
	s, err := NewWithConfig(cfg, filepath.Join(t.TempDir(), "detector.json"))
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	return s
}

func toolRequest(t *testing.T, name string, args map[string]interface{}) *MCPRequest {
	t.Helper()
	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	return &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: paramsJSON}
}

// callTool runs a tool through tools/call and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) {
	t.Helper()

	resp := s.handleToolsCall(toolRequest(t, name, args))
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error: %+v", name, resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("%s: result should be a map", name)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("%s: expected one content item, got %v", name, result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("%s: content type: got %v, want text", name, content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("%s: invalid result JSON: %v", name, err)
	}
}

// callToolError runs a tool that must fail and returns the error data.
func callToolError(t *testing.T, s *Server, name string, args map[string]interface{}) string {
	t.Helper()

	resp := s.handleToolsCall(toolRequest(t, name, args))
	if resp.Error == nil {
		t.Fatalf("%s: expected error, got %+v", name, resp.Result)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("%s: error code: got %d, want -32000", name, resp.Error.Code)
	}
	data, _ := resp.Error.Data.(string)
	return data
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}, &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("Expected 100x80, got %dx%d", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Expected png format, got %s", info.Format)
	}
	if s.cache.Len() != 1 {
		t.Errorf("Expected the image to be cached, cache has %d", s.cache.Len())
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 200, 150, color.RGBA{0, 255, 0, 255})

	var dims imaging.DimensionsResult
	callTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}, &dims)

	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("Expected 200x150, got %dx%d", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New()
	data := callToolError(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"})
	if data == "" {
		t.Error("Expected error details")
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New()
	data := callToolError(t, s, "nonexistent_tool", map[string]interface{}{})
	if !strings.Contains(data, "unknown tool") {
		t.Errorf("Expected unknown tool error, got %q", data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name": 42}`),
	}

	resp := s.handleToolsCall(req)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("Expected invalid params error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_InvalidArguments(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name": "ball_crop", "arguments": {"path": 7}}`),
	}

	resp := s.handleToolsCall(req)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("Expected tool failure, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBallImageFile(t)

	var res imaging.EdgeDetectResult
	callTool(t, s, "image_edge_detect", map[string]interface{}{"path": imgPath}, &res)
	if res.Width != 400 || res.Height != 300 {
		t.Errorf("Expected 400x300, got %dx%d", res.Width, res.Height)
	}
	if res.EdgePixels == 0 {
		t.Error("Expected edge pixels around the ball")
	}
	if res.MimeType != "image/png" || res.ImageBase64 == "" {
		t.Errorf("Expected encoded PNG, got %q", res.MimeType)
	}

	// Thresholds above any gradient leave no edges
	var none imaging.EdgeDetectResult
	callTool(t, s, "image_edge_detect", map[string]interface{}{
		"path":       imgPath,
		"threshold1": 5000,
		"threshold2": 5000,
	}, &none)
	if none.EdgePixels != 0 {
		t.Errorf("Expected no edges with huge thresholds, got %d", none.EdgePixels)
	}

	data := callToolError(t, s, "image_edge_detect", map[string]interface{}{"path": imgPath, "ksize": 4})
	if data == "" {
		t.Error("Expected error details for an even kernel size")
	}
}

func TestHandleToolsCall_DetectCandidates(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBallImageFile(t)

	var res candidatesResult
	callTool(t, s, "ball_detect_candidates", map[string]interface{}{"path": imgPath}, &res)
	if res.Detector != config.DetectorHough {
		t.Errorf("Expected HOUGH detector, got %s", res.Detector)
	}
	if res.Count != 1 || len(res.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", res.Count)
	}
	c := res.Candidates[0]
	if math.Hypot(c.X-170, c.Y-170) > 3 {
		t.Errorf("Expected candidate near (170, 170), got (%.1f, %.1f)", c.X, c.Y)
	}
}

func TestHandleToolsCall_DetectCandidatesBoxes(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBallImageFile(t)

	var cfg configResult
	callTool(t, s, "detector_config", map[string]interface{}{"action": "set", "name": "Detector", "value": "YOLO"}, &cfg)
	if cfg.Config.Detector != config.DetectorBoxes {
		t.Fatalf("Expected BOXES detector, got %s", cfg.Config.Detector)
	}

	var res candidatesResult
	callTool(t, s, "ball_detect_candidates", map[string]interface{}{
		"path": imgPath,
		"boxes": []map[string]interface{}{
			{"x1": 130, "y1": 130, "x2": 210, "y2": 210, "confidence": 0.8, "class": 32},
			{"x1": 10, "y1": 10, "x2": 50, "y2": 50, "confidence": 0.05, "class": 32},
		},
	}, &res)
	if res.Detector != config.DetectorBoxes {
		t.Errorf("Expected BOXES detector, got %s", res.Detector)
	}
	if res.Count != 1 {
		t.Fatalf("Expected the low-confidence box to be filtered, got %d candidates", res.Count)
	}
	if c := res.Candidates[0]; c.X != 170 || c.Y != 170 || c.R != 40 {
		t.Errorf("Expected candidate (170, 170, 40), got %+v", c)
	}
}

func TestHandleToolsCall_FindContour(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBallImageFile(t)

	var res contourResult
	callTool(t, s, "ball_find_contour", map[string]interface{}{
		"path": imgPath, "x": 170, "y": 170, "r": 40,
	}, &res)
	if !res.Valid {
		t.Fatalf("Expected a valid contour, got %d points", res.Count)
	}
	if res.Count != len(res.Points) {
		t.Errorf("Count %d does not match %d points", res.Count, len(res.Points))
	}
	for _, p := range res.Points {
		d := math.Hypot(p.X-170, p.Y-170)
		if d < 30 || d > 50 {
			t.Errorf("Contour point (%.1f, %.1f) is %.1f px from the center", p.X, p.Y, d)
		}
	}

	data := callToolError(t, s, "ball_find_contour", map[string]interface{}{
		"path": imgPath, "x": 170, "y": 170, "r": 0,
	})
	if data == "" {
		t.Error("Expected error details for a zero radius")
	}
}

func TestHandleToolsCall_Locate(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBallImageFile(t)

	var res struct {
		Detections []struct {
			Target struct {
				X, Y, Z, Radius float64
			} `json:"target"`
		} `json:"detections"`
		Detector string                 `json:"detector"`
		Count    int                    `json:"count"`
		Errors   []string               `json:"errors"`
		Overlay  *imaging.OverlayResult `json:"overlay"`
	}
	callTool(t, s, "ball_locate", map[string]interface{}{
		"path":          imgPath,
		"radius":        testRadius,
		"camera_params": testCameraParams(),
		"overlay":       true,
		"selected":      0,
	}, &res)

	if res.Count != 1 || len(res.Detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", res.Count)
	}
	got := res.Detections[0].Target
	if math.Abs(got.X-testBall.X) > 3 || math.Abs(got.Y-testBall.Y) > 3 || math.Abs(got.Z-testBall.Z) > 15 {
		t.Errorf("Expected target near %v, got (%.2f, %.2f, %.2f)", testBall, got.X, got.Y, got.Z)
	}
	if got.Radius != testRadius {
		t.Errorf("Expected radius %g, got %g", testRadius, got.Radius)
	}
	if res.Overlay == nil {
		t.Fatal("Expected an overlay")
	}
	if res.Overlay.Detections != 1 || res.Overlay.Width != 400 || res.Overlay.ImageBase64 == "" {
		t.Errorf("Unexpected overlay %+v", *res.Overlay)
	}
}

func TestHandleToolsCall_LocateExplicitCandidates(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBallImageFile(t)

	calPath := filepath.Join(t.TempDir(), "camera.json")
	doc, err := camera.MarshalCalibration(testCamera)
	if err != nil {
		t.Fatalf("MarshalCalibration failed: %v", err)
	}
	if err := os.WriteFile(calPath, doc, 0o644); err != nil {
		t.Fatalf("failed to write calibration: %v", err)
	}

	var res struct {
		Detector   string        `json:"detector"`
		Candidates []interface{} `json:"candidates"`
		Count      int           `json:"count"`
		Overlay    interface{}   `json:"overlay"`
	}
	callTool(t, s, "ball_locate", map[string]interface{}{
		"path":        imgPath,
		"radius":      testRadius,
		"camera_path": calPath,
		"candidates": []map[string]interface{}{
			{"x": 171, "y": 169, "r": 39},
			{"x": 330, "y": 60, "r": 20},
		},
	}, &res)

	if res.Detector != "explicit" {
		t.Errorf("Expected explicit detector, got %s", res.Detector)
	}
	if len(res.Candidates) != 2 {
		t.Errorf("Expected 2 candidates echoed, got %d", len(res.Candidates))
	}
	if res.Count != 1 {
		t.Errorf("Expected the empty candidate to be dropped, got %d detections", res.Count)
	}
	if res.Overlay != nil {
		t.Error("Expected no overlay unless asked")
	}
}

func TestHandleToolsCall_LocateCameraRequired(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBallImageFile(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no camera", map[string]interface{}{"path": imgPath, "radius": testRadius}},
		{"two cameras", map[string]interface{}{
			"path": imgPath, "radius": testRadius,
			"camera_params": testCameraParams(), "camera_path": "/tmp/camera.json",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := callToolError(t, s, "ball_locate", tt.args)
			if !strings.Contains(data, "exactly one of camera") {
				t.Errorf("Expected camera selection error, got %q", data)
			}
		})
	}

	data := callToolError(t, s, "ball_locate", map[string]interface{}{
		"path": imgPath, "radius": testRadius, "camera_params": []float64{500, 500},
	})
	if !strings.Contains(data, "18") {
		t.Errorf("Expected parameter count error, got %q", data)
	}

	data = callToolError(t, s, "ball_locate", map[string]interface{}{
		"path": imgPath, "radius": -1, "camera_params": testCameraParams(),
	})
	if !strings.Contains(data, "radius") {
		t.Errorf("Expected radius error, got %q", data)
	}
}

func TestHandleToolsCall_BallCrop(t *testing.T) {
	s := New()
	imgPath := createBallImageFile(t)

	var res imaging.CropResult
	callTool(t, s, "ball_crop", map[string]interface{}{"path": imgPath, "x": 170, "y": 170, "r": 40}, &res)
	if res.Width != 121 || res.Height != 121 {
		t.Errorf("Expected 121x121 crop with the default margin, got %dx%d", res.Width, res.Height)
	}
	if res.X != 110 || res.Y != 110 {
		t.Errorf("Expected crop origin (110, 110), got (%d, %d)", res.X, res.Y)
	}

	var scaled imaging.CropResult
	callTool(t, s, "ball_crop", map[string]interface{}{
		"path": imgPath, "x": 170, "y": 170, "r": 40, "margin": 1, "scale": 2,
	}, &scaled)
	if scaled.Width != 162 || scaled.Height != 162 {
		t.Errorf("Expected 162x162 scaled crop, got %dx%d", scaled.Width, scaled.Height)
	}
}

func TestHandleToolsCall_CameraProject(t *testing.T) {
	s := New()

	var res projectResult
	callTool(t, s, "camera_project", map[string]interface{}{
		"camera_params": testCameraParams(),
		"points":        [][3]float64{{30, -20, 500}, {0, 0, 1}, {1, 1, 0}},
	}, &res)

	if res.Count != 3 {
		t.Fatalf("Expected 3 results, got %d", res.Count)
	}
	if p := res.Pixels[0].Pixel; p == nil || math.Abs(p.X-170) > 1e-9 || math.Abs(p.Y-170) > 1e-9 {
		t.Errorf("Expected (170, 170), got %+v", res.Pixels[0])
	}
	if p := res.Pixels[1].Pixel; p == nil || p.X != 200 || p.Y != 150 {
		t.Errorf("Expected the principal point, got %+v", res.Pixels[1])
	}
	if res.Pixels[2].Pixel != nil || res.Pixels[2].Error == "" {
		t.Errorf("Expected a per-point error on the camera plane, got %+v", res.Pixels[2])
	}
}

func TestHandleToolsCall_CameraViewRay(t *testing.T) {
	s := New()
	cal := map[string]interface{}{
		"intrinsics": map[string]interface{}{
			"camera_matrix":           [][]float64{{500, 0, 200}, {0, 500, 150}, {0, 0, 1}},
			"distortion_coefficients": []float64{0.1, -0.05, 0.001, 0.002, 0.01},
		},
	}

	var res viewRayResult
	callTool(t, s, "camera_view_ray", map[string]interface{}{
		"camera": cal,
		"pixels": [][2]float64{{170, 170}, {200, 150}, {20, 280}},
		"check":  true,
	}, &res)

	if res.Count != 3 {
		t.Fatalf("Expected 3 rays, got %d", res.Count)
	}
	cam, err := camera.NewIntrinsics(
		[3][3]float64{{500, 0, 200}, {0, 500, 150}, {0, 0, 1}},
		[]float64{0.1, -0.05, 0.001, 0.002, 0.01},
	)
	if err != nil {
		t.Fatalf("NewIntrinsics failed: %v", err)
	}
	for _, ray := range res.Rays {
		if ray.Direction == nil {
			t.Errorf("Pixel %v: unexpected error %s", ray.Pixel, ray.Error)
			continue
		}
		if ray.Direction[2] != 1 {
			t.Errorf("Pixel %v: expected z = 1, got %g", ray.Pixel, ray.Direction[2])
		}
		q, err := cam.Project(r3.Vec{X: ray.Direction[0], Y: ray.Direction[1], Z: ray.Direction[2]})
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if math.Hypot(q.X-ray.Pixel[0], q.Y-ray.Pixel[1]) > 1e-3 {
			t.Errorf("Pixel %v reprojects to (%.4f, %.4f)", ray.Pixel, q.X, q.Y)
		}
	}
}

func TestHandleToolsCall_DetectorConfig(t *testing.T) {
	s := newTestServer(t)

	var got configResult
	callTool(t, s, "detector_config", map[string]interface{}{}, &got)
	if got.Config.HoughCircles.Param2 != 17 {
		t.Errorf("Expected param2 17, got %d", got.Config.HoughCircles.Param2)
	}
	if len(got.Limits) == 0 {
		t.Error("Expected limits")
	}

	var set configResult
	callTool(t, s, "detector_config", map[string]interface{}{
		"action": "set", "name": "HoughCircles.param2", "value": 25,
	}, &set)
	if set.Config.HoughCircles.Param2 != 25 {
		t.Errorf("Expected param2 25, got %d", set.Config.HoughCircles.Param2)
	}
	if s.current().Config().HoughCircles.Param2 != 25 {
		t.Error("Expected the finder to pick up the new setting")
	}

	var solver configResult
	callTool(t, s, "detector_config", map[string]interface{}{
		"action": "set", "name": "Locate.solver", "value": config.SolverNelderMead,
	}, &solver)
	if solver.Config.Locate.Solver != config.SolverNelderMead {
		t.Errorf("Expected nelder-mead solver, got %s", solver.Config.Locate.Solver)
	}

	var saved configResult
	callTool(t, s, "detector_config", map[string]interface{}{"action": "save"}, &saved)
	if saved.Saved != s.configPath {
		t.Errorf("Expected save to %s, got %q", s.configPath, saved.Saved)
	}
	loaded, err := config.Load(s.configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.HoughCircles.Param2 != 25 || loaded.Locate.Solver != config.SolverNelderMead {
		t.Errorf("Saved config lost settings: %+v", loaded)
	}

	var reset configResult
	callTool(t, s, "detector_config", map[string]interface{}{"action": "reset"}, &reset)
	if reset.Config.HoughCircles.Param2 != 17 || reset.Config.HoughCircles.MinRadius != 50 {
		t.Errorf("Expected stock defaults after reset, got %+v", reset.Config.HoughCircles)
	}
}

func TestHandleToolsCall_DetectorConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"unknown action", map[string]interface{}{"action": "explode"}, "unknown action"},
		{"missing name", map[string]interface{}{"action": "set", "value": 1}, "name"},
		{"missing value", map[string]interface{}{"action": "set", "name": "HoughCircles.param2"}, "value"},
		{"out of range", map[string]interface{}{"action": "set", "name": "HoughCircles.param2", "value": 500}, "param2"},
		{"unknown setting", map[string]interface{}{"action": "set", "name": "Hough.votes", "value": 3}, "Hough.votes"},
		{"bad detector", map[string]interface{}{"action": "set", "name": "Detector", "value": "SSD"}, "SSD"},
		{"detector number", map[string]interface{}{"action": "set", "name": "Detector", "value": 3}, "string"},
		{"bool as number", map[string]interface{}{"action": "set", "name": "Locate.checkViewRays", "value": 1}, "boolean"},
		{"number as string", map[string]interface{}{"action": "set", "name": "Canny.threshold1", "value": "high"}, "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			data := callToolError(t, s, "detector_config", tt.args)
			if !strings.Contains(data, tt.want) {
				t.Errorf("Expected error mentioning %q, got %q", tt.want, data)
			}
			// A failed set leaves the config alone
			if s.current().Config().HoughCircles.Param2 != 17 {
				t.Error("Config changed by a failed request")
			}
		})
	}

	s := New()
	data := callToolError(t, s, "detector_config", map[string]interface{}{"action": "save"})
	if !strings.Contains(data, "BALL_MCP_CONFIG") {
		t.Errorf("Expected hint about BALL_MCP_CONFIG, got %q", data)
	}
}

func TestApplySetting(t *testing.T) {
	cfg := config.Default()

	next, err := applySetting(cfg, "locate.checkRefinement", json.RawMessage(`true`))
	if err != nil {
		t.Fatalf("applySetting failed: %v", err)
	}
	if !next.Locate.CheckRefinement {
		t.Error("Expected CheckRefinement set")
	}
	if cfg.Locate.CheckRefinement {
		t.Error("applySetting modified its input")
	}

	next, err = applySetting(cfg, "detector", json.RawMessage(`"boxes"`))
	if err != nil {
		t.Fatalf("applySetting failed: %v", err)
	}
	if next.Detector != config.DetectorBoxes {
		t.Errorf("Expected BOXES, got %s", next.Detector)
	}

	if _, err := applySetting(cfg, "Locate.fit", json.RawMessage(`"widest"`)); err == nil {
		t.Error("Expected error for unknown fit")
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBallImageFile(t)

	args := map[string]map[string]interface{}{
		"image_load":             {"path": imgPath},
		"image_dimensions":       {"path": imgPath},
		"image_edge_detect":      {"path": imgPath},
		"ball_detect_candidates": {"path": imgPath},
		"ball_find_contour":      {"path": imgPath, "x": 170, "y": 170, "r": 40},
		"ball_locate":            {"path": imgPath, "radius": testRadius, "camera_params": testCameraParams()},
		"ball_crop":              {"path": imgPath, "x": 170, "y": 170, "r": 40},
		"camera_project":         {"camera_params": testCameraParams(), "points": [][3]float64{{0, 0, 10}}},
		"camera_view_ray":        {"camera_params": testCameraParams(), "pixels": [][2]float64{{10, 10}}},
		"detector_config":        {"action": "get"},
	}

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			a, ok := args[tool.Name]
			if !ok {
				t.Fatalf("No test arguments for %s", tool.Name)
			}
			raw, _ := json.Marshal(a)
			result, err := s.executeTool(tool.Name, raw)
			if err != nil {
				t.Fatalf("executeTool failed: %v", err)
			}
			if result == nil {
				t.Error("executeTool returned nil result")
			}
		})
	}
}
