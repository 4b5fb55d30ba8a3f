package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// withCamera adds the camera selection properties to a tool's properties.
// Exactly one of camera, camera_path or camera_params must be given.
func withCamera(props map[string]interface{}) map[string]interface{} {
	props["camera"] = map[string]interface{}{
		"type":        "object",
		"description": "Calibration document: {\"intrinsics\": {\"camera_matrix\": 3x3, \"distortion_coefficients\": [4|5|8|12|14]}} or {\"normalized_param\": [18]}",
	}
	props["camera_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a calibration JSON document (same layouts as camera)",
	}
	props["camera_params"] = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "number"},
		"description": "18 camera parameters: fx, fy, cx, cy, k1, k2, p1, p2, k3, k4, k5, k6, s1, s2, s3, s4, tx, ty",
	}
	return props
}

var candidatesProperty = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
			"r": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y", "r"},
	},
	"description": "Explicit circle candidates in pixels. Skips candidate detection",
}

var boxesProperty = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1":         map[string]interface{}{"type": "number"},
			"y1":         map[string]interface{}{"type": "number"},
			"x2":         map[string]interface{}{"type": "number"},
			"y2":         map[string]interface{}{"type": "number"},
			"confidence": map[string]interface{}{"type": "number"},
			"class":      map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	},
	"description": "Object detector boxes, used when the detector is BOXES",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file into the frame cache and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Build the Canny edge map used for ball contours and return it as base64-encoded PNG. Unset parameters come from the detector config.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"ksize": map[string]interface{}{
						"type":        "integer",
						"description": "Gaussian kernel size (odd; 1 disables blur)",
					},
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian sigma (0 derives it from ksize)",
					},
					"threshold1": map[string]interface{}{
						"type":        "number",
						"description": "First hysteresis threshold",
					},
					"threshold2": map[string]interface{}{
						"type":        "number",
						"description": "Second hysteresis threshold",
					},
				},
				"required": []string{"path"},
			},
		},

		// Ball Detection
		{
			Name:        "ball_detect_candidates",
			Description: "Propose ball circles (x, y, r) in pixels with the configured detector (HOUGH circles on the edge map, or filtered detector boxes).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty,
					"boxes": boxesProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ball_find_contour",
			Description: "Sample the ball outline around one candidate by walking radially through the edge map. A contour needs at least 5 points to be usable.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Candidate center X in pixels",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Candidate center Y in pixels",
					},
					"r": map[string]interface{}{
						"type":        "number",
						"description": "Candidate radius in pixels",
					},
				},
				"required": []string{"path", "x", "y", "r"},
			},
		},
		{
			Name:        "ball_locate",
			Description: "Locate every ball of a known radius in 3D camera coordinates from one calibrated image. Returns per-ball centers, reprojected outlines and, optionally, an annotated overlay image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withCamera(map[string]interface{}{
					"path": pathProperty,
					"radius": map[string]interface{}{
						"type":        "number",
						"description": "Physical ball radius; the result uses the same unit",
					},
					"candidates": candidatesProperty,
					"boxes":      boxesProperty,
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the image with reprojected outlines, centers and labels drawn. Default false",
						"default":     false,
					},
					"selected": map[string]interface{}{
						"type":        "integer",
						"description": "Index of the detection to highlight in the overlay. Default -1 (none)",
						"default":     -1,
					},
					"base": map[string]interface{}{
						"type":        "integer",
						"description": "Index of the detection overlay labels are relative to. Default -1 (absolute)",
						"default":     -1,
					},
				}),
				"required": []string{"path", "radius"},
			},
		},
		{
			Name:        "ball_crop",
			Description: "Crop a square region around a ball candidate and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x":    map[string]interface{}{"type": "number", "description": "Center X in pixels"},
					"y":    map[string]interface{}{"type": "number", "description": "Center Y in pixels"},
					"r":    map[string]interface{}{"type": "number", "description": "Radius in pixels"},
					"margin": map[string]interface{}{
						"type":        "number",
						"description": "Half-side of the crop as a multiple of r. Default 1.5",
						"default":     1.5,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x", "y", "r"},
			},
		},

		// Camera Model
		{
			Name:        "camera_project",
			Description: "Project 3D camera-frame points to distorted pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withCamera(map[string]interface{}{
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":     "array",
							"items":    map[string]interface{}{"type": "number"},
							"minItems": 3,
							"maxItems": 3,
						},
						"description": "Points as [x, y, z]",
					},
					"width":  map[string]interface{}{"type": "integer", "description": "Frame width, for normalized calibrations"},
					"height": map[string]interface{}{"type": "integer", "description": "Frame height, for normalized calibrations"},
				}),
				"required": []string{"points"},
			},
		},
		{
			Name:        "camera_view_ray",
			Description: "Invert the camera model: return the direction (wx, wy, 1) that projects to each pixel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withCamera(map[string]interface{}{
					"pixels": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":     "array",
							"items":    map[string]interface{}{"type": "number"},
							"minItems": 2,
							"maxItems": 2,
						},
						"description": "Pixels as [u, v]",
					},
					"check": map[string]interface{}{
						"type":        "boolean",
						"description": "Fail pixels whose inversion does not reproject within tolerance. Default false",
						"default":     false,
					},
					"width":  map[string]interface{}{"type": "integer", "description": "Frame width, for normalized calibrations"},
					"height": map[string]interface{}{"type": "integer", "description": "Frame height, for normalized calibrations"},
				}),
				"required": []string{"pixels"},
			},
		},

		// Configuration
		{
			Name:        "detector_config",
			Description: "Inspect or change the detector configuration. Actions: get (values and allowed ranges), set (one \"Section.key\" value, or the detector name), reset (stock defaults), save (write to the config file).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"action": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"get", "set", "reset", "save"},
						"description": "Operation to perform. Default get",
						"default":     "get",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Setting to change, e.g. \"HoughCircles.param2\", or \"Detector\"",
					},
					"value": map[string]interface{}{
						"description": "New value: a number, or HOUGH/BOXES for Detector",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
