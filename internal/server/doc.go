// Package server implements the MCP (Model Context Protocol) server for ball localization.
//
// This package provides a JSON-RPC 2.0 server that exposes the ball finder and the
// camera model through the MCP protocol. Given one image from a calibrated camera and
// the physical ball radius, clients get the 3D center of every ball in camera
// coordinates.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_edge_detect: Canny edge map used for contours
//
// Ball Detection:
//   - ball_detect_candidates: Circle candidates from Hough or detector boxes
//   - ball_find_contour: Radial contour samples around one candidate
//   - ball_locate: 3D centers, reprojected outlines and an optional overlay
//   - ball_crop: Square crop around a candidate
//
// Camera Model:
//   - camera_project: 3D points to distorted pixels
//   - camera_view_ray: Pixels to view ray directions
//
// Configuration:
//   - detector_config: Get, set, reset or save detector settings
//
// Tools that need a camera take exactly one of camera (an inline calibration
// document), camera_path or camera_params (the 18 flat parameters).
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// ball_locate reports candidates that failed for a reason other than a missing
// contour in the errors field of a successful result.
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
