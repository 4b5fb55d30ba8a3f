// Package imaging holds the frame-level image operations of the ball
// locator: decoding and caching frames, building the binary edge map the
// contour sampler walks on, cropping around candidates and drawing
// detections back onto a frame.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. This is also the sensor
// coordinate system of the camera model, so reprojected points can be drawn
// directly.
//
// # Edge Maps
//
// Canny produces an EdgeMap, which implements locate.EdgeIndicator: lookups
// round to the nearest pixel and fail with fault.ErrOutOfBounds outside
// [0, W−1]×[0, H−1] instead of clamping. The contour sampler relies on that
// failure to stop walks that leave the frame.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. EdgeMap is immutable after
// construction and may be shared by the candidate workers of one frame.
// The drawing functions always work on a copy of the input.
package imaging
