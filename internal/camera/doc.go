// Package camera implements the OpenCV-compatible projection model of a
// calibrated camera: rational radial, tangential and thin-prism distortion
// followed by a sensor tilt.
//
// # Coordinate System
//
// Points are expressed in camera coordinates with the canonical camera y-axis
// pointing up. Image rows grow downward, so the perspective divide flips the
// sign of both axes: a point with positive x projects left of the principal
// point. Pixel coordinates are continuous; (0,0) is the center of the top-left
// pixel.
//
// # Inverse Projection
//
// The distortion has no closed-form inverse. ViewRay recovers the direction
// of the view ray through a sensor point by minimizing the reprojection error
// with a Levenberg-Marquardt solver from package lsq.
package camera
