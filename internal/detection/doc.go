// Package detection proposes ball candidates: rough image circles (x, y, r)
// that the locator turns into 3D positions.
//
// # Sources
//
// Candidates come from one of two places:
//
//   - DetectHough: a gradient Hough circle transform over the edge map
//   - FromBoxes: boxes reported by an external object detector, where the
//     circle is the box center and half the mean side length
//
// Both only need to be approximately right. The locator searches for the
// true outline between 0.75 and 1.25 times the candidate radius, so a
// candidate radius off by a few pixels costs nothing.
//
// # Hough Pipeline
//
// The edge map of a real frame rarely shows a ball as one clean ring.
// DetectHough therefore dilates the edges until gaps close, inverts the
// result so that each outline becomes a dark band, and votes from the
// borders of those bands:
//
//  1. Dilate (kernel, iterations)
//  2. Invert
//  3. Band borders via Canny (param1, param1/2)
//  4. Gradient voting over [minRadius, maxRadius] at resolution dp
//  5. Peaks above param2, at least minDist apart
//  6. Radius from the undilated edge pixels around each center
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Performance Considerations
//
// Dilation is two separable passes, linear in the window side per pixel.
// Voting costs O(border pixels × (maxRadius − minRadius)). Keep the radius
// range tight around the expected apparent ball size.
package detection
