// Package locate recovers the 3D center of a sphere of known radius from
// one calibrated camera image.
//
// A candidate circle (x, y, r) in pixel space is turned into a detection in
// five steps:
//
//  1. Contour sampling: radial walks outward from the candidate center find
//     the first edge pixel at evenly spaced angles (FindContour).
//  2. Cone building: the center and every contour point are inverse
//     projected into view rays from the camera center (BuildCone).
//  3. Analytic fit: the center ray and one contour ray give a closed-form
//     estimate of the ball center under the tangency constraint (FitBall).
//  4. Refinement: Levenberg-Marquardt over all contour rays minimizes the
//     difference between ray-to-center distance and the radius (RefineBall).
//  5. Reprojection: the center and three great circles of the refined ball
//     are projected back to the sensor for verification (ProjectContour).
//
// # Errors
//
// Stage failures carry the sentinel errors of package fault. Out-of-bounds
// edge lookups during contour sampling are not errors; they end the walk at
// that angle. A contour with four or fewer points yields fault.ErrInvalidContour
// and the candidate is dropped silently by Locator.Locate. Every other failure
// aborts only its own candidate and is reported in the joined error returned
// alongside the successful detections.
//
// # Concurrency
//
// Candidates are independent. Locator.Locate fans them out over a bounded
// worker group and checks the context between candidates, never inside a
// single fit. A Locator holds no mutable state and is safe for concurrent use.
package locate
