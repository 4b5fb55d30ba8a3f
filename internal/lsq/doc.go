// Package lsq solves small nonlinear least-squares problems.
//
// A Problem is a residual function f: R^Dim -> R^Size; solvers minimize the
// cost ½‖f(x)‖². Two solvers satisfy the Solver interface:
//
//   - LevenbergMarquardt: damped Gauss-Newton on the normal equations
//     (gonum/mat), with an analytic Jacobian when the problem supplies one and
//     central differences (gonum/diff/fd) otherwise.
//   - Minimizer: a derivative-free fallback that hands the scalar cost to a
//     gonum/optimize method (Nelder-Mead by default).
//
// Solvers do not judge the quality of their answer. Result carries the final
// residuals and a Converged flag that reflects the solver's own termination
// test; callers that need a residual bound check it themselves.
package lsq
