package lsq

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LevenbergMarquardt is a damped Gauss-Newton solver with the gain-ratio
// damping update of Madsen, Nielsen and Tingleff. The zero value uses the
// defaults below.
type LevenbergMarquardt struct {
	// MaxIterations bounds the outer iterations. Default 200.
	MaxIterations int

	// Tau scales the initial damping relative to max(diag(JᵀJ)). Default 1e-3.
	Tau float64

	// Eps1 stops when ‖Jᵀf‖∞ falls to or below it. Default 1e-12.
	Eps1 float64

	// Eps2 stops when the step is below Eps2·(‖x‖ + Eps2). Default 1e-14.
	Eps2 float64

	// CostTolerance stops when ½‖f‖² falls to or below it. Default 1e-24.
	CostTolerance float64
}

func (lm *LevenbergMarquardt) settings() LevenbergMarquardt {
	s := LevenbergMarquardt{MaxIterations: 200, Tau: 1e-3, Eps1: 1e-12, Eps2: 1e-14, CostTolerance: 1e-24}
	if lm == nil {
		return s
	}
	if lm.MaxIterations > 0 {
		s.MaxIterations = lm.MaxIterations
	}
	if lm.Tau > 0 {
		s.Tau = lm.Tau
	}
	if lm.Eps1 > 0 {
		s.Eps1 = lm.Eps1
	}
	if lm.Eps2 > 0 {
		s.Eps2 = lm.Eps2
	}
	if lm.CostTolerance > 0 {
		s.CostTolerance = lm.CostTolerance
	}
	return s
}

// Solve implements Solver.
//
// A residual or Jacobian error at the initial point is returned as is.
// Errors at trial points, in the residual or in the Jacobian, are treated as
// rejected steps and only increase the damping.
func (lm *LevenbergMarquardt) Solve(p Problem, x0 []float64) (*Result, error) {
	if err := p.validate(x0); err != nil {
		return nil, err
	}
	s := lm.settings()
	n, m := p.Dim, p.Size
	jacobian := p.jacobian()

	x := append([]float64(nil), x0...)
	f := make([]float64, m)
	if err := p.Func(f, x); err != nil {
		return nil, err
	}
	res := &Result{Evaluations: 1}
	cost := halfSumSq(f)

	jac := mat.NewDense(m, n, nil)
	if err := jacobian(jac, x); err != nil {
		return nil, err
	}

	fv := mat.NewVecDense(m, f)
	var a mat.Dense
	g := mat.NewVecDense(n, nil)
	normal := func() {
		a.Mul(jac.T(), jac)
		g.MulVec(jac.T(), fv)
	}
	normal()

	found := cost <= s.CostTolerance || mat.Norm(g, math.Inf(1)) <= s.Eps1

	mu := s.Tau * maxDiag(&a)
	if mu == 0 {
		mu = s.Tau
	}
	nu := 2.0

	damped := mat.NewDense(n, n, nil)
	h := mat.NewVecDense(n, nil)
	xNew := make([]float64, n)
	fNew := make([]float64, m)
	jacNew := mat.NewDense(m, n, nil)

	for !found && res.Iterations < s.MaxIterations {
		res.Iterations++

		damped.Copy(&a)
		for i := 0; i < n; i++ {
			damped.Set(i, i, damped.At(i, i)+mu)
		}
		if err := h.SolveVec(damped, g); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				mu *= nu
				nu *= 2
				continue
			}
		}
		h.ScaleVec(-1, h)

		if mat.Norm(h, 2) <= s.Eps2*(floats2Norm(x)+s.Eps2) {
			found = true
			break
		}

		for i := range x {
			xNew[i] = x[i] + h.AtVec(i)
		}
		res.Evaluations++
		if err := p.Func(fNew, xNew); err != nil {
			mu *= nu
			nu *= 2
			continue
		}
		costNew := halfSumSq(fNew)

		// Predicted reduction of the linear model: ½hᵀ(μh − g).
		predicted := 0.5 * (mu*mat.Dot(h, h) - mat.Dot(h, g))
		rho := (cost - costNew) / predicted
		accepted := predicted > 0 && rho > 0
		if accepted {
			// A step is only taken where the Jacobian can be evaluated too.
			accepted = jacobian(jacNew, xNew) == nil
		}
		if accepted {
			copy(x, xNew)
			copy(f, fNew)
			cost = costNew
			jac.Copy(jacNew)
			normal()
			found = cost <= s.CostTolerance || mat.Norm(g, math.Inf(1)) <= s.Eps1
			mu *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
			nu = 2
		} else {
			mu *= nu
			nu *= 2
		}
		if math.IsInf(mu, 0) || math.IsNaN(mu) {
			break
		}
	}

	res.X = x
	res.Residuals = f
	res.Cost = cost
	res.Converged = found
	return res, nil
}

func maxDiag(a *mat.Dense) float64 {
	r, _ := a.Dims()
	var v float64
	for i := 0; i < r; i++ {
		v = math.Max(v, a.At(i, i))
	}
	return v
}

func floats2Norm(x []float64) float64 {
	return math.Sqrt(2 * halfSumSq(x))
}
