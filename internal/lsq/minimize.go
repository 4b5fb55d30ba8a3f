package lsq

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Minimizer solves a Problem by handing the scalar cost ½‖f‖² to a
// gonum/optimize method. It needs no Jacobian.
type Minimizer struct {
	// Method defaults to Nelder-Mead.
	Method optimize.Method

	// Settings default to a function-value converger.
	Settings *optimize.Settings
}

// Solve implements Solver.
func (mz *Minimizer) Solve(p Problem, x0 []float64) (*Result, error) {
	if err := p.validate(x0); err != nil {
		return nil, err
	}

	var method optimize.Method = &optimize.NelderMead{}
	settings := &optimize.Settings{
		FuncEvaluations: 20000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-20,
			Relative:   1e-14,
			Iterations: 200,
		},
	}
	if mz != nil && mz.Method != nil {
		method = mz.Method
	}
	if mz != nil && mz.Settings != nil {
		settings = mz.Settings
	}

	evals := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			evals++
			f := make([]float64, p.Size)
			if err := p.Func(f, x); err != nil {
				return math.Inf(1)
			}
			return halfSumSq(f)
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, method)
	if result == nil {
		return nil, err
	}

	f := make([]float64, p.Size)
	if ferr := p.Func(f, result.X); ferr != nil {
		return nil, ferr
	}
	return &Result{
		X:           append([]float64(nil), result.X...),
		Residuals:   f,
		Cost:        halfSumSq(f),
		Iterations:  result.Stats.MajorIterations,
		Evaluations: evals,
		Converged:   err == nil,
	}, nil
}
