package fold

import "math"

type LineSearchOptions struct {
	MaxIterations int
	Scale         float64
	Tolerance     float64
}

func DefaultLineSearchOptions() LineSearchOptions {
	return LineSearchOptions{
		MaxIterations: 5,
		Scale:         1.0,
		Tolerance:     1e-6,
	}
}

// ConstraintLineSearch backtracks from Scale, halving the step until every
// |energy|·step is within Tolerance or the iteration budget runs out. The
// result lies in (0, Scale]. Zero-valued options take their defaults.
func ConstraintLineSearch(evals []Evaluation, opts LineSearchOptions) float64 {
	d := DefaultLineSearchOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = d.MaxIterations
	}
	if !(opts.Scale > 0) || math.IsInf(opts.Scale, 0) {
		opts.Scale = d.Scale
	}
	if !(opts.Tolerance > 0) {
		opts.Tolerance = d.Tolerance
	}

	step := opts.Scale
	for i := 0; i < opts.MaxIterations; i++ {
		if withinTolerance(evals, step, opts.Tolerance) {
			break
		}
		step *= 0.5
	}
	return step
}

func withinTolerance(evals []Evaluation, step, tol float64) bool {
	for _, e := range evals {
		if math.Abs(e.Energy)*step > tol {
			return false
		}
	}
	return true
}
