package fold

import "math"

type FreezeOptions struct {
	// Damping in [0, 1] is the fraction of the gap between current stiffness
	// and observed curvature closed per application.
	Damping      float64
	MaxStiffness float64
}

func DefaultFreezeOptions() FreezeOptions {
	return FreezeOptions{
		Damping:      0.5,
		MaxStiffness: DefaultMaxStiffness,
	}
}

// ApplyFreezeSchedule stiffens s toward the curvature c = max(0, d̂ᵀHd̂) of the
// latest evaluation:
//
//	k' = min(max, k + damping·max(0, c - k))
//
// The result lies in [0, max] and never falls below min(k, max).
func ApplyFreezeSchedule(s State, e Evaluation, opts FreezeOptions) State {
	damping := opts.Damping
	if math.IsNaN(damping) {
		damping = 0
	}
	damping = math.Min(1, math.Max(0, damping))
	maxK := opts.MaxStiffness
	if !(maxK > 0) {
		maxK = DefaultMaxStiffness
	}

	k := math.Max(0, s.Stiffness)
	if math.IsNaN(k) {
		k = 0
	}

	var c float64
	if unit, ok := s.Direction.Normalize(); ok {
		c = e.Hessian.Quad(unit)
	}
	switch {
	case math.IsNaN(c):
		c = 0
	case math.IsInf(c, 1):
		c = math.MaxFloat64
	}

	next := k + damping*math.Max(0, c-k)
	out := s
	out.Stiffness = math.Min(maxK, next)
	return out
}
