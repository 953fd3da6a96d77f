package fold

import (
	"math"

	"github.com/san-kum/fold/internal/vecmath"
)

// StiffnessInput holds the local quantities the estimator reads.
type StiffnessInput struct {
	Gap           float64
	EffectiveMass float64
	Direction     vecmath.Vec3
	Hessian       vecmath.Mat3
}

type stiffnessBounds struct {
	min, max       float64
	hasMin, hasMax bool
}

type StiffnessOption func(*stiffnessBounds)

func WithMinStiffness(v float64) StiffnessOption {
	return func(b *stiffnessBounds) { b.min, b.hasMin = v, true }
}

func WithMaxStiffness(v float64) StiffnessOption {
	return func(b *stiffnessBounds) { b.max, b.hasMax = v, true }
}

// ComputeFrozenStiffness estimates an effective barrier stiffness
//
//	k = m/gap² + d̂ᵀ·H·d̂
//
// clamped into the optional bounds. A zero gap makes the mass term infinite,
// which saturates at the upper bound when one is given.
func ComputeFrozenStiffness(in StiffnessInput, opts ...StiffnessOption) float64 {
	var b stiffnessBounds
	for _, opt := range opts {
		opt(&b)
	}

	var massTerm float64
	switch {
	case in.EffectiveMass == 0:
	case in.Gap == 0:
		massTerm = math.Copysign(math.Inf(1), in.EffectiveMass)
	default:
		massTerm = in.EffectiveMass / (in.Gap * in.Gap)
	}

	var curvature float64
	if unit, ok := in.Direction.Normalize(); ok && in.Hessian.IsFinite() {
		curvature = in.Hessian.Quad(unit)
	}

	k := massTerm + curvature
	if math.IsNaN(k) {
		k = 0
	}
	if b.hasMin && k < b.min {
		k = b.min
	}
	if b.hasMax && k > b.max {
		k = b.max
	}
	return k
}
