package fold

import (
	"fmt"
	"math"

	"github.com/san-kum/fold/internal/vecmath"
)

type SPDOptions struct {
	Epsilon       float64
	MaxIterations int
	InitialShift  float64
}

func DefaultSPDOptions() SPDOptions {
	return SPDOptions{
		Epsilon:       1e-8,
		MaxIterations: 12,
	}
}

func (o SPDOptions) withDefaults() SPDOptions {
	d := DefaultSPDOptions()
	if !(o.Epsilon > 0) {
		o.Epsilon = d.Epsilon
	}
	if o.MaxIterations < 1 {
		o.MaxIterations = d.MaxIterations
	}
	if !(o.InitialShift > 0) || math.IsInf(o.InitialShift, 0) {
		o.InitialShift = 0
	}
	return o
}

// EnforceSPD symmetrizes m and shifts its diagonal until a Cholesky
// factorization succeeds. Shifts start at InitialShift (or Epsilon) and
// double on every retry, never below -min(diag)+Epsilon when the diagonal
// has a non-positive entry. An input that is already positive definite is
// returned unshifted.
//
// When the retries are exhausted the largest shift tried is raised to the
// Gershgorin bound, so the result is always positive definite. Only
// non-finite input is an error.
func EnforceSPD(m vecmath.Mat3, opts SPDOptions) (vecmath.Mat3, error) {
	if !m.IsFinite() {
		return m, fmt.Errorf("%w: cannot condition non-finite matrix", ErrInvalidInput)
	}
	opts = opts.withDefaults()
	sym := m.Symmetrize()

	if opts.InitialShift == 0 && sym.IsPositiveDefinite() {
		return sym, nil
	}

	floor := 0.0
	if d := sym.MinDiagonal(); d <= 0 {
		floor = -d + opts.Epsilon
	}

	shift := 0.0
	for i := 0; i < opts.MaxIterations; i++ {
		switch {
		case i == 0 && opts.InitialShift > 0:
			shift = opts.InitialShift
		case shift <= 0:
			shift = opts.Epsilon
		default:
			shift *= 2
		}
		if shift < floor {
			shift = floor
		}
		candidate := sym.AddDiagonal(shift)
		if candidate.IsPositiveDefinite() {
			return candidate, nil
		}
	}

	if g := -sym.GershgorinLowerBound() + opts.Epsilon; shift < g {
		shift = g
	}
	if shift <= 0 {
		shift = opts.Epsilon
	}
	return sym.AddDiagonal(shift), nil
}
