package fold

import (
	"math"

	"github.com/san-kum/fold/internal/vecmath"
)

// Type tags a constraint kind.
type Type string

const (
	TypeCubicBarrier   Type = "cubic-barrier"
	TypeWallBarrier    Type = "wall-barrier"
	TypePinBarrier     Type = "pin-barrier"
	TypeStrainBarrier  Type = "strain-barrier"
	TypeFriction       Type = "friction"
	TypeContactBarrier Type = "contact-barrier"
	TypeAssembly       Type = "assembly"
	TypeGapEvaluator   Type = "gap-evaluator"
)

// DefaultMaxStiffness caps derived stiffness so a vanishing gap saturates
// instead of diverging.
const DefaultMaxStiffness = 1e8

// Metadata carries optional per-kind inputs. Each barrier reads only the
// fields it understands.
type Metadata struct {
	Hessian             *vecmath.Mat3
	ContactForce        float64
	TangentDisplacement *vecmath.Vec3
	SingularValues      []float64
	Position            *vecmath.Vec3
}

// State is the local input of a constraint.
//
// Gap is the signed separation (negative means penetrating) and MaxGap the
// activation threshold, so the violation is max(0, MaxGap-Gap). Direction is
// the axis along which displacement increases the violation. A zero
// Stiffness asks wrappers to derive one.
type State struct {
	Gap               float64
	MaxGap            float64
	Stiffness         float64
	Direction         vecmath.Vec3
	ExtendedDirection *vecmath.Vec3
	EffectiveMass     float64
	Metadata          Metadata
}

// Violation returns max(0, MaxGap-Gap).
func (s State) Violation() float64 {
	return math.Max(0, s.MaxGap-s.Gap)
}

// Evaluation is the value, gradient and Hessian of a local potential. The
// zero value is the inactive evaluation.
type Evaluation struct {
	Energy   float64
	Gradient vecmath.Vec3
	Hessian  vecmath.Mat3
}

func (e Evaluation) Add(o Evaluation) Evaluation {
	return Evaluation{
		Energy:   e.Energy + o.Energy,
		Gradient: e.Gradient.Add(o.Gradient),
		Hessian:  e.Hessian.Add(o.Hessian),
	}
}

func (e Evaluation) IsZero() bool {
	return e == Evaluation{}
}

func (e Evaluation) IsFinite() bool {
	return !math.IsNaN(e.Energy) && !math.IsInf(e.Energy, 0) && e.Gradient.IsFinite() && e.Hessian.IsFinite()
}

// Context is the per-evaluation solver context.
type Context struct {
	DeltaTime float64
	Iteration int
}

// Constraint is a stateless local potential. Evaluate must be a pure
// function of its arguments.
type Constraint interface {
	Type() Type
	ID() string
	Enabled() bool
	Evaluate(s State, ctx Context) Evaluation
}

type base struct {
	id       string
	disabled bool
}

func (b base) ID() string    { return b.id }
func (b base) Enabled() bool { return !b.disabled }

// cubicPenalty is the shared k·v³/3 potential along dir.
func cubicPenalty(k, violation float64, dir vecmath.Vec3) Evaluation {
	if !(k > 0) || !(violation > 0) || math.IsInf(k, 0) || math.IsInf(violation, 0) {
		return Evaluation{}
	}
	unit, ok := dir.Normalize()
	if !ok {
		return Evaluation{}
	}
	v2 := violation * violation
	return Evaluation{
		Energy:   k * v2 * violation / 3,
		Gradient: unit.Scale(k * v2),
		Hessian:  unit.Outer(unit).Scale(2 * k * violation),
	}
}

// resolveStiffness picks the override, then the state's stiffness, then a
// frozen estimate along dir bounded to [0, maxK].
func resolveStiffness(override float64, s State, gap float64, dir vecmath.Vec3, maxK float64) float64 {
	if override > 0 {
		return override
	}
	if s.Stiffness > 0 {
		return s.Stiffness
	}
	if maxK <= 0 {
		maxK = DefaultMaxStiffness
	}
	var h vecmath.Mat3
	if s.Metadata.Hessian != nil {
		h = *s.Metadata.Hessian
	}
	return ComputeFrozenStiffness(StiffnessInput{
		Gap:           gap,
		EffectiveMass: s.EffectiveMass,
		Direction:     dir,
		Hessian:       h,
	}, WithMinStiffness(0), WithMaxStiffness(maxK))
}
