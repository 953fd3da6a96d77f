package fold

const (
	DefaultFrictionCoefficient = 0.5
	DefaultFrictionEpsilon     = 1e-6
)

type FrictionConfig struct {
	ID          string
	Disabled    bool
	Coefficient float64
	Epsilon     float64
}

func DefaultFrictionConfig() FrictionConfig {
	return FrictionConfig{
		Coefficient: DefaultFrictionCoefficient,
		Epsilon:     DefaultFrictionEpsilon,
	}
}

// FrictionPotential is a regularized Coulomb penalty on the tangential
// displacement. With secant stiffness k = μN/|t|:
//
//	E = ½·k·|t|² = ½·μ·N·|t|,  ∇E = μ·N·t̂,  ∇²E = k·(t̂⊗t̂)
type FrictionPotential struct {
	base
	cfg FrictionConfig
}

func NewFrictionPotential(cfg FrictionConfig) *FrictionPotential {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultFrictionEpsilon
	}
	return &FrictionPotential{base: base{id: cfg.ID, disabled: cfg.Disabled}, cfg: cfg}
}

func (f *FrictionPotential) Type() Type { return TypeFriction }

func (f *FrictionPotential) Evaluate(s State, _ Context) Evaluation {
	return f.evaluate(s.Metadata.ContactForce, s)
}

func (f *FrictionPotential) evaluate(normalForce float64, s State) Evaluation {
	t := s.Metadata.TangentDisplacement
	if t == nil || !(normalForce > 0) || !(f.cfg.Coefficient > 0) {
		return Evaluation{}
	}
	mag := t.Norm()
	if !(mag > f.cfg.Epsilon) || !t.IsFinite() {
		return Evaluation{}
	}
	th := t.Scale(1 / mag)
	force := f.cfg.Coefficient * normalForce
	k := force / mag
	return Evaluation{
		Energy:   0.5 * force * mag,
		Gradient: th.Scale(force),
		Hessian:  th.Outer(th).Scale(k),
	}
}
