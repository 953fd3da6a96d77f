package fold

// ContactConfig configures a ContactBarrier. A zero Friction coefficient
// disables the tangential term.
type ContactConfig struct {
	ID                string
	Disabled          bool
	StiffnessOverride float64
	MaxGap            *float64
	Friction          float64
	Epsilon           float64
	MaxStiffness      float64
}

// ContactBarrier combines a normal cubic barrier along Direction, an optional
// second barrier along ExtendedDirection (edge and other extended contacts)
// and Coulomb friction. Without metadata.ContactForce the friction bound uses
// the normal barrier's force magnitude.
type ContactBarrier struct {
	base
	cfg      ContactConfig
	normal   *CubicBarrier
	friction *FrictionPotential
}

func NewContactBarrier(cfg ContactConfig) *ContactBarrier {
	return &ContactBarrier{
		base:   base{id: cfg.ID, disabled: cfg.Disabled},
		cfg:    cfg,
		normal: NewCubicBarrier(CubicConfig{ID: cfg.ID, MaxGap: cfg.MaxGap}),
		friction: NewFrictionPotential(FrictionConfig{
			ID:          cfg.ID,
			Coefficient: cfg.Friction,
			Epsilon:     cfg.Epsilon,
		}),
	}
}

func (c *ContactBarrier) Type() Type { return TypeContactBarrier }

func (c *ContactBarrier) Evaluate(s State, ctx Context) Evaluation {
	unit, ok := s.Direction.Normalize()
	if !ok {
		return Evaluation{}
	}
	k := resolveStiffness(c.cfg.StiffnessOverride, s, s.Gap, unit, c.cfg.MaxStiffness)
	if !(k > 0) {
		return Evaluation{}
	}

	local := State{Gap: s.Gap, MaxGap: s.MaxGap, Stiffness: k, Direction: unit}
	eval := c.normal.Evaluate(local, ctx)
	if s.ExtendedDirection != nil {
		local.Direction = *s.ExtendedDirection
		eval = eval.Add(c.normal.Evaluate(local, ctx))
	}
	if eval.IsZero() {
		return Evaluation{}
	}

	force := s.Metadata.ContactForce
	if !(force > 0) {
		force = eval.Gradient.Norm()
	}
	return eval.Add(c.friction.evaluate(force, s))
}
