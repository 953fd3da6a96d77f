package fold

import "github.com/san-kum/fold/internal/vecmath"

// CubicConfig configures a CubicBarrier. Unset fields fall back to the
// evaluated State.
type CubicConfig struct {
	ID                string
	Disabled          bool
	StiffnessOverride float64
	MaxGap            *float64
	Direction         *vecmath.Vec3
}

// CubicBarrier is the base penetration penalty:
//
//	v = max(0, maxGap - gap)
//	E = k·v³/3,  ∇E = k·v²·d̂,  ∇²E = 2·k·v·(d̂⊗d̂)
type CubicBarrier struct {
	base
	cfg CubicConfig
}

func NewCubicBarrier(cfg CubicConfig) *CubicBarrier {
	return &CubicBarrier{base: base{id: cfg.ID, disabled: cfg.Disabled}, cfg: cfg}
}

func (c *CubicBarrier) Type() Type { return TypeCubicBarrier }

func (c *CubicBarrier) Evaluate(s State, _ Context) Evaluation {
	k := s.Stiffness
	if c.cfg.StiffnessOverride > 0 {
		k = c.cfg.StiffnessOverride
	}
	maxGap := s.MaxGap
	if c.cfg.MaxGap != nil {
		maxGap = *c.cfg.MaxGap
	}
	dir := s.Direction
	if c.cfg.Direction != nil {
		dir = *c.cfg.Direction
	}
	return cubicPenalty(k, maxGap-s.Gap, dir)
}
