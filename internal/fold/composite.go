package fold

import (
	"github.com/san-kum/fold/internal/vecmath"
)

// Assembly sums the evaluations of its enabled children.
type Assembly struct {
	base
	children []Constraint
}

func NewAssembly(id string, children ...Constraint) *Assembly {
	c := make([]Constraint, len(children))
	copy(c, children)
	return &Assembly{base: base{id: id}, children: c}
}

func (a *Assembly) Type() Type { return TypeAssembly }

func (a *Assembly) Children() []Constraint {
	c := make([]Constraint, len(a.children))
	copy(c, a.children)
	return c
}

func (a *Assembly) Evaluate(s State, ctx Context) Evaluation {
	var total Evaluation
	for _, c := range a.children {
		if c == nil || !c.Enabled() {
			continue
		}
		total = total.Add(c.Evaluate(s, ctx))
	}
	return total
}

// GapConfig configures a GapEvaluator.
type GapConfig struct {
	ID       string
	Disabled bool
	Anchor   vecmath.Vec3
	Radius   float64
}

// GapEvaluator derives gap and direction from metadata.Position relative to
// a spherical exclusion zone around Anchor, then delegates to Inner:
//
//	gap = |p - anchor| - radius,  direction = (anchor - p)/|anchor - p|
type GapEvaluator struct {
	base
	cfg   GapConfig
	inner Constraint
}

func NewGapEvaluator(cfg GapConfig, inner Constraint) *GapEvaluator {
	return &GapEvaluator{base: base{id: cfg.ID, disabled: cfg.Disabled}, cfg: cfg, inner: inner}
}

func (g *GapEvaluator) Type() Type { return TypeGapEvaluator }

func (g *GapEvaluator) Evaluate(s State, ctx Context) Evaluation {
	if g.inner == nil || !g.inner.Enabled() || s.Metadata.Position == nil {
		return Evaluation{}
	}
	toAnchor := g.cfg.Anchor.Sub(*s.Metadata.Position)
	dist := toAnchor.Norm()
	dir, ok := toAnchor.Normalize()
	if !ok {
		return Evaluation{}
	}
	local := s
	local.Gap = dist - g.cfg.Radius
	local.Direction = dir
	return g.inner.Evaluate(local, ctx)
}
