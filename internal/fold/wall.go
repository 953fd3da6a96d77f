package fold

import (
	"math"

	"github.com/san-kum/fold/internal/vecmath"
)

// WallConfig configures a WallBarrier.
type WallConfig struct {
	ID                string
	Disabled          bool
	StiffnessOverride float64
	MaxGap            *float64
	// Normal is the outward plane normal. When nil the negated state
	// direction is used.
	Normal *vecmath.Vec3
	// PlanePoint anchors the plane for position projection. When nil the
	// state's gap is used as is.
	PlanePoint   *vecmath.Vec3
	MaxStiffness float64
}

// WallBarrier keeps a point on the positive side of a plane. With a plane
// point configured the gap is the smaller of the state's gap and the signed
// distance of metadata.Position from the plane.
type WallBarrier struct {
	base
	cfg   WallConfig
	cubic *CubicBarrier
}

func NewWallBarrier(cfg WallConfig) *WallBarrier {
	return &WallBarrier{
		base:  base{id: cfg.ID, disabled: cfg.Disabled},
		cfg:   cfg,
		cubic: NewCubicBarrier(CubicConfig{ID: cfg.ID, MaxGap: cfg.MaxGap}),
	}
}

func (w *WallBarrier) Type() Type { return TypeWallBarrier }

func (w *WallBarrier) Evaluate(s State, ctx Context) Evaluation {
	normal := s.Direction.Scale(-1)
	if w.cfg.Normal != nil {
		normal = *w.cfg.Normal
	}
	n, ok := normal.Normalize()
	if !ok {
		return Evaluation{}
	}

	gap := s.Gap
	if p := s.Metadata.Position; p != nil && w.cfg.PlanePoint != nil {
		gap = math.Min(gap, n.Dot(p.Sub(*w.cfg.PlanePoint)))
	}

	k := resolveStiffness(w.cfg.StiffnessOverride, s, gap, n, w.cfg.MaxStiffness)
	if !(k > 0) {
		return Evaluation{}
	}

	// Moving against the normal deepens the violation.
	return w.cubic.Evaluate(State{
		Gap:       gap,
		MaxGap:    s.MaxGap,
		Stiffness: k,
		Direction: n.Scale(-1),
	}, ctx)
}

// PinConfig configures a PinBarrier.
type PinConfig struct {
	ID                string
	Disabled          bool
	StiffnessOverride float64
	MaxGap            *float64
	Direction         *vecmath.Vec3
	MaxStiffness      float64
}

// PinBarrier anchors a point along one axis. It derives its stiffness like
// WallBarrier but uses the state's gap as is.
type PinBarrier struct {
	base
	cfg   PinConfig
	cubic *CubicBarrier
}

func NewPinBarrier(cfg PinConfig) *PinBarrier {
	return &PinBarrier{
		base:  base{id: cfg.ID, disabled: cfg.Disabled},
		cfg:   cfg,
		cubic: NewCubicBarrier(CubicConfig{ID: cfg.ID, MaxGap: cfg.MaxGap}),
	}
}

func (p *PinBarrier) Type() Type { return TypePinBarrier }

func (p *PinBarrier) Evaluate(s State, ctx Context) Evaluation {
	dir := s.Direction
	if p.cfg.Direction != nil {
		dir = *p.cfg.Direction
	}
	unit, ok := dir.Normalize()
	if !ok {
		return Evaluation{}
	}

	k := resolveStiffness(p.cfg.StiffnessOverride, s, s.Gap, unit, p.cfg.MaxStiffness)
	if !(k > 0) {
		return Evaluation{}
	}

	return p.cubic.Evaluate(State{
		Gap:       s.Gap,
		MaxGap:    s.MaxGap,
		Stiffness: k,
		Direction: unit,
	}, ctx)
}
