package experiment

import (
	"fmt"

	"github.com/san-kum/fold/internal/config"
	"github.com/san-kum/fold/internal/fold"
	"github.com/san-kum/fold/internal/integrators"
	"github.com/san-kum/fold/internal/vecmath"
)

const (
	ProbePlane   = "plane"
	ProbePoint   = "point"
	ProbeStretch = "stretch"
	ProbeFixed   = "fixed"
)

// point reads the particle addressed by dofs; unmapped axes read as zero.
func point(x []float64, dofs []int) vecmath.Vec3 {
	var c [3]float64
	for axis, dof := range dofs {
		if axis < 3 && dof >= 0 && dof < len(x) {
			c[axis] = x[dof]
		}
	}
	return vecmath.V(c[0], c[1], c[2])
}

func vecOr(s []float64, def vecmath.Vec3) (vecmath.Vec3, error) {
	if len(s) == 0 {
		return def, nil
	}
	return vecmath.VecFromSlice(s)
}

// band is the admissible stretch interval of a strain constraint.
type band struct{ lo, hi float64 }

// unitBand treats any stretch above 1 as extension and below 1 as compression.
var unitBand = band{lo: 1, hi: 1}

// strainBand reads the bounds a strain constraint was built with; other
// constraint kinds get unitBand.
func strainBand(t fold.Type, p fold.Params) (band, error) {
	if t != fold.TypeStrainBarrier {
		return unitBand, nil
	}
	lo, err := p.Float("min_compression", 1)
	if err != nil {
		return band{}, err
	}
	hi, err := p.Float("max_stretch", 1)
	if err != nil {
		return band{}, err
	}
	return band{lo: lo, hi: hi}, nil
}

// newProbe turns a probe description into a state builder. start holds the
// positions at the beginning of the current time step.
func newProbe(cfg config.ProbeConfig, dofs []int, start *[]float64, b band) (integrators.Probe, error) {
	base := fold.State{
		MaxGap:        cfg.MaxGap,
		Stiffness:     cfg.Stiffness,
		EffectiveMass: cfg.EffectiveMass,
	}
	base.Metadata.ContactForce = cfg.ContactForce

	switch cfg.Kind {
	case ProbePlane:
		n, err := vecOr(cfg.Normal, vecmath.V(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("plane normal: %w", err)
		}
		n, ok := n.Normalize()
		if !ok {
			return nil, fmt.Errorf("%w: plane normal has zero length", fold.ErrInvalidInput)
		}
		q, err := vecOr(cfg.Point, vecmath.Zero)
		if err != nil {
			return nil, fmt.Errorf("plane point: %w", err)
		}
		return func(x []float64) fold.State {
			p := point(x, dofs)
			d := p.Sub(point(*start, dofs))
			t := d.Sub(n.Scale(n.Dot(d)))
			s := base
			s.Gap = n.Dot(p.Sub(q))
			s.Direction = n.Scale(-1)
			s.Metadata.Position = &p
			s.Metadata.TangentDisplacement = &t
			return s
		}, nil

	case ProbePoint, ProbeFixed:
		dir, err := vecOr(cfg.Direction, vecmath.V(0, 0, -1))
		if err != nil {
			return nil, fmt.Errorf("probe direction: %w", err)
		}
		fixed := cfg.Kind == ProbeFixed
		return func(x []float64) fold.State {
			s := base
			s.Gap = cfg.Gap
			s.Direction = dir
			if !fixed {
				p := point(x, dofs)
				s.Metadata.Position = &p
			}
			return s
		}, nil

	case ProbeStretch:
		a, err := vecOr(cfg.Anchor, vecmath.Zero)
		if err != nil {
			return nil, fmt.Errorf("stretch anchor: %w", err)
		}
		rest := cfg.Rest
		if !(rest > 0) {
			rest = 1
		}
		return func(x []float64) fold.State {
			p := point(x, dofs)
			r := p.Sub(a)
			s := base
			s.Metadata.Position = &p
			unit, ok := r.Normalize()
			if !ok {
				s.Metadata.SingularValues = []float64{0}
				return s
			}
			sv := r.Norm() / rest
			s.Metadata.SingularValues = []float64{sv}
			// Direction points the way the violation grows: outward above the
			// band, toward the anchor below it.
			switch {
			case sv > b.hi:
				s.Direction = unit
			case sv < b.lo:
				s.Direction = unit.Scale(-1)
			case sv >= (b.lo+b.hi)/2:
				s.Direction = unit
			default:
				s.Direction = unit.Scale(-1)
			}
			return s
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProbe, cfg.Kind)
}
