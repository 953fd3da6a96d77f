package fold

import (
	"fmt"
	"math"
)

// StrainConfig configures a StrainBarrier.
type StrainConfig struct {
	ID                string
	Disabled          bool
	MaxStretch        float64
	MinCompression    float64
	StiffnessOverride float64
	MaxStiffness      float64
}

// StrainBarrier limits the singular values of a local deformation to
// [MinCompression, MaxStretch]. Each value outside the band contributes an
// independent cubic penalty along the state direction; contributions add.
type StrainBarrier struct {
	base
	cfg StrainConfig
}

func NewStrainBarrier(cfg StrainConfig) (*StrainBarrier, error) {
	if math.IsNaN(cfg.MaxStretch) || math.IsNaN(cfg.MinCompression) ||
		math.IsInf(cfg.MaxStretch, 0) || math.IsInf(cfg.MinCompression, 0) {
		return nil, fmt.Errorf("%w: strain bounds must be finite", ErrInvalidInput)
	}
	if cfg.MinCompression < 0 || cfg.MaxStretch < cfg.MinCompression {
		return nil, fmt.Errorf("%w: need 0 <= minCompression (%g) <= maxStretch (%g)",
			ErrParameterBounds, cfg.MinCompression, cfg.MaxStretch)
	}
	return &StrainBarrier{base: base{id: cfg.ID, disabled: cfg.Disabled}, cfg: cfg}, nil
}

func (b *StrainBarrier) Type() Type { return TypeStrainBarrier }

// violations returns Σv, Σv², Σv³ over the out-of-band singular values.
func (b *StrainBarrier) violations(values []float64) (s1, s2, s3 float64) {
	for _, sv := range values {
		var v float64
		switch {
		case sv > b.cfg.MaxStretch:
			v = sv - b.cfg.MaxStretch
		case sv < b.cfg.MinCompression:
			v = b.cfg.MinCompression - sv
		default:
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s1 += v
		s2 += v * v
		s3 += v * v * v
	}
	return s1, s2, s3
}

func (b *StrainBarrier) Evaluate(s State, _ Context) Evaluation {
	s1, s2, s3 := b.violations(s.Metadata.SingularValues)
	if s1 <= 0 {
		return Evaluation{}
	}
	unit, ok := s.Direction.Normalize()
	if !ok {
		return Evaluation{}
	}

	gap := s.Gap
	if gap == 0 {
		gap = b.cfg.MaxStretch - b.cfg.MinCompression
	}
	k := resolveStiffness(b.cfg.StiffnessOverride, s, gap, unit, b.cfg.MaxStiffness)
	if !(k > 0) {
		return Evaluation{}
	}

	return Evaluation{
		Energy:   k * s3 / 3,
		Gradient: unit.Scale(k * s2),
		Hessian:  unit.Outer(unit).Scale(2 * k * s1),
	}
}
