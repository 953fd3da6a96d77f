package fold

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fold/internal/vecmath"
)

const tol = 1e-9

func ptr[T any](v T) *T { return &v }

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestCubicBarrier_Penetration(t *testing.T) {
	c := NewCubicBarrier(CubicConfig{ID: "floor"})
	s := State{Gap: -0.1, MaxGap: 0, Stiffness: 20, Direction: vecmath.V(0, 0, 1)}

	e := c.Evaluate(s, Context{DeltaTime: 0.01})

	if !near(e.Energy, 20*0.001/3, tol) {
		t.Errorf("energy = %v, want %v", e.Energy, 20*0.001/3)
	}
	if !near(e.Gradient.Z, 0.2, tol) || e.Gradient.X != 0 || e.Gradient.Y != 0 {
		t.Errorf("gradient = %v, want (0, 0, 0.2)", e.Gradient)
	}
	if !near(e.Hessian[2][2], 4, tol) {
		t.Errorf("hessian[2][2] = %v, want 4", e.Hessian[2][2])
	}
}

func TestCubicBarrier_DerivativeConsistency(t *testing.T) {
	dir := vecmath.V(1, 2, 2)
	unit, _ := dir.Normalize()

	for _, k := range []float64{0.5, 1, 20, 1e4} {
		for _, v := range []float64{1e-4, 0.01, 0.3, 2} {
			c := NewCubicBarrier(CubicConfig{StiffnessOverride: k})
			e := c.Evaluate(State{Gap: -v, Direction: dir}, Context{})

			if !near(e.Energy, k*v*v*v/3, 1e-9*math.Max(1, k)) {
				t.Errorf("k=%v v=%v: energy %v", k, v, e.Energy)
			}
			if !near(e.Gradient.Norm(), k*v*v, 1e-9*math.Max(1, k)) {
				t.Errorf("k=%v v=%v: |gradient| %v, want %v", k, v, e.Gradient.Norm(), k*v*v)
			}
			if !near(e.Hessian.Quad(unit), 2*k*v, 1e-9*math.Max(1, k)) {
				t.Errorf("k=%v v=%v: hessian magnitude %v, want %v", k, v, e.Hessian.Quad(unit), 2*k*v)
			}
		}
	}
}

func TestCubicBarrier_ConfigOverrides(t *testing.T) {
	c := NewCubicBarrier(CubicConfig{
		StiffnessOverride: 3,
		MaxGap:            ptr(0.5),
		Direction:         ptr(vecmath.V(0, 2, 0)),
	})
	e := c.Evaluate(State{Gap: 0.25, Stiffness: 100}, Context{})

	v := 0.25
	if !near(e.Energy, 3*v*v*v/3, tol) {
		t.Errorf("energy = %v", e.Energy)
	}
	if !near(e.Gradient.Y, 3*v*v, tol) {
		t.Errorf("gradient = %v", e.Gradient)
	}
}

func TestBarriers_InactiveReturnZero(t *testing.T) {
	strain, err := NewStrainBarrier(StrainConfig{MaxStretch: 1.1, MinCompression: 0.9, StiffnessOverride: 10})
	if err != nil {
		t.Fatalf("strain barrier: %v", err)
	}

	constraints := []Constraint{
		NewCubicBarrier(CubicConfig{StiffnessOverride: 10}),
		NewWallBarrier(WallConfig{StiffnessOverride: 10, Normal: ptr(vecmath.V(0, 0, 1))}),
		NewPinBarrier(PinConfig{StiffnessOverride: 10}),
		strain,
		NewFrictionPotential(DefaultFrictionConfig()),
		NewContactBarrier(ContactConfig{StiffnessOverride: 10, Friction: 0.5}),
		NewAssembly("a", NewCubicBarrier(CubicConfig{StiffnessOverride: 10})),
		NewGapEvaluator(GapConfig{Radius: 1}, NewCubicBarrier(CubicConfig{StiffnessOverride: 10})),
	}

	states := []State{
		{Gap: 0, MaxGap: 0, Direction: vecmath.V(0, 0, -1)},
		{Gap: 0.5, MaxGap: 0.1, Direction: vecmath.V(0, 0, -1)},
		{Gap: 2, MaxGap: 2, Direction: vecmath.V(1, 0, 0), EffectiveMass: 1},
	}

	for _, c := range constraints {
		for _, s := range states {
			if e := c.Evaluate(s, Context{}); !e.IsZero() {
				t.Errorf("%s with gap %v max %v: expected zero evaluation, got %+v", c.Type(), s.Gap, s.MaxGap, e)
			}
		}
	}
}

func TestBarriers_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		c    Constraint
		s    State
	}{
		{"cubic zero stiffness", NewCubicBarrier(CubicConfig{}), State{Gap: -1, Direction: vecmath.V(0, 0, 1)}},
		{"cubic negative stiffness", NewCubicBarrier(CubicConfig{}), State{Gap: -1, Stiffness: -5, Direction: vecmath.V(0, 0, 1)}},
		{"cubic zero direction", NewCubicBarrier(CubicConfig{StiffnessOverride: 1}), State{Gap: -1}},
		{"cubic nan direction", NewCubicBarrier(CubicConfig{StiffnessOverride: 1}), State{Gap: -1, Direction: vecmath.V(math.NaN(), 0, 0)}},
		{"wall zero normal", NewWallBarrier(WallConfig{StiffnessOverride: 1, Normal: ptr(vecmath.Zero)}), State{Gap: -1}},
		{"wall no stiffness source", NewWallBarrier(WallConfig{Normal: ptr(vecmath.V(0, 0, 1))}), State{Gap: -1}},
		{"pin zero direction", NewPinBarrier(PinConfig{StiffnessOverride: 1}), State{Gap: -1}},
		{"friction no tangent", NewFrictionPotential(DefaultFrictionConfig()), State{Metadata: Metadata{ContactForce: 5}}},
		{"gap evaluator no position", NewGapEvaluator(GapConfig{Radius: 1}, NewCubicBarrier(CubicConfig{StiffnessOverride: 1})), State{}},
		{"gap evaluator at anchor", NewGapEvaluator(GapConfig{Radius: 1}, NewCubicBarrier(CubicConfig{StiffnessOverride: 1})),
			State{Metadata: Metadata{Position: ptr(vecmath.Zero)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e := tt.c.Evaluate(tt.s, Context{}); !e.IsZero() {
				t.Errorf("expected zero evaluation, got %+v", e)
			}
		})
	}
}

func TestWallBarrier_ProjectsPosition(t *testing.T) {
	w := NewWallBarrier(WallConfig{
		StiffnessOverride: 10,
		Normal:            ptr(vecmath.V(0, 0, 1)),
		PlanePoint:        ptr(vecmath.V(0, 0, 0)),
	})
	s := State{
		Gap:      1,
		Metadata: Metadata{Position: ptr(vecmath.V(3, -2, -0.05))},
	}

	e := w.Evaluate(s, Context{})

	v := 0.05
	if !near(e.Energy, 10*v*v*v/3, tol) {
		t.Errorf("energy = %v, want %v", e.Energy, 10*v*v*v/3)
	}
	// The gradient points into the wall, so descending it pushes the point out.
	if !near(e.Gradient.Z, -10*v*v, tol) {
		t.Errorf("gradient = %v", e.Gradient)
	}
}

func TestWallBarrier_KeepsMoreRestrictiveGap(t *testing.T) {
	w := NewWallBarrier(WallConfig{StiffnessOverride: 10, Normal: ptr(vecmath.V(0, 0, 1))})
	s := State{
		Gap:      -0.2,
		Metadata: Metadata{Position: ptr(vecmath.V(0, 0, 5))},
	}

	e := w.Evaluate(s, Context{})
	if !near(e.Energy, 10*0.008/3, tol) {
		t.Errorf("energy = %v, want raw gap to win", e.Energy)
	}
}

func TestWallBarrier_NoPlanePointKeepsStateGap(t *testing.T) {
	// The state gap comes from a plane at z=-1; the position alone must not
	// be read as a distance from the origin.
	w := NewWallBarrier(WallConfig{StiffnessOverride: 10, Normal: ptr(vecmath.V(0, 0, 1))})
	s := State{
		Gap:      0.5,
		Metadata: Metadata{Position: ptr(vecmath.V(0, 0, -0.5))},
	}

	if e := w.Evaluate(s, Context{}); !e.IsZero() {
		t.Errorf("expected zero evaluation above the plane, got %+v", e)
	}
}

func TestWallBarrier_DerivedStiffness(t *testing.T) {
	h := vecmath.Diag(0, 0, 2)
	w := NewWallBarrier(WallConfig{Normal: ptr(vecmath.V(0, 0, 1))})
	s := State{
		Gap:           -0.05,
		EffectiveMass: 1,
		Metadata:      Metadata{Hessian: &h},
	}

	e := w.Evaluate(s, Context{})

	k := 1/0.0025 + 2.0
	v := 0.05
	if !near(e.Energy, k*v*v*v/3, 1e-9) {
		t.Errorf("energy = %v, want %v", e.Energy, k*v*v*v/3)
	}
}

func TestPinBarrier_DerivedStiffness(t *testing.T) {
	p := NewPinBarrier(PinConfig{Direction: ptr(vecmath.V(1, 0, 0))})
	e := p.Evaluate(State{Gap: -0.2, EffectiveMass: 0.5}, Context{})

	k := 0.5 / 0.04
	if !near(e.Energy, k*0.008/3, tol) {
		t.Errorf("energy = %v, want %v", e.Energy, k*0.008/3)
	}
	if !near(e.Gradient.X, k*0.04, tol) {
		t.Errorf("gradient = %v", e.Gradient)
	}
}

func TestPinBarrier_SaturatesAtZeroGap(t *testing.T) {
	p := NewPinBarrier(PinConfig{Direction: ptr(vecmath.V(0, 1, 0)), MaxStiffness: 1000, MaxGap: ptr(0.01)})
	e := p.Evaluate(State{Gap: 0, EffectiveMass: 1}, Context{})

	if !near(e.Energy, 1000*1e-6/3, tol) {
		t.Errorf("energy = %v, want saturated stiffness", e.Energy)
	}
	if !e.IsFinite() {
		t.Error("evaluation should stay finite")
	}
}

func TestStrainBarrier(t *testing.T) {
	b, err := NewStrainBarrier(StrainConfig{MaxStretch: 1.1, MinCompression: 0.9, StiffnessOverride: 30})
	if err != nil {
		t.Fatalf("NewStrainBarrier: %v", err)
	}

	s := State{
		Direction: vecmath.V(1, 0, 0),
		Metadata:  Metadata{SingularValues: []float64{1.3, 1.0, 0.8}},
	}
	e := b.Evaluate(s, Context{})

	if !near(e.Energy, 30*(0.008+0.001)/3, 1e-9) {
		t.Errorf("energy = %v", e.Energy)
	}
	if !near(e.Gradient.X, 30*(0.04+0.01), 1e-9) {
		t.Errorf("gradient = %v", e.Gradient)
	}
	if !near(e.Hessian[0][0], 2*30*0.3, 1e-9) {
		t.Errorf("hessian = %v", e.Hessian)
	}

	s.Metadata.SingularValues = []float64{1.0, 0.95, 1.05}
	if e := b.Evaluate(s, Context{}); !e.IsZero() {
		t.Errorf("in-band values should be inactive, got %+v", e)
	}
}

func TestStrainBarrier_EnergyGrowsWithViolation(t *testing.T) {
	b, _ := NewStrainBarrier(StrainConfig{MaxStretch: 1.2, MinCompression: 0.8, StiffnessOverride: 5})
	prev := 0.0
	for _, sv := range []float64{1.25, 1.3, 1.5, 2.0} {
		e := b.Evaluate(State{Direction: vecmath.V(0, 0, 1), Metadata: Metadata{SingularValues: []float64{sv}}}, Context{})
		if e.Energy <= prev {
			t.Errorf("energy not increasing at %v: %v <= %v", sv, e.Energy, prev)
		}
		prev = e.Energy
	}
}

func TestStrainBarrier_InvalidBounds(t *testing.T) {
	if _, err := NewStrainBarrier(StrainConfig{MaxStretch: 0.5, MinCompression: 0.9}); err == nil {
		t.Error("expected error for inverted bounds")
	}
	if _, err := NewStrainBarrier(StrainConfig{MaxStretch: 1, MinCompression: -0.1}); err == nil {
		t.Error("expected error for negative compression bound")
	}
	for _, cfg := range []StrainConfig{
		{MaxStretch: math.Inf(1), MinCompression: 0.5},
		{MaxStretch: 1, MinCompression: math.NaN()},
	} {
		if _, err := NewStrainBarrier(cfg); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", cfg, err)
		}
	}
}

func TestFrictionPotential(t *testing.T) {
	f := NewFrictionPotential(FrictionConfig{Coefficient: 0.8})
	s := State{Metadata: Metadata{
		ContactForce:        5,
		TangentDisplacement: ptr(vecmath.V(0.02, 0.01, 0)),
	}}

	e := f.Evaluate(s, Context{})

	mag := math.Sqrt(0.0005)
	if e.Energy <= 0 || !near(e.Energy, 0.5*4*mag, tol) {
		t.Errorf("energy = %v, want %v", e.Energy, 0.5*4*mag)
	}
	if !near(e.Gradient.Norm(), 4, tol) {
		t.Errorf("|gradient| = %v, want 4", e.Gradient.Norm())
	}
	trace := e.Hessian[0][0] + e.Hessian[1][1] + e.Hessian[2][2]
	if !near(trace, 4/mag, 1e-6) {
		t.Errorf("hessian trace = %v, want %v", trace, 4/mag)
	}
}

func TestFrictionPotential_Inactive(t *testing.T) {
	f := NewFrictionPotential(DefaultFrictionConfig())
	tests := []struct {
		name string
		meta Metadata
	}{
		{"zero force", Metadata{TangentDisplacement: ptr(vecmath.V(1, 0, 0))}},
		{"negative force", Metadata{ContactForce: -1, TangentDisplacement: ptr(vecmath.V(1, 0, 0))}},
		{"tiny tangent", Metadata{ContactForce: 1, TangentDisplacement: ptr(vecmath.V(1e-7, 0, 0))}},
		{"missing tangent", Metadata{ContactForce: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e := f.Evaluate(State{Metadata: tt.meta}, Context{}); !e.IsZero() {
				t.Errorf("expected zero evaluation, got %+v", e)
			}
		})
	}
}

func TestContactBarrier_NormalAndFriction(t *testing.T) {
	c := NewContactBarrier(ContactConfig{StiffnessOverride: 20, Friction: 0.5})
	s := State{
		Gap:       -0.1,
		Direction: vecmath.V(0, 0, 1),
		Metadata:  Metadata{TangentDisplacement: ptr(vecmath.V(0.01, 0, 0))},
	}

	e := c.Evaluate(s, Context{})

	normalForce := 0.2
	want := 20*0.001/3 + 0.5*0.5*normalForce*0.01
	if !near(e.Energy, want, tol) {
		t.Errorf("energy = %v, want %v", e.Energy, want)
	}
	if !near(e.Gradient.X, 0.5*normalForce, tol) || !near(e.Gradient.Z, 0.2, tol) {
		t.Errorf("gradient = %v", e.Gradient)
	}
}

func TestContactBarrier_ExtendedDirection(t *testing.T) {
	c := NewContactBarrier(ContactConfig{StiffnessOverride: 20})
	s := State{
		Gap:               -0.1,
		Direction:         vecmath.V(0, 0, 1),
		ExtendedDirection: ptr(vecmath.V(1, 0, 0)),
	}

	e := c.Evaluate(s, Context{})

	if !near(e.Energy, 2*20*0.001/3, tol) {
		t.Errorf("energy = %v", e.Energy)
	}
	if !near(e.Gradient.X, 0.2, tol) || !near(e.Gradient.Z, 0.2, tol) {
		t.Errorf("gradient = %v", e.Gradient)
	}
}

func TestAssembly_SumsEnabledChildren(t *testing.T) {
	a := NewAssembly("pair",
		NewCubicBarrier(CubicConfig{StiffnessOverride: 20}),
		NewCubicBarrier(CubicConfig{StiffnessOverride: 10}),
		NewCubicBarrier(CubicConfig{StiffnessOverride: 1000, Disabled: true}),
	)
	e := a.Evaluate(State{Gap: -0.1, Direction: vecmath.V(0, 0, 1)}, Context{})

	if !near(e.Energy, 30*0.001/3, tol) {
		t.Errorf("energy = %v, want %v", e.Energy, 30*0.001/3)
	}
	if len(a.Children()) != 3 {
		t.Errorf("children = %d", len(a.Children()))
	}
}

func TestGapEvaluator(t *testing.T) {
	g := NewGapEvaluator(GapConfig{Radius: 1}, NewCubicBarrier(CubicConfig{StiffnessOverride: 20}))
	s := State{Metadata: Metadata{Position: ptr(vecmath.V(0.9, 0, 0))}}

	e := g.Evaluate(s, Context{})

	if !near(e.Energy, 20*0.001/3, tol) {
		t.Errorf("energy = %v", e.Energy)
	}
	if !near(e.Gradient.X, -0.2, tol) {
		t.Errorf("gradient = %v, want pointing at the anchor", e.Gradient)
	}
}
