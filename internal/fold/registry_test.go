package fold_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fold/internal/fold"
	"github.com/san-kum/fold/internal/vecmath"
)

var _ = Describe("Registry", func() {
	var reg *fold.Registry

	BeforeEach(func() {
		reg = fold.NewDefaultRegistry()
	})

	It("lists every built-in kind in registration order", func() {
		var types []fold.Type
		for _, f := range reg.List() {
			types = append(types, f.Type)
		}
		Expect(types).To(Equal([]fold.Type{
			fold.TypeCubicBarrier,
			fold.TypeWallBarrier,
			fold.TypePinBarrier,
			fold.TypeStrainBarrier,
			fold.TypeFriction,
			fold.TypeContactBarrier,
			fold.TypeAssembly,
			fold.TypeGapEvaluator,
		}))
	})

	It("returns false for unknown tags", func() {
		_, ok := reg.Get("spring")
		Expect(ok).To(BeFalse())

		_, err := reg.Create("spring", nil)
		Expect(err).To(MatchError(fold.ErrUnknownType))
	})

	It("creates independent instances on every call", func() {
		params := fold.Params{"id": "floor", "stiffness": 20, "direction": []any{0, 0, 1}}
		a, err := reg.Create(fold.TypeCubicBarrier, params)
		Expect(err).NotTo(HaveOccurred())
		b, err := reg.Create(fold.TypeCubicBarrier, params)
		Expect(err).NotTo(HaveOccurred())

		Expect(a).NotTo(BeIdenticalTo(b))
		Expect(a.ID()).To(Equal("floor"))
		Expect(a.Type()).To(Equal(fold.TypeCubicBarrier))

		s := fold.State{Gap: -0.1}
		Expect(a.Evaluate(s, fold.Context{})).To(Equal(b.Evaluate(s, fold.Context{})))
		Expect(a.Evaluate(s, fold.Context{}).Energy).To(BeNumerically("~", 20*0.001/3, 1e-12))
	})

	It("overwrites on duplicate registration without reordering", func() {
		custom := fold.Factory{
			Type: fold.TypeFriction,
			Create: func(p fold.Params) (fold.Constraint, error) {
				return fold.NewFrictionPotential(fold.FrictionConfig{ID: "custom", Coefficient: 2}), nil
			},
		}
		Expect(reg.Register(custom)).To(Succeed())

		c, err := reg.Create(fold.TypeFriction, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.ID()).To(Equal("custom"))
		Expect(reg.List()).To(HaveLen(8))
		Expect(reg.List()[4].Type).To(Equal(fold.TypeFriction))
	})

	It("accepts new kinds without touching the kernel", func() {
		empty := fold.NewRegistry()
		Expect(empty.List()).To(BeEmpty())

		Expect(empty.Register(fold.Factory{
			Type: "soft-floor",
			Create: func(p fold.Params) (fold.Constraint, error) {
				k, err := p.Float("k", 1)
				if err != nil {
					return nil, err
				}
				return fold.NewCubicBarrier(fold.CubicConfig{StiffnessOverride: k}), nil
			},
		})).To(Succeed())

		c, err := empty.Create("soft-floor", fold.Params{"k": 3.0})
		Expect(err).NotTo(HaveOccurred())
		e := c.Evaluate(fold.State{Gap: -1, Direction: vecmath.V(1, 0, 0)}, fold.Context{})
		Expect(e.Energy).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("rejects factories without a type or constructor", func() {
		Expect(reg.Register(fold.Factory{Create: func(fold.Params) (fold.Constraint, error) { return nil, nil }})).
			To(MatchError(fold.ErrInvalidInput))
		Expect(reg.Register(fold.Factory{Type: "broken"})).To(MatchError(fold.ErrInvalidInput))
	})

	DescribeTable("parameter validation",
		func(t fold.Type, params fold.Params, want error) {
			_, err := reg.Create(t, params)
			Expect(err).To(MatchError(want))
		},
		Entry("strain needs bounds", fold.TypeStrainBarrier, fold.Params{"max_stretch": 1.1}, fold.ErrInvalidInput),
		Entry("strain inverted bounds", fold.TypeStrainBarrier, fold.Params{"max_stretch": 0.5, "min_compression": 0.9}, fold.ErrParameterBounds),
		Entry("bad direction", fold.TypeCubicBarrier, fold.Params{"direction": []any{0, 1}}, fold.ErrInvalidMatrixShape),
		Entry("non-numeric stiffness", fold.TypeWallBarrier, fold.Params{"stiffness": "stiff"}, fold.ErrInvalidInput),
		Entry("gap evaluator without inner", fold.TypeGapEvaluator, fold.Params{"radius": 1}, fold.ErrInvalidInput),
		Entry("assembly with unknown child", fold.TypeAssembly, fold.Params{
			"children": []any{map[string]any{"type": "nope"}},
		}, fold.ErrUnknownType),
	)

	It("builds nested composites from decoded config", func() {
		params := fold.Params{
			"id": "pair",
			"children": []any{
				map[string]any{"type": "cubic-barrier", "params": map[string]any{"stiffness": 20}},
				map[string]any{"type": "gap-evaluator", "params": map[string]any{
					"radius": 1.0,
					"anchor": []any{0, 0, 0},
					"inner":  map[string]any{"type": "pin-barrier", "params": map[string]any{"stiffness": 10}},
				}},
			},
		}
		c, err := reg.Create(fold.TypeAssembly, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Type()).To(Equal(fold.TypeAssembly))

		pos := vecmath.V(0, 0.9, 0)
		s := fold.State{Gap: -0.1, Direction: vecmath.V(0, 0, 1), Metadata: fold.Metadata{Position: &pos}}
		e := c.Evaluate(s, fold.Context{})
		Expect(e.Energy).To(BeNumerically("~", 30*0.001/3, 1e-12))
		Expect(e.Gradient.Y).To(BeNumerically("~", -0.1, 1e-12))
		Expect(e.Gradient.Z).To(BeNumerically("~", 0.2, 1e-12))
	})
})
