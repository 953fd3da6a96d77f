package fold_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fold/internal/fold"
	"github.com/san-kum/fold/internal/vecmath"
)

var _ = Describe("AssembleContactMatrix", func() {
	identity := vecmath.Identity()

	It("resolves a shared constraint id to one block", func() {
		out, err := fold.AssembleContactMatrix([]fold.Contact{
			{ContactID: "c1", Blocks: []fold.Block{{ConstraintID: "shared", Matrix: identity}}},
			{ContactID: "c2", Blocks: []fold.Block{{ConstraintID: "shared", Matrix: identity.Scale(0.5)}}},
		}, fold.AssemblyOptions{})
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Contacts).To(HaveLen(2))
		Expect(out.Contacts[0].BaseIndices[0]).To(Equal(out.Contacts[1].BaseIndices[0]))
		Expect(out.Matrix.Size()).To(Equal(3))
		Expect(out.Matrix.At(0, 0)).To(BeNumerically("~", 1.5, 1e-12))
	})

	It("gives distinct ids distinct diagonal blocks", func() {
		out, err := fold.AssembleContactMatrix([]fold.Contact{
			{ContactID: "c1", Blocks: []fold.Block{
				{ConstraintID: "a", Matrix: identity},
				{ConstraintID: "b", Matrix: identity.Scale(2)},
			}},
			{ContactID: "c2", Blocks: []fold.Block{{ConstraintID: "c", Matrix: identity.Scale(3)}}},
		}, fold.AssemblyOptions{Size: 12})
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Contacts[0].BaseIndices).To(Equal([]int{0, 3}))
		Expect(out.Contacts[1].BaseIndices).To(Equal([]int{6}))
		Expect(out.Matrix.Size()).To(Equal(12))
		Expect(out.Matrix.Block(3)).To(Equal(identity.Scale(2)))
		Expect(out.Matrix.Block(6)).To(Equal(identity.Scale(3)))
		Expect(out.Matrix.At(0, 3)).To(BeZero())
		Expect(out.Matrix.At(9, 9)).To(BeZero())
	})

	It("keeps indices stable across calls sharing a cache", func() {
		cache := fold.NewBlockCache()
		first, err := fold.AssembleContactMatrix([]fold.Contact{
			{ContactID: "c1", Blocks: []fold.Block{{ConstraintID: "x", Matrix: identity}, {ConstraintID: "y", Matrix: identity}}},
		}, fold.AssemblyOptions{Cache: cache})
		Expect(err).NotTo(HaveOccurred())

		second, err := fold.AssembleContactMatrix([]fold.Contact{
			{ContactID: "c9", Blocks: []fold.Block{{ConstraintID: "z", Matrix: identity}, {ConstraintID: "x", Matrix: identity}}},
		}, fold.AssemblyOptions{Cache: cache})
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Contacts[0].BaseIndices).To(Equal([]int{6, first.Contacts[0].BaseIndices[0]}))
		Expect(cache.Len()).To(Equal(3))
		Expect(second.Matrix.Size()).To(Equal(9))

		base, ok := cache.Lookup("y")
		Expect(ok).To(BeTrue())
		Expect(base).To(Equal(3))
	})

	It("rejects invalid blocks without touching the cache", func() {
		cache := fold.NewBlockCache()
		bad := identity
		bad[0][0] = math.Inf(1)

		_, err := fold.AssembleContactMatrix([]fold.Contact{
			{ContactID: "c1", Blocks: []fold.Block{{ConstraintID: "ok", Matrix: identity}, {ConstraintID: "bad", Matrix: bad}}},
		}, fold.AssemblyOptions{Cache: cache})
		Expect(err).To(MatchError(fold.ErrInvalidInput))
		Expect(cache.Len()).To(BeZero())

		_, err = fold.AssembleContactMatrix([]fold.Contact{
			{ContactID: "c1", Blocks: []fold.Block{{Matrix: identity}}},
		}, fold.AssemblyOptions{Cache: cache})
		Expect(err).To(MatchError(fold.ErrInvalidInput))
	})
})
