// Package fold provides the constraint kernel for barrier-based contact
// mechanics.
//
// Every constraint is a pure function of a [State] and a [Context] that
// returns an [Evaluation] (energy, gradient, Hessian) of a local potential:
//
//   - [CubicBarrier]: base penetration penalty k·v³/3
//   - [WallBarrier], [PinBarrier]: stiffness-deriving wrappers around the cubic barrier
//   - [StrainBarrier]: stretch/compression limits on deformation singular values
//   - [FrictionPotential]: regularized Coulomb tangential penalty
//   - [ContactBarrier]: normal, extended and frictional contact in one term
//   - [Assembly], [GapEvaluator]: composites over other constraints
//
// Inactive or degenerate inputs yield the zero [Evaluation]. Finite input
// can still overflow once k·v³ exceeds the float64 range; [EvaluateAll]
// reports such results as an [EvaluationError].
//
// The numerical helpers [ComputeFrozenStiffness], [EnforceSPD],
// [ConstraintLineSearch] and [ApplyFreezeSchedule] feed the inexact Newton
// stepper in package integrators, and [AssembleContactMatrix] packs local
// blocks into a block-diagonal system.
//
// # Registry
//
// A [Registry] maps type tags to factories so scenarios can build
// constraints from configuration:
//
//	reg := fold.NewDefaultRegistry()
//	c, err := reg.Create(fold.TypeWallBarrier, fold.Params{"normal": []any{0, 0, 1}})
//
// Registries are plain values; pass them explicitly rather than sharing a
// global instance.
package fold
