package integrators

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/fold/internal/fold"
	"github.com/san-kum/fold/internal/vecmath"
)

// InexactNewton resolves constraint violations left by a predictor step.
// Each iteration evaluates every bound constraint, conditions its local
// Hessian, picks a shared step length and moves the mapped DOFs along the
// local Newton direction.
type InexactNewton struct {
	logger  *zap.Logger
	workers int

	states   []fold.State
	hessians []vecmath.Mat3
	deltas   []vecmath.Vec3
	frozen   []float64
}

type Option func(*InexactNewton)

func WithLogger(l *zap.Logger) Option {
	return func(n *InexactNewton) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithWorkers bounds the number of goroutines used for constraint
// evaluation. Values below 2 evaluate sequentially.
func WithWorkers(w int) Option {
	return func(n *InexactNewton) { n.workers = w }
}

func NewInexactNewton(opts ...Option) *InexactNewton {
	n := &InexactNewton{logger: zap.NewNop(), workers: 1}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *InexactNewton) ensureScratch(count int) {
	if len(n.states) != count {
		n.states = make([]fold.State, count)
		n.hessians = make([]vecmath.Mat3, count)
		n.deltas = make([]vecmath.Vec3, count)
		n.frozen = make([]float64, count)
	}
	for i := range n.frozen {
		n.frozen[i] = 0
	}
}

// Step runs up to Settings.MaxIterations Newton iterations on st and
// updates st.Positions, st.Velocities and st.Beta in place. The returned
// Result aliases the caller's slices.
func (n *InexactNewton) Step(ctx context.Context, st *State, opts StepOptions) (Result, error) {
	if err := validate(st, opts); err != nil {
		return Result{}, err
	}
	settings := st.Settings
	defaults := DefaultSettings()
	if settings.MaxIterations <= 0 {
		settings.MaxIterations = defaults.MaxIterations
	}
	if !(settings.Tolerance > 0) {
		settings.Tolerance = defaults.Tolerance
	}
	scale := opts.LineSearchScale
	if !(scale > 0) {
		scale = 1.25
	}
	dt := opts.DeltaTime

	constraints := make([]fold.Constraint, len(st.Bindings))
	for i, b := range st.Bindings {
		constraints[i] = b.Constraint
	}
	n.ensureScratch(len(st.Bindings))

	res := Result{Positions: st.Positions, Velocities: st.Velocities}
	for iter := 0; iter < settings.MaxIterations; iter++ {
		for i, b := range st.Bindings {
			s := b.Probe(st.Positions)
			if n.frozen[i] > s.Stiffness {
				s.Stiffness = n.frozen[i]
			}
			n.states[i] = s
		}

		evals, err := fold.EvaluateAll(ctx, constraints, n.states, fold.Context{DeltaTime: dt, Iteration: iter}, n.workers)
		if err != nil {
			return res, fmt.Errorf("iteration %d: %w", iter, err)
		}

		res.Energy = 0
		converged := true
		for _, e := range evals {
			res.Energy += e.Energy
			if math.Abs(e.Energy) > settings.Tolerance {
				converged = false
			}
		}
		if converged {
			res.Iterations = iter
			res.Converged = true
			res.Beta = st.Beta
			n.logger.Debug("newton converged",
				zap.Int("iterations", iter),
				zap.Float64("energy", res.Energy),
				zap.Float64("beta", st.Beta))
			return res, nil
		}

		st.Beta += dt * math.Pow(0.5, float64(iter+1))

		for i, e := range evals {
			h, err := fold.EnforceSPD(e.Hessian, opts.SPD)
			if err != nil {
				return res, &fold.EvaluationError{
					ConstraintID: constraints[i].ID(),
					Type:         constraints[i].Type(),
					Iteration:    iter,
					Wrapped:      err,
				}
			}
			n.hessians[i] = h
		}

		step := fold.ConstraintLineSearch(evals, fold.LineSearchOptions{
			Scale:     scale,
			Tolerance: settings.Tolerance,
		})
		n.applyLineSearch(st, evals, step)
		n.semiImplicitFreeze(st, evals, dt)

		if opts.Freeze != nil {
			for i, e := range evals {
				n.frozen[i] = fold.ApplyFreezeSchedule(n.states[i], e, *opts.Freeze).Stiffness
			}
		}

		n.logger.Debug("newton iteration",
			zap.Int("iteration", iter),
			zap.Float64("energy", res.Energy),
			zap.Float64("step", step),
			zap.Float64("beta", st.Beta))
	}

	res.Iterations = settings.MaxIterations
	res.Beta = st.Beta
	n.logger.Debug("newton budget exhausted",
		zap.Int("iterations", res.Iterations),
		zap.Float64("energy", res.Energy))
	return res, nil
}

// applyLineSearch displaces every mapped DOF by -step·H⁻¹g of its binding.
func (n *InexactNewton) applyLineSearch(st *State, evals []fold.Evaluation, step float64) {
	for i, b := range st.Bindings {
		n.deltas[i] = vecmath.Zero
		if evals[i].IsZero() {
			continue
		}
		dir, ok := n.hessians[i].SolveSPD(evals[i].Gradient)
		if !ok {
			dir = evals[i].Gradient
		}
		delta := dir.Scale(-step)
		n.deltas[i] = delta
		for axis, dof := range b.DOFs {
			if dof < 0 {
				continue
			}
			st.Positions[dof] += delta.At(axis)
		}
	}
}

// semiImplicitFreeze folds the position correction into the velocities and
// damps them by the accumulated beta scaled with the local curvature.
func (n *InexactNewton) semiImplicitFreeze(st *State, evals []fold.Evaluation, dt float64) {
	for i, b := range st.Bindings {
		if evals[i].IsZero() {
			continue
		}
		for axis, dof := range b.DOFs {
			if dof < 0 {
				continue
			}
			damp := 1 + st.Beta*math.Max(0, n.hessians[i][axis][axis])
			st.Velocities[dof] = (st.Velocities[dof] + n.deltas[i].At(axis)/dt) / damp
		}
	}
}

func validate(st *State, opts StepOptions) error {
	if st == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidBinding)
	}
	if !(opts.DeltaTime > 0) || math.IsInf(opts.DeltaTime, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidStep, opts.DeltaTime)
	}
	if len(st.Positions) != len(st.Velocities) {
		return fmt.Errorf("%w: %d positions, %d velocities", ErrDimensionMismatch, len(st.Positions), len(st.Velocities))
	}
	for i, b := range st.Bindings {
		if b.Constraint == nil || b.Probe == nil {
			return fmt.Errorf("%w: binding %d", ErrInvalidBinding, i)
		}
		if len(b.DOFs) == 0 || len(b.DOFs) > 3 {
			return fmt.Errorf("%w: binding %d (%s) maps %d axes", ErrDOFMap, i, b.Constraint.ID(), len(b.DOFs))
		}
		mapped := false
		for _, dof := range b.DOFs {
			if dof >= len(st.Positions) {
				return fmt.Errorf("%w: binding %d (%s) index %d out of range", ErrDOFMap, i, b.Constraint.ID(), dof)
			}
			if dof >= 0 {
				mapped = true
			}
		}
		if !mapped {
			return fmt.Errorf("%w: binding %d (%s) maps no axis", ErrDOFMap, i, b.Constraint.ID())
		}
	}
	return nil
}
