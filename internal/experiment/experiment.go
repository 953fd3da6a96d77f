package experiment

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/san-kum/fold/internal/config"
	"github.com/san-kum/fold/internal/fold"
	"github.com/san-kum/fold/internal/integrators"
)

// Runner integrates scenarios: a predictor step under gravity followed by
// one inexact Newton solve per time step.
type Runner struct {
	registry  *fold.Registry
	logger    *zap.Logger
	workers   int
	metrics   []Metric
	observers []Observer
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithWorkers sets the evaluation parallelism for scenarios that do not
// set their own.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

func New(reg *fold.Registry, opts ...Option) *Runner {
	if reg == nil {
		reg = fold.NewDefaultRegistry()
	}
	r := &Runner{registry: reg, logger: zap.NewNop(), workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Bindings builds one integrator binding per configured constraint. start
// must point at the step-start positions the plane probes measure tangential
// displacement against.
func (r *Runner) Bindings(sc *config.Scenario, start *[]float64) ([]integrators.Binding, error) {
	out := make([]integrators.Binding, 0, len(sc.Constraints))
	for i, cc := range sc.Constraints {
		params := fold.Params{}
		maps.Copy(params, cc.Params)
		if cc.ID != "" && !params.Has("id") {
			params["id"] = cc.ID
		}
		c, err := r.registry.Create(fold.Type(cc.Type), params)
		if err != nil {
			return nil, fmt.Errorf("constraint %d (%s): %w", i, cc.ID, err)
		}
		b, err := strainBand(fold.Type(cc.Type), params)
		if err != nil {
			return nil, fmt.Errorf("constraint %d (%s): %w", i, cc.ID, err)
		}
		probe, err := newProbe(cc.Probe, cc.DOFs, start, b)
		if err != nil {
			return nil, fmt.Errorf("constraint %d (%s): %w", i, cc.ID, err)
		}
		dofs := make([]int, len(cc.DOFs))
		copy(dofs, cc.DOFs)
		out = append(out, integrators.Binding{Constraint: c, DOFs: dofs, Probe: probe})
	}
	return out, nil
}

func (r *Runner) Run(ctx context.Context, sc *config.Scenario) (*Result, error) {
	if sc == nil {
		return nil, ErrNilScenario
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	predictorName := sc.Predictor
	if predictorName == "" {
		predictorName = config.DefaultPredictor
	}
	predictor, err := integrators.NewPredictor(predictorName)
	if err != nil {
		return nil, err
	}

	x := make([]float64, len(sc.Positions))
	copy(x, sc.Positions)
	v := sc.InitialVelocities()
	start := make([]float64, len(x))
	copy(start, x)

	bindings, err := r.Bindings(sc, &start)
	if err != nil {
		return nil, err
	}

	accel := make([]float64, len(x))
	if len(sc.Gravity) == 3 {
		for i := range accel {
			accel[i] = sc.Gravity[i%3]
		}
	}

	workers := r.workers
	if sc.Workers > 0 {
		workers = sc.Workers
	}
	newton := integrators.NewInexactNewton(
		integrators.WithLogger(r.logger.Named("newton")),
		integrators.WithWorkers(workers),
	)

	st := &integrators.State{
		Positions:  x,
		Velocities: v,
		Bindings:   bindings,
		Settings: integrators.Settings{
			MaxIterations: sc.Settings.MaxIterations,
			Tolerance:     sc.Settings.Tolerance,
		},
	}
	opts := integrators.DefaultStepOptions(sc.DeltaTime)
	if sc.LineSearchScale > 0 {
		opts.LineSearchScale = sc.LineSearchScale
	}
	if sc.Freeze != nil {
		opts.Freeze = &fold.FreezeOptions{
			Damping:      sc.Freeze.Damping,
			MaxStiffness: sc.Freeze.MaxStiffness,
		}
	}

	for _, m := range r.metrics {
		m.Reset()
	}
	result := &Result{
		Scenario: sc.Name,
		Records:  make([]StepRecord, 0, sc.Steps),
		Metrics:  make(map[string]float64),
	}

	r.logger.Info("scenario started",
		zap.String("scenario", sc.Name),
		zap.Int("steps", sc.Steps),
		zap.Int("constraints", len(bindings)),
		zap.Int("workers", workers))

	for step := 0; step < sc.Steps; step++ {
		select {
		case <-ctx.Done():
			r.finish(result, st)
			return result, ctx.Err()
		default:
		}

		copy(start, x)
		predictor.Predict(x, v, accel, sc.DeltaTime)

		res, err := newton.Step(ctx, st, opts)
		if err != nil {
			r.finish(result, st)
			return result, fmt.Errorf("step %d: %w", step+1, err)
		}

		rec := StepRecord{
			Step:       step + 1,
			Time:       float64(step+1) * sc.DeltaTime,
			Iterations: res.Iterations,
			Converged:  res.Converged,
			Beta:       res.Beta,
			Energy:     res.Energy,
			Positions:  append([]float64(nil), x...),
		}
		if !res.Converged {
			r.logger.Warn("newton did not converge",
				zap.Int("step", rec.Step),
				zap.Float64("energy", rec.Energy))
		}
		for _, m := range r.metrics {
			m.Observe(rec)
		}
		for _, o := range r.observers {
			o.OnStep(rec)
		}
		result.Records = append(result.Records, rec)
	}

	r.finish(result, st)
	r.logger.Info("scenario finished",
		zap.String("scenario", sc.Name),
		zap.Any("metrics", result.Metrics))
	return result, nil
}

func (r *Runner) finish(result *Result, st *integrators.State) {
	result.Positions = append([]float64(nil), st.Positions...)
	result.Velocities = append([]float64(nil), st.Velocities...)
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
