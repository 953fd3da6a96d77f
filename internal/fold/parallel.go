package fold

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// EvaluateAll evaluates cs[i] against states[i]. Each evaluation writes only
// its own slot, so workers > 1 fans the work out without further locking.
// Disabled constraints yield the zero evaluation; a non-finite result is
// reported as an EvaluationError.
func EvaluateAll(ctx context.Context, cs []Constraint, states []State, fctx Context, workers int) ([]Evaluation, error) {
	if len(cs) != len(states) {
		return nil, fmt.Errorf("%w: %d constraints but %d states", ErrInvalidInput, len(cs), len(states))
	}
	out := make([]Evaluation, len(cs))

	eval := func(i int) error {
		c := cs[i]
		if c == nil || !c.Enabled() {
			return nil
		}
		e := c.Evaluate(states[i], fctx)
		if !e.IsFinite() {
			return &EvaluationError{
				ConstraintID: c.ID(),
				Type:         c.Type(),
				Iteration:    fctx.Iteration,
				Wrapped:      ErrInvalidInput,
			}
		}
		out[i] = e
		return nil
	}

	if workers <= 1 || len(cs) < 2 {
		for i := range cs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := eval(i); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range cs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return eval(i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
