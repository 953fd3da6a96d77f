package integrators

import "github.com/san-kum/fold/internal/fold"

type Settings struct {
	MaxIterations int
	Tolerance     float64
}

func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 20,
		Tolerance:     1e-6,
	}
}

// Probe builds the local constraint state from the current positions.
type Probe func(positions []float64) fold.State

// Binding attaches a constraint to the degrees of freedom it acts on.
// DOFs[a] is the position index driven by gradient axis a (x, y, z); -1
// leaves an axis unmapped.
type Binding struct {
	Constraint fold.Constraint
	DOFs       []int
	Probe      Probe
}

// State is the integrator input. Positions and Velocities are owned by the
// caller and updated in place.
type State struct {
	Positions  []float64
	Velocities []float64
	Bindings   []Binding
	Settings   Settings
	// Beta is the damping accumulated across steps.
	Beta float64
}

type StepOptions struct {
	DeltaTime       float64
	LineSearchScale float64
	// Freeze enables the stiffening schedule between Newton iterations. The
	// frozen value replaces the probed stiffness when larger; constraints built
	// with a stiffness override ignore it.
	Freeze *fold.FreezeOptions
	SPD    fold.SPDOptions
}

func DefaultStepOptions(dt float64) StepOptions {
	return StepOptions{
		DeltaTime:       dt,
		LineSearchScale: 1.25,
		SPD:             fold.DefaultSPDOptions(),
	}
}

type Result struct {
	Positions  []float64
	Velocities []float64
	Beta       float64
	Iterations int
	Converged  bool
	// Energy is the total constraint energy at the last evaluation.
	Energy float64
}
