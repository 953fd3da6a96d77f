package integrators

import "errors"

// Domain errors for integrator operations.
var (
	// ErrInvalidStep indicates a non-positive or non-finite time step.
	ErrInvalidStep = errors.New("integrators: time step must be positive and finite")

	// ErrDimensionMismatch indicates positions and velocities of different lengths.
	ErrDimensionMismatch = errors.New("integrators: dimension mismatch between positions and velocities")

	// ErrDOFMap indicates a binding without a usable constraint-to-DOF map.
	ErrDOFMap = errors.New("integrators: invalid constraint DOF map")

	// ErrInvalidBinding indicates a binding without a constraint or probe.
	ErrInvalidBinding = errors.New("integrators: binding needs a constraint and a probe")

	// ErrUnknownPredictor indicates an unregistered predictor name.
	ErrUnknownPredictor = errors.New("integrators: unknown predictor")
)
