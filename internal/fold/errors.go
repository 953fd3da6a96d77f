package fold

import (
	"errors"
	"fmt"

	"github.com/san-kum/fold/internal/vecmath"
)

// Domain errors for kernel operations.
var (
	// ErrInvalidMatrixShape indicates a matrix with the wrong number of rows or columns.
	ErrInvalidMatrixShape = vecmath.ErrInvalidMatrixShape

	// ErrInvalidInput indicates non-finite values or malformed configuration.
	ErrInvalidInput = vecmath.ErrInvalidInput

	// ErrUnknownType indicates a constraint type tag with no registered factory.
	ErrUnknownType = errors.New("fold: unknown constraint type")

	// ErrParameterBounds indicates a configuration value outside its valid range.
	ErrParameterBounds = errors.New("fold: parameter out of valid bounds")
)

// EvaluationError wraps an error with the constraint that produced it.
type EvaluationError struct {
	ConstraintID string
	Type         Type
	Iteration    int
	Wrapped      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("constraint %q (%s) at iteration %d: %v", e.ConstraintID, e.Type, e.Iteration, e.Wrapped)
}

func (e *EvaluationError) Unwrap() error {
	return e.Wrapped
}
