package integrators

import (
	"fmt"
	"sort"
)

// Predictor advances positions and velocities under a constant external
// acceleration before constraints are resolved.
type Predictor interface {
	Predict(x, v, accel []float64, dt float64)
}

// Euler is the explicit scheme: positions use the old velocities.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (Euler) Predict(x, v, accel []float64, dt float64) {
	for i := range x {
		x[i] += v[i] * dt
		v[i] += accelAt(accel, i) * dt
	}
}

// SymplecticEuler updates velocities first and moves positions with them.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler { return &SymplecticEuler{} }

func (SymplecticEuler) Predict(x, v, accel []float64, dt float64) {
	for i := range x {
		v[i] += accelAt(accel, i) * dt
		x[i] += v[i] * dt
	}
}

// Verlet is velocity Verlet for a constant acceleration.
type Verlet struct{}

func NewVerlet() *Verlet { return &Verlet{} }

func (Verlet) Predict(x, v, accel []float64, dt float64) {
	dt2 := dt * dt
	for i := range x {
		a := accelAt(accel, i)
		x[i] += v[i]*dt + 0.5*a*dt2
		v[i] += a * dt
	}
}

func accelAt(accel []float64, i int) float64 {
	if i < len(accel) {
		return accel[i]
	}
	return 0
}

var predictors = map[string]func() Predictor{
	"euler":      func() Predictor { return NewEuler() },
	"symplectic": func() Predictor { return NewSymplecticEuler() },
	"verlet":     func() Predictor { return NewVerlet() },
}

// NewPredictor returns the predictor registered under name.
func NewPredictor(name string) (Predictor, error) {
	f, ok := predictors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPredictor, name)
	}
	return f(), nil
}

func PredictorNames() []string {
	names := make([]string, 0, len(predictors))
	for name := range predictors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
