package experiment

import "errors"

var (
	ErrUnknownProbe = errors.New("experiment: unknown probe kind")
	ErrNilScenario  = errors.New("experiment: nil scenario")
)

// StepRecord summarises one time step.
type StepRecord struct {
	Step       int
	Time       float64
	Iterations int
	Converged  bool
	Beta       float64
	Energy     float64
	Positions  []float64
}

// Metric folds step records into a single value.
type Metric interface {
	Name() string
	Observe(rec StepRecord)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(rec StepRecord)
}

type ObserverFunc func(rec StepRecord)

func (f ObserverFunc) OnStep(rec StepRecord) { f(rec) }

type Result struct {
	Scenario   string
	Records    []StepRecord
	Metrics    map[string]float64
	Positions  []float64
	Velocities []float64
}
