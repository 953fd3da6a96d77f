package metrics

import "github.com/san-kum/fold/internal/experiment"

// Convergence is the fraction of steps whose Newton solve converged.
type Convergence struct {
	name      string
	converged int
	samples   int
}

func NewConvergence() *Convergence {
	return &Convergence{name: "convergence_rate"}
}

func (c *Convergence) Name() string { return c.name }

func (c *Convergence) Observe(rec experiment.StepRecord) {
	c.samples++
	if rec.Converged {
		c.converged++
	}
}

func (c *Convergence) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return float64(c.converged) / float64(c.samples)
}

func (c *Convergence) Reset() {
	c.converged = 0
	c.samples = 0
}

type MeanIterations struct {
	name    string
	total   int
	samples int
}

func NewMeanIterations() *MeanIterations {
	return &MeanIterations{name: "mean_iterations"}
}

func (m *MeanIterations) Name() string { return m.name }

func (m *MeanIterations) Observe(rec experiment.StepRecord) {
	m.total += rec.Iterations
	m.samples++
}

func (m *MeanIterations) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.total) / float64(m.samples)
}

func (m *MeanIterations) Reset() {
	m.total = 0
	m.samples = 0
}

// FinalBeta reports the damping accumulated by the end of the run.
type FinalBeta struct {
	name string
	beta float64
}

func NewFinalBeta() *FinalBeta {
	return &FinalBeta{name: "final_beta"}
}

func (b *FinalBeta) Name() string { return b.name }

func (b *FinalBeta) Observe(rec experiment.StepRecord) { b.beta = rec.Beta }

func (b *FinalBeta) Value() float64 { return b.beta }

func (b *FinalBeta) Reset() { b.beta = 0 }

// Default returns the metrics the CLI attaches to every run.
func Default() []experiment.Metric {
	return []experiment.Metric{
		NewPeakEnergy(),
		NewMeanEnergy(),
		NewConvergence(),
		NewMeanIterations(),
		NewFinalBeta(),
	}
}
