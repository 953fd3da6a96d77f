package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDeltaTime       = 0.01
	DefaultSteps           = 200
	DefaultMaxIterations   = 20
	DefaultTolerance       = 1e-6
	DefaultLineSearchScale = 1.25
	DefaultPredictor       = "symplectic"
	DefaultGravityZ        = -9.81
)

var ErrInvalidScenario = errors.New("config: invalid scenario")

// Scenario describes a particle system, the constraints acting on it and
// how long to integrate. Positions and velocities are flat xyz triples.
type Scenario struct {
	Name            string             `yaml:"name"`
	Description     string             `yaml:"description,omitempty"`
	DeltaTime       float64            `yaml:"delta_time"`
	Steps           int                `yaml:"steps"`
	Gravity         []float64          `yaml:"gravity"`
	Predictor       string             `yaml:"predictor"`
	Settings        SettingsConfig     `yaml:"settings"`
	LineSearchScale float64            `yaml:"line_search_scale"`
	Workers         int                `yaml:"workers,omitempty"`
	Freeze          *FreezeConfig      `yaml:"freeze,omitempty"`
	Positions       []float64          `yaml:"positions"`
	Velocities      []float64          `yaml:"velocities,omitempty"`
	Constraints     []ConstraintConfig `yaml:"constraints"`
}

type SettingsConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

type FreezeConfig struct {
	Damping      float64 `yaml:"damping"`
	MaxStiffness float64 `yaml:"max_stiffness"`
}

// ConstraintConfig binds one registry constraint to a particle. DOFs maps
// the x, y and z gradient axes to position indices.
type ConstraintConfig struct {
	Type   string         `yaml:"type"`
	ID     string         `yaml:"id"`
	DOFs   []int          `yaml:"dofs"`
	Probe  ProbeConfig    `yaml:"probe"`
	Params map[string]any `yaml:"params,omitempty"`
}

// ProbeConfig selects how positions become a constraint state.
type ProbeConfig struct {
	Kind          string    `yaml:"kind"`
	Normal        []float64 `yaml:"normal,omitempty"`
	Point         []float64 `yaml:"point,omitempty"`
	Anchor        []float64 `yaml:"anchor,omitempty"`
	Direction     []float64 `yaml:"direction,omitempty"`
	Rest          float64   `yaml:"rest,omitempty"`
	Gap           float64   `yaml:"gap,omitempty"`
	MaxGap        float64   `yaml:"max_gap,omitempty"`
	Stiffness     float64   `yaml:"stiffness,omitempty"`
	EffectiveMass float64   `yaml:"effective_mass,omitempty"`
	ContactForce  float64   `yaml:"contact_force,omitempty"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:      "default",
		DeltaTime: DefaultDeltaTime,
		Steps:     DefaultSteps,
		Gravity:   []float64{0, 0, DefaultGravityZ},
		Predictor: DefaultPredictor,
		Settings: SettingsConfig{
			MaxIterations: DefaultMaxIterations,
			Tolerance:     DefaultTolerance,
		},
		LineSearchScale: DefaultLineSearchScale,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over DefaultScenario and validates the result.
func Parse(data []byte) (*Scenario, error) {
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scenario) Validate() error {
	if !(s.DeltaTime > 0) {
		return fmt.Errorf("%w: delta_time must be positive, got %v", ErrInvalidScenario, s.DeltaTime)
	}
	if s.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidScenario, s.Steps)
	}
	if len(s.Positions)%3 != 0 {
		return fmt.Errorf("%w: positions must be xyz triples, got %d values", ErrInvalidScenario, len(s.Positions))
	}
	if len(s.Velocities) != 0 && len(s.Velocities) != len(s.Positions) {
		return fmt.Errorf("%w: %d velocities for %d positions", ErrInvalidScenario, len(s.Velocities), len(s.Positions))
	}
	if len(s.Gravity) != 0 && len(s.Gravity) != 3 {
		return fmt.Errorf("%w: gravity must have 3 components", ErrInvalidScenario)
	}
	for i, c := range s.Constraints {
		if c.Type == "" {
			return fmt.Errorf("%w: constraint %d has no type", ErrInvalidScenario, i)
		}
		if len(c.DOFs) == 0 {
			return fmt.Errorf("%w: constraint %d (%s) has no dofs", ErrInvalidScenario, i, c.ID)
		}
	}
	return nil
}

// InitialVelocities returns the configured velocities or zeros.
func (s *Scenario) InitialVelocities() []float64 {
	v := make([]float64, len(s.Positions))
	copy(v, s.Velocities)
	return v
}

// Particle returns the DOF map of particle i.
func Particle(i int) []int {
	return []int{3 * i, 3*i + 1, 3*i + 2}
}
