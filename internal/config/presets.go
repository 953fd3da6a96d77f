package config

import "sort"

var presets = map[string]func() *Scenario{
	"drop": func() *Scenario {
		sc := DefaultScenario()
		sc.Name = "drop"
		sc.Description = "single particle falling onto a floor"
		sc.Positions = []float64{0, 0, 0.5}
		sc.Constraints = []ConstraintConfig{{
			Type:   "wall-barrier",
			ID:     "floor",
			DOFs:   Particle(0),
			Probe:  ProbeConfig{Kind: "plane", Normal: []float64{0, 0, 1}},
			Params: map[string]any{"stiffness": 1e4},
		}}
		return sc
	},
	"slide": func() *Scenario {
		sc := DefaultScenario()
		sc.Name = "slide"
		sc.Description = "particle sliding on a frictional floor"
		sc.Steps = 150
		sc.Positions = []float64{0, 0, 0}
		sc.Velocities = []float64{2, 0, 0}
		sc.Constraints = []ConstraintConfig{{
			Type:   "contact-barrier",
			ID:     "ground",
			DOFs:   Particle(0),
			Probe:  ProbeConfig{Kind: "plane", Normal: []float64{0, 0, 1}},
			Params: map[string]any{"stiffness": 1e4, "friction": 0.4},
		}}
		return sc
	},
	"tether": func() *Scenario {
		sc := DefaultScenario()
		sc.Name = "tether"
		sc.Description = "particle hanging from an anchor with a strain limit"
		sc.Positions = []float64{0.5, 0, -0.9}
		sc.Constraints = []ConstraintConfig{{
			Type:   "strain-barrier",
			ID:     "cord",
			DOFs:   Particle(0),
			Probe:  ProbeConfig{Kind: "stretch", Anchor: []float64{0, 0, 0}, Rest: 1},
			Params: map[string]any{"max_stretch": 1.05, "min_compression": 0, "stiffness": 1e4},
		}}
		return sc
	},
	"sphere": func() *Scenario {
		sc := DefaultScenario()
		sc.Name = "sphere"
		sc.Description = "particle landing on a spherical obstacle"
		sc.Positions = []float64{0.1, 0, 1.4}
		sc.Constraints = []ConstraintConfig{{
			Type:  "gap-evaluator",
			ID:    "ball",
			DOFs:  Particle(0),
			Probe: ProbeConfig{Kind: "point"},
			Params: map[string]any{
				"anchor": []any{0.0, 0.0, 0.0},
				"radius": 1.0,
				"inner": map[string]any{
					"type":   "cubic-barrier",
					"params": map[string]any{"stiffness": 1e4},
				},
			},
		}}
		return sc
	},
	"pinned": func() *Scenario {
		sc := DefaultScenario()
		sc.Name = "pinned"
		sc.Description = "two particles, one pinned at height, one on the floor"
		sc.Positions = []float64{0, 0, 1, 1, 0, 0.2}
		sc.Constraints = []ConstraintConfig{
			{
				Type: "pin-barrier",
				ID:   "pin",
				DOFs: Particle(0),
				Probe: ProbeConfig{
					Kind:      "plane",
					Normal:    []float64{0, 0, 1},
					Point:     []float64{0, 0, 1},
					Stiffness: 1e5,
				},
			},
			{
				Type: "assembly",
				ID:   "floor",
				DOFs: Particle(1),
				Probe: ProbeConfig{
					Kind:         "plane",
					Normal:       []float64{0, 0, 1},
					Stiffness:    1e4,
					ContactForce: 9.81,
				},
				Params: map[string]any{
					"children": []any{
						map[string]any{"type": "wall-barrier"},
						map[string]any{"type": "friction", "params": map[string]any{"coefficient": 0.3}},
					},
				},
			},
		}
		sc.Freeze = &FreezeConfig{Damping: 0.5, MaxStiffness: 1e8}
		return sc
	},
}

// GetPreset returns a fresh copy of the named scenario, or nil.
func GetPreset(name string) *Scenario {
	f, ok := presets[name]
	if !ok {
		return nil
	}
	return f()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
