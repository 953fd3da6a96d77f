package fold

import (
	"fmt"
	"sync"
)

// Factory builds independent constraint instances of one type.
type Factory struct {
	Type   Type
	Create func(Params) (Constraint, error)
}

// Registry maps type tags to factories. Registering a tag twice replaces the
// earlier factory but keeps its position in List.
type Registry struct {
	mu        sync.RWMutex
	factories map[Type]Factory
	order     []Type
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[Type]Factory)}
}

// NewDefaultRegistry returns a registry with every built-in constraint kind.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range builtinFactories(r) {
		_ = r.Register(f)
	}
	return r
}

func (r *Registry) Register(f Factory) error {
	if f.Type == "" {
		return fmt.Errorf("%w: factory has empty type", ErrInvalidInput)
	}
	if f.Create == nil {
		return fmt.Errorf("%w: factory %s has no constructor", ErrInvalidInput, f.Type)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[f.Type]; !exists {
		r.order = append(r.order, f.Type)
	}
	r.factories[f.Type] = f
	return nil
}

func (r *Registry) Get(t Type) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[t]
	return f, ok
}

// List returns the factories in registration order.
func (r *Registry) List() []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Factory, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.factories[t])
	}
	return out
}

func (r *Registry) Create(t Type, p Params) (Constraint, error) {
	f, ok := r.Get(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	if p == nil {
		p = Params{}
	}
	c, err := f.Create(p)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", t, err)
	}
	return c, nil
}

// createNested builds a constraint from a {type, params} object.
func (r *Registry) createNested(def Params) (Constraint, error) {
	t := Type(def.String("type", ""))
	if t == "" {
		return nil, fmt.Errorf("%w: nested constraint has no type", ErrInvalidInput)
	}
	params, _, err := def.Object("params")
	if err != nil {
		return nil, err
	}
	return r.Create(t, params)
}

func builtinFactories(r *Registry) []Factory {
	return []Factory{
		{Type: TypeCubicBarrier, Create: func(p Params) (Constraint, error) {
			var cfg CubicConfig
			var err error
			if cfg.ID, cfg.Disabled, err = identity(p); err != nil {
				return nil, err
			}
			if cfg.StiffnessOverride, err = p.Float("stiffness", 0); err != nil {
				return nil, err
			}
			if cfg.MaxGap, err = p.OptFloat("max_gap"); err != nil {
				return nil, err
			}
			if cfg.Direction, err = p.Vec("direction"); err != nil {
				return nil, err
			}
			return NewCubicBarrier(cfg), nil
		}},
		{Type: TypeWallBarrier, Create: func(p Params) (Constraint, error) {
			var cfg WallConfig
			var err error
			if cfg.ID, cfg.Disabled, err = identity(p); err != nil {
				return nil, err
			}
			if cfg.StiffnessOverride, cfg.MaxGap, cfg.MaxStiffness, err = stiffnessParams(p); err != nil {
				return nil, err
			}
			if cfg.Normal, err = p.Vec("normal"); err != nil {
				return nil, err
			}
			if cfg.PlanePoint, err = p.Vec("plane_point"); err != nil {
				return nil, err
			}
			return NewWallBarrier(cfg), nil
		}},
		{Type: TypePinBarrier, Create: func(p Params) (Constraint, error) {
			var cfg PinConfig
			var err error
			if cfg.ID, cfg.Disabled, err = identity(p); err != nil {
				return nil, err
			}
			if cfg.StiffnessOverride, cfg.MaxGap, cfg.MaxStiffness, err = stiffnessParams(p); err != nil {
				return nil, err
			}
			if cfg.Direction, err = p.Vec("direction"); err != nil {
				return nil, err
			}
			return NewPinBarrier(cfg), nil
		}},
		{Type: TypeStrainBarrier, Create: func(p Params) (Constraint, error) {
			var cfg StrainConfig
			var err error
			if cfg.ID, cfg.Disabled, err = identity(p); err != nil {
				return nil, err
			}
			if cfg.MaxStretch, err = p.RequireFloat("max_stretch"); err != nil {
				return nil, err
			}
			if cfg.MinCompression, err = p.RequireFloat("min_compression"); err != nil {
				return nil, err
			}
			if cfg.StiffnessOverride, _, cfg.MaxStiffness, err = stiffnessParams(p); err != nil {
				return nil, err
			}
			b, err := NewStrainBarrier(cfg)
			if err != nil {
				return nil, err
			}
			return b, nil
		}},
		{Type: TypeFriction, Create: func(p Params) (Constraint, error) {
			cfg := DefaultFrictionConfig()
			var err error
			if cfg.ID, cfg.Disabled, err = identity(p); err != nil {
				return nil, err
			}
			if cfg.Coefficient, err = p.Float("coefficient", cfg.Coefficient); err != nil {
				return nil, err
			}
			if cfg.Epsilon, err = p.Float("epsilon", cfg.Epsilon); err != nil {
				return nil, err
			}
			return NewFrictionPotential(cfg), nil
		}},
		{Type: TypeContactBarrier, Create: func(p Params) (Constraint, error) {
			var cfg ContactConfig
			var err error
			if cfg.ID, cfg.Disabled, err = identity(p); err != nil {
				return nil, err
			}
			if cfg.StiffnessOverride, cfg.MaxGap, cfg.MaxStiffness, err = stiffnessParams(p); err != nil {
				return nil, err
			}
			if cfg.Friction, err = p.Float("friction", 0); err != nil {
				return nil, err
			}
			if cfg.Epsilon, err = p.Float("epsilon", DefaultFrictionEpsilon); err != nil {
				return nil, err
			}
			return NewContactBarrier(cfg), nil
		}},
		{Type: TypeAssembly, Create: func(p Params) (Constraint, error) {
			defs, err := p.List("children")
			if err != nil {
				return nil, err
			}
			children := make([]Constraint, 0, len(defs))
			for i, def := range defs {
				c, err := r.createNested(def)
				if err != nil {
					return nil, fmt.Errorf("child %d: %w", i, err)
				}
				children = append(children, c)
			}
			a := NewAssembly(p.String("id", ""), children...)
			disabled, err := p.Bool("disabled", false)
			if err != nil {
				return nil, err
			}
			a.disabled = disabled
			return a, nil
		}},
		{Type: TypeGapEvaluator, Create: func(p Params) (Constraint, error) {
			var cfg GapConfig
			var err error
			if cfg.ID, cfg.Disabled, err = identity(p); err != nil {
				return nil, err
			}
			anchor, err := p.Vec("anchor")
			if err != nil {
				return nil, err
			}
			if anchor != nil {
				cfg.Anchor = *anchor
			}
			if cfg.Radius, err = p.Float("radius", 0); err != nil {
				return nil, err
			}
			def, ok, err := p.Object("inner")
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: gap-evaluator needs an inner constraint", ErrInvalidInput)
			}
			inner, err := r.createNested(def)
			if err != nil {
				return nil, fmt.Errorf("inner: %w", err)
			}
			return NewGapEvaluator(cfg, inner), nil
		}},
	}
}

func identity(p Params) (string, bool, error) {
	disabled, err := p.Bool("disabled", false)
	return p.String("id", ""), disabled, err
}

func stiffnessParams(p Params) (override float64, maxGap *float64, maxK float64, err error) {
	if override, err = p.Float("stiffness", 0); err != nil {
		return
	}
	if maxGap, err = p.OptFloat("max_gap"); err != nil {
		return
	}
	maxK, err = p.Float("max_stiffness", DefaultMaxStiffness)
	return
}
