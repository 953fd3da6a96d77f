package fold

import (
	"fmt"

	"github.com/san-kum/fold/internal/vecmath"
)

// Params is a decoded configuration object, typically straight from YAML.
type Params map[string]any

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidInput, key, v)
	}
	return f, nil
}

func (p Params) RequireFloat(key string) (float64, error) {
	if !p.Has(key) {
		return 0, fmt.Errorf("%w: missing required %s", ErrInvalidInput, key)
	}
	return p.Float(key, 0)
}

// OptFloat returns nil when key is absent.
func (p Params) OptFloat(key string) (*float64, error) {
	if v, ok := p[key]; !ok || v == nil {
		return nil, nil
	}
	f, err := p.Float(key, 0)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Vec returns nil when key is absent.
func (p Params) Vec(key string) (*vecmath.Vec3, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var comps []float64
	switch s := raw.(type) {
	case []float64:
		comps = s
	case []any:
		comps = make([]float64, 0, len(s))
		for _, c := range s {
			f, ok := toFloat(c)
			if !ok {
				return nil, fmt.Errorf("%w: %s has non-numeric component %v", ErrInvalidInput, key, c)
			}
			comps = append(comps, f)
		}
	case vecmath.Vec3:
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a 3-vector, got %T", ErrInvalidInput, key, raw)
	}
	v, err := vecmath.VecFromSlice(comps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &v, nil
}

func (p Params) String(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a bool, got %T", ErrInvalidInput, key, v)
	}
	return b, nil
}

// Object returns a nested object; ok is false when key is absent.
func (p Params) Object(key string) (Params, bool, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	m, ok := toParams(raw)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s must be an object, got %T", ErrInvalidInput, key, raw)
	}
	return m, true, nil
}

func (p Params) List(key string) ([]Params, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var items []any
	switch s := raw.(type) {
	case []any:
		items = s
	case []Params:
		return s, nil
	case []map[string]any:
		out := make([]Params, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list, got %T", ErrInvalidInput, key, raw)
	}
	out := make([]Params, 0, len(items))
	for i, it := range items {
		m, ok := toParams(it)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object, got %T", ErrInvalidInput, key, i, it)
		}
		out = append(out, m)
	}
	return out, nil
}

func toParams(v any) (Params, bool) {
	switch m := v.(type) {
	case Params:
		return m, true
	case map[string]any:
		return Params(m), true
	case map[any]any:
		out := make(Params, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}
