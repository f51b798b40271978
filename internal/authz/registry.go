package authz

import (
	"context"
	"fmt"
)

// Rule es una regla de override: si devuelve true la request queda autorizada
// sin consultar el predicado del recurso.
type Rule interface {
	Name() string
	Process(ctx context.Context, rc *RequestContext) (bool, error)
}

// Authorizable lo implementan los handlers de rutas protegidas.
type Authorizable interface {
	Authorize(ctx context.Context, rc *RequestContext) (bool, error)
}

// AuthorizeFunc adapta una función a Authorizable.
type AuthorizeFunc func(ctx context.Context, rc *RequestContext) (bool, error)

func (f AuthorizeFunc) Authorize(ctx context.Context, rc *RequestContext) (bool, error) {
	return f(ctx, rc)
}

// Registry es la lista ordenada e inmutable de reglas activas.
type Registry struct {
	rules []Rule
}

// NewRegistry fija las reglas en el orden dado. Rechaza nil y nombres repetidos.
func NewRegistry(rules ...Rule) (*Registry, error) {
	seen := make(map[string]struct{}, len(rules))
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("%w at position %d", ErrNilRule, i)
		}
		if _, dup := seen[r.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, r.Name())
		}
		seen[r.Name()] = struct{}{}
		out = append(out, r)
	}
	return &Registry{rules: out}, nil
}

// All devuelve una copia de las reglas.
func (g *Registry) All() []Rule {
	if g == nil {
		return nil
	}
	return append([]Rule(nil), g.rules...)
}

func (g *Registry) Len() int {
	if g == nil {
		return 0
	}
	return len(g.rules)
}

// Evaluate corre las reglas en orden; corta en la primera que autoriza.
// Devuelve el nombre de esa regla.
func (g *Registry) Evaluate(ctx context.Context, rc *RequestContext) (string, bool, error) {
	if g == nil {
		return "", false, nil
	}
	for _, r := range g.rules {
		ok, err := r.Process(ctx, rc)
		if err != nil {
			return r.Name(), false, fmt.Errorf("rule %s: %w", r.Name(), err)
		}
		if ok {
			return r.Name(), true, nil
		}
	}
	return "", false, nil
}
