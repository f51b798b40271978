package rules

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/warden/internal/authz"
)

const SecurityAdminName = "security_admin"

// Deps que pueden requerir los constructores del catálogo.
type Deps struct {
	Roles             RoleChecker
	SecurityAdminRole string
}

type Constructor func(Deps) (authz.Rule, error)

// Catalog mapea nombre de config → constructor. Es fijo en compilación.
var Catalog = map[string]Constructor{
	SecurityAdminName: func(d Deps) (authz.Rule, error) {
		if d.Roles == nil {
			return nil, fmt.Errorf("rules: %s needs a role checker", SecurityAdminName)
		}
		return NewSecurityAdmin(d.Roles, d.SecurityAdminRole), nil
	},
}

// Build instancia las reglas nombradas, en orden. Un nombre desconocido es error.
func Build(names []string, d Deps) ([]authz.Rule, error) {
	out := make([]authz.Rule, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		ctor, ok := Catalog[n]
		if !ok {
			return nil, fmt.Errorf("rules: unknown rule %q", n)
		}
		r, err := ctor(d)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// NewRegistry es Build + authz.NewRegistry.
func NewRegistry(names []string, d Deps) (*authz.Registry, error) {
	rs, err := Build(names, d)
	if err != nil {
		return nil, err
	}
	return authz.NewRegistry(rs...)
}
