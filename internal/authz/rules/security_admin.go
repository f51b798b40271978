// Package rules contiene las reglas de override disponibles para el Registry.
package rules

import (
	"context"

	"github.com/dropDatabas3/warden/internal/authz"
	"github.com/dropDatabas3/warden/internal/permission"
)

// RoleChecker es lo que una regla necesita del Permission Resolver.
type RoleChecker interface {
	HasRole(ctx context.Context, userID int64, roleName string) (bool, error)
}

// SecurityAdmin autoriza cualquier ruta protegida si el principal tiene el rol
// de administrador de seguridad, directo o heredado de un grupo.
type SecurityAdmin struct {
	roles RoleChecker
	role  string
}

var _ authz.Rule = (*SecurityAdmin)(nil)

func NewSecurityAdmin(roles RoleChecker, role string) *SecurityAdmin {
	if role == "" {
		role = permission.RoleSecurityAdmin
	}
	return &SecurityAdmin{roles: roles, role: role}
}

func (s *SecurityAdmin) Name() string { return SecurityAdminName }

func (s *SecurityAdmin) Process(ctx context.Context, rc *authz.RequestContext) (bool, error) {
	if rc.PrincipalID() <= 0 {
		return false, nil
	}
	return s.roles.HasRole(ctx, rc.PrincipalID(), s.role)
}
