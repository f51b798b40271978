// Package permission resuelve roles y grupos efectivos de un usuario.
//
// Un usuario tiene un rol si existe una arista directa activa user→role, o
// si pertenece (activo) a un grupo que tiene el rol (activo). Una arista está
// activa mientras archived_at sea nulo o posterior a "ahora".
//
// No hay cache: cada consulta va al store y ve el estado confirmado.
package permission

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

// Nombres de rol conocidos por el sistema.
const (
	RoleUser          = "role.user"
	RoleSecurityAdmin = "role.security.admin"
	RoleUsersRead     = "role.users.read"
	RoleUsersManage   = "role.users.manage"
	RoleGroupsManage  = "role.groups.manage"

	GroupUser = "group.user"
)

// Resolver consulta el grafo de permisos en el Identity Store.
type Resolver struct {
	grants repository.GrantReader
	now    func() time.Time
}

// Option configura el Resolver.
type Option func(*Resolver)

// WithClock inyecta el reloj usado para evaluar archived_at.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func NewResolver(grants repository.GrantReader, opts ...Option) *Resolver {
	r := &Resolver{grants: grants, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// HasRole es true si el usuario tiene el rol directo o vía un grupo.
func (r *Resolver) HasRole(ctx context.Context, userID int64, roleName string) (bool, error) {
	now := r.now()
	ok, err := r.grants.HasDirectRole(ctx, userID, roleName, now)
	if err != nil {
		return false, fmt.Errorf("permission: direct role %q: %w", roleName, err)
	}
	if ok {
		return true, nil
	}
	ok, err = r.grants.HasGroupRole(ctx, userID, roleName, now)
	if err != nil {
		return false, fmt.Errorf("permission: group role %q: %w", roleName, err)
	}
	return ok, nil
}

// HasAnyRole corta en el primer rol presente.
func (r *Resolver) HasAnyRole(ctx context.Context, userID int64, roleNames ...string) (bool, error) {
	for _, name := range roleNames {
		ok, err := r.HasRole(ctx, userID, name)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (r *Resolver) HasGroup(ctx context.Context, userID int64, groupName string) (bool, error) {
	ok, err := r.grants.HasGroup(ctx, userID, groupName, r.now())
	if err != nil {
		return false, fmt.Errorf("permission: group %q: %w", groupName, err)
	}
	return ok, nil
}

// FindAssignedRoles devuelve sólo los roles directos activos.
func (r *Resolver) FindAssignedRoles(ctx context.Context, userID int64) ([]repository.Role, error) {
	roles, err := r.grants.DirectRoles(ctx, userID, r.now())
	if err != nil {
		return nil, fmt.Errorf("permission: assigned roles: %w", err)
	}
	return roles, nil
}

func (r *Resolver) FindAssignedGroups(ctx context.Context, userID int64) ([]repository.Group, error) {
	groups, err := r.grants.MemberGroups(ctx, userID, r.now())
	if err != nil {
		return nil, fmt.Errorf("permission: assigned groups: %w", err)
	}
	return groups, nil
}

// FindIndirectRoles devuelve los roles obtenidos vía grupos que el usuario no
// tiene asignados directamente, sin duplicados.
func (r *Resolver) FindIndirectRoles(ctx context.Context, userID int64) ([]repository.Role, error) {
	now := r.now()
	direct, err := r.grants.DirectRoles(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("permission: indirect roles: %w", err)
	}
	viaGroups, err := r.grants.GroupRoles(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("permission: indirect roles: %w", err)
	}

	seen := make(map[int64]struct{}, len(direct)+len(viaGroups))
	for _, d := range direct {
		seen[d.ID] = struct{}{}
	}
	out := make([]repository.Role, 0, len(viaGroups))
	for _, role := range viaGroups {
		if _, dup := seen[role.ID]; dup {
			continue
		}
		seen[role.ID] = struct{}{}
		out = append(out, role)
	}
	return out, nil
}

// RoleNames proyecta nombres conservando el orden.
func RoleNames(roles []repository.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out
}

func GroupNames(groups []repository.Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Name)
	}
	return out
}
