package repository

import (
	"context"
	"time"
)

// Role es un átomo de permiso identificado por nombre único.
type Role struct {
	ID          int64
	Name        string
	Description string
}

// Group agrupa roles bajo un nombre único.
type Group struct {
	ID          int64
	Name        string
	Description string
}

// Edge son los campos comunes de user_has_role, user_has_group y group_has_role.
type Edge struct {
	Audit
	ArchivedAt *time.Time
	ArchivedBy *int64
}

// ActiveAt indica si la arista está vigente en el instante dado: archived_at
// nulo o en el futuro.
func (e Edge) ActiveAt(now time.Time) bool {
	return e.ArchivedAt == nil || e.ArchivedAt.After(now)
}

// UserRole es la arista user_has_role.
type UserRole struct {
	UserID int64
	RoleID int64
	Edge
}

// UserGroup es la arista user_has_group.
type UserGroup struct {
	UserID  int64
	GroupID int64
	Edge
}

// GroupRole es la arista group_has_role.
type GroupRole struct {
	GroupID int64
	RoleID  int64
	Edge
}

// GrantReader son las lecturas que necesita el Permission Resolver.
// Todas filtran aristas archivadas respecto de "now" y devuelven vacío/false
// para usuarios inexistentes.
type GrantReader interface {
	// DirectRoles: roles con arista user_has_role activa.
	DirectRoles(ctx context.Context, userID int64, now time.Time) ([]Role, error)

	// MemberGroups: grupos con arista user_has_group activa.
	MemberGroups(ctx context.Context, userID int64, now time.Time) ([]Group, error)

	// GroupRoles: roles alcanzables desde los grupos activos del usuario
	// (user_has_group y group_has_role activas). Puede repetir roles.
	GroupRoles(ctx context.Context, userID int64, now time.Time) ([]Role, error)

	// HasDirectRole: existe user_has_role activa hacia el rol con ese nombre.
	HasDirectRole(ctx context.Context, userID int64, roleName string, now time.Time) (bool, error)

	// HasGroupRole: existe el camino user_has_group → group_has_role → role
	// con las tres aristas activas.
	HasGroupRole(ctx context.Context, userID int64, roleName string, now time.Time) (bool, error)

	// HasGroup: existe user_has_group activa hacia el grupo con ese nombre.
	HasGroup(ctx context.Context, userID int64, groupName string, now time.Time) (bool, error)
}

// CatalogRepository administra roles y grupos.
type CatalogRepository interface {
	// GetRoleByName retorna ErrNotFound si no existe.
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	// GetGroupByName retorna ErrNotFound si no existe.
	GetGroupByName(ctx context.Context, name string) (*Group, error)

	// CreateRole retorna ErrConflict si el nombre ya existe.
	CreateRole(ctx context.Context, name, description string, executorID int64) (*Role, error)
	// CreateGroup retorna ErrConflict si el nombre ya existe.
	CreateGroup(ctx context.Context, name, description string, executorID int64) (*Group, error)

	ListRoles(ctx context.Context) ([]Role, error)
	ListGroups(ctx context.Context) ([]Group, error)
}

// GrantRepository escribe aristas. Asignar una arista archivada la reactiva;
// archivar una arista inexistente (o ya archivada) retorna ErrNotFound.
type GrantRepository interface {
	AssignRole(ctx context.Context, userID, roleID, executorID int64) error
	ArchiveRole(ctx context.Context, userID, roleID, executorID int64) error
	// DeleteRole borra físicamente la arista (no deja rastro de auditoría).
	DeleteRole(ctx context.Context, userID, roleID int64) error

	AddToGroup(ctx context.Context, userID, groupID, executorID int64) error
	ArchiveGroupMembership(ctx context.Context, userID, groupID, executorID int64) error

	GrantGroupRole(ctx context.Context, groupID, roleID, executorID int64) error
	ArchiveGroupRole(ctx context.Context, groupID, roleID, executorID int64) error
}
