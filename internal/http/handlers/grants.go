package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/warden/internal/audit"
	"github.com/dropDatabas3/warden/internal/authz"
	"github.com/dropDatabas3/warden/internal/domain/repository"
	httperrors "github.com/dropDatabas3/warden/internal/http/errors"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/permission"
	"github.com/dropDatabas3/warden/internal/validation"
)

// grantOp resuelve los nombres del path a ids y aplica assign/archive.
type grantOp func(r *http.Request, executorID int64) error

type grantHandler struct {
	requireRole
	op     string
	assign grantOp
	revoke grantOp
}

func (h *grantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.FromContext(r.Context())
	if !ok {
		httperrors.WriteUnauthorized(w)
		return
	}
	var err error
	switch r.Method {
	case http.MethodPost:
		err = h.assign(r, p.UserID)
	case http.MethodDelete:
		err = h.revoke(r, p.UserID)
	default:
		err = httperrors.ErrMethodNotAllowed
	}
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	audit.Log(r.Context(), audit.EventGrantChanged, logger.Op(h.op), logger.Method(r.Method), logger.Path(r.URL.Path))
	w.WriteHeader(http.StatusNoContent)
}

// NewUserRoleGrant: POST/DELETE /v1/users/{userID}/roles/{role}
func NewUserRoleGrant(d Deps) http.Handler {
	lookup := func(r *http.Request) (int64, int64, error) {
		userID, err := pathUserID(r)
		if err != nil {
			return 0, 0, err
		}
		role, err := d.pathRole(r)
		if err != nil {
			return 0, 0, err
		}
		return userID, role.ID, nil
	}
	return &grantHandler{
		requireRole: requireRole{resolver: d.Resolver, role: permission.RoleUsersManage},
		op:          "user_role",
		assign: func(r *http.Request, exec int64) error {
			u, role, err := lookup(r)
			if err != nil {
				return err
			}
			return d.Store.Grants().AssignRole(r.Context(), u, role, exec)
		},
		revoke: func(r *http.Request, exec int64) error {
			u, role, err := lookup(r)
			if err != nil {
				return err
			}
			return d.Store.Grants().ArchiveRole(r.Context(), u, role, exec)
		},
	}
}

// NewUserGroupGrant: POST/DELETE /v1/users/{userID}/groups/{group}
func NewUserGroupGrant(d Deps) http.Handler {
	lookup := func(r *http.Request) (int64, int64, error) {
		userID, err := pathUserID(r)
		if err != nil {
			return 0, 0, err
		}
		g, err := d.pathGroup(r)
		if err != nil {
			return 0, 0, err
		}
		return userID, g.ID, nil
	}
	return &grantHandler{
		requireRole: requireRole{resolver: d.Resolver, role: permission.RoleGroupsManage},
		op:          "user_group",
		assign: func(r *http.Request, exec int64) error {
			u, g, err := lookup(r)
			if err != nil {
				return err
			}
			return d.Store.Grants().AddToGroup(r.Context(), u, g, exec)
		},
		revoke: func(r *http.Request, exec int64) error {
			u, g, err := lookup(r)
			if err != nil {
				return err
			}
			return d.Store.Grants().ArchiveGroupMembership(r.Context(), u, g, exec)
		},
	}
}

// NewGroupRoleGrant: POST/DELETE /v1/groups/{group}/roles/{role}
func NewGroupRoleGrant(d Deps) http.Handler {
	lookup := func(r *http.Request) (int64, int64, error) {
		g, err := d.pathGroup(r)
		if err != nil {
			return 0, 0, err
		}
		role, err := d.pathRole(r)
		if err != nil {
			return 0, 0, err
		}
		return g.ID, role.ID, nil
	}
	return &grantHandler{
		requireRole: requireRole{resolver: d.Resolver, role: permission.RoleGroupsManage},
		op:          "group_role",
		assign: func(r *http.Request, exec int64) error {
			g, role, err := lookup(r)
			if err != nil {
				return err
			}
			return d.Store.Grants().GrantGroupRole(r.Context(), g, role, exec)
		},
		revoke: func(r *http.Request, exec int64) error {
			g, role, err := lookup(r)
			if err != nil {
				return err
			}
			return d.Store.Grants().ArchiveGroupRole(r.Context(), g, role, exec)
		},
	}
}

// pathRole resuelve {role}; un nombre mal formado es 400 sin tocar el store.
func (d Deps) pathRole(r *http.Request) (*repository.Role, error) {
	name := chi.URLParam(r, "role")
	if !validation.ValidName(name) {
		return nil, httperrors.ErrInvalidParam.WithDetail("role")
	}
	return d.Store.Catalog().GetRoleByName(r.Context(), name)
}

func (d Deps) pathGroup(r *http.Request) (*repository.Group, error) {
	name := chi.URLParam(r, "group")
	if !validation.ValidName(name) {
		return nil, httperrors.ErrInvalidParam.WithDetail("group")
	}
	return d.Store.Catalog().GetGroupByName(r.Context(), name)
}
