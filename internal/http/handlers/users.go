package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/warden/internal/authz"
	"github.com/dropDatabas3/warden/internal/domain/repository"
	httperrors "github.com/dropDatabas3/warden/internal/http/errors"
	"github.com/dropDatabas3/warden/internal/http/helpers"
	"github.com/dropDatabas3/warden/internal/permission"
)

type UserDTO struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Locale      string     `json:"locale"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserDTO(u *repository.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Email: u.Email, Locale: u.Locale, LastLoginAt: u.LastLoginAt, CreatedAt: u.CreatedAt}
}

type RolesDTO struct {
	Direct   []string `json:"direct"`
	Indirect []string `json:"indirect"`
}

type MeResponse struct {
	User   UserDTO  `json:"user"`
	Roles  RolesDTO `json:"roles"`
	Groups []string `json:"groups"`
}

func pathUserID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperrors.ErrInvalidParam.WithDetail("userID")
	}
	return id, nil
}

func (d Deps) roles(r *http.Request, userID int64) (RolesDTO, error) {
	direct, err := d.Resolver.FindAssignedRoles(r.Context(), userID)
	if err != nil {
		return RolesDTO{}, err
	}
	indirect, err := d.Resolver.FindIndirectRoles(r.Context(), userID)
	if err != nil {
		return RolesDTO{}, err
	}
	return RolesDTO{Direct: permission.RoleNames(direct), Indirect: permission.RoleNames(indirect)}, nil
}

// Me devuelve el usuario autenticado con sus permisos efectivos actuales.
type Me struct {
	anyPrincipal
	deps Deps
}

func NewMe(d Deps) *Me { return &Me{deps: d} }

func (h *Me) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.FromContext(r.Context())
	if !ok {
		httperrors.WriteUnauthorized(w)
		return
	}
	u, err := h.deps.Store.Users().GetByID(r.Context(), p.UserID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	roles, err := h.deps.roles(r, u.ID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	groups, err := h.deps.Resolver.FindAssignedGroups(r.Context(), u.ID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, MeResponse{User: toUserDTO(u), Roles: roles, Groups: permission.GroupNames(groups)})
}

// UserGet: GET /v1/users/{userID}
type UserGet struct {
	selfOrRole
	deps Deps
}

func NewUserGet(d Deps) *UserGet {
	return &UserGet{selfOrRole: selfOrRole{resolver: d.Resolver, role: permission.RoleUsersRead}, deps: d}
}

func (h *UserGet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	u, err := h.deps.Store.Users().GetByID(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toUserDTO(u))
}

// UserRoles: GET /v1/users/{userID}/roles
type UserRoles struct {
	selfOrRole
	deps Deps
}

func NewUserRoles(d Deps) *UserRoles {
	return &UserRoles{selfOrRole: selfOrRole{resolver: d.Resolver, role: permission.RoleUsersRead}, deps: d}
}

func (h *UserRoles) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	roles, err := h.deps.roles(r, id)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, roles)
}

// UserGroups: GET /v1/users/{userID}/groups
type UserGroups struct {
	selfOrRole
	deps Deps
}

func NewUserGroups(d Deps) *UserGroups {
	return &UserGroups{selfOrRole: selfOrRole{resolver: d.Resolver, role: permission.RoleUsersRead}, deps: d}
}

func (h *UserGroups) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	groups, err := h.deps.Resolver.FindAssignedGroups(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string][]string{"groups": permission.GroupNames(groups)})
}
