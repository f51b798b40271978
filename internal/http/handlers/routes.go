package handlers

import (
	"net/http"

	"github.com/dropDatabas3/warden/internal/authz"
)

// Routes devuelve la tabla de rutas de la API. loginMW se aplica sólo a login.
func Routes(d Deps, version string, loginMW ...func(http.Handler) http.Handler) []authz.Route {
	userRole := NewUserRoleGrant(d)
	userGroup := NewUserGroupGrant(d)
	groupRole := NewGroupRoleGrant(d)

	return []authz.Route{
		{Name: "health", Method: http.MethodGet, Pattern: "/healthz", Public: true, Handler: NewHealth(d, version)},
		{Name: "auth.login", Method: http.MethodPost, Pattern: "/v1/auth/login", Public: true, Handler: NewLogin(d), Middlewares: loginMW},
		{Name: "auth.token_age", Method: http.MethodPost, Pattern: "/v1/auth/token/age", Public: true, Handler: NewTokenAge(d)},
		{Name: "auth.public_key", Method: http.MethodGet, Pattern: "/v1/auth/public-key", Public: true, Handler: NewPublicKey(d)},

		{Name: "me", Method: http.MethodGet, Pattern: "/v1/me", Handler: NewMe(d)},
		{Name: "users.get", Method: http.MethodGet, Pattern: "/v1/users/{userID}", Handler: NewUserGet(d)},
		{Name: "users.roles", Method: http.MethodGet, Pattern: "/v1/users/{userID}/roles", Handler: NewUserRoles(d)},
		{Name: "users.groups", Method: http.MethodGet, Pattern: "/v1/users/{userID}/groups", Handler: NewUserGroups(d)},

		{Name: "users.roles.assign", Method: http.MethodPost, Pattern: "/v1/users/{userID}/roles/{role}", Handler: userRole},
		{Name: "users.roles.archive", Method: http.MethodDelete, Pattern: "/v1/users/{userID}/roles/{role}", Handler: userRole},
		{Name: "users.groups.add", Method: http.MethodPost, Pattern: "/v1/users/{userID}/groups/{group}", Handler: userGroup},
		{Name: "users.groups.archive", Method: http.MethodDelete, Pattern: "/v1/users/{userID}/groups/{group}", Handler: userGroup},
		{Name: "groups.roles.grant", Method: http.MethodPost, Pattern: "/v1/groups/{group}/roles/{role}", Handler: groupRole},
		{Name: "groups.roles.archive", Method: http.MethodDelete, Pattern: "/v1/groups/{group}/roles/{role}", Handler: groupRole},
	}
}
