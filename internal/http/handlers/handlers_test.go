package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/warden/internal/authz"
	"github.com/dropDatabas3/warden/internal/domain/repository"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/permission"
	"github.com/dropDatabas3/warden/internal/store/memory"
)

type fixture struct {
	deps    Deps
	manager int64
	alice   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Replace(zap.NewNop())
	ctx := context.Background()
	st := memory.New()

	mk := func(name string) int64 {
		u, err := st.Users().Create(ctx, repository.CreateUserInput{Username: name, Email: name + "@example.com"}, 0)
		require.NoError(t, err)
		return u.ID
	}
	f := &fixture{manager: mk("manager"), alice: mk("alice")}

	for _, name := range []string{permission.RoleUser, permission.RoleUsersManage, permission.RoleGroupsManage} {
		_, err := st.Catalog().CreateRole(ctx, name, "", 0)
		require.NoError(t, err)
	}
	_, err := st.Catalog().CreateGroup(ctx, permission.GroupUser, "", 0)
	require.NoError(t, err)

	for _, name := range []string{permission.RoleUsersManage, permission.RoleGroupsManage} {
		r, err := st.Catalog().GetRoleByName(ctx, name)
		require.NoError(t, err)
		require.NoError(t, st.Grants().AssignRole(ctx, f.manager, r.ID, 0))
	}

	f.deps = Deps{Store: st, Resolver: permission.NewResolver(st.GrantReader())}
	return f
}

// serve monta h en pattern con el principal ya resuelto, como lo deja el dispatcher.
func serve(h http.Handler, method, pattern, path string, principal int64) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := authz.WithPrincipal(req.Context(), &authz.Principal{UserID: principal})
		h.ServeHTTP(w, req.WithContext(ctx))
	}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestUserRoleGrant_AssignArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := NewUserRoleGrant(f.deps)
	const pattern = "/v1/users/{userID}/roles/{role}"
	path := "/v1/users/" + strconv.FormatInt(f.alice, 10) + "/roles/" + permission.RoleUser

	rec := serve(h, http.MethodPost, pattern, path, f.manager)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	has, err := f.deps.Resolver.HasRole(ctx, f.alice, permission.RoleUser)
	require.NoError(t, err)
	assert.True(t, has)

	rec = serve(h, http.MethodDelete, pattern, path, f.manager)
	require.Equal(t, http.StatusNoContent, rec.Code)
	has, err = f.deps.Resolver.HasRole(ctx, f.alice, permission.RoleUser)
	require.NoError(t, err)
	assert.False(t, has)

	rec = serve(h, http.MethodDelete, pattern, path, f.manager)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserRoleGrant_BadNames(t *testing.T) {
	f := newFixture(t)
	h := NewUserRoleGrant(f.deps)
	const pattern = "/v1/users/{userID}/roles/{role}"
	id := strconv.FormatInt(f.alice, 10)

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, pattern, "/v1/users/"+id+"/roles/Role.User", f.manager).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, pattern, "/v1/users/"+id+"/roles/role.nope", f.manager).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, pattern, "/v1/users/abc/roles/role.user", f.manager).Code)
}

func TestGroupGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := serve(NewGroupRoleGrant(f.deps), http.MethodPost, "/v1/groups/{group}/roles/{role}",
		"/v1/groups/"+permission.GroupUser+"/roles/"+permission.RoleUser, f.manager)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = serve(NewUserGroupGrant(f.deps), http.MethodPost, "/v1/users/{userID}/groups/{group}",
		"/v1/users/"+strconv.FormatInt(f.alice, 10)+"/groups/"+permission.GroupUser, f.manager)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	indirect, err := f.deps.Resolver.FindIndirectRoles(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []string{permission.RoleUser}, permission.RoleNames(indirect))
}

func TestPredicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rc := func(principal, pathUser int64) *authz.RequestContext {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("userID", strconv.FormatInt(pathUser, 10))
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		return authz.NewRequestContext(req, "test", &authz.Principal{UserID: principal})
	}

	manage := NewUserRoleGrant(f.deps).(authz.Authorizable)
	ok, err := manage.Authorize(ctx, rc(f.manager, f.alice))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = manage.Authorize(ctx, rc(f.alice, f.alice))
	require.NoError(t, err)
	assert.False(t, ok, "gestionar roles no es self-service")

	read := NewUserRoles(f.deps)
	ok, err = read.Authorize(ctx, rc(f.alice, f.alice))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = read.Authorize(ctx, rc(f.alice, f.manager))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewMe(f.deps).Authorize(ctx, rc(f.alice, 0))
	require.NoError(t, err)
	assert.True(t, ok)
}
