package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/warden/internal/config"
	"github.com/dropDatabas3/warden/internal/domain/repository"
	"github.com/dropDatabas3/warden/internal/http/handlers"
	"github.com/dropDatabas3/warden/internal/jwt"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/permission"
	"github.com/dropDatabas3/warden/internal/security/password"
)

var cheap = password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32, SaltLen: 16}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	require.NoError(t, jwt.GenerateKeyFiles("ES256", "s3cret", priv, filepath.Join(dir, "public.pem")))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Driver = "memory"
	cfg.JWT.Algorithm = "ES256"
	cfg.JWT.Audience = "warden-api"
	cfg.JWT.PrivateKeyPath = priv
	cfg.JWT.PrivateKeyPassword = "s3cret"
	cfg.JWT.HashSalt = "test-salt"
	cfg.Auth.Rules = []string{"security_admin"}
	cfg.Rate.Enabled = true
	cfg.Rate.Backend = "memory"
	cfg.Rate.Login.Limit = 3
	require.NoError(t, cfg.Validate())
	return cfg
}

type fixture struct {
	c     *Container
	h     http.Handler
	alice *repository.User
	bob   *repository.User
}

// alice es usuaria común; bob hereda role.security.admin vía group.admins.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Replace(zap.NewNop())
	ctx := context.Background()

	c, err := Open(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	st := c.Store.Store
	hash, err := password.Hash(cheap, "correct-horse-1")
	require.NoError(t, err)

	mk := func(name string) *repository.User {
		u, err := st.Users().Create(ctx, repository.CreateUserInput{
			Username: name, Email: name + "@example.com", PasswordHash: hash, Locale: "es",
		}, 0)
		require.NoError(t, err)
		return u
	}
	alice, bob := mk("alice"), mk("bob")

	admin, err := st.Catalog().CreateRole(ctx, permission.RoleSecurityAdmin, "", 0)
	require.NoError(t, err)
	admins, err := st.Catalog().CreateGroup(ctx, "group.admins", "", 0)
	require.NoError(t, err)
	require.NoError(t, st.Grants().GrantGroupRole(ctx, admins.ID, admin.ID, 0))
	require.NoError(t, st.Grants().AddToGroup(ctx, bob.ID, admins.ID, 0))

	h, err := c.Handler()
	require.NoError(t, err)
	return &fixture{c: c, h: h, alice: alice, bob: bob}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:5000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T, username string) handlers.LoginResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/v1/auth/login", "", handlers.LoginRequest{Username: username, Password: "correct-horse-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out handlers.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestServe_MissingHeaderIsUniform401(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="warden"`, rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"code":"UNAUTHORIZED","message":"No autorizado."}`, rec.Body.String())

	garbage := f.do(t, http.MethodGet, "/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, garbage.Code)
	assert.Equal(t, rec.Body.String(), garbage.Body.String())
}

func TestServe_LoginThenMe(t *testing.T) {
	f := newFixture(t)
	out := f.login(t, "alice")
	assert.Equal(t, "Bearer", out.TokenType)
	assert.EqualValues(t, 900, out.ExpiresIn)
	assert.NotEmpty(t, out.RefreshToken)

	rec := f.do(t, http.MethodGet, "/v1/me", out.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me handlers.MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, f.alice.ID, me.User.ID)
	assert.Equal(t, "alice", me.User.Username)
	assert.NotNil(t, me.User.LastLoginAt)

	age := f.do(t, http.MethodPost, "/v1/auth/token/age", "", handlers.TokenAgeRequest{RefreshToken: out.RefreshToken})
	assert.Equal(t, http.StatusOK, age.Code, age.Body.String())
}

func TestServe_AdminRuleOverridesPredicate(t *testing.T) {
	f := newFixture(t)
	alice := f.login(t, "alice")
	bob := f.login(t, "bob")

	bobRoles := "/v1/users/" + strconv.FormatInt(f.bob.ID, 10) + "/roles"
	aliceRoles := "/v1/users/" + strconv.FormatInt(f.alice.ID, 10) + "/roles"

	// alice no es admin ni dueña del recurso
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, bobRoles, alice.Token, nil).Code)
	// bob hereda role.security.admin por grupo: la regla autoriza
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, aliceRoles, bob.Token, nil).Code)
	// self
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, aliceRoles, alice.Token, nil).Code)
}

func TestServe_LoginRateLimited(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.login(t, "alice")
	}
	rec := f.do(t, http.MethodPost, "/v1/auth/login", "", handlers.LoginRequest{Username: "alice", Password: "correct-horse-1"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestServe_Metrics(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/v1/me", "", nil)

	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `warden_authz_decisions_total{outcome="deny",reason="missing_credential",route="me"} 1`)
	assert.Contains(t, body, "http_requests_total")
}

func TestHandler_UnknownRuleFailsStartup(t *testing.T) {
	logger.Replace(zap.NewNop())
	cfg := testConfig(t)
	cfg.Auth.Rules = []string{"security_admin", "nope"}

	c, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Handler()
	require.Error(t, err)
}
