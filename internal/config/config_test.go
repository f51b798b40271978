package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  env: prod
storage:
  driver: postgres
  dsn: postgres://warden@localhost/warden
jwt:
  audience: warden-api
  ttl: 20m
  private_key_path: /etc/warden/private.pem
  hash_salt: pepper
auth:
  relaxed_routes: [docs]
rate:
  enabled: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "prod", c.App.Env)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "RS512", c.JWT.Algorithm)
	assert.Equal(t, 20*time.Minute, c.JWTTTL())
	assert.Equal(t, "Authorization", c.Auth.Header)
	assert.Equal(t, []string{"security_admin"}, c.Auth.Rules)
	assert.Equal(t, []string{"docs"}, c.Auth.RelaxedRoutes)
	assert.Equal(t, "memory", c.Rate.Backend)
	assert.Equal(t, time.Minute, c.LoginRateWindow())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_TTL", "5m")
	t.Setenv("AUTH_HEADER", "X-Auth-Token")
	t.Setenv("AUTH_RULES", "")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("RATE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, 5*time.Minute, c.JWTTTL())
	assert.Equal(t, "X-Auth-Token", c.Auth.Header)
	assert.Empty(t, c.Auth.Rules, "AUTH_RULES vacío desactiva las reglas")
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "redis", c.Rate.Backend)
}

func TestValidate_CollectsErrors(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.JWT.TTL = "nope"
	c.Storage.Driver = "oracle"

	err = c.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "jwt.ttl")
	assert.Contains(t, msg, "storage.driver")
	assert.Contains(t, msg, "jwt.private_key_path")
	assert.Contains(t, msg, "jwt.hash_salt")
}
