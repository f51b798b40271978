package pg

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/warden/internal/domain/repository"
	migrations "github.com/dropDatabas3/warden/migrations/postgres"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "app_user_username_key"}), repository.ErrConflict)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: pgForeignKeyViolation}), repository.ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, mapErr(other))
}

func TestActiveEdge(t *testing.T) {
	assert.Equal(t, "(ug.archived_at IS NULL OR ug.archived_at > $2)", activeEdge("ug", "$2"))
}

func TestUpFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_b_up.sql":   {Data: []byte("SELECT 2;")},
		"0001_a_up.sql":   {Data: []byte("SELECT 1;")},
		"0001_a_down.sql": {Data: []byte("SELECT 0;")},
		"README.md":       {Data: []byte("x")},
	}
	files, err := upFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a_up.sql", "0002_b_up.sql"}, files)

	embedded, err := upFiles(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_identity_up.sql", "0002_grants_up.sql", "0003_refresh_token_up.sql"}, embedded)
}

// TestStore_Postgres corre contra una base real si WARDEN_TEST_PG_DSN está definido.
func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("WARDEN_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("WARDEN_TEST_PG_DSN no definido")
	}
	ctx := context.Background()
	s, err := New(ctx, dsn, PoolConfig{MaxConns: 4})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Migrate(ctx, migrations.FS)
	require.NoError(t, err)
	n, err := s.Migrate(ctx, migrations.FS)
	require.NoError(t, err)
	assert.Zero(t, n, "idempotente")

	suffix := time.Now().Format("150405.000000")
	u, err := s.Users().Create(ctx, repository.CreateUserInput{
		Username: "pg-" + suffix, Email: "pg-" + suffix + "@example.com", Locale: "es",
	}, 0)
	require.NoError(t, err)

	role, err := s.Catalog().CreateRole(ctx, "role.pg."+suffix, "", 0)
	require.NoError(t, err)
	group, err := s.Catalog().CreateGroup(ctx, "group.pg."+suffix, "", 0)
	require.NoError(t, err)
	require.NoError(t, s.Grants().GrantGroupRole(ctx, group.ID, role.ID, 0))
	require.NoError(t, s.Grants().AddToGroup(ctx, u.ID, group.ID, 0))

	r := s.GrantReader()
	has, err := r.HasGroupRole(ctx, u.ID, role.Name, time.Now())
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.Grants().ArchiveGroupMembership(ctx, u.ID, group.ID, 0))
	has, err = r.HasGroupRole(ctx, u.ID, role.Name, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.False(t, has)

	assert.ErrorIs(t, s.Grants().ArchiveGroupMembership(ctx, u.ID, group.ID, 0), repository.ErrNotFound)

	prev, err := s.Users().TouchLastLogin(ctx, u.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, prev)
}
