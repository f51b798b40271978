package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.Users().Create(ctx, repository.CreateUserInput{Username: "Ana", Email: "ana@example.com"}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), u.CreatedBy)

	_, err = s.Users().Create(ctx, repository.CreateUserInput{Username: "ana", Email: "otra@example.com"}, 0)
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := s.Users().GetByUsername(ctx, "ANA")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	ok, err := s.Users().ExistsEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Users().GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTouchLastLogin_ReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.Users().Create(ctx, repository.CreateUserInput{Username: "ana", Email: "ana@example.com"}, 0)
	require.NoError(t, err)

	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	prev, err := s.Users().TouchLastLogin(ctx, u.ID, t1)
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = s.Users().TouchLastLogin(ctx, u.ID, t1.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, prev.Equal(t1))

	_, err = s.Users().TouchLastLogin(ctx, 999, t1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGrants_ArchiveAndReactivate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))

	u, err := s.Users().Create(ctx, repository.CreateUserInput{Username: "ana", Email: "ana@example.com"}, 0)
	require.NoError(t, err)
	r, err := s.Catalog().CreateRole(ctx, "role.user", "", 0)
	require.NoError(t, err)

	require.NoError(t, s.Grants().AssignRole(ctx, u.ID, r.ID, 1))
	has, err := s.GrantReader().HasDirectRole(ctx, u.ID, "role.user", now)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.Grants().ArchiveRole(ctx, u.ID, r.ID, 2))
	has, err = s.GrantReader().HasDirectRole(ctx, u.ID, "role.user", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, has)

	assert.ErrorIs(t, s.Grants().ArchiveRole(ctx, u.ID, r.ID, 2), repository.ErrNotFound, "ya archivada")

	require.NoError(t, s.Grants().AssignRole(ctx, u.ID, r.ID, 3))
	roles, err := s.GrantReader().DirectRoles(ctx, u.ID, now)
	require.NoError(t, err)
	require.Len(t, roles, 1)

	require.NoError(t, s.Grants().DeleteRole(ctx, u.ID, r.ID))
	roles, err = s.GrantReader().DirectRoles(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestGrants_UnknownEndpoints(t *testing.T) {
	ctx := context.Background()
	s := New()
	assert.ErrorIs(t, s.Grants().AssignRole(ctx, 1, 2, 0), repository.ErrNotFound)
	assert.ErrorIs(t, s.Grants().AddToGroup(ctx, 1, 2, 0), repository.ErrNotFound)

	roles, err := s.GrantReader().GroupRoles(ctx, 42, time.Now())
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestTokens_AppendOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	rt := repository.RefreshToken{ID: "01H", UserID: 1, Handle: "h1", IssuedAt: time.Now()}
	require.NoError(t, s.Tokens().Append(ctx, rt))
	assert.ErrorIs(t, s.Tokens().Append(ctx, rt), repository.ErrConflict)

	got, err := s.Tokens().GetByHandle(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "01H", got.ID)

	_, err = s.Tokens().GetByHandle(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
