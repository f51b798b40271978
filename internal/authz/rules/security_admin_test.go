package rules

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/warden/internal/authz"
	"github.com/dropDatabas3/warden/internal/domain/repository"
	"github.com/dropDatabas3/warden/internal/permission"
	"github.com/dropDatabas3/warden/internal/store/memory"
)

func rcFor(userID int64) *authz.RequestContext {
	r := httptest.NewRequest("GET", "/v1/users/1", nil)
	return authz.NewRequestContext(r, "users.get", &authz.Principal{UserID: userID})
}

func TestSecurityAdmin_GroupInheritedRole(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := memory.New(memory.WithClock(func() time.Time { return now }))

	u, err := st.Users().Create(ctx, repository.CreateUserInput{Username: "sec", Email: "sec@example.com"}, 0)
	require.NoError(t, err)
	role, err := st.Catalog().CreateRole(ctx, permission.RoleSecurityAdmin, "", 0)
	require.NoError(t, err)
	group, err := st.Catalog().CreateGroup(ctx, "group.admin", "", 0)
	require.NoError(t, err)
	require.NoError(t, st.Grants().AddToGroup(ctx, u.ID, group.ID, 0))
	require.NoError(t, st.Grants().GrantGroupRole(ctx, group.ID, role.ID, 0))

	resolver := permission.NewResolver(st.GrantReader(), permission.WithClock(func() time.Time { return now }))
	rule := NewSecurityAdmin(resolver, "")
	assert.Equal(t, SecurityAdminName, rule.Name())

	ok, err := rule.Process(ctx, rcFor(u.ID))
	require.NoError(t, err)
	assert.True(t, ok)

	// membresía archivada: la regla deja de aplicar
	require.NoError(t, st.Grants().ArchiveGroupMembership(ctx, u.ID, group.ID, 0))
	ok, err = rule.Process(ctx, rcFor(u.ID))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = rule.Process(ctx, rcFor(0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuild(t *testing.T) {
	st := memory.New()
	deps := Deps{Roles: permission.NewResolver(st.GrantReader())}

	rs, err := Build([]string{" security_admin ", ""}, deps)
	require.NoError(t, err)
	require.Len(t, rs, 1)

	_, err = Build([]string{"nope"}, deps)
	require.Error(t, err)

	_, err = Build([]string{SecurityAdminName}, Deps{})
	require.Error(t, err)

	_, err = NewRegistry([]string{SecurityAdminName, SecurityAdminName}, deps)
	require.ErrorIs(t, err, authz.ErrDuplicateRule)

	reg, err := NewRegistry(nil, deps)
	require.NoError(t, err)
	assert.Zero(t, reg.Len())
}
