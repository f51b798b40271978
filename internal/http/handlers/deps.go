// Package handlers implementa los recursos HTTP de warden. Cada handler de una
// ruta protegida declara su predicado de autorización (authz.Authorizable).
package handlers

import (
	"context"
	"strconv"

	"github.com/dropDatabas3/warden/internal/authz"
	"github.com/dropDatabas3/warden/internal/domain/repository"
	"github.com/dropDatabas3/warden/internal/jwt"
	"github.com/dropDatabas3/warden/internal/permission"
)

// Deps son las dependencias compartidas por los handlers.
type Deps struct {
	Store    repository.Store
	Resolver *permission.Resolver
	Codec    *jwt.Codec
}

// ───────────────────────────── predicados ─────────────────────────────

// anyPrincipal autoriza a cualquier usuario autenticado.
type anyPrincipal struct{}

func (anyPrincipal) Authorize(_ context.Context, rc *authz.RequestContext) (bool, error) {
	return rc.PrincipalID() > 0, nil
}

// requireRole exige un rol (directo o por grupo).
type requireRole struct {
	resolver *permission.Resolver
	role     string
}

func (p requireRole) Authorize(ctx context.Context, rc *authz.RequestContext) (bool, error) {
	return p.resolver.HasRole(ctx, rc.PrincipalID(), p.role)
}

// selfOrRole: el propio usuario del path, o quien tenga el rol.
type selfOrRole struct {
	resolver *permission.Resolver
	role     string
}

func (p selfOrRole) Authorize(ctx context.Context, rc *authz.RequestContext) (bool, error) {
	if id, err := strconv.ParseInt(rc.Param("userID"), 10, 64); err == nil && id == rc.PrincipalID() {
		return true, nil
	}
	return p.resolver.HasRole(ctx, rc.PrincipalID(), p.role)
}
