package authz

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/warden/internal/jwt"
)

type ctxKey string

const ctxPrincipalKey ctxKey = "principal"

// Principal es el usuario autenticado de la request.
type Principal struct {
	UserID int64
	Claims *jwt.Claims
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// FromContext devuelve el principal que dejó el dispatcher. En rutas públicas no hay.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey).(*Principal)
	return p, ok && p != nil
}

// RequestContext es la vista de sólo lectura que reciben reglas y predicados.
type RequestContext struct {
	principalID int64
	claims      *jwt.Claims
	route       string
	method      string
	params      map[string]string
}

// NewRequestContext toma los parámetros de URL de chi en el momento de la llamada.
func NewRequestContext(r *http.Request, route string, p *Principal) *RequestContext {
	rc := &RequestContext{route: route, method: r.Method, params: map[string]string{}}
	if p != nil {
		rc.principalID = p.UserID
		rc.claims = p.Claims.Clone()
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if i < len(rctx.URLParams.Values) {
				rc.params[k] = rctx.URLParams.Values[i]
			}
		}
	}
	return rc
}

func (rc *RequestContext) PrincipalID() int64 { return rc.principalID }
func (rc *RequestContext) Route() string      { return rc.route }
func (rc *RequestContext) Method() string     { return rc.method }

// Claims devuelve una copia; modificarla no afecta a la request.
func (rc *RequestContext) Claims() *jwt.Claims { return rc.claims.Clone() }

func (rc *RequestContext) Param(name string) string { return rc.params[name] }

func (rc *RequestContext) Params() map[string]string {
	out := make(map[string]string, len(rc.params))
	for k, v := range rc.params {
		out[k] = v
	}
	return out
}
