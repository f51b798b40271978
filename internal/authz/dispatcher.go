// Package authz decide, por request, si una ruta protegida puede ejecutarse.
//
// El flujo es fijo: credencial Bearer → decodificación del token → reglas de
// override del Registry (la primera que autoriza corta) → predicado Authorize
// del recurso. Cualquier negativa de autenticación o autorización se responde
// con el mismo 401; el motivo real sólo se loguea y se cuenta.
package authz

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	httperrors "github.com/dropDatabas3/warden/internal/http/errors"
	"github.com/dropDatabas3/warden/internal/jwt"
	"github.com/dropDatabas3/warden/internal/observability/logger"
)

const DefaultHeader = "Authorization"

// Decoder es la parte del codec que usa el dispatcher.
type Decoder interface {
	Decode(raw string) (*jwt.Claims, error)
	UserID(claims *jwt.Claims) (int64, error)
}

// Route describe una ruta montada a través del dispatcher.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	Public      bool
	Handler     http.Handler
	Middlewares []func(http.Handler) http.Handler
}

type Dispatcher struct {
	decoder  Decoder
	registry *Registry
	header   string
	relaxed  map[string]struct{}
	metrics  *Metrics
}

type Option func(*Dispatcher)

// WithHeader cambia el header del que se lee la credencial.
func WithHeader(name string) Option {
	return func(d *Dispatcher) {
		if strings.TrimSpace(name) != "" {
			d.header = http.CanonicalHeaderKey(strings.TrimSpace(name))
		}
	}
}

// WithRelaxedRoutes marca rutas (por nombre o patrón) que no requieren credencial.
func WithRelaxedRoutes(routes ...string) Option {
	return func(d *Dispatcher) {
		for _, r := range routes {
			if r = strings.TrimSpace(r); r != "" {
				d.relaxed[r] = struct{}{}
			}
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func NewDispatcher(dec Decoder, reg *Registry, opts ...Option) (*Dispatcher, error) {
	if dec == nil {
		return nil, errors.New("authz: decoder is required")
	}
	if reg == nil {
		reg = &Registry{}
	}
	d := &Dispatcher{decoder: dec, registry: reg, header: DefaultHeader, relaxed: map[string]struct{}{}}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

func (d *Dispatcher) isOpen(rt Route) bool {
	if rt.Public {
		return true
	}
	if _, ok := d.relaxed[rt.Name]; ok {
		return true
	}
	_, ok := d.relaxed[rt.Pattern]
	return ok
}

// Check valida una ruta en tiempo de registro.
func (d *Dispatcher) Check(rt Route) error {
	if rt.Handler == nil {
		return &Error{Reason: ReasonConfigurationFault, Route: rt.Name, Err: errors.New("nil handler")}
	}
	if d.isOpen(rt) {
		return nil
	}
	if _, ok := rt.Handler.(Authorizable); !ok {
		return &Error{Reason: ReasonConfigurationFault, Route: rt.Name, Err: ErrNotAuthorizable}
	}
	return nil
}

// Mount registra las rutas en r. Si alguna ruta protegida no es Authorizable
// no registra ninguna y devuelve el fallo de configuración.
func (d *Dispatcher) Mount(r chi.Router, routes []Route) error {
	names := make(map[string]struct{}, len(routes))
	for _, rt := range routes {
		if _, dup := names[rt.Name]; dup {
			return &Error{Reason: ReasonConfigurationFault, Route: rt.Name, Err: fmt.Errorf("duplicate route name")}
		}
		names[rt.Name] = struct{}{}
		if err := d.Check(rt); err != nil {
			return err
		}
	}
	for _, rt := range routes {
		r.With(rt.Middlewares...).Method(rt.Method, rt.Pattern, d.Guard(rt))
	}
	return nil
}

// bearer extrae el token del header configurado. El esquema no distingue mayúsculas.
func (d *Dispatcher) bearer(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get(d.header))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}

// Guard envuelve el handler de la ruta con la máquina de decisión.
func (d *Dispatcher) Guard(rt Route) http.Handler {
	open := d.isOpen(rt)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.From(r.Context()).With(logger.Route(rt.Name))

		if open {
			d.metrics.observe(rt.Name, OutcomeAllow, "public")
			rt.Handler.ServeHTTP(w, r)
			return
		}

		raw, ok := d.bearer(r)
		if !ok {
			d.deny(w, r, rt, ReasonMissingCredential, nil)
			return
		}

		claims, err := d.decoder.Decode(raw)
		if err != nil {
			var ae *jwt.AuthenticationError
			if !errors.As(err, &ae) {
				d.fail(w, r, rt, err)
				return
			}
			reason := ReasonInvalidCredential
			if ae.Reason == jwt.ReasonExpired {
				reason = ReasonExpiredCredential
			}
			d.deny(w, r, rt, reason, err)
			return
		}
		userID, err := d.decoder.UserID(claims)
		if err != nil {
			d.deny(w, r, rt, ReasonInvalidCredential, err)
			return
		}

		p := &Principal{UserID: userID, Claims: claims}
		ctx := WithPrincipal(r.Context(), p)
		ctx = logger.ToContext(ctx, log.With(logger.UserID(userID)))
		r = r.WithContext(ctx)

		resource, ok := rt.Handler.(Authorizable)
		if !ok {
			// Mount lo impide; sólo llega acá con Guard usado a mano.
			d.fail(w, r, rt, &Error{Reason: ReasonConfigurationFault, Route: rt.Name, Err: ErrNotAuthorizable})
			return
		}

		rc := NewRequestContext(r, rt.Name, p)
		rule, allowed, err := d.registry.Evaluate(ctx, rc)
		if err != nil {
			d.fail(w, r, rt, err)
			return
		}
		if allowed {
			logger.From(ctx).Debug("authz allowed by rule", logger.Rule(rule))
			d.metrics.observe(rt.Name, OutcomeAllow, "rule:"+rule)
			rt.Handler.ServeHTTP(w, r)
			return
		}

		allowed, err = resource.Authorize(ctx, rc)
		if err != nil {
			d.fail(w, r, rt, fmt.Errorf("authorize: %w", err))
			return
		}
		if !allowed {
			d.deny(w, r, rt, ReasonPolicyDenied, nil)
			return
		}
		d.metrics.observe(rt.Name, OutcomeAllow, "predicate")
		rt.Handler.ServeHTTP(w, r)
	})
}

func (d *Dispatcher) deny(w http.ResponseWriter, r *http.Request, rt Route, reason Reason, cause error) {
	fields := []zap.Field{logger.Route(rt.Name), logger.Reason(string(reason))}
	if cause != nil {
		fields = append(fields, logger.Err(cause))
	}
	logger.From(r.Context()).Info("authz denied", fields...)
	d.metrics.observe(rt.Name, OutcomeDeny, string(reason))
	httperrors.WriteUnauthorized(w)
}

// fail responde 500: un error interno nunca se convierte en 401 ni en allow.
func (d *Dispatcher) fail(w http.ResponseWriter, r *http.Request, rt Route, err error) {
	reason := "internal"
	appErr := httperrors.ErrInternalServerError
	if rs, ok := ReasonOf(err); ok && rs == ReasonConfigurationFault {
		reason = string(rs)
		appErr = httperrors.ErrConfigurationFault
	}
	logger.From(r.Context()).Error("authz failed", logger.Route(rt.Name), logger.Reason(reason), logger.Err(err))
	d.metrics.observe(rt.Name, OutcomeError, reason)
	httperrors.WriteError(w, appErr.WithCause(err))
}
