package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	httperrors "github.com/dropDatabas3/warden/internal/http/errors"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/rate"
)

// KeyFunc arma la clave de rate limit de una request.
type KeyFunc func(r *http.Request) string

// IPPathRateKey separa límites por endpoint sin leer el body.
func IPPathRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

// WithRateLimit rechaza con 429 cuando el limiter niega. Si el backend falla
// la request pasa (fail-open) y se loguea.
func WithRateLimit(l rate.Limiter, key KeyFunc) Middleware {
	if key == nil {
		key = IPPathRateKey
	}
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), key(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(res.RetryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP toma el primer X-Forwarded-For, luego X-Real-IP, luego RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
