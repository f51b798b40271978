package middlewares

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/warden/internal/observability/logger"
)

// statusRecorder captura status y bytes escritos.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.status = http.StatusOK
		s.wroteHeader = true
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// WithLogging inyecta un logger con request_id/method/path en el contexto y
// registra la finalización con un nivel según el status.
func WithLogging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := logger.L().With(
				logger.RequestID(GetRequestID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.ClientIP(clientIP(r)),
			)
			ctx := logger.ToContext(r.Context(), reqLog)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(ctx))

			// el patrón de chi sólo está resuelto después de servir
			done := reqLog.With(logger.Route(routePattern(r)), logger.Status(rec.status), logger.Bytes(rec.bytes), logger.DurationMs(time.Since(start)))
			switch {
			case rec.status >= 500:
				done.Error("request failed")
			case rec.status == http.StatusUnauthorized || rec.status == http.StatusTooManyRequests:
				done.Info("request rejected")
			case rec.status >= 400:
				done.Warn("request completed with client error")
			default:
				done.Info("request completed")
			}
		})
	}
}
