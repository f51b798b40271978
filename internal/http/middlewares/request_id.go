package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// WithRequestID propaga X-Request-ID o genera un UUID si el cliente no envió
// uno válido. Se expone en la respuesta y se inyecta en el contexto.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if rid == "" || len(rid) > 128 {
				rid = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
