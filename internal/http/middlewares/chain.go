// Package middlewares contiene los decoradores HTTP transversales: request id,
// logging, recover, métricas y rate limit.
package middlewares

import "net/http"

// Middleware es un decorador de http.Handler
type Middleware func(http.Handler) http.Handler

// Chain aplica middlewares en orden de izquierda a derecha.
// Chain(h, A, B, C) ejecuta: A -> B -> C -> h
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Funcs adapta a la firma que espera chi.Router.Use.
func Funcs(mws ...Middleware) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, 0, len(mws))
	for _, m := range mws {
		out = append(out, m)
	}
	return out
}
