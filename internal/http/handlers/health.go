package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/warden/internal/http/helpers"
	"github.com/dropDatabas3/warden/internal/observability/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health responde 200 si el store (cuando sabe hacer ping) está disponible.
type Health struct {
	deps    Deps
	version string
}

func NewHealth(d Deps, version string) *Health { return &Health{deps: d, version: version} }

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if p, ok := h.deps.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logger.From(r.Context()).Error("store unavailable", logger.Err(err))
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	helpers.WriteJSON(w, code, map[string]string{"status": status, "version": h.version})
}
