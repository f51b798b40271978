package http

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/dropDatabas3/warden/internal/http/middlewares"
)

// MetricsConfig agrupa lo necesario para exponer /metrics.
type MetricsConfig struct {
	Registry *prometheus.Registry
	// Pool opcional: publica las estadísticas del pool de postgres.
	Pool *pgxpool.Pool
}

// RegisterMetrics registra los collectors de runtime y del pool, y devuelve
// el handler para /metrics.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	reg := cfg.Registry
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			if _, dup := err.(prometheus.AlreadyRegisteredError); !dup {
				return nil, err
			}
		}
	}
	if cfg.Pool != nil {
		if err := mw.RegisterPoolCollector(reg, cfg.Pool); err != nil {
			return nil, err
		}
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), nil
}
