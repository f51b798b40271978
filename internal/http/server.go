// Package http arma el router de warden y corre el servidor.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/warden/internal/authz"
	"github.com/dropDatabas3/warden/internal/http/handlers"
	mw "github.com/dropDatabas3/warden/internal/http/middlewares"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/rate"
)

// RouterDeps son las dependencias del router.
type RouterDeps struct {
	Handlers handlers.Deps
	Registry *authz.Registry
	Metrics  *prometheus.Registry
	Pool     *pgxpool.Pool

	// LoginLimiter nil desactiva el rate limit de login.
	LoginLimiter rate.Limiter

	Version       string
	AuthHeader    string
	RelaxedRoutes []string
}

// NewRouter construye el árbol chi. Falla si alguna ruta protegida no
// declara su predicado de autorización.
func NewRouter(d RouterDeps) (http.Handler, error) {
	if d.Metrics == nil {
		d.Metrics = prometheus.NewRegistry()
	}
	httpMetrics, err := mw.NewHTTPMetrics(d.Metrics)
	if err != nil {
		return nil, err
	}
	metricsHandler, err := RegisterMetrics(MetricsConfig{Registry: d.Metrics, Pool: d.Pool})
	if err != nil {
		return nil, err
	}

	dispatcher, err := authz.NewDispatcher(d.Handlers.Codec, d.Registry,
		authz.WithHeader(d.AuthHeader),
		authz.WithRelaxedRoutes(d.RelaxedRoutes...),
		authz.WithMetrics(authz.NewMetrics(d.Metrics)),
	)
	if err != nil {
		return nil, err
	}

	var loginMW []func(http.Handler) http.Handler
	if d.LoginLimiter != nil {
		loginMW = append(loginMW, mw.WithRateLimit(d.LoginLimiter, mw.IPPathRateKey))
	}

	r := chi.NewRouter()
	r.Use(mw.Funcs(
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
		httpMetrics.Middleware(),
	)...)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	if err := dispatcher.Mount(r, handlers.Routes(d.Handlers, d.Version, loginMW...)); err != nil {
		return nil, err
	}
	return r, nil
}

// Serve corre srv hasta que ctx se cancela y luego hace shutdown ordenado.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.L().Info("http server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.L().Info("http server shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
