// Package app arma el contenedor de dependencias de warden a partir de la
// configuración.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/warden/internal/authz"
	"github.com/dropDatabas3/warden/internal/authz/rules"
	"github.com/dropDatabas3/warden/internal/config"
	whttp "github.com/dropDatabas3/warden/internal/http"
	"github.com/dropDatabas3/warden/internal/http/handlers"
	"github.com/dropDatabas3/warden/internal/jwt"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/permission"
	"github.com/dropDatabas3/warden/internal/rate"
	"github.com/dropDatabas3/warden/internal/security/token"
	"github.com/dropDatabas3/warden/internal/store"
)

type Container struct {
	Config   *config.Config
	Store    *store.Opened
	Resolver *permission.Resolver
	Codec    *jwt.Codec
	Registry *authz.Registry
	Metrics  *prometheus.Registry

	redis rdb.UniversalClient
}

// Open abre el store y construye resolver y codec. No arma HTTP; lo usan
// también los comandos de la CLI.
func Open(ctx context.Context, cfg *config.Config) (*Container, error) {
	st, err := store.Open(ctx, store.Config{
		Driver:          cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	})
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Store: st, Metrics: prometheus.NewRegistry()}

	c.Resolver = permission.NewResolver(st.Store.GrantReader())

	hasher, err := token.NewUserHasher(cfg.JWT.HashSalt, cfg.JWT.HashMinLength)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("app: user hasher: %w", err)
	}
	c.Codec, err = jwt.NewCodec(jwt.Config{
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		TTL:           cfg.JWTTTL(),
		Algorithm:     cfg.JWT.Algorithm,
		DefaultLocale: cfg.Locale.Default,
	},
		jwt.NewKeySource(cfg.JWT.PrivateKeyPath, cfg.JWT.PrivateKeyPassword),
		hasher,
		jwt.Deps{Users: st.Store.Users(), Tokens: st.Store.Tokens(), Resolver: c.Resolver},
	)
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Handler verifica la clave, construye reglas y limiter y devuelve el router.
func (c *Container) Handler() (http.Handler, error) {
	cfg := c.Config
	if err := c.Codec.Verify(); err != nil {
		return nil, fmt.Errorf("app: signing key: %w", err)
	}

	var err error
	c.Registry, err = rules.NewRegistry(cfg.Auth.Rules, rules.Deps{
		Roles:             c.Resolver,
		SecurityAdminRole: cfg.Auth.SecurityAdminRole,
	})
	if err != nil {
		return nil, err
	}

	limiter, err := c.loginLimiter()
	if err != nil {
		return nil, err
	}

	return whttp.NewRouter(whttp.RouterDeps{
		Handlers:      handlers.Deps{Store: c.Store.Store, Resolver: c.Resolver, Codec: c.Codec},
		Registry:      c.Registry,
		Metrics:       c.Metrics,
		Pool:          c.Store.Pool(),
		LoginLimiter:  limiter,
		Version:       cfg.App.Version,
		AuthHeader:    cfg.Auth.Header,
		RelaxedRoutes: cfg.Auth.RelaxedRoutes,
	})
}

func (c *Container) loginLimiter() (rate.Limiter, error) {
	cfg := c.Config
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	switch cfg.Rate.Backend {
	case "redis":
		c.redis = rdb.NewClient(&rdb.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.L().Info("login rate limit", logger.String("backend", "redis"), logger.String("addr", cfg.Redis.Addr))
		return rate.NewRedisLimiter(c.redis, cfg.Redis.Prefix, cfg.Rate.Login.Limit, cfg.LoginRateWindow()), nil
	case "memory":
		logger.L().Info("login rate limit", logger.String("backend", "memory"))
		return rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginRateWindow()), nil
	default:
		return nil, fmt.Errorf("app: unsupported rate backend %q", cfg.Rate.Backend)
	}
}

func (c *Container) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.Store != nil {
		c.Store.Close()
	}
}
