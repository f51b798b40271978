// Package store abre el Identity Store según el driver configurado.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/warden/internal/domain/repository"
	"github.com/dropDatabas3/warden/internal/store/memory"
	"github.com/dropDatabas3/warden/internal/store/pg"
)

type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Opened es el store abierto. Pool sólo está presente con postgres (métricas,
// migraciones y health check).
type Opened struct {
	Store repository.Store
	PG    *pg.Store
}

// Pool devuelve el pgxpool subyacente o nil.
func (o *Opened) Pool() *pgxpool.Pool {
	if o.PG == nil {
		return nil
	}
	return o.PG.Pool()
}

func (o *Opened) Close() { o.Store.Close() }

func Open(ctx context.Context, cfg Config) (*Opened, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "postgres", "pg", "postgresql":
		s, err := pg.New(ctx, cfg.DSN, pg.PoolConfig{
			MaxConns:        cfg.MaxOpenConns,
			MinConns:        cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		return &Opened{Store: s, PG: s}, nil
	case "memory", "mem":
		return &Opened{Store: memory.New()}, nil
	default:
		return nil, fmt.Errorf("store: unsupported driver: %s", cfg.Driver)
	}
}
