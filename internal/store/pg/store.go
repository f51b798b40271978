// Package pg implementa el Identity Store sobre PostgreSQL (pgxpool).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

// PoolConfig ajustes opcionales del pool.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

type Store struct{ pool *pgxpool.Pool }

var _ repository.Store = (*Store)(nil)

// New abre el pool y verifica la conexión.
func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	// MaxIdleConns no existe en pgxpool: MinConns es lo más parecido
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (métricas/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Users() repository.UserRepository      { return &userRepo{pool: s.pool} }
func (s *Store) Catalog() repository.CatalogRepository { return &catalogRepo{pool: s.pool} }
func (s *Store) Grants() repository.GrantRepository    { return &grantRepo{pool: s.pool} }
func (s *Store) GrantReader() repository.GrantReader   { return &grantReader{pool: s.pool} }
func (s *Store) Tokens() repository.TokenRepository    { return &tokenRepo{pool: s.pool} }

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapErr traduce violaciones de constraints a errores de dominio.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", repository.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// Ping verifica la conexión (readiness).
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
