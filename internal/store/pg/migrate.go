package pg

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/warden/internal/observability/logger"
)

// migrationLockID deriva el id del pg_advisory_lock.
func migrationLockID() int64 {
	h := sha256.Sum256([]byte("warden_migration"))
	return int64(binary.BigEndian.Uint64(h[:8]))
}

// Migrate aplica los *_up.sql de fsys (orden lexicográfico) que aún no figuran
// en schema_migrations, bajo advisory lock. Devuelve cuántos aplicó.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS) (int, error) {
	log := logger.From(ctx).With(logger.Component("pg.migrate"))
	lockID := migrationLockID()

	lockCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := s.pool.Exec(lockCtx, "SELECT pg_advisory_lock($1)", lockID); err != nil {
		return 0, fmt.Errorf("pg: migration lock: %w", err)
	}
	defer func() {
		if _, err := s.pool.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", lockID); err != nil {
			log.Warn("failed to release migration lock", logger.Err(err))
		}
	}()

	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW())`); err != nil {
		return 0, err
	}

	files, err := upFiles(fsys)
	if err != nil {
		return 0, err
	}

	var applied int
	for _, name := range files {
		var done bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&done); err != nil {
			return applied, err
		}
		if done {
			continue
		}
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, err
		}
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return applied, err
		}
		if _, err := tx.Exec(ctx, string(b)); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("exec %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			return applied, err
		}
		if err := tx.Commit(ctx); err != nil {
			return applied, err
		}
		log.Info("migration applied", zap.String("file", name))
		applied++
	}
	return applied, nil
}

// upFiles lista los *_up.sql de la raíz de fsys en orden lexicográfico.
func upFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), "_up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
