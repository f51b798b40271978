package pg

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

type userRepo struct{ pool *pgxpool.Pool }

const userColumns = `id, username, email, password_hash, locale, last_login_at,
	created_at, created_by, modified_at, modified_by`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Locale, &u.LastLoginAt,
		&u.CreatedAt, &u.CreatedBy, &u.ModifiedAt, &u.ModifiedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, userID int64) (*repository.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, userID))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*repository.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE LOWER(username) = LOWER($1)`, strings.TrimSpace(username)))
}

func (r *userRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM app_user WHERE LOWER(email) = LOWER($1))`, strings.TrimSpace(email)).Scan(&ok)
	return ok, err
}

func (r *userRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM app_user WHERE LOWER(username) = LOWER($1))`, strings.TrimSpace(username)).Scan(&ok)
	return ok, err
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput, executorID int64) (*repository.User, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, repository.ErrInvalidInput
	}
	const q = `
INSERT INTO app_user (username, email, password_hash, locale, created_by, modified_by)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, q,
		strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), in.PasswordHash, in.Locale, executorID))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, userID int64, at time.Time) (*time.Time, error) {
	// Sin transacción: dos logins concurrentes pueden pisarse y es aceptable.
	const q = `
UPDATE app_user u
   SET last_login_at = $2
  FROM (SELECT id, last_login_at FROM app_user WHERE id = $1) prev
 WHERE u.id = prev.id
RETURNING prev.last_login_at`
	var prev *time.Time
	err := r.pool.QueryRow(ctx, q, userID, at.UTC()).Scan(&prev)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return prev, nil
}
