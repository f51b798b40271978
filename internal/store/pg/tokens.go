package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

type tokenRepo struct{ pool *pgxpool.Pool }

func (r *tokenRepo) Append(ctx context.Context, rt repository.RefreshToken) error {
	const q = `
INSERT INTO refresh_token (id, user_id, token, handle, issued_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, q, rt.ID, rt.UserID, rt.Token, rt.Handle, rt.IssuedAt.UTC(), rt.ExpiresAt.UTC())
	return mapErr(err)
}

func (r *tokenRepo) GetByHandle(ctx context.Context, handle string) (*repository.RefreshToken, error) {
	const q = `
SELECT id, user_id, token, handle, issued_at, expires_at
FROM refresh_token
WHERE handle = $1`
	var rt repository.RefreshToken
	err := r.pool.QueryRow(ctx, q, handle).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.Handle, &rt.IssuedAt, &rt.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}
