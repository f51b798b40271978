package repository

import (
	"context"
	"time"
)

// RefreshToken es el registro persistido en cada emisión. Append-only: nunca
// se actualiza ni se revoca.
type RefreshToken struct {
	ID        string // ULID
	UserID    int64
	Token     string // JWT emitido junto al handle
	Handle    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenRepository persiste refresh tokens.
type TokenRepository interface {
	// Append inserta un registro nuevo. Emisiones concurrentes del mismo
	// usuario nunca colisionan.
	Append(ctx context.Context, rt RefreshToken) error

	// GetByHandle retorna ErrNotFound si el handle no existe.
	GetByHandle(ctx context.Context, handle string) (*RefreshToken, error)
}
