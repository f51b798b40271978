package repository

import (
	"context"
	"time"
)

// Audit agrupa los campos de auditoría comunes a usuarios y aristas.
type Audit struct {
	CreatedAt  time.Time
	CreatedBy  int64
	ModifiedAt time.Time
	ModifiedBy int64
}

// User representa un principal del sistema.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Locale       string
	LastLoginAt  *time.Time
	Audit
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Locale       string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, userID int64) (*User, error)

	// GetByUsername retorna ErrNotFound si no existe.
	GetByUsername(ctx context.Context, username string) (*User, error)

	ExistsEmail(ctx context.Context, email string) (bool, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)

	// Create retorna ErrConflict si username o email ya existen.
	Create(ctx context.Context, input CreateUserInput, executorID int64) (*User, error)

	// TouchLastLogin setea last_login = at y devuelve el valor anterior
	// (nil si nunca hubo login). Retorna ErrNotFound si el usuario no existe.
	// Dos logins concurrentes pueden pisarse: last_login es telemetría.
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) (*time.Time, error)
}
