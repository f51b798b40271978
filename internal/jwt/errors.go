package jwt

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedAlgorithm = errors.New("jwt: unsupported signing algorithm")
	ErrKeyFormat            = errors.New("jwt: unrecognized key format")
	ErrKeyMismatch          = errors.New("jwt: key type does not match algorithm")
	ErrMissingClaim         = errors.New("jwt: required claim missing")
)

// Reason clasifica por qué un token no autentica.
type Reason string

const (
	ReasonExpired Reason = "expired"
	ReasonInvalid Reason = "invalid"
)

// AuthenticationError lo devuelve Decode cuando el token no es aceptable.
// Cualquier otro error de Decode es una falla del servidor (p.ej. clave ilegible).
type AuthenticationError struct {
	Reason Reason
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("jwt: %s token", e.Reason)
	}
	return fmt.Sprintf("jwt: %s token: %v", e.Reason, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// IsExpired informa si err es un AuthenticationError por expiración.
func IsExpired(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae) && ae.Reason == ReasonExpired
}
