// Package errors define el envelope de error HTTP: {"code","message","detail?"}.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

// AppError es el error que los handlers devuelven al cliente.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, sólo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// WithDetail devuelve una COPIA con detalle; los errores base no se mutan.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause devuelve una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// FromError convierte errores de otras capas. Los sentinelas del repositorio
// tienen traducción propia; el resto es 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound.WithCause(err)
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict.WithCause(err)
	case errors.Is(err, repository.ErrInvalidInput):
		return ErrBadRequest.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// ---------------------------------------------------------------------------------
// 400
// ---------------------------------------------------------------------------------

var (
	ErrBadRequest   = New(http.StatusBadRequest, "BAD_REQUEST", "La solicitud es inválida.")
	ErrInvalidJSON  = New(http.StatusBadRequest, "INVALID_JSON", "El cuerpo de la solicitud no es un JSON válido.")
	ErrMissingField = New(http.StatusBadRequest, "MISSING_FIELD", "Falta un campo requerido.")
	ErrInvalidParam = New(http.StatusBadRequest, "INVALID_PARAMETER", "Un parámetro de la ruta es inválido.")
)

// ---------------------------------------------------------------------------------
// 401 / 403
// ---------------------------------------------------------------------------------

var (
	// ErrUnauthorized es la única respuesta de cualquier falla de autenticación
	// o autorización; nunca lleva detalle.
	ErrUnauthorized       = New(http.StatusUnauthorized, "UNAUTHORIZED", "No autorizado.")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Usuario o contraseña incorrectos.")
)

// ---------------------------------------------------------------------------------
// 404 / 405 / 409 / 415 / 429
// ---------------------------------------------------------------------------------

var (
	ErrNotFound             = New(http.StatusNotFound, "NOT_FOUND", "El recurso solicitado no existe.")
	ErrMethodNotAllowed     = New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Método no permitido.")
	ErrConflict             = New(http.StatusConflict, "CONFLICT", "El recurso ya existe.")
	ErrUnsupportedMediaType = New(http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type debe ser application/json.")
	ErrRateLimitExceeded    = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Demasiadas solicitudes. Intente más tarde.")
)

// ---------------------------------------------------------------------------------
// 5xx
// ---------------------------------------------------------------------------------

var (
	ErrInternalServerError = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Ocurrió un error inesperado.")
	ErrConfigurationFault  = New(http.StatusInternalServerError, "CONFIGURATION_FAULT", "La ruta no está configurada correctamente.")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Servicio no disponible.")
)
