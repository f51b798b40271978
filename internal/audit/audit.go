// Package audit registra eventos de seguridad (logins, cambios de permisos)
// en un logger dedicado.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/warden/internal/observability/logger"
)

const (
	EventLoginSucceeded = "login.succeeded"
	EventLoginFailed    = "login.failed"
	EventGrantChanged   = "grant.changed"
	EventUserCreated    = "user.created"
)

// Log escribe el evento con el logger del request (request_id, user_id).
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append(fields, zap.String("event", event))...)
}
