package logger

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// DurationMs registra la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field { return zap.Int64("duration_ms", d.Milliseconds()) }

// =================================================================================
// CAMPOS - AUTORIZACIÓN
// =================================================================================

// Route es el nombre lógico de la ruta (no el path crudo).
func Route(v string) zap.Field { return zap.String("route", v) }

// Reason es el motivo interno de una denegación. Nunca se expone al cliente.
func Reason(v string) zap.Field { return zap.String("reason", v) }

// Rule identifica la regla de override que decidió.
func Rule(v string) zap.Field { return zap.String("rule", v) }

// UserID registra el id numérico del principal.
func UserID(v int64) zap.Field { return zap.String("user_id", strconv.FormatInt(v, 10)) }

// Role registra un nombre de rol.
func Role(v string) zap.Field { return zap.String("role", v) }

// =================================================================================
// CAMPOS - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Count(v int) zap.Field             { return zap.Int("count", v) }
