package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "dev" (consola con colores) o "prod" (JSON). Default: "dev".
	Env string

	// Level: "debug", "info", "warn", "error". Default: "info".
	Level string

	// ServiceName se agrega como campo "service" en cada línea. Opcional.
	ServiceName string
}

// build construye el logger según la configuración.
func build(cfg Config) *zap.Logger {
	var zcfg zap.Config
	opts := []zap.Option{zap.AddCaller()}

	if strings.EqualFold(strings.TrimSpace(cfg.Env), "prod") {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		// sin stacktrace en dev para info/warn
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := zcfg.Build(opts...)
	if err != nil {
		// Fallback a un logger básico si falla
		l, _ = zap.NewProduction()
	}
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	return l
}

// parseLevel convierte un string a zapcore.Level.
func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
