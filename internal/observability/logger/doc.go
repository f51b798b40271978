// Package logger expone un logger Zap singleton con scoping por contexto.
//
// # Decisiones
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Scoping por request: WithLogging inyecta un logger con request_id, route y
//     user_id; el resto del código lo recupera con From(ctx).
//   - Entornos: "dev" usa consola con colores, "prod" usa JSON.
//
// # Uso
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "warden"})
//	defer logger.Sync()
//
//	log := logger.From(ctx)
//	log.Info("authorization denied", logger.Route(name), logger.Reason(reason))
package logger
