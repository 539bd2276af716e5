// Package logger provee un logger Zap singleton con scoping por contexto.
//
// # Decisiones
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context scoping: cada flujo puede llevar un logger "scoped" con campos
//     propios (request_id, email, etc.) sin crear un core nuevo.
//   - Destino: con Log.File configurado los logs van a archivo en JSON; la
//     TUI es dueña de la terminal y escribir a stderr rompería el render.
//
// # Uso
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,
//	    Level: cfg.Log.Level,
//	    File:  cfg.Log.File,
//	})
//	defer logger.Sync()
//
// En los flujos (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("sesión establecida", logger.Email(email))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("cliente iniciado")
package logger
