// Package logging provides structured logging for podium.
//
// It wraps log/slog with a JSON handler and child-logger helpers so every
// entry carries the debate session, side and phase it belongs to.
//
// # Features
//
//   - JSON lines via slog
//   - Levels DEBUG, INFO, WARN, ERROR
//   - Context attributes: session_id, side, phase, and arbitrary pairs via With
//   - Size-based rotation of debug.log with numbered backups
//
// # Thread Safety
//
// [Logger] and [RotatingWriter] are safe for concurrent use. Child loggers
// share the parent's writer. The autoplay driver logs from timer and
// generation goroutines through the same logger.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithSession(session.ID()).WithPhase("autoplay")
//	log.Info("scheduled next speech", "index", 3, "delay_ms", 3000)
//
// When no directory is configured, logs go to stderr. Use [NopLogger] in
// tests and wherever logging is disabled.
package logging
