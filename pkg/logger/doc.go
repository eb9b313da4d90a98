// Package logger builds the application's slog.Logger.
//
// Records are written as JSON (or text) to stdout. When a Sentry DSN is
// configured, warnings and errors are also forwarded to Sentry and error
// records become Sentry issues. Request-scoped attributes such as the
// request id are attached through [ContextExtractor] functions:
//
//	log := logger.New(cfg.Log, logger.FromContext("request_id"), logger.FromContext("user_id"))
package logger
