package port

// Logger defines a common logging interface for the application.
// Arguments after msg are alternating key/value pairs. The method set also
// satisfies retryablehttp.LeveledLogger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
