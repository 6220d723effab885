package neat

import "log/slog"

var logger = slog.Default()

// SetLogger replaces the logger used for diagnostics in this package.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the logger set with SetLogger.
func Logger() *slog.Logger {
	return logger
}
