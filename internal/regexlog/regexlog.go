// Package regexlog provides the structured logger shared by this
// module's packages, reached through a package-level variable rather
// than threaded through every call. It defaults to zap's no-op logger
// so that regex is silent when used as a library, and exposes SetLogger
// for a CLI or host application to install a real one.
package regexlog

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger installs l as the package-wide logger. Passing nil restores
// the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}

// L returns the currently installed logger.
func L() *zap.Logger {
	return logger
}
