package cil

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns this package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures this package's logger. Call before disassembling
// if the implementation-defined diagnostics (Fault clauses, unresolved
// branch targets, custom attributes without argument bytes) should be
// observable.
func SetLogger(l *zap.Logger) {
	logger = l
}
