// Package logging holds the shared zap logger used across the
// pipeline binaries and libraries.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// InitProduction installs a production logger with JSON output
func InitProduction() error {

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()

	if err != nil {
		return err
	}

	set(l)
	return nil
}

// InitDevelopment installs a development logger with console output
func InitDevelopment() error {

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()

	if err != nil {
		return err
	}

	set(l)
	return nil
}

func set(l *zap.Logger) {

	mu.Lock()
	defer mu.Unlock()

	zap.ReplaceGlobals(l)

	if log != nil {
		_ = log.Sync()
	}

	log = l
}

// Get returns the installed logger, or the zap global when none has
// been installed yet
func Get() *zap.Logger {

	mu.RLock()
	defer mu.RUnlock()

	if log != nil {
		return log
	}

	return zap.L()
}

// Sync flushes any buffered log entries
func Sync() {

	mu.RLock()
	defer mu.RUnlock()

	if log != nil {
		_ = log.Sync()
	}
}
