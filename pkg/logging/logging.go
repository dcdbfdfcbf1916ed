// Package logging builds the zap loggers used by the gitlite command and
// handed down to the object store.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LevelDebug logs every object read and write.
	LevelDebug = "debug"
	// LevelInfo logs verification warnings without per-object tracing.
	LevelInfo = "info"
	// LevelNone disables logging. It is the command-line default, and New
	// treats an empty level the same way.
	LevelNone = "none"
)

// New returns a zap logger writing JSON to stderr at the given level.
// LevelNone returns a no-op logger.
func New(level string) (*zap.Logger, error) {
	if level == LevelNone || level == "" {
		return zap.NewNop(), nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	return cfg.Build()
}

// Must is New for static levels; it panics on an unknown level.
func Must(level string) *zap.Logger {
	l, err := New(level)
	if err != nil {
		panic(err)
	}
	return l
}
