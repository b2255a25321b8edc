// Package logger provides the shared structured logger for all components.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.SugaredLogger = zap.NewNop().Sugar()

// Init builds the global logger. Level accepts debug/info/warn/error;
// anything unrecognized falls back to info.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	global = log.Sugar()
	return nil
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	_ = global.Sync()
}

func Debugw(msg string, keysAndValues ...interface{}) { global.Debugw(msg, keysAndValues...) }
func Infow(msg string, keysAndValues ...interface{})  { global.Infow(msg, keysAndValues...) }
func Warnw(msg string, keysAndValues ...interface{})  { global.Warnw(msg, keysAndValues...) }
func Errorw(msg string, keysAndValues ...interface{}) { global.Errorw(msg, keysAndValues...) }
