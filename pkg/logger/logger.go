package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger shared by the service, the CLI and the stores.
// - package-level Debugf/Infof/Warnf/Errorf/Fatalf backed by a zap SugaredLogger
// - Init(level) switches the atomic level at runtime

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
	LevelFatal = zapcore.FatalLevel
)

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(LevelInfo)
	sugar = newSugar()
)

func newSugar() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level.SetLevel(LevelDebug)
	case "warn", "warning":
		level.SetLevel(LevelWarn)
	case "error":
		level.SetLevel(LevelError)
	case "fatal":
		level.SetLevel(LevelFatal)
	default:
		level.SetLevel(LevelInfo)
	}
}

// SetOutput replaces the underlying zap logger, keeping the shared level.
// Tests use it with zaptest/observer cores.
func SetOutput(core zapcore.Core) {
	mu.Lock()
	defer mu.Unlock()
	sugar = zap.New(core, zap.AddCallerSkip(1)).Sugar()
}

// Enabled reports whether messages at l are currently emitted.
func Enabled(l Level) bool {
	return level.Enabled(l)
}

// AtomicLevel exposes the shared level for cores built outside this package.
func AtomicLevel() zap.AtomicLevel {
	return level
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, v ...interface{}) { get().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { get().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { get().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { get().Errorf(format, v...) }
func Fatalf(format string, v ...interface{}) { get().Fatalf(format, v...) }

// Debugw/Infow/Warnw attach key/value pairs.
func Debugw(msg string, kv ...interface{}) { get().Debugw(msg, kv...) }
func Infow(msg string, kv ...interface{})  { get().Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { get().Warnw(msg, kv...) }

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = get().Sync()
}

// LevelString returns the current level as text.
func LevelString() string {
	return level.Level().String()
}
