// Package logx provides structured logging functionality
package logx

import (
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a named view over the process logger. Scopes created before
// Init follow later reconfiguration.
type Logger struct {
	name string
}

var (
	mu     sync.RWMutex
	root   *zap.Logger
	scopes = map[string]*zap.Logger{}
)

func init() {
	lvl := zapcore.InfoLevel
	if IsLocalDev(os.Getenv("APP_ENV")) {
		lvl = zapcore.DebugLevel
	}
	z, err := build(lvl, "console")
	if err != nil {
		panic(err)
	}
	root = z
}

// IsLocalDev checks if the environment is local development
func IsLocalDev(appEnv string) bool {
	return appEnv == "local" || appEnv == "dev" || appEnv == "development"
}

// customTimeEncoder 自定义时间编码器
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func getLoggerConfig() zap.Config {
	config := zap.NewProductionConfig()
	config.Development = false
	config.DisableCaller = false
	config.DisableStacktrace = false
	config.Sampling = nil

	config.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	config.Encoding = "console"
	return config
}

func build(lvl zapcore.Level, format string) (*zap.Logger, error) {
	config := getLoggerConfig()
	switch strings.ToLower(format) {
	case "json":
		config.Encoding = "json"
		config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder // JSON 格式使用小写
	default:
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build(zap.AddCallerSkip(1)) // 跳过封装层
}

// Init configures the process logger. Existing scopes pick up the new
// level and encoding on their next call.
func Init(level, format string) {
	z, err := build(parseLevel(level), format)
	if err != nil {
		panic(err)
	}
	ReplaceRoot(z)
}

// ReplaceRoot swaps the process logger, e.g. for zap.NewNop in CLIs or an
// observer core in tests.
func ReplaceRoot(z *zap.Logger) {
	mu.Lock()
	old := root
	root = z
	scopes = map[string]*zap.Logger{}
	mu.Unlock()
	if old != nil && old != z {
		_ = old.Sync()
	}
}

// GetScope returns a logger named after the calling package or component.
func GetScope(name string) *Logger {
	return &Logger{name: name}
}

// L returns the process sugar logger for key-value style logging
func L() *zap.SugaredLogger {
	return GetLogger().Sugar()
}

// GetLogger returns the underlying zap logger for advanced usage
func GetLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Sync flushes any buffered log entries.
func Sync() error {
	return GetLogger().Sync()
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) z() *zap.Logger {
	mu.RLock()
	z, ok := scopes[l.name]
	r := root
	mu.RUnlock()
	if ok {
		return z
	}
	z = r
	if l.name != "" {
		z = r.Named(l.name)
	}
	mu.Lock()
	if r == root {
		scopes[l.name] = z
	}
	mu.Unlock()
	return z
}

// Sugar returns the sugar logger for key-value style logging
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.z().Sugar()
}

// Zap returns the underlying zap logger for structured logging
func (l *Logger) Zap() *zap.Logger {
	return l.z()
}

// With returns a zap logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *zap.Logger {
	return l.z().With(fields...)
}

// Debug logs a debug message with structured fields
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.z().Debug(msg, fields...)
}

// Info logs an info message with structured fields
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.z().Info(msg, fields...)
}

// Warn logs a warning message with structured fields
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.z().Warn(msg, fields...)
}

// Error logs an error message with structured fields
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.z().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.z().Fatal(msg, fields...)
}
