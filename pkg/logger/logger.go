package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/onurcolak/dispatch-service/internal/requestctx"
)

var (
	mu     sync.RWMutex
	sugar  = zap.NewNop().Sugar()
	global = zap.NewNop()
)

// Init builds the process logger. environment "production" selects the JSON
// encoder with ISO8601 timestamps, anything else a colored console encoder.
// A non-empty format ("json" or "console") overrides the encoding.
func Init(environment, level, format string) {
	built, err := newConfig(environment, level, format).Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	Set(built)
}

func newConfig(environment, level, format string) zap.Config {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.DisableStacktrace = true
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	switch format {
	case "json", "console":
		config.Encoding = format
	}
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config
}

// Set replaces the process logger. Tests use it with zaptest or observer cores.
func Set(l *zap.Logger) {
	mu.Lock()
	global = l
	sugar = l.Sugar()
	mu.Unlock()

	zap.ReplaceGlobals(l)
}

// Get returns the structured logger.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// With returns a sugared logger carrying the correlation and actor ids found in ctx.
func With(ctx context.Context) *zap.SugaredLogger {
	l := Get().WithOptions(zap.AddCallerSkip(-1)).Sugar()
	if id := requestctx.CorrelationID(ctx); id != "" {
		l = l.With("correlation_id", id)
	}
	if actor := requestctx.ActorFrom(ctx); actor.ID != "" {
		l = l.With("actor_id", actor.ID)
	}
	return l
}

func Sync() {
	_ = Get().Sync()
}

func Infof(format string, v ...any) {
	get().Infof(format, v...)
}

func Warnf(format string, v ...any) {
	get().Warnf(format, v...)
}

func Errorf(format string, v ...any) {
	get().Errorf(format, v...)
}

func Debugf(format string, v ...any) {
	get().Debugf(format, v...)
}

func Fatalf(format string, v ...any) {
	get().Fatalf(format, v...)
}

func parseLevel(level string) zapcore.Level {
	switch level {
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
