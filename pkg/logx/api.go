package logx

import (
	"context"
	"fmt"
)

var defaultLogger = NewLogger(LoadFromEnv())

// SetDefaultLogger sets the default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the default logger
func GetDefaultLogger() *Logger {
	return defaultLogger
}

func Info(msg string) { defaultLogger.log(LevelInfo, msg, nil, nil) }

func Debugf(format string, args ...any) { defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil) }
func Infof(format string, args ...any)  { Info(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil, nil) }

// Fatalf logs a formatted fatal message and exits
func Fatalf(format string, args ...any) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
	defaultLogger.exit(1)
}

// WithContext creates a new logger entry tagged with the request id in ctx
func WithContext(ctx context.Context) *Entry {
	return newEntry(defaultLogger).WithContext(ctx)
}
