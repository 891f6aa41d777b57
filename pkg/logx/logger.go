package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Logger writes formatted entries to a single writer. Its settings are
// fixed at construction; the mutex only serializes writes.
type Logger struct {
	mu        sync.Mutex
	level     Level
	formatter Formatter
	writer    io.Writer
	static    Fields
	caller    bool
	now       func() time.Time
	exitFunc  func(int)
}

// NewLogger builds a logger from config; nil means DefaultConfig.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	l := &Logger{
		level:     config.Level,
		formatter: formatterFor(config),
		writer:    config.Output,
		caller:    config.EnableCaller,
		now:       time.Now,
		exitFunc:  os.Exit,
	}
	if l.writer == nil {
		l.writer = os.Stdout
	}
	if len(config.Static) > 0 {
		l.static = make(Fields, len(config.Static))
		for k, v := range config.Static {
			l.static[k] = v
		}
	}
	return l
}

func formatterFor(config *Config) Formatter {
	switch config.Format {
	case FormatJSON:
		return NewJSONFormatter(config)
	case FormatCloudWatch:
		return NewCloudWatchFormatter(config)
	default:
		return NewConsoleFormatter(config)
	}
}

// fields merges the static fields under the entry's own.
func (l *Logger) fields(own Fields) Fields {
	if len(l.static) == 0 {
		return own
	}
	merged := make(Fields, len(l.static)+len(own))
	for k, v := range l.static {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return merged
}

func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	if !l.level.Enabled(level) {
		return
	}

	entry := &LogEntry{
		Level:     level,
		Message:   msg,
		Fields:    l.fields(fields),
		Error:     err,
		Timestamp: l.now(),
	}
	if l.caller {
		entry.Caller = caller(3)
	}

	out, ferr := l.formatter.Format(entry)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "logx: format: %v\n", ferr)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, werr := l.writer.Write(out); werr != nil {
		fmt.Fprintf(os.Stderr, "logx: write: %v\n", werr)
	}
}

func (l *Logger) WithField(key string, value any) *Entry {
	return newEntry(l).WithField(key, value)
}

func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}

func (l *Logger) exit(code int) {
	l.exitFunc(code)
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
