package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Formatter is the interface for log formatters
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry represents a single log entry
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
	Caller    string
}

// Fields is a map of structured data
type Fields map[string]any

// JSONFormatter formats logs as one JSON object per line
type JSONFormatter struct {
	config     *Config
	messageKey string
	timeKey    string
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config, messageKey: "message", timeKey: "timestamp"}
}

// NewCloudWatchFormatter creates a JSON formatter using CloudWatch's msg/time keys
func NewCloudWatchFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config, messageKey: "msg", timeKey: "time"}
}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	data := make(map[string]any, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		data[k] = v
	}

	data["level"] = entry.Level.String()
	data[f.messageKey] = entry.Message

	if f.config.EnableTimestamp {
		data[f.timeKey] = entry.Timestamp.Format(time.RFC3339Nano)
	}
	if f.config.EnableCaller && entry.Caller != "" {
		data["caller"] = entry.Caller
	}
	if entry.Error != nil {
		data["error"] = entry.Error.Error()
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
)

// ConsoleFormatter formats logs as single readable lines
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

// Format formats a log entry for console output. Fields are sorted so lines diff cleanly.
func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if f.config.EnableTimestamp {
		b.WriteString(f.paint(colorGray, entry.Timestamp.Format(f.config.TimeFormat)))
		b.WriteString(" ")
	}

	fmt.Fprintf(&b, "[%-5s] ", entry.Level.String())

	if f.config.EnableCaller && entry.Caller != "" {
		b.WriteString(f.paint(colorGray, "["+entry.Caller+"]"))
		b.WriteString(" ")
	}

	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		b.WriteString(" ")
		b.WriteString(f.paint(colorCyan, strings.Join(pairs, " ")))
	}

	if entry.Error != nil {
		b.WriteString(" ")
		b.WriteString(f.paint(colorRed, "error="+entry.Error.Error()))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}

func (f *ConsoleFormatter) paint(color, s string) string {
	if !f.config.EnableColors {
		return s
	}
	return color + s + colorReset
}
