package logx

import (
	"io"
	"os"
	"strings"
	"time"
)

// Format represents the output format
type Format string

const (
	// FormatConsole outputs human-readable lines (default)
	FormatConsole Format = "console"
	// FormatJSON outputs JSON formatted logs
	FormatJSON Format = "json"
	// FormatCloudWatch outputs the JSON shape Lambda's log insights expects
	FormatCloudWatch Format = "cloudwatch"
)

// Config holds the logger configuration
type Config struct {
	Level           Level
	Format          Format
	EnableColors    bool
	EnableCaller    bool
	EnableTimestamp bool
	TimeFormat      string

	// Static fields are added to every entry; entry fields override them.
	Static Fields

	// Output defaults to os.Stdout
	Output io.Writer
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:           LevelInfo,
		Format:          FormatConsole,
		EnableColors:    false,
		EnableTimestamp: true,
		TimeFormat:      time.RFC3339,
		Output:          os.Stdout,
	}
}

// LoadFromEnv loads configuration from LOG_LEVEL, LOG_FORMAT, LOG_COLOR and LOG_CALLER.
// Inside Lambda the format defaults to cloudwatch and entries carry the
// function name. APP_VERSION, when set, is added as version.
func LoadFromEnv() *Config {
	config := DefaultConfig()

	config.Static = Fields{}
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		config.Format = FormatCloudWatch
		config.Static["function"] = fn
	}
	if v := os.Getenv("APP_VERSION"); v != "" {
		config.Static["version"] = v
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}

	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		config.Format = FormatJSON
	case "cloudwatch":
		config.Format = FormatCloudWatch
	case "console":
		config.Format = FormatConsole
	}

	if color := os.Getenv("LOG_COLOR"); color != "" {
		config.EnableColors = envTrue(color)
	}

	if caller := os.Getenv("LOG_CALLER"); caller != "" {
		config.EnableCaller = envTrue(caller)
	}

	return config
}

func envTrue(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}
