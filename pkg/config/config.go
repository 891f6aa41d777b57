package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process-wide configuration, read once at startup and handed
// to each handler as an explicit value.
type Config struct {
	AWSRegion string
	Cognito   CognitoConfig
	DNS       DNSConfig
	Session   SessionConfig
	Redis     RedisConfig
	Notifx    NotifxConfig
	Server    ServerConfig
	Lambda    LambdaConfig
}

// ServerConfig configures the HTTP entrypoint.
type ServerConfig struct {
	Port        string
	CORSOrigins string
	AppVersion  string
}

// LambdaConfig configures the Lambda entrypoint.
type LambdaConfig struct {
	// Resource handles events that name no resource, for functions
	// deployed behind a single route
	Resource string
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		AWSRegion: getEnv("AWS_REGION", getEnv("AWS_DEFAULT_REGION", "us-east-1")),
		Cognito:   loadCognitoConfig(),
		DNS:       loadDNSConfig(),
		Session:   loadSessionConfig(),
		Redis:     loadRedisConfig(),
		Notifx:    loadNotifxConfig(),
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
			AppVersion:  getEnv("APP_VERSION", "1.0.0"),
		},
		Lambda: LambdaConfig{
			Resource: getEnv("NIMBUS_RESOURCE", ""),
		},
	}
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Cognito.UserPoolID == "" {
		missing = append(missing, "COGNITO_USER_POOL_ID")
	}
	if c.Cognito.ClientID == "" {
		missing = append(missing, "COGNITO_USER_POOL_CLIENT_ID")
	}
	if c.Cognito.ClientSecret == "" {
		missing = append(missing, "COGNITO_USER_POOL_CLIENT_SECRET")
	}
	if c.Session.Backend == SessionBackendCognitoSync && c.Cognito.ProfileDataset == "" {
		missing = append(missing, "COGNITO_USER_PROFILE_DATASET_NAME")
	}
	switch c.Session.Backend {
	case SessionBackendCognitoSync, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q (use %q or %q)", c.Session.Backend, SessionBackendCognitoSync, SessionBackendRedis)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
