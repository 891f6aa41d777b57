package config

import (
	"fmt"
	"time"
)

const (
	SessionBackendCognitoSync = "cognitosync"
	SessionBackendRedis       = "redis"
)

// SessionConfig selects where provider credentials are kept between login
// and an authenticated password change.
type SessionConfig struct {
	Backend   string
	KeyPrefix string
}

// RedisConfig configures the redis session backend.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Timeout  time.Duration
}

// Address returns host:port
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		Backend:   getEnv("SESSION_STORE", SessionBackendCognitoSync),
		KeyPrefix: getEnv("SESSION_KEY_PREFIX", "nimbus:session"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		Timeout:  getEnvDuration("REDIS_TIMEOUT", 3*time.Second),
	}
}
