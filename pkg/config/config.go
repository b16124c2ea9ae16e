package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Application settings
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Storage StorageConfig
	Auth    AuthConfig
	HTTP    HTTPConfig
}

// Server settings
type ServerConfig struct {
	Port string
}

// Durable storage settings
type StorageConfig struct {
	DataDir string
}

// Login simulation settings
type AuthConfig struct {
	DefaultTenant string
	LoginDelay    time.Duration
}

type HTTPConfig struct {
	RequestTimeout     time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Logging settings
type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Auth: AuthConfig{
			DefaultTenant: getEnv("DEFAULT_TENANT", "demo-tenant"),
			LoginDelay:    getDurationEnv("LOGIN_DELAY", "1s"),
		},
		HTTP: HTTPConfig{
			RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", "30s"),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
