package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string // Optional: issuer claim for session tokens (default: kindred-collective)
	SessionSecret  string // Required in prod: HMAC secret for session tokens; generated when empty
	BootstrapToken string // Optional: enables POST /api/bootstrap for first-admin creation when set

	DatabaseFile string // Optional: path to SQLite database file (default: ./kindred.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	AppURL       string // Optional: public base URL used in invite links (default: http://localhost:8080)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:               getEnvOrDefault("KINDRED_ISSUER", "kindred-collective"),
		SessionSecret:        os.Getenv("KINDRED_SESSION_SECRET"),
		BootstrapToken:       os.Getenv("KINDRED_BOOTSTRAP_TOKEN"),
		DatabaseFile:         getEnvOrDefault("KINDRED_DATABASE_FILE", "kindred.db"),
		PepperFile:           getEnvOrDefault("KINDRED_PEPPER_FILE", "pepper"),
		AppURL:               getEnvOrDefault("KINDRED_APP_URL", "http://localhost:8080"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are read as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
