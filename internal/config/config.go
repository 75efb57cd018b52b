package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	ProxyBaseURL       string
	LogLevel           string
	LogFile            string
	HTTPTimeout        time.Duration
	StatusPollInterval time.Duration
	ScheduleCacheSize  int
	SessionDBPath      string

	// Fallback identity used when no session has been stored yet.
	AdminUserID int64
	UserEmail   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		ProxyBaseURL:       getEnv("PROXY_BASE_URL", "http://localhost:5000/api"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		HTTPTimeout:        getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
		StatusPollInterval: getEnvAsDuration("STATUS_POLL_INTERVAL", 60*time.Second),
		ScheduleCacheSize:  getEnvAsInt("SCHEDULE_CACHE_SIZE", 32),
		SessionDBPath:      getEnv("SESSION_DB_PATH", ""),
		AdminUserID:        getEnvAsInt64("ADMIN_USER_ID", 0),
		UserEmail:          getEnv("USER_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
