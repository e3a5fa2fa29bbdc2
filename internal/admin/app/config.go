package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/pkg/jwtx"
)

type Config struct {
	JWTSecret string // Required: HS256 signing secret
	Issuer    string // Optional: issuer claim for tokens (default: femundo-admin)

	TokenTTL        time.Duration // Optional: bearer token lifetime (default: 24h)
	BcryptCost      int           // Optional: bcrypt work factor (default: 12)
	MaxAttempts     int           // Optional: failed logins before lockout (default: 5)
	LockoutDuration time.Duration // Optional: lockout window (default: 15m)
	AllowedOrigins  []string      // Optional: origins the browser frontend runs on
	DatabaseFile    string        // Optional: path to SQLite database file (default: ./admin.db)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	LimiterSweepPeriod  time.Duration // How often expired lockout windows are pruned (default: 5m)
}

func LoadConfig() Config {
	cfg := Config{
		JWTSecret:           os.Getenv("ADMIN_JWT_SECRET"),
		Issuer:              getEnvOrDefault("ADMIN_ISSUER", "femundo-admin"),
		TokenTTL:            getEnvDurationOrDefault("ADMIN_TOKEN_TTL", jwtx.DefaultTokenTTL),
		BcryptCost:          getEnvIntOrDefault("ADMIN_BCRYPT_COST", 12),
		MaxAttempts:         getEnvIntOrDefault("ADMIN_MAX_LOGIN_ATTEMPTS", service.DefaultMaxLoginAttempts),
		LockoutDuration:     getEnvDurationOrDefault("ADMIN_LOCKOUT_DURATION", service.DefaultLockoutWindow),
		DatabaseFile:        getEnvOrDefault("ADMIN_DATABASE_FILE", "admin.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		LimiterSweepPeriod:  getEnvDurationOrDefault("ADMIN_LIMITER_SWEEP_PERIOD", 5*time.Minute),
	}

	// Comma separated list, e.g. "https://admin.femundo.de,https://femundo.de"
	if raw := os.Getenv("ADMIN_ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
