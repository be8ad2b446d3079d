package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// WriteTimeoutSeconds bounds a single audit append, persistence included (default 5).
	WriteTimeoutSeconds int

	// VerifyCron is the cron expression for scheduled integrity verification
	// (default "0 3 * * *", daily at 03:00). Empty disables the job.
	VerifyCron string
	// VerifyWindowHours is how far back each scheduled verification looks (default 48).
	VerifyWindowHours int
	// VerifyPageSize bounds how many entries a verification walk loads at once (default 500).
	VerifyPageSize int

	// AlertStreamURL is a Redis URL (e.g. redis://localhost:6379/0) for live
	// alert fan-out. When empty, alerts are only persisted to the notifications table.
	AlertStreamURL string
	// AlertStreamChannel is the Redis channel alerts are published on.
	AlertStreamChannel string

	// RateLimitPerMinute is the per-IP request budget for the API (default 300).
	RateLimitPerMinute int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed for CORS.
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "auditdb"),
		DBUser: getEnv("DB_USER", "audituser"),
		DBPass: getEnv("DB_PASS", "auditpass"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		Env:            getEnv("ENV", "dev"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		WriteTimeoutSeconds: getEnvInt("AUDIT_WRITE_TIMEOUT_SECONDS", 5),

		VerifyCron:        getEnv("VERIFY_CRON", "0 3 * * *"),
		VerifyWindowHours: getEnvInt("VERIFY_WINDOW_HOURS", 48),
		VerifyPageSize:    getEnvInt("VERIFY_PAGE_SIZE", 500),

		AlertStreamURL:     getEnv("ALERT_STREAM_URL", ""),
		AlertStreamChannel: getEnv("ALERT_STREAM_CHANNEL", "audit.alerts"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 300),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
