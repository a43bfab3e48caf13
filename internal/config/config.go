package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultSessionSecret signs session tokens when SESSION_SECRET is unset.
// It is public, so any deployment running with it accepts forged cookies.
const DefaultSessionSecret = "portal-default-dev-secret-change-me"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Store backend (CustomerLogin, CreateCustomer, PostUserImage, ...)
	BackendURL string

	// HTTP client. Zero means no client-side timeout: backend calls are fire-and-wait.
	HTTPTimeout time.Duration

	// Resilience
	ReadMaxRetries       int
	InitialBackoff       time.Duration
	UploadMaxConcurrency int

	// Cache
	CacheTTL     time.Duration
	WorkspaceTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Durable store. Empty address selects the in-memory store.
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int

	// Session
	SessionSecret     string
	SessionTTL        time.Duration
	SecureCookies     bool
	ProtectedPrefix   string
	LoginPath         string
	LandingPath       string
	PublicLandingPath string

	// Intake
	SendEmployeeID bool
}

// UsesDefaultSessionSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsesDefaultSessionSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BackendURL: getEnv("BACKEND_URL", "http://localhost:8081"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 0),

		ReadMaxRetries:       getEnvInt("READ_MAX_RETRIES", 0),
		InitialBackoff:       getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		UploadMaxConcurrency: getEnvInt("UPLOAD_MAX_CONCURRENCY", 16),

		CacheTTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),
		WorkspaceTTL: getEnvDuration("WORKSPACE_TTL", 30*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SessionSecret:     getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionTTL:        getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		SecureCookies:     getEnvBool("SECURE_COOKIES", false),
		ProtectedPrefix:   getEnv("PROTECTED_PREFIX", "/store"),
		LoginPath:         getEnv("LOGIN_PATH", "/storeLogin"),
		LandingPath:       getEnv("LANDING_PATH", "/store"),
		PublicLandingPath: getEnv("PUBLIC_LANDING_PATH", "/"),

		SendEmployeeID: getEnvBool("INTAKE_SEND_EMPLOYEE_ID", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
