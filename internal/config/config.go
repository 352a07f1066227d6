package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Run modes
const (
	ModeServer = "server"
	ModeWorker = "worker"
	ModeAll    = "all"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Env  string
	Port string
	Mode string

	DatabaseURL string
	RedisURL    string

	SessionSecret string
	EncryptionKey string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	LogLevel  string
	LogFormat string

	CatalogPath string
	CacheTTL    time.Duration

	WebhookURL    string
	WebhookSecret string
	WebhookStub   bool

	SubmissionSweepSchedule string
	AuthRateLimit           float64
	AuthRateBurst           int

	AllowedOrigins []string
	SeedDevData    bool
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Env:                     getEnvWithDefault("ENV", "development"),
		Port:                    getEnvWithDefault("PORT", "8080"),
		Mode:                    getEnvWithDefault("APP_MODE", ModeAll),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisURL:                os.Getenv("REDIS_URL"),
		SessionSecret:           os.Getenv("SESSION_SECRET"),
		EncryptionKey:           os.Getenv("ENCRYPTION_KEY"),
		GoogleClientID:          os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:      os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:       getEnvWithDefault("GOOGLE_CALLBACK_URL", "http://localhost:8080/auth/google/callback"),
		LogLevel:                getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:               getEnvWithDefault("LOG_FORMAT", "text"),
		CatalogPath:             getEnvWithDefault("CATALOG_PATH", "catalog/reference.yaml"),
		CacheTTL:                getDurationWithDefault("CACHE_TTL", 10*time.Minute),
		WebhookURL:              os.Getenv("WEBHOOK_URL"),
		WebhookSecret:           os.Getenv("WEBHOOK_SECRET"),
		WebhookStub:             getBoolWithDefault("WEBHOOK_STUB", true),
		AllowedOrigins:          splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SubmissionSweepSchedule: getEnvWithDefault("SUBMISSION_SWEEP_SCHEDULE", "@every 15m"),
		AuthRateLimit:           getFloatWithDefault("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:           getIntWithDefault("AUTH_RATE_BURST", 10),
		SeedDevData:             getBoolWithDefault("SEED_DEV_DATA", false),
	}

	switch cfg.Mode {
	case ModeServer, ModeWorker, ModeAll:
	default:
		log.Printf("WARNING: unknown APP_MODE %q, falling back to %q", cfg.Mode, ModeAll)
		cfg.Mode = ModeAll
	}

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}

	if cfg.WebhookURL == "" && !cfg.WebhookStub {
		log.Println("WARNING: WEBHOOK_URL not set, profile submissions will run in stub mode")
		cfg.WebhookStub = true
	}

	return cfg
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RunsServer reports whether the HTTP server should start in this mode.
func (c *Config) RunsServer() bool {
	return c.Mode == ModeServer || c.Mode == ModeAll
}

// RunsWorker reports whether the task worker should start in this mode.
func (c *Config) RunsWorker() bool {
	return c.Mode == ModeWorker || c.Mode == ModeAll
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("WARNING: invalid boolean for %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getFloatWithDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("WARNING: invalid number for %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARNING: invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
