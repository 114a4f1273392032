// Package config provides environment configuration for the gateway.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// NATS settings
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings (dashboard auth)
	JWTSecret     string
	JWTExpiration time.Duration

	// Generation settings
	AnthropicAPIKey    string
	OpenAIAPIKey       string
	GenerationProvider string
	GenerationModel    string
	GenerationTimeout  time.Duration

	// Per-tenant admission control
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Pre-auth per-IP flood guard
	IPRateLimitRequests int

	// Response cache
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Conversation context
	HistoryWindow int

	// Background side-effect pool
	BackgroundWorkers int
	BackgroundQueue   int

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),

		// NATS
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret:     getEnv("JWT_SECRET", "development-secret-change-in-production"),
		JWTExpiration: getDurationEnv("JWT_EXPIRATION", 12*time.Hour),

		// Generation
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		GenerationProvider: getEnv("GENERATION_PROVIDER", "openai"),
		GenerationModel:    getEnv("GENERATION_MODEL", ""),
		GenerationTimeout:  getDurationEnv("GENERATION_TIMEOUT", 12*time.Second),

		// Rate limiting
		RateLimitRequests:   getIntEnv("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:     getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		IPRateLimitRequests: getIntEnv("IP_RATE_LIMIT_REQUESTS", 120),

		// Response cache
		CacheTTL:        getDurationEnv("CACHE_TTL", time.Minute),
		CacheMaxEntries: getIntEnv("CACHE_MAX_ENTRIES", 10000),

		// History
		HistoryWindow: getIntEnv("HISTORY_WINDOW", 5),

		// Background pool
		BackgroundWorkers: getIntEnv("BACKGROUND_WORKERS", 4),
		BackgroundQueue:   getIntEnv("BACKGROUND_QUEUE", 256),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
