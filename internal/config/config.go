package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Logging
	LogLevel  string
	LogPretty bool

	// Database configuration
	DBDriver      string // "mysql" or "postgres"
	DatabaseDSN   string // Data Source Name
	DBAutoMigrate bool

	// Location cache
	CacheType string        // "memory", "redis" or "none"
	CacheSize int           // max entries for the memory cache
	CacheTTL  time.Duration // lifetime of a cached snapshot

	// Redis configuration (cache and rate limiter)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Upstream geolocation API
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// Rate limiting
	RateLimitType   string // "memory", "redis" or "none"
	RateLimit       int    // number of requests allowed
	RateLimitWindow int    // time window in seconds

	// Optional YAML file overriding the error message catalog
	MessagesPath string
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	// In production/Docker, environment variables are set directly
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port: getEnv("PORT", "3000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "root:password@tcp(localhost:3306)/iplocator?parseTime=true"),
		DBAutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),

		CacheType: getEnv("CACHE_TYPE", "memory"),
		CacheSize: getEnvAsInt("CACHE_SIZE", 1024),
		CacheTTL:  getEnvAsDuration("CACHE_TTL", 10*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://ip-api.com"),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 5*time.Second),

		// ip-api.com allows 45 requests per minute on the free tier
		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 1),

		MessagesPath: getEnv("MESSAGES_PATH", ""),
	}
}

// RequestsPerSecond converts RateLimit/RateLimitWindow into a rate.
// Example: 10 requests per 5 seconds = 2.0 req/s
func (c *Config) RequestsPerSecond() float64 {
	if c.RateLimitWindow <= 0 {
		return float64(c.RateLimit)
	}
	return float64(c.RateLimit) / float64(c.RateLimitWindow)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool accepts anything strconv.ParseBool does ("1", "true", "FALSE"...)
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration reads values such as "5s" or "10m".
// A bare integer is treated as seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
