package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Redis (offline cart store)
	RedisURL string

	// JWT (marketplace-issued tokens, validation only)
	JWTSecret string

	// CORS
	AllowedOrigins []string

	// Marketplace API
	MarketplaceBaseURL        string
	MarketplaceToken          string
	MarketplaceTimeoutSeconds int

	// Realtime push channel
	RealtimeURL       string
	RealtimeEnabled   bool
	RealtimeReconnect time.Duration

	// Offline cart
	OfflineCartTTL time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret: getEnv("JWT_SECRET", "super-secret-key-change-me"),

		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		MarketplaceBaseURL:        getEnv("MARKETPLACE_BASE_URL", "http://localhost:9000"),
		MarketplaceToken:          getEnv("MARKETPLACE_TOKEN", ""),
		MarketplaceTimeoutSeconds: parseInt(getEnv("MARKETPLACE_TIMEOUT_SECONDS", "10"), 10),

		RealtimeURL:       getEnv("REALTIME_URL", "ws://localhost:9000/ws"),
		RealtimeEnabled:   parseBool(getEnv("REALTIME_ENABLED", "true"), true),
		RealtimeReconnect: parseDuration(getEnv("REALTIME_RECONNECT_MAX", "30s"), 30*time.Second),

		OfflineCartTTL: parseDuration(getEnv("OFFLINE_CART_TTL", "720h"), 720*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseBool(s string, defaultValue bool) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if start < i {
				result = append(result, s[start:i])
			}
			start = i + 1
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
