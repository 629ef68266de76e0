package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Pokemon TCG API
	TCGAPIBaseURL    string
	TCGAPIKey        string
	TCGRequestsPerHr int
	TCGCacheTTL      time.Duration
	TCGCacheSize     int
	TCGHTTPTimeout   time.Duration
	TCGMaxRetries    int

	// Quality gate
	MinAcceptableQuality float64
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),

		TCGAPIBaseURL:    getEnvOrDefault("TCG_API_BASE_URL", "https://api.pokemontcg.io/v2"),
		TCGAPIKey:        os.Getenv("TCG_API_KEY"),
		TCGRequestsPerHr: int(parseIntOrDefault("TCG_REQUESTS_PER_HOUR", 1000)),
		TCGCacheTTL:      parseDurationOrDefault("TCG_CACHE_TTL", time.Hour),
		TCGCacheSize:     int(parseIntOrDefault("TCG_CACHE_SIZE", 512)),
		TCGHTTPTimeout:   parseDurationOrDefault("TCG_HTTP_TIMEOUT", 10*time.Second),
		TCGMaxRetries:    int(parseIntOrDefault("TCG_MAX_RETRIES", 3)),

		MinAcceptableQuality: parseFloatOrDefault("MIN_ACCEPTABLE_QUALITY", 40),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.TCGHTTPTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, tcg=%s)",
			cfg.RequestTimeout, cfg.TCGHTTPTimeout)
	}
	if cfg.TCGRequestsPerHr <= 0 {
		return nil, fmt.Errorf("TCG_REQUESTS_PER_HOUR must be > 0 (got %d)", cfg.TCGRequestsPerHr)
	}
	if cfg.TCGCacheSize <= 0 {
		return nil, fmt.Errorf("TCG_CACHE_SIZE must be > 0 (got %d)", cfg.TCGCacheSize)
	}
	if cfg.MinAcceptableQuality < 0 || cfg.MinAcceptableQuality > 100 {
		return nil, fmt.Errorf("MIN_ACCEPTABLE_QUALITY must be in [0,100] (got %g)", cfg.MinAcceptableQuality)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}
