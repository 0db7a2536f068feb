package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the assistant.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool
	Debug            bool

	OpenAIAPIKey string
	OpenAIModel  string

	DatabasePath string
	DatabaseURL  string

	MaxConversationHistory int
	MaxMemoryEntries       int
	ResponseCacheSize      int
	ContextCacheTTL        time.Duration
	MemoryWorkers          int

	GoogleAPIKey  string
	GoogleCSEID   string
	SearchTimeout time.Duration

	OpenWeatherAPIKey string
	WeatherCity       string
	WeatherPlace      string

	ReportsDir string
}

// Load reads a .env file when present, then environment variables, and
// applies safe defaults.
func Load() (Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:               envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:       envOrDefault("APP_METRICS_NAMESPACE", "secondbrain"),
		OpenAIAPIKey:           trimmedEnv("OPENAI_API_KEY"),
		OpenAIModel:            envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		DatabasePath:           envOrDefault("DATABASE_PATH", "secondbrain.db"),
		DatabaseURL:            trimmedEnv("DATABASE_URL"),
		GoogleAPIKey:           trimmedEnv("GOOGLE_API_KEY"),
		GoogleCSEID:            trimmedEnv("GOOGLE_CSE_ID"),
		OpenWeatherAPIKey:      trimmedEnv("OPENWEATHER_API_KEY"),
		WeatherCity:            trimmedEnv("WEATHER_CITY"),
		WeatherPlace:           trimmedEnv("WEATHER_PLACE"),
		ReportsDir:             envOrDefault("REPORTS_DIR", "reports"),
		MaxConversationHistory: 5,
		MaxMemoryEntries:       10,
		ResponseCacheSize:      100,
		MemoryWorkers:          3,
		ContextCacheTTL:        30 * time.Second,
		SearchTimeout:          5 * time.Second,
		ShutdownTimeout:        15 * time.Second,
	}

	var err error
	cfg.MaxConversationHistory, err = intFromEnv("MAX_CONVERSATION_HISTORY", cfg.MaxConversationHistory)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxMemoryEntries, err = intFromEnv("MAX_MEMORY_ENTRIES", cfg.MaxMemoryEntries)
	if err != nil {
		return Config{}, err
	}
	cfg.ResponseCacheSize, err = intFromEnv("RESPONSE_CACHE_SIZE", cfg.ResponseCacheSize)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryWorkers, err = intFromEnv("MEMORY_WORKERS", cfg.MemoryWorkers)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextCacheTTL, err = durationFromEnv("CONTEXT_CACHE_TTL", cfg.ContextCacheTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.SearchTimeout, err = durationFromEnv("SEARCH_TIMEOUT", cfg.SearchTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.Debug, err = boolFromEnv("APP_DEBUG", cfg.Debug)
	if err != nil {
		return Config{}, err
	}

	if cfg.MaxConversationHistory <= 0 {
		return Config{}, fmt.Errorf("MAX_CONVERSATION_HISTORY must be positive")
	}
	if cfg.MaxMemoryEntries <= 0 {
		return Config{}, fmt.Errorf("MAX_MEMORY_ENTRIES must be positive")
	}
	if cfg.ResponseCacheSize <= 0 {
		return Config{}, fmt.Errorf("RESPONSE_CACHE_SIZE must be positive")
	}
	if cfg.MemoryWorkers <= 0 {
		return Config{}, fmt.Errorf("MEMORY_WORKERS must be positive")
	}
	if cfg.ContextCacheTTL < 0 {
		return Config{}, fmt.Errorf("CONTEXT_CACHE_TTL must not be negative")
	}
	if cfg.SearchTimeout <= 0 {
		return Config{}, fmt.Errorf("SEARCH_TIMEOUT must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: invalid boolean %q", key, v)
	}
}
