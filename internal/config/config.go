package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	ProviderMistral   = "mistral"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL   string
	DataDir    string
	SessionTTL time.Duration

	OracleProvider  string
	ModelName       string
	MistralAPIKey   string
	AnthropicAPIKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		OracleProvider:  strings.ToLower(getEnv("ORACLE_PROVIDER", ProviderMistral)),
		ModelName:       getEnv("MODEL_NAME", ""),
		MistralAPIKey:   os.Getenv("MISTRAL_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	switch cfg.OracleProvider {
	case ProviderMistral, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("invalid ORACLE_PROVIDER %q (supported: mistral, anthropic)", cfg.OracleProvider)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
