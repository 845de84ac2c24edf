package config

import (
	"os"
	"strconv"
	"time"

	"deadlock-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	APIBaseURL    string
	AssetsBaseURL string
	APIKey        string
	APITimeout    time.Duration
	ServerPort    string
	LogLevel      string
	Environment   string

	// Explicit override for the mock fallback policy. Nil means "not set",
	// in which case fallback is allowed everywhere except production.
	AllowMockFallback *bool
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		APIBaseURL:        getEnv("DEADLOCK_API_BASE_URL", "https://api.deadlock-api.com"),
		AssetsBaseURL:     getEnv("DEADLOCK_ASSETS_BASE_URL", "https://assets.deadlock-api.com"),
		APIKey:            getEnv("DEADLOCK_API_KEY", ""),
		APITimeout:        getEnvDuration("DEADLOCK_API_TIMEOUT_MS", constants.DefaultExternalAPITimeout),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Environment:       getEnv("APP_ENV", "development"),
		AllowMockFallback: getEnvBool("DEADLOCK_ALLOW_MOCK_FALLBACK"),
	}

	logger.Info().
		Str("api_base_url", cfg.APIBaseURL).
		Str("assets_base_url", cfg.AssetsBaseURL).
		Str("server_port", cfg.ServerPort).
		Str("environment", cfg.Environment).
		Dur("api_timeout", cfg.APITimeout).
		Bool("api_key_set", cfg.APIKey != "").
		Msg("configuration loaded")

	return cfg, nil
}

// FallbackAllowed reports whether a live failure may be masked with
// synthetic data. Production surfaces real outages unless overridden.
func (c *Config) FallbackAllowed() bool {
	if c.AllowMockFallback != nil {
		return *c.AllowMockFallback
	}
	return c.Environment != "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func getEnvBool(key string) *bool {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

var Module = fx.Provide(Load)
