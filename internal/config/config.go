package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Engine
	Engine EngineConfig

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int
}

// EngineConfig holds tuning knobs for the recompute engine
type EngineConfig struct {
	DebounceInterval time.Duration
	CauseCooldown    time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:         getEnv("ENV", "development"),
		Engine: EngineConfig{
			DebounceInterval: getEnvDuration("ENGINE_DEBOUNCE_MS", 300*time.Millisecond),
			CauseCooldown:    getEnvDuration("ENGINE_CAUSE_COOLDOWN_MS", time.Second),
		},
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Engine.DebounceInterval <= 0 {
		return fmt.Errorf("ENGINE_DEBOUNCE_MS must be positive")
	}
	if c.Engine.CauseCooldown < 0 {
		return fmt.Errorf("ENGINE_CAUSE_COOLDOWN_MS must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	ms, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
