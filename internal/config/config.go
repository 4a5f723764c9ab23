package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// BootstrapConfig seeds the first superuser account at startup.
type BootstrapConfig struct {
	SuperuserEmail    string
	SuperuserPassword string
	SuperuserName     string
}

// Config is constructed once at process start and passed explicitly to every
// component that needs it; there is no package-level instance.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	JWT       JWTConfig
	Bootstrap BootstrapConfig
}

// LoadConfig reads configuration from the environment, with .env as fallback
// for local development.
func LoadConfig() (*Config, error) {
	// Missing .env is fine in deployed environments
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "school.events"),
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
		Bootstrap: BootstrapConfig{
			SuperuserEmail:    getEnv("FIRST_SUPERUSER_EMAIL", "admin@school.local"),
			SuperuserPassword: os.Getenv("FIRST_SUPERUSER_PASSWORD"),
			SuperuserName:     getEnv("FIRST_SUPERUSER_NAME", "System Administrator"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
