package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Documented defaults for the 2024 Bergen analysis window and split.
const (
	DefaultWindowStart   = "2024-01-01T00:00:00Z"
	DefaultWindowEnd     = "2024-12-19T00:00:00Z"
	DefaultSplitFraction = 0.75
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Port        int
	MetricsAddr string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	URL     string
	Channel string
}

type CORSConfig struct {
	AllowedOrigins string
}

type PipelineConfig struct {
	DataDir       string
	WindowStart   time.Time
	WindowEnd     time.Time
	SplitFraction float64
	Workers       int
	ModelVersion  string
	Schedule      string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	windowStart, err := getTimeEnv("WINDOW_START", DefaultWindowStart)
	if err != nil {
		return nil, fmt.Errorf("invalid WINDOW_START: %w", err)
	}
	windowEnd, err := getTimeEnv("WINDOW_END", DefaultWindowEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid WINDOW_END: %w", err)
	}
	if windowEnd.Before(windowStart) {
		return nil, fmt.Errorf("WINDOW_END %s before WINDOW_START %s",
			windowEnd.Format(time.RFC3339), windowStart.Format(time.RFC3339))
	}

	splitFraction, err := getFloatEnv("SPLIT_FRACTION", DefaultSplitFraction)
	if err != nil {
		return nil, fmt.Errorf("invalid SPLIT_FRACTION: %w", err)
	}
	if splitFraction <= 0 || splitFraction >= 1 {
		return nil, fmt.Errorf("SPLIT_FRACTION %v outside (0, 1)", splitFraction)
	}

	workers, err := getIntEnv("PIPELINE_WORKERS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_WORKERS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        serverPort,
			MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "bysykkel"),
			Password: getEnv("DB_PASSWORD", "bysykkel_dev_password"),
			Name:     getEnv("DB_NAME", "bysykkel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			Channel: getEnv("REDIS_CHANNEL", "bysykkel:predictions"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Pipeline: PipelineConfig{
			DataDir:       getEnv("TRIP_DATA_DIR", "./data"),
			WindowStart:   windowStart,
			WindowEnd:     windowEnd,
			SplitFraction: splitFraction,
			Workers:       workers,
			ModelVersion:  getEnv("MODEL_VERSION", "dow-hour-ols-v1"),
			Schedule:      getEnv("RUN_SCHEDULE", ""),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// getTimeEnv accepts RFC3339 or a bare date, interpreted as midnight UTC.
func getTimeEnv(key, fallback string) (time.Time, error) {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
