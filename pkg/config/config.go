package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Open Brewery DB API
	BreweryAPI BreweryAPIConfig

	// Pipeline tunables
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// BreweryAPIConfig holds the ingestion source configuration
type BreweryAPIConfig struct {
	BaseURL       string
	PerPage       int     // API allows at most 200 per page
	RatePerSecond float64 // request pacing for pagination
	Timeout       time.Duration
}

// PipelineConfig holds cleaning, quality gate, and aggregation tunables
type PipelineConfig struct {
	// Quality gate: tolerated per-country null fraction for
	// phone/website/address before a violation is raised
	NullRateCeiling float64
	// When true, null-rate violations block aggregation instead of
	// being warning-level
	StrictQuality bool

	// Minimum record count the quality gate accepts
	MinRecords int

	// Geographic hubs ranking size
	TopCitiesLimit int

	// Retention window for bronze snapshots and old gold runs
	RetentionDays int
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Open Brewery DB API
		BreweryAPI: BreweryAPIConfig{
			BaseURL:       getEnv("BREWERY_API_URL", "https://api.openbrewerydb.org/v1/breweries"),
			PerPage:       getEnvAsInt("BREWERY_API_PER_PAGE", 200),
			RatePerSecond: getEnvAsFloat("BREWERY_API_RATE", 2.0),
			Timeout:       getEnvAsDuration("BREWERY_API_TIMEOUT", "30s"),
		},

		// Pipeline tunables
		Pipeline: PipelineConfig{
			NullRateCeiling: getEnvAsFloat("QUALITY_NULL_RATE_CEILING", 0.60),
			StrictQuality:   getEnvAsBool("QUALITY_STRICT", false),
			MinRecords:      getEnvAsInt("QUALITY_MIN_RECORDS", 1),
			TopCitiesLimit:  getEnvAsInt("GOLD_TOP_CITIES_LIMIT", 10),
			RetentionDays:   getEnvAsInt("RETENTION_DAYS", 30),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.BreweryAPI.PerPage < 1 || c.BreweryAPI.PerPage > 200 {
		return fmt.Errorf("BREWERY_API_PER_PAGE must be between 1 and 200")
	}

	if c.Pipeline.NullRateCeiling < 0 || c.Pipeline.NullRateCeiling > 1 {
		return fmt.Errorf("QUALITY_NULL_RATE_CEILING must be between 0 and 1")
	}

	if c.Pipeline.TopCitiesLimit < 1 {
		return fmt.Errorf("GOLD_TOP_CITIES_LIMIT must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
