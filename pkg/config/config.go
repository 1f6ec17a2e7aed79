package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional, empty URL disables run history)
	Database DatabaseConfig

	// Redis (optional report snapshot store)
	Redis RedisConfig

	// Quote providers
	Quote QuoteConfig

	// Return computation engine
	Engine EngineConfig

	// Inbound API limits
	API APIConfig

	// Scheduled recompute
	Schedule ScheduleConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// QuoteConfig holds quote provider selection and credentials
type QuoteConfig struct {
	Provider            string // tiingo, alphavantage
	TiingoToken         string
	TiingoBaseURL       string
	AlphavantageAPIKey  string
	AlphavantageBaseURL string
	Timeout             time.Duration
}

// EngineConfig holds worker pool settings
type EngineConfig struct {
	Workers       int
	BatchTimeout  time.Duration // 0 means only the caller's context bounds a batch
	ShutdownGrace time.Duration
}

// APIConfig holds inbound request limits for the HTTP API
type APIConfig struct {
	RateLimit float64 // requests per second
	RateBurst int
}

// ScheduleConfig holds the cron recompute settings
type ScheduleConfig struct {
	Cron       string
	TradesFile string
}

// knownProviders must stay in sync with internal/quotes.
var knownProviders = map[string]bool{
	"tiingo":       true,
	"alphavantage": true,
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Quote: QuoteConfig{
			Provider:            strings.ToLower(getEnv("QUOTE_PROVIDER", "tiingo")),
			TiingoToken:         getEnv("TIINGO_TOKEN", ""),
			TiingoBaseURL:       getEnv("TIINGO_BASE_URL", "https://api.tiingo.com"),
			AlphavantageAPIKey:  getEnv("ALPHAVANTAGE_API_KEY", ""),
			AlphavantageBaseURL: getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co"),
			Timeout:             getEnvAsDuration("QUOTE_TIMEOUT", "10s"),
		},

		Engine: EngineConfig{
			Workers:       getEnvAsInt("ENGINE_WORKERS", 4),
			BatchTimeout:  getEnvAsDuration("ENGINE_BATCH_TIMEOUT", "2m"),
			ShutdownGrace: getEnvAsDuration("ENGINE_SHUTDOWN_GRACE", "60s"),
		},

		API: APIConfig{
			RateLimit: getEnvAsFloat("API_RATE_LIMIT", 5),
			RateBurst: getEnvAsInt("API_RATE_BURST", 10),
		},

		Schedule: ScheduleConfig{
			Cron:       getEnv("RETURNS_CRON", "0 0 18 * * 1-5"),
			TradesFile: getEnv("RETURNS_TRADES_FILE", "trades.json"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if !knownProviders[c.Quote.Provider] {
		return fmt.Errorf("QUOTE_PROVIDER %q is not supported (valid: tiingo, alphavantage)", c.Quote.Provider)
	}

	if c.Engine.Workers < 1 {
		return fmt.Errorf("ENGINE_WORKERS must be >= 1, got %d", c.Engine.Workers)
	}

	if c.API.RateLimit <= 0 || c.API.RateBurst < 1 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_BURST must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
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
