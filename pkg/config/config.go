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

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External services
	Oracle    OracleConfig
	Collector CollectorConfig

	// Analysis pipeline
	Analysis AnalysisConfig

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

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// OracleConfig holds sentiment oracle (Gemini) configuration
type OracleConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	DailyCallBudget int // total calls per 24h across processes, 0 disables the cap
}

// CollectorConfig holds market data and news collection configuration
type CollectorConfig struct {
	ChartBaseURL string   // Yahoo-style chart endpoint
	QuoteBaseURL string   // Yahoo-style quoteSummary endpoint for fundamentals
	RSSFeeds     []string // news feed URLs
	HTTPTimeout  time.Duration
	HistoryDays  int // calendar-day depth fetched per symbol
}

// AnalysisConfig holds pipeline tuning parameters
type AnalysisConfig struct {
	LookbackHours       int           // news/sentiment trailing window
	BatchSize           int           // articles per sentiment batch
	MinCallDelay        time.Duration // minimum delay between oracle calls
	ConfidenceThreshold float64       // sentiment results below this are discarded
	QualTimeout         time.Duration // max wait for qualitative stage before the MEDIUM fallback
	Workers             int           // concurrent symbols for quant/risk scoring
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
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

		Oracle: OracleConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:         getEnvAsDuration("ORACLE_TIMEOUT", "30s"),
			DailyCallBudget: getEnvAsInt("ORACLE_DAILY_CALL_BUDGET", 1500),
		},

		Collector: CollectorConfig{
			ChartBaseURL: getEnv("CHART_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			QuoteBaseURL: getEnv("QUOTE_BASE_URL", "https://query1.finance.yahoo.com/v10/finance/quoteSummary"),
			RSSFeeds:     splitList(getEnv("NEWS_RSS_FEEDS", defaultRSSFeeds)),
			HTTPTimeout:  getEnvAsDuration("COLLECTOR_HTTP_TIMEOUT", "30s"),
			HistoryDays:  getEnvAsInt("COLLECTOR_HISTORY_DAYS", 365),
		},

		Analysis: AnalysisConfig{
			LookbackHours:       getEnvAsInt("ANALYSIS_LOOKBACK_HOURS", 24),
			BatchSize:           getEnvAsInt("SENTIMENT_BATCH_SIZE", 100),
			MinCallDelay:        getEnvAsDuration("SENTIMENT_MIN_CALL_DELAY", "1s"),
			ConfidenceThreshold: getEnvAsFloat("SENTIMENT_CONFIDENCE_THRESHOLD", 0.3),
			QualTimeout:         getEnvAsDuration("QUALITATIVE_TIMEOUT", "10m"),
			Workers:             getEnvAsInt("ANALYSIS_WORKERS", 8),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// defaultRSSFeeds are the Indonesian financial news feeds polled when
// NEWS_RSS_FEEDS is not set.
const defaultRSSFeeds = "https://www.kontan.co.id/rss/investasi," +
	"https://www.bisnis.com/rss/keuangan," +
	"https://www.cnnindonesia.com/ekonomi/rss"

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Analysis.ConfidenceThreshold < 0 || c.Analysis.ConfidenceThreshold > 1 {
		return fmt.Errorf("SENTIMENT_CONFIDENCE_THRESHOLD must be in [0,1]")
	}

	if c.Analysis.Workers < 1 {
		return fmt.Errorf("ANALYSIS_WORKERS must be at least 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

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

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
