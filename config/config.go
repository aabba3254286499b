package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Backend
	APIBaseURL string
	Timeout    time.Duration
	AppVersion string
	Platform   string

	// Rate limiting
	RatePerSecond float64
	RateBurst     int
	MaxConcurrent int

	// Price tracking
	CheckIntervalMinutes int
	CheckInterval        time.Duration
	CheckDelay           time.Duration // pause between per-product price queries
	HistoryLimit         int           // max retained price points per favorite

	// Shop-page fallback
	PageFallback  bool
	RespectRobots bool

	// Local state
	DatabasePath string

	// Notifications
	TelegramBotToken string
	TelegramChatID   int64

	// MCP HTTP server
	HTTPPort string
	APIKey   string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:           "https://bazenda.com/api",
		Timeout:              15 * time.Second,
		AppVersion:           "1.0.0",
		Platform:             runtime.GOOS,
		RatePerSecond:        2.0,
		RateBurst:            3,
		MaxConcurrent:        5,
		CheckIntervalMinutes: 60,
		CheckDelay:           500 * time.Millisecond,
		HistoryLimit:         100,
		PageFallback:         true,
		RespectRobots:        true,
		DatabasePath:         "./bazenda.db",
		HTTPPort:             "8080",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("BAZENDA_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("BAZENDA_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Timeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("BAZENDA_APP_VERSION"); v != "" {
		c.AppVersion = v
	}
	if v := os.Getenv("BAZENDA_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("BAZENDA_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("BAZENDA_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv("BAZENDA_CHECK_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.CheckIntervalMinutes = n
		}
	}
	if v := os.Getenv("BAZENDA_CHECK_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.CheckDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("BAZENDA_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.HistoryLimit = n
		}
	}
	if v := os.Getenv("BAZENDA_PAGE_FALLBACK"); v == "false" {
		c.PageFallback = false
	}
	if v := os.Getenv("BAZENDA_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("BAZENDA_DB"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.TelegramChatID = id
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("BAZENDA_API_KEY"); v != "" {
		c.APIKey = v
	}

	c.CheckInterval = time.Duration(c.CheckIntervalMinutes) * time.Minute
}
