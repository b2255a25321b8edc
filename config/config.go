package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	// Market data provider
	TwelveDataAPIKey string `yaml:"twelve_data_api_key"`
	TwelveDataBase   string `yaml:"twelve_data_base"`
	QuoteStreamURL   string `yaml:"quote_stream_url"`

	// Watchlist
	Watchlist []string `yaml:"watchlist"`

	// Database configuration
	DatabaseHost     string `yaml:"db_host"`
	DatabasePort     string `yaml:"db_port"`
	DatabaseName     string `yaml:"db_name"`
	DatabaseUser     string `yaml:"db_user"`
	DatabasePassword string `yaml:"db_password"`

	// Redis configuration
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Signal detection and trading parameters
	Signals SignalConfig `yaml:"signals"`

	// Notification delivery
	Email       EmailConfig `yaml:"email"`
	WebhookURLs []string    `yaml:"webhook_urls"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// LLMConfig holds the alert summarizer service configuration
type LLMConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// EmailConfig holds SMTP delivery settings
type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	AlertTo      string `yaml:"alert_to"`
}

// SignalConfig holds every threshold the detection, throttling, trend, and
// batching logic recognizes.
type SignalConfig struct {
	// Detection thresholds
	MovePct          float64 `yaml:"move_pct"`          // % change from day open
	VolumeSpikeMult  float64 `yaml:"volume_spike_mult"` // multiple of trailing average volume
	BreakoutLookback int     `yaml:"breakout_lookback"` // prior bars for breakout/breakdown

	// Alert throttling
	MinAlertGapMin int     `yaml:"min_alert_gap_min"` // cooldown between alerts
	ReAlertStepPct float64 `yaml:"re_alert_step_pct"` // extra % move that re-arms inside the gap

	// Trend analysis
	TrendBars         int     `yaml:"trend_bars"`            // regression window (latest N closes)
	MinSlopePctPerBar float64 `yaml:"min_slope_pct_per_bar"` // noise filter, 0 disables
	MinR2             float64 `yaml:"min_r2"`                // fit-quality filter, 0 disables

	// Provider batching (rate limit backpressure)
	BatchSize        int `yaml:"batch_size"`
	BatchWaitSeconds int `yaml:"batch_wait_seconds"`

	// History
	HistoryDays int `yaml:"history_days"`

	// Market hours (Europe/London)
	MarketOpenHour  int `yaml:"market_open_hour"`
	MarketCloseHour int `yaml:"market_close_hour"`
}

// LoadFromEnv loads configuration from an optional YAML file plus
// environment variables. Environment variables always win, so a deployment
// can ship a config.yaml with stable thresholds and override secrets per
// environment.
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := defaults()

	if path := getEnvOrDefault("CONFIG_FILE", "config.yaml"); path != "" {
		if err := cfg.applyYAML(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Config file %s not applied: %v", path, err)
		}
	}

	cfg.applyEnv()
	return cfg
}

func defaults() *Config {
	return &Config{
		TwelveDataBase: "https://api.twelvedata.com",
		QuoteStreamURL: "wss://ws.twelvedata.com/v1/quotes/price",

		DatabaseHost:     "localhost",
		DatabasePort:     "5432",
		DatabaseName:     "stock_sentry",
		DatabaseUser:     "sentry",
		DatabasePassword: "sentry123",

		RedisHost: "localhost",
		RedisPort: "6379",

		LLM: LLMConfig{
			Endpoint: "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
		},

		Email: EmailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
		},

		Signals: SignalConfig{
			MovePct:          1.5,
			VolumeSpikeMult:  2.0,
			BreakoutLookback: 20,
			MinAlertGapMin:   60,
			ReAlertStepPct:   0.5,
			TrendBars:        10,
			BatchSize:        5,
			BatchWaitSeconds: 62,
			HistoryDays:      365,
			MarketOpenHour:   8,
			MarketCloseHour:  16,
		},

		LogLevel: "info",
	}
}

func (c *Config) applyYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	c.TwelveDataAPIKey = getEnvOrDefault("TWELVE_DATA_API_KEY", c.TwelveDataAPIKey)
	c.TwelveDataBase = getEnvOrDefault("TWELVE_DATA_BASE", c.TwelveDataBase)
	c.QuoteStreamURL = getEnvOrDefault("QUOTE_STREAM_URL", c.QuoteStreamURL)

	if raw := os.Getenv("WATCHLIST"); raw != "" {
		c.Watchlist = splitSymbols(raw)
	}

	c.DatabaseHost = getEnvOrDefault("DB_HOST", c.DatabaseHost)
	c.DatabasePort = getEnvOrDefault("DB_PORT", c.DatabasePort)
	c.DatabaseName = getEnvOrDefault("DB_NAME", c.DatabaseName)
	c.DatabaseUser = getEnvOrDefault("DB_USER", c.DatabaseUser)
	c.DatabasePassword = getEnvOrDefault("DB_PASSWORD", c.DatabasePassword)

	c.RedisHost = getEnvOrDefault("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnvOrDefault("REDIS_PORT", c.RedisPort)
	c.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", c.RedisPassword)

	c.LLM.Enabled = getEnvOrDefault("LLM_ENABLED", strconv.FormatBool(c.LLM.Enabled)) == "true"
	c.LLM.Endpoint = getEnvOrDefault("LLM_ENDPOINT", c.LLM.Endpoint)
	c.LLM.APIKey = getEnvOrDefault("LLM_API_KEY", c.LLM.APIKey)
	c.LLM.Model = getEnvOrDefault("LLM_MODEL", c.LLM.Model)

	c.Email.SMTPHost = getEnvOrDefault("SMTP_HOST", c.Email.SMTPHost)
	c.Email.SMTPPort = getEnvInt("SMTP_PORT", c.Email.SMTPPort)
	c.Email.SMTPUser = getEnvOrDefault("SMTP_USER", c.Email.SMTPUser)
	c.Email.SMTPPassword = getEnvOrDefault("SMTP_PASSWORD", c.Email.SMTPPassword)
	c.Email.AlertTo = getEnvOrDefault("ALERT_EMAIL_TO", c.Email.AlertTo)

	if raw := os.Getenv("WEBHOOK_URLS"); raw != "" {
		c.WebhookURLs = splitList(raw)
	}

	c.Signals.MovePct = getEnvFloat("MOVE_PCT", c.Signals.MovePct)
	c.Signals.VolumeSpikeMult = getEnvFloat("VOLUME_SPIKE_MULT", c.Signals.VolumeSpikeMult)
	c.Signals.BreakoutLookback = getEnvInt("BREAKOUT_LOOKBACK", c.Signals.BreakoutLookback)
	c.Signals.MinAlertGapMin = getEnvInt("MIN_ALERT_GAP_MIN", c.Signals.MinAlertGapMin)
	c.Signals.ReAlertStepPct = getEnvFloat("RE_ALERT_STEP_PCT", c.Signals.ReAlertStepPct)
	c.Signals.TrendBars = getEnvInt("TREND_BARS", c.Signals.TrendBars)
	c.Signals.MinSlopePctPerBar = getEnvFloat("MIN_SLOPE_PCT_PER_BAR", c.Signals.MinSlopePctPerBar)
	c.Signals.MinR2 = getEnvFloat("MIN_R2", c.Signals.MinR2)
	c.Signals.BatchSize = getEnvInt("BATCH_SIZE", c.Signals.BatchSize)
	c.Signals.BatchWaitSeconds = getEnvInt("BATCH_WAIT_SECONDS", c.Signals.BatchWaitSeconds)
	c.Signals.HistoryDays = getEnvInt("HISTORY_DAYS", c.Signals.HistoryDays)
	c.Signals.MarketOpenHour = getEnvInt("MARKET_OPEN_HOUR", c.Signals.MarketOpenHour)
	c.Signals.MarketCloseHour = getEnvInt("MARKET_CLOSE_HOUR", c.Signals.MarketCloseHour)

	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
}

// Validate checks the invariants every run depends on. A failure here is
// fatal at startup; nothing downstream should see a half-valid config.
func (c *Config) Validate() error {
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("WATCHLIST is required")
	}
	if c.TwelveDataAPIKey == "" {
		return fmt.Errorf("TWELVE_DATA_API_KEY is required")
	}
	if c.Signals.MovePct < 0 {
		return fmt.Errorf("MOVE_PCT must be >= 0, got %v", c.Signals.MovePct)
	}
	if c.Signals.VolumeSpikeMult < 0 {
		return fmt.Errorf("VOLUME_SPIKE_MULT must be >= 0, got %v", c.Signals.VolumeSpikeMult)
	}
	if c.Signals.BreakoutLookback < 1 {
		return fmt.Errorf("BREAKOUT_LOOKBACK must be >= 1, got %d", c.Signals.BreakoutLookback)
	}
	if c.Signals.MinAlertGapMin < 1 {
		return fmt.Errorf("MIN_ALERT_GAP_MIN must be >= 1, got %d", c.Signals.MinAlertGapMin)
	}
	if c.Signals.ReAlertStepPct < 0 {
		return fmt.Errorf("RE_ALERT_STEP_PCT must be >= 0, got %v", c.Signals.ReAlertStepPct)
	}
	if c.Signals.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be >= 1, got %d", c.Signals.BatchSize)
	}
	if c.Signals.BatchWaitSeconds < 0 {
		return fmt.Errorf("BATCH_WAIT_SECONDS must be >= 0, got %d", c.Signals.BatchWaitSeconds)
	}
	return nil
}

func splitSymbols(raw string) []string {
	parts := splitList(raw)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p)
	}
	return parts
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvFloat returns environment variable as float64 or default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}
