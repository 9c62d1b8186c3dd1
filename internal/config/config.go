package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/internal/api/web"
	"github.com/Alias1177/GoldPredictor/internal/database"
	"github.com/Alias1177/GoldPredictor/internal/rediscache"
)

// Prefix of every environment variable, e.g. GOLD_HTTP_PORT
const Prefix = "GOLD"

// Config holds all application configuration
type Config struct {
	LogLevel  string `split_words:"true" default:"info"`
	ModelPath string `split_words:"true" default:"model.json"`

	HTTP     web.ServerConfig
	Rates    RatesConfig
	Redis    rediscache.Config
	DB       database.ConnectionParams
	Telegram TelegramConfig
}

type RatesConfig struct {
	BaseURL        string        `split_words:"true" default:"https://api.exchangerate.host"`
	Timeout        time.Duration `default:"8s"`
	TTL            time.Duration `default:"300s"`
	Fallback       float64       `default:"84.5"`
	RequestsPerSec int           `split_words:"true" default:"5"`
}

type TelegramConfig struct {
	Token   string
	Debug   bool          `default:"false"`
	Timeout time.Duration `default:"60s"`
}

// Load initializes configuration from .env and the environment
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("%s_MODEL_PATH must not be empty", Prefix)
	}
	if c.Rates.Fallback <= 0 {
		return fmt.Errorf("%s_RATES_FALLBACK must be positive, got %g", Prefix, c.Rates.Fallback)
	}
	if c.Rates.Timeout <= 0 {
		return fmt.Errorf("%s_RATES_TIMEOUT must be positive", Prefix)
	}
	if c.Rates.TTL <= 0 {
		return fmt.Errorf("%s_RATES_TTL must be positive", Prefix)
	}
	if c.Rates.RequestsPerSec <= 0 {
		return fmt.Errorf("%s_RATES_REQUESTS_PER_SEC must be positive", Prefix)
	}
	return nil
}
