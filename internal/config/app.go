package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StrategyDaily = "daily"
	StrategyRange = "range"

	DefaultBaseURL   = "https://bank.gov.ua"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

type Logging struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type NBU struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Strategy       string `mapstructure:"strategy"`
	Workers        int    `mapstructure:"workers"`
}

type HTTPServer struct {
	Port string `mapstructure:"port"`
	// MaxDays caps the date span of one API request; 0 disables the cap.
	MaxDays int `mapstructure:"max_days"`
}

type Cache struct {
	MaxItems int64 `mapstructure:"max_items"`
}

type Scheduler struct {
	IntervalSeconds int      `mapstructure:"interval_seconds"`
	Currencies      []string `mapstructure:"currencies"`
	OutputDir       string   `mapstructure:"output_dir"`
}

type AppConfig struct {
	Logging    Logging    `mapstructure:"logging"`
	NBU        NBU        `mapstructure:"nbu"`
	HTTPServer HTTPServer `mapstructure:"http_server"`
	Cache      Cache      `mapstructure:"cache"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
}

// Init reads an optional .env file and an optional YAML config at path, then applies
// environment overrides. An empty path skips the config file.
func Init(path string) (*AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("nbu.base_url", DefaultBaseURL)
	v.SetDefault("nbu.user_agent", DefaultUserAgent)
	v.SetDefault("nbu.timeout_seconds", 10)
	v.SetDefault("nbu.strategy", StrategyDaily)
	v.SetDefault("nbu.workers", 1)
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("http_server.max_days", 366)
	v.SetDefault("cache.max_items", 10000)
	v.SetDefault("scheduler.interval_seconds", 86400)
	v.SetDefault("scheduler.currencies", []string{"USD", "EUR"})
	v.SetDefault("scheduler.output_dir", ".")

	// logging env vars
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.file", "LOG_FILE")

	// nbu api env vars
	_ = v.BindEnv("nbu.base_url", "NBU_BASE_URL")
	_ = v.BindEnv("nbu.user_agent", "NBU_USER_AGENT")
	_ = v.BindEnv("nbu.timeout_seconds", "NBU_TIMEOUT_SECONDS")
	_ = v.BindEnv("nbu.strategy", "NBU_STRATEGY")
	_ = v.BindEnv("nbu.workers", "NBU_WORKERS")

	_ = v.BindEnv("http_server.port", "HTTP_PORT")
	_ = v.BindEnv("http_server.max_days", "HTTP_MAX_DAYS")
	_ = v.BindEnv("cache.max_items", "CACHE_MAX_ITEMS")

	// scheduler env vars
	_ = v.BindEnv("scheduler.interval_seconds", "SCHEDULER_INTERVAL_SECONDS")
	_ = v.BindEnv("scheduler.currencies", "SCHEDULER_CURRENCIES")
	_ = v.BindEnv("scheduler.output_dir", "SCHEDULER_OUTPUT_DIR")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.NBU.Strategy = strings.ToLower(strings.TrimSpace(cfg.NBU.Strategy))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.NBU.Strategy {
	case StrategyDaily, StrategyRange:
	default:
		return fmt.Errorf("unknown nbu strategy %q, expected %q or %q", c.NBU.Strategy, StrategyDaily, StrategyRange)
	}
	if c.NBU.BaseURL == "" {
		return errors.New("nbu base url is required")
	}
	return nil
}
