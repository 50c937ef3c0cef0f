package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DateLayout is the ISO date format used for start_date.
const DateLayout = "2006-01-02"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all application configuration.
type Config struct {
	Forecast struct {
		Ticker         string `yaml:"ticker"`
		StartDate      string `yaml:"start_date"`
		HorizonDays    int    `yaml:"horizon_days"`
		NumSimulations int    `yaml:"num_simulations"`
		PlotPaths      int    `yaml:"plot_paths"`
		HistogramBins  int    `yaml:"histogram_bins"`
		Seed           uint64 `yaml:"seed"`
	} `yaml:"forecast"`
	DataSource struct {
		Kind    string `yaml:"kind"` // yahoo, rest, csv, mock
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		CSVPath string `yaml:"csv_path"`
	} `yaml:"data_source"`
	Output struct {
		Dir           string  `yaml:"dir"`
		PathsFile     string  `yaml:"paths_file"`
		HistogramFile string  `yaml:"histogram_file"`
		WidthInches   float64 `yaml:"width_inches"`
		HeightInches  float64 `yaml:"height_inches"`
		Disabled      bool    `yaml:"disabled"`
	} `yaml:"output"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML file at path over the defaults,
// then applies environment variable overrides. A missing file is not an error.
// Values set explicitly to zero are kept so Validate can reject them.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.inferSource()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FORECAST_TICKER"); v != "" {
		c.Forecast.Ticker = v
	}
	if v := os.Getenv("FORECAST_START_DATE"); v != "" {
		c.Forecast.StartDate = v
	}
	ints := []struct {
		env string
		dst *int
	}{
		{"FORECAST_HORIZON_DAYS", &c.Forecast.HorizonDays},
		{"FORECAST_NUM_SIMULATIONS", &c.Forecast.NumSimulations},
		{"FORECAST_PLOT_PATHS", &c.Forecast.PlotPaths},
		{"FORECAST_HISTOGRAM_BINS", &c.Forecast.HistogramBins},
	}
	for _, e := range ints {
		if v := os.Getenv(e.env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", e.env, err)
			}
			*e.dst = n
		}
	}
	if v := os.Getenv("FORECAST_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse FORECAST_SEED: %w", err)
		}
		c.Forecast.Seed = seed
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource.Kind = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_SOURCE_CSV"); v != "" {
		c.DataSource.CSVPath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("FORECAST_CRON"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	c := &Config{}
	c.Forecast.Ticker = "AAPL"
	c.Forecast.StartDate = "2022-01-01"
	c.Forecast.HorizonDays = 30
	c.Forecast.NumSimulations = 5000
	c.Forecast.PlotPaths = 100
	c.Forecast.HistogramBins = 50
	c.Output.Dir = "."
	c.Output.PathsFile = "paths.png"
	c.Output.HistogramFile = "terminal_hist.png"
	c.Output.WidthInches = 10
	c.Output.HeightInches = 6
	c.Log.Level = "info"
	return c
}

// inferSource picks the data source kind from whichever location is configured.
func (c *Config) inferSource() {
	if c.DataSource.Kind != "" {
		return
	}
	switch {
	case c.DataSource.CSVPath != "":
		c.DataSource.Kind = "csv"
	case c.DataSource.BaseURL != "":
		c.DataSource.Kind = "rest"
	default:
		c.DataSource.Kind = "yahoo"
	}
}

// Validate checks that all required fields are set and well formed.
// A non-positive plot_paths is not an error; it is clamped to one path later.
func (c *Config) Validate() error {
	if c.Forecast.Ticker == "" {
		return fmt.Errorf("%w: forecast.ticker is required", ErrInvalid)
	}
	if _, err := c.Start(); err != nil {
		return fmt.Errorf("%w: forecast.start_date: %v", ErrInvalid, err)
	}
	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("%w: forecast.horizon_days must be positive", ErrInvalid)
	}
	if c.Forecast.NumSimulations <= 0 {
		return fmt.Errorf("%w: forecast.num_simulations must be positive", ErrInvalid)
	}
	if c.Output.WidthInches <= 0 || c.Output.HeightInches <= 0 {
		return fmt.Errorf("%w: output width and height must be positive", ErrInvalid)
	}
	switch c.DataSource.Kind {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("%w: data_source.base_url is required for rest", ErrInvalid)
		}
	case "csv":
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("%w: data_source.csv_path is required for csv", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown data_source.kind %q", ErrInvalid, c.DataSource.Kind)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("%w: telegram.bot_token and telegram.chat_id must be set together", ErrInvalid)
	}
	return nil
}

// Start parses forecast.start_date.
func (c *Config) Start() (time.Time, error) {
	return time.Parse(DateLayout, c.Forecast.StartDate)
}
