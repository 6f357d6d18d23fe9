package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"StructureSentinel/internal/model"
	"StructureSentinel/internal/structure"
)

// EnvPrefix prefixes every environment override, e.g. SENTINEL_SCAN_SYMBOLS.
const EnvPrefix = "SENTINEL"

// Config holds all application configuration.
type Config struct {
	Engine struct {
		InternalLookback       int     `yaml:"internal_lookback" split_words:"true"`
		ExternalLookback       int     `yaml:"external_lookback" split_words:"true"`
		Tolerance              float64 `yaml:"tolerance"`
		PipBuffer              float64 `yaml:"pip_buffer" split_words:"true"` // in pips
		DisplacementMultiplier float64 `yaml:"displacement_multiplier" split_words:"true"`
		BodyThreshold          float64 `yaml:"body_threshold" split_words:"true"`
		BreakLookback          int     `yaml:"break_lookback" split_words:"true"`
	} `yaml:"engine"`
	DataSource struct {
		Kind           string `yaml:"kind"` // yahoo, rest, csv or mock
		BaseURL        string `yaml:"base_url" split_words:"true"`
		APIKey         string `yaml:"api_key" split_words:"true"`
		CSVDir         string `yaml:"csv_dir" split_words:"true"`
		RequestsPerSec int    `yaml:"requests_per_sec" split_words:"true"`
		Window         int    `yaml:"window"`
	} `yaml:"data_source" split_words:"true"`
	Scan struct {
		Symbols    []string `yaml:"symbols"`
		Timeframes []string `yaml:"timeframes"`
		Cron       string   `yaml:"cron"`
		RunOnStart bool     `yaml:"run_on_start" split_words:"true"`
	} `yaml:"scan"`
	Instruments map[string]float64 `yaml:"instruments"` // pip size overrides
	Database    struct {
		Driver string `yaml:"driver"` // sqlite, postgres or none
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Defaults returns the configuration used for anything a file or the
// environment leaves unset.
func Defaults() *Config {
	cfg := &Config{}
	p := structure.DefaultParams()
	cfg.Engine.InternalLookback = p.InternalLookback
	cfg.Engine.ExternalLookback = p.ExternalLookback
	cfg.Engine.Tolerance = p.Tolerance
	cfg.Engine.PipBuffer = 2
	cfg.Engine.DisplacementMultiplier = p.DisplacementMultiplier
	cfg.Engine.BodyThreshold = p.BodyThreshold
	cfg.Engine.BreakLookback = p.BreakLookback

	cfg.DataSource.Kind = "yahoo"
	cfg.DataSource.RequestsPerSec = 5
	cfg.DataSource.Window = 300

	cfg.Scan.Symbols = []string{"EURUSD"}
	cfg.Scan.Timeframes = []string{"1d", "4h", "15m"}
	cfg.Scan.Cron = "0 */15 * * * *"

	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "data/structure_sentinel.db"

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads config from a YAML file on top of the defaults, then applies .env
// and environment variable overrides. A missing file or .env is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if cfg.Proxy == "" {
		cfg.Proxy = os.Getenv("HTTPS_PROXY")
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if len(c.Scan.Symbols) == 0 {
		return fmt.Errorf("scan.symbols must not be empty")
	}
	if _, err := c.Timeframes(); err != nil {
		return err
	}
	if c.Scan.Cron == "" {
		return fmt.Errorf("scan.cron is required")
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Engine.PipBuffer < 0 {
		return fmt.Errorf("engine.pip_buffer must be >= 0")
	}
	switch c.DataSource.Kind {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for rest")
		}
	case "csv":
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for csv")
		}
	default:
		return fmt.Errorf("unknown data_source.kind %q", c.DataSource.Kind)
	}
	if c.DataSource.Window < c.Params().MinBars() {
		return fmt.Errorf("data_source.window must be at least %d bars", c.Params().MinBars())
	}
	for symbol, pip := range c.Instruments {
		if !(pip > 0) || math.IsInf(pip, 1) {
			return fmt.Errorf("instruments.%s must be positive and finite", symbol)
		}
	}
	switch c.Database.Driver {
	case "none", "":
	case "sqlite", "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}

// Timeframes parses the scanned timeframes.
func (c *Config) Timeframes() ([]model.Timeframe, error) {
	if len(c.Scan.Timeframes) == 0 {
		return nil, fmt.Errorf("scan.timeframes must not be empty")
	}
	out := make([]model.Timeframe, 0, len(c.Scan.Timeframes))
	seen := make(map[model.Timeframe]bool)
	for _, s := range c.Scan.Timeframes {
		tf, ok := model.ParseTimeframe(s)
		if !ok {
			return nil, fmt.Errorf("unknown timeframe %q", s)
		}
		if !seen[tf] {
			seen[tf] = true
			out = append(out, tf)
		}
	}
	return out, nil
}

// Params returns the engine parameters. PipBuffer stays in pips; callers scale
// it by the instrument pip size.
func (c *Config) Params() structure.Params {
	return structure.Params{
		InternalLookback:       c.Engine.InternalLookback,
		ExternalLookback:       c.Engine.ExternalLookback,
		Tolerance:              c.Engine.Tolerance,
		PipBuffer:              c.Engine.PipBuffer,
		DisplacementMultiplier: c.Engine.DisplacementMultiplier,
		BodyThreshold:          c.Engine.BodyThreshold,
		BreakLookback:          c.Engine.BreakLookback,
	}
}
