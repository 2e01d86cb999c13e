// Package config loads application configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Dataset struct {
		Source     string `yaml:"source"` // csv | sqlite | redis
		CSVPath    string `yaml:"csv_path"`
		SQLitePath string `yaml:"sqlite_path"`
		Symbol     string `yaml:"symbol"`
		RedisAddr  string `yaml:"redis_addr"`
		RedisPass  string `yaml:"redis_password"`
		RedisKey   string `yaml:"redis_key"`
	} `yaml:"dataset"`

	Env struct {
		OscillatorPeriod int     `yaml:"oscillator_period"`
		SMAPeriod        int     `yaml:"sma_period"`
		EMAPeriod        int     `yaml:"ema_period"`
		InitialCash      float64 `yaml:"initial_cash"`
	} `yaml:"env"`

	Rollout struct {
		Episodes    int     `yaml:"episodes"`
		Seed        int64   `yaml:"seed"`
		Speed       float64 `yaml:"speed"` // steps/sec for paced runs, 0 = max
		JournalPath string  `yaml:"journal_path"`
	} `yaml:"rollout"`

	Server struct {
		MetricsAddr string `yaml:"metrics_addr"`
		WSAddr      string `yaml:"ws_addr"`
	} `yaml:"server"`
}

// Load reads config from a YAML file (skipped when path is empty), then
// applies environment variable overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.LogLevel = "info"

	cfg.Dataset.Source = "csv"
	cfg.Dataset.CSVPath = "data/bars.csv"
	cfg.Dataset.SQLitePath = "data/bars.db"
	cfg.Dataset.Symbol = "NIFTY"
	cfg.Dataset.RedisAddr = "localhost:6379"
	cfg.Dataset.RedisKey = "bars:NIFTY"

	cfg.Env.OscillatorPeriod = 14
	cfg.Env.SMAPeriod = 20
	cfg.Env.EMAPeriod = 20
	cfg.Env.InitialCash = 20000

	cfg.Rollout.Episodes = 1
	cfg.Rollout.Seed = 1

	cfg.Server.MetricsAddr = ":9090"
	cfg.Server.WSAddr = ":8080"
	return cfg
}

func applyEnv(cfg *Config) {
	setStr(&cfg.LogLevel, "STOCKSIM_LOG_LEVEL")

	setStr(&cfg.Dataset.Source, "STOCKSIM_DATASET_SOURCE")
	setStr(&cfg.Dataset.CSVPath, "STOCKSIM_CSV_PATH")
	setStr(&cfg.Dataset.SQLitePath, "STOCKSIM_SQLITE_PATH")
	setStr(&cfg.Dataset.Symbol, "STOCKSIM_SYMBOL")
	setStr(&cfg.Dataset.RedisAddr, "STOCKSIM_REDIS_ADDR")
	setStr(&cfg.Dataset.RedisPass, "STOCKSIM_REDIS_PASSWORD")
	setStr(&cfg.Dataset.RedisKey, "STOCKSIM_REDIS_KEY")

	setInt(&cfg.Env.OscillatorPeriod, "STOCKSIM_OSCILLATOR_PERIOD")
	setInt(&cfg.Env.SMAPeriod, "STOCKSIM_SMA_PERIOD")
	setInt(&cfg.Env.EMAPeriod, "STOCKSIM_EMA_PERIOD")
	setFloat(&cfg.Env.InitialCash, "STOCKSIM_INITIAL_CASH")

	setInt(&cfg.Rollout.Episodes, "STOCKSIM_EPISODES")
	setInt64(&cfg.Rollout.Seed, "STOCKSIM_SEED")
	setFloat(&cfg.Rollout.Speed, "STOCKSIM_SPEED")
	setStr(&cfg.Rollout.JournalPath, "STOCKSIM_JOURNAL_PATH")

	setStr(&cfg.Server.MetricsAddr, "STOCKSIM_METRICS_ADDR")
	setStr(&cfg.Server.WSAddr, "STOCKSIM_WS_ADDR")
}

func (c *Config) validate() error {
	switch c.Dataset.Source {
	case "csv", "sqlite", "redis":
	default:
		return fmt.Errorf("config: unknown dataset source %q", c.Dataset.Source)
	}
	if c.Env.OscillatorPeriod <= 0 || c.Env.SMAPeriod <= 0 || c.Env.EMAPeriod <= 0 {
		return fmt.Errorf("config: indicator periods must be positive")
	}
	if c.Env.InitialCash < 0 {
		return fmt.Errorf("config: initial cash must be >= 0")
	}
	if c.Rollout.Episodes < 1 {
		return fmt.Errorf("config: episodes must be >= 1")
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
