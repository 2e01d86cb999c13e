package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env.OscillatorPeriod != 14 || cfg.Env.SMAPeriod != 20 || cfg.Env.EMAPeriod != 20 {
		t.Fatalf("default periods wrong: %+v", cfg.Env)
	}
	if cfg.Env.InitialCash != 20000 {
		t.Fatalf("default initial cash = %v, want 20000", cfg.Env.InitialCash)
	}
	if cfg.Dataset.Source != "csv" {
		t.Fatalf("default source = %q, want csv", cfg.Dataset.Source)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
dataset:
  source: sqlite
  sqlite_path: /tmp/test.db
  symbol: BTCUSD
env:
  sma_period: 50
  initial_cash: 5000
rollout:
  episodes: 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dataset.Source != "sqlite" || cfg.Dataset.Symbol != "BTCUSD" {
		t.Fatalf("yaml dataset not applied: %+v", cfg.Dataset)
	}
	if cfg.Env.SMAPeriod != 50 || cfg.Env.InitialCash != 5000 {
		t.Fatalf("yaml env not applied: %+v", cfg.Env)
	}
	// Untouched fields keep defaults
	if cfg.Env.OscillatorPeriod != 14 {
		t.Fatalf("oscillator period = %d, want default 14", cfg.Env.OscillatorPeriod)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("STOCKSIM_SMA_PERIOD", "7")
	t.Setenv("STOCKSIM_DATASET_SOURCE", "redis")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env.SMAPeriod != 7 {
		t.Fatalf("env override ignored: sma=%d", cfg.Env.SMAPeriod)
	}
	if cfg.Dataset.Source != "redis" {
		t.Fatalf("env override ignored: source=%q", cfg.Dataset.Source)
	}
}

func TestLoad_RejectsBadSource(t *testing.T) {
	t.Setenv("STOCKSIM_DATASET_SOURCE", "ftp")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown dataset source")
	}
}

func TestLoad_RejectsBadPeriods(t *testing.T) {
	t.Setenv("STOCKSIM_EMA_PERIOD", "-3")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for negative period")
	}
}
