package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "emacross-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.LogLevel != "debug" || cfg.App.PrettyLogs {
		t.Fatalf("unexpected logging settings: %+v", cfg.App)
	}
	if cfg.Exchange.Provider != "stub" {
		t.Fatalf("unexpected provider: %s", cfg.Exchange.Provider)
	}
	if cfg.Exchange.RequestsPerSecond != 8 || cfg.Exchange.Burst != 4 {
		t.Fatalf("unexpected rate limit: %+v", cfg.Exchange)
	}
	if cfg.Scanner.Timeframe != "5m" {
		t.Fatalf("unexpected timeframe: %s", cfg.Scanner.Timeframe)
	}
	if cfg.Scanner.ShortPeriod != 12 || cfg.Scanner.LongPeriod != 26 {
		t.Fatalf("unexpected periods: %d/%d", cfg.Scanner.ShortPeriod, cfg.Scanner.LongPeriod)
	}
	if cfg.Scanner.MinQuoteVolume != 2_500_000 {
		t.Fatalf("unexpected min quote volume: %.2f", cfg.Scanner.MinQuoteVolume)
	}
	if cfg.Scanner.CandleCount != 60 {
		t.Fatalf("unexpected candle count: %d", cfg.Scanner.CandleCount)
	}
	if cfg.Scanner.ScanDelay() != 30*time.Second {
		t.Fatalf("unexpected scan delay: %s", cfg.Scanner.ScanDelay())
	}
	if cfg.Scanner.Strategy != "ema_cross" {
		t.Fatalf("unexpected strategy mode: %s", cfg.Scanner.Strategy)
	}
	if cfg.Scanner.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Scanner.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("scanner:\n  timeframe: 15m\n"), 0o644); err != nil {
		t.Fatalf("write partial config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Scanner.Timeframe != "15m" {
		t.Fatalf("expected override, got %s", cfg.Scanner.Timeframe)
	}
	if cfg.Scanner.ShortPeriod != 9 || cfg.Scanner.LongPeriod != 20 || cfg.Scanner.CandleCount != 50 {
		t.Fatalf("expected defaults to survive, got %+v", cfg.Scanner)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Scanner.Timeframe = "1h"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Scanner.Timeframe != "1h" {
		t.Fatalf("expected saved timeframe, got %s", loaded.Scanner.Timeframe)
	}
	if err := Save(path, nil); err == nil {
		t.Fatalf("expected error saving nil config")
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg := Default()
	cfg.Scanner.ShortPeriod = 20
	cfg.Scanner.LongPeriod = 9
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "short_period") {
		t.Fatalf("expected period ordering error, got %v", err)
	}

	cfg = Default()
	cfg.Scanner.CandleCount = 21
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "candle_count") {
		t.Fatalf("expected candle count error, got %v", err)
	}

	cfg = Default()
	cfg.Scanner.CandleCount = 1500
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "binance kline limit") {
		t.Fatalf("expected binance window error, got %v", err)
	}
	cfg.Exchange.Provider = "stub"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("stub provider has no window limit: %v", err)
	}

	cfg = Default()
	cfg.Scanner.Strategy = "obi"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "scanner.strategy") {
		t.Fatalf("expected unknown strategy error, got %v", err)
	}

	cfg = Default()
	cfg.Scanner.Timeframe = ""
	cfg.Scanner.QuoteAsset = " "
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "timeframe") || !strings.Contains(err.Error(), "quote_asset") {
		t.Fatalf("expected joined errors, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(dotenv, []byte("SCANNER_LONG_PERIOD=30\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("SCANNER_TIMEFRAME", "1m")
	t.Setenv("SCANNER_SHORT_PERIOD", "5")
	t.Setenv("SCANNER_MIN_QUOTE_VOLUME", "not-a-number")
	t.Setenv("SCANNER_QUOTE_ASSET", "fdusd")
	t.Setenv("APP_PRETTY_LOGS", "false")
	t.Cleanup(func() { os.Unsetenv("SCANNER_LONG_PERIOD") })

	cfg := Default()
	cfg.ApplyEnv(dotenv)

	if cfg.Scanner.Timeframe != "1m" || cfg.Scanner.ShortPeriod != 5 {
		t.Fatalf("env overrides not applied: %+v", cfg.Scanner)
	}
	if cfg.Scanner.LongPeriod != 30 {
		t.Fatalf("expected .env override, got %d", cfg.Scanner.LongPeriod)
	}
	if cfg.Scanner.MinQuoteVolume != 1_000_000 {
		t.Fatalf("invalid number should keep default, got %.2f", cfg.Scanner.MinQuoteVolume)
	}
	if cfg.Scanner.QuoteAsset != "FDUSD" {
		t.Fatalf("expected upper-cased quote asset, got %s", cfg.Scanner.QuoteAsset)
	}
	if cfg.App.PrettyLogs {
		t.Fatalf("expected pretty logs disabled")
	}
}
