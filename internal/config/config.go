// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"emacross-go/internal/exchange"
	"emacross-go/internal/strategy"
)

// App captures process-wide runtime settings such as name, environment, status address, and logging.
type App struct {
	Name       string `yaml:"name"`
	Env        string `yaml:"env"`
	StatusAddr string `yaml:"status_addr"`
	LogLevel   string `yaml:"log_level"`
	PrettyLogs bool   `yaml:"pretty_logs"`
}

// Exchange describes the market-data provider the scanner reads from.
type Exchange struct {
	Provider          string  `yaml:"provider"`
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	TimeoutMs         int     `yaml:"timeout_ms"`
}

// Scanner holds the detection parameters and loop cadence.
type Scanner struct {
	Strategy       string  `yaml:"strategy"`
	QuoteAsset     string  `yaml:"quote_asset"`
	Timeframe      string  `yaml:"timeframe"`
	ShortPeriod    int     `yaml:"short_period"`
	LongPeriod     int     `yaml:"long_period"`
	MinQuoteVolume float64 `yaml:"min_quote_volume"`
	CandleCount    int     `yaml:"candle_count"`
	ScanDelaySecs  int     `yaml:"scan_delay_secs"`
	Workers        int     `yaml:"workers"`
	MaxCycles      int     `yaml:"max_cycles"`
}

// ScanDelay converts the configured delay into a duration.
func (s Scanner) ScanDelay() time.Duration {
	return time.Duration(s.ScanDelaySecs) * time.Second
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Exchange Exchange `yaml:"exchange"`
	Scanner  Scanner  `yaml:"scanner"`
}

// Default mirrors the reference deployment: EMA 9/20 on 3m candles over USDT pairs with at least 1M 24h volume.
func Default() *Config {
	return &Config{
		App: App{
			Name:       "emacross",
			Env:        "dev",
			StatusAddr: ":9102",
			LogLevel:   "info",
			PrettyLogs: true,
		},
		Exchange: Exchange{
			Provider:          "binance",
			BaseURL:           "https://api.binance.com",
			RequestsPerSecond: 10,
			Burst:             5,
			TimeoutMs:         10000,
		},
		Scanner: Scanner{
			Strategy:       "ema_crossover",
			QuoteAsset:     "USDT",
			Timeframe:      "3m",
			ShortPeriod:    9,
			LongPeriod:     20,
			MinQuoteVolume: 1_000_000,
			CandleCount:    50,
			ScanDelaySecs:  18,
			Workers:        1,
		},
	}
}

// Load reads a YAML file from disk on top of Default.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects parameter combinations the detector cannot evaluate.
func (c *Config) Validate() error {
	s := c.Scanner
	var errs []error
	if strings.TrimSpace(s.QuoteAsset) == "" {
		errs = append(errs, errors.New("scanner.quote_asset is required"))
	}
	if strings.TrimSpace(s.Timeframe) == "" {
		errs = append(errs, errors.New("scanner.timeframe is required"))
	}
	if s.ShortPeriod <= 0 || s.LongPeriod <= 0 {
		errs = append(errs, fmt.Errorf("ema periods must be positive (short=%d long=%d)", s.ShortPeriod, s.LongPeriod))
	} else if s.ShortPeriod >= s.LongPeriod {
		errs = append(errs, fmt.Errorf("short_period %d must be below long_period %d", s.ShortPeriod, s.LongPeriod))
	} else if _, err := strategy.Build(s.Strategy, strategy.Params{ShortPeriod: s.ShortPeriod, LongPeriod: s.LongPeriod}); err != nil {
		errs = append(errs, fmt.Errorf("scanner.strategy: %w", err))
	}
	if s.CandleCount < s.LongPeriod+2 {
		errs = append(errs, fmt.Errorf("candle_count %d must be at least long_period+2 (%d)", s.CandleCount, s.LongPeriod+2))
	}
	if strings.EqualFold(strings.TrimSpace(c.Exchange.Provider), exchange.ProviderBinance) && s.CandleCount > exchange.BinanceMaxCandles {
		errs = append(errs, fmt.Errorf("candle_count %d exceeds the binance kline limit of %d", s.CandleCount, exchange.BinanceMaxCandles))
	}
	if s.MinQuoteVolume < 0 {
		errs = append(errs, fmt.Errorf("min_quote_volume must not be negative"))
	}
	if s.ScanDelaySecs < 0 {
		errs = append(errs, fmt.Errorf("scan_delay_secs must not be negative"))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative"))
	}
	return errors.Join(errs...)
}
