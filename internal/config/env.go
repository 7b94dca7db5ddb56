package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ApplyEnv loads an optional .env file and overlays environment overrides.
// Unparseable numeric values leave the current setting untouched.
func (c *Config) ApplyEnv(files ...string) {
	_ = godotenv.Load(files...) // best-effort

	c.App.LogLevel = getEnv("APP_LOG_LEVEL", c.App.LogLevel)
	c.App.StatusAddr = getEnv("APP_STATUS_ADDR", c.App.StatusAddr)
	c.App.PrettyLogs = getEnvAsBool("APP_PRETTY_LOGS", c.App.PrettyLogs)

	c.Exchange.Provider = getEnv("EXCHANGE_PROVIDER", c.Exchange.Provider)
	c.Exchange.BaseURL = getEnv("EXCHANGE_BASE_URL", c.Exchange.BaseURL)
	c.Exchange.RequestsPerSecond = getEnvAsFloat("EXCHANGE_REQUESTS_PER_SECOND", c.Exchange.RequestsPerSecond)
	c.Exchange.Burst = getEnvAsInt("EXCHANGE_BURST", c.Exchange.Burst)

	c.Scanner.Strategy = getEnv("SCANNER_STRATEGY", c.Scanner.Strategy)
	c.Scanner.QuoteAsset = strings.ToUpper(getEnv("SCANNER_QUOTE_ASSET", c.Scanner.QuoteAsset))
	c.Scanner.Timeframe = getEnv("SCANNER_TIMEFRAME", c.Scanner.Timeframe)
	c.Scanner.ShortPeriod = getEnvAsInt("SCANNER_SHORT_PERIOD", c.Scanner.ShortPeriod)
	c.Scanner.LongPeriod = getEnvAsInt("SCANNER_LONG_PERIOD", c.Scanner.LongPeriod)
	c.Scanner.MinQuoteVolume = getEnvAsFloat("SCANNER_MIN_QUOTE_VOLUME", c.Scanner.MinQuoteVolume)
	c.Scanner.CandleCount = getEnvAsInt("SCANNER_CANDLE_COUNT", c.Scanner.CandleCount)
	c.Scanner.ScanDelaySecs = getEnvAsInt("SCANNER_SCAN_DELAY_SECS", c.Scanner.ScanDelaySecs)
	c.Scanner.Workers = getEnvAsInt("SCANNER_WORKERS", c.Scanner.Workers)
}

func getEnv(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}
