// Package signal standardizes payloads shared between market data and strategy layers.
package signal

import (
	"strings"
	"time"
)

// Symbol identifies a tradable pair as BASE-QUOTE, e.g. BTC-USDT.
type Symbol string

// NewSymbol composes a Symbol from its base and quote assets.
func NewSymbol(base, quote string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(base)) + "-" + strings.ToUpper(strings.TrimSpace(quote)))
}

// Base returns the asset left of the separator.
func (s Symbol) Base() string {
	base, _, _ := strings.Cut(string(s), "-")
	return base
}

// Quote returns the asset right of the separator, or "" if the symbol has none.
func (s Symbol) Quote() string {
	_, quote, _ := strings.Cut(string(s), "-")
	return quote
}

func (s Symbol) String() string { return string(s) }

// Candle models one fixed-duration OHLCV bar.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Closes extracts closing prices in candle order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Direction tells which way the short EMA crossed the long EMA.
type Direction int

const (
	// Bullish means the short EMA moved from below to above the long EMA.
	Bullish Direction = iota + 1
	// Bearish means the short EMA moved from above to below the long EMA.
	Bearish
)

func (d Direction) String() string {
	switch d {
	case Bullish:
		return "Bullish Crossover"
	case Bearish:
		return "Bearish Crossover"
	default:
		return "None"
	}
}

// Label is the short lowercase form used for metric labels and JSON.
func (d Direction) Label() string {
	switch d {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "none"
	}
}

// MarshalText renders the direction label.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.Label()), nil
}

// CrossoverEvent is produced and reported within a single scan cycle; it is never stored.
type CrossoverEvent struct {
	Symbol     Symbol    `json:"symbol"`
	Direction  Direction `json:"direction"`
	DetectedAt time.Time `json:"detected_at"`
	ShortEMA   float64   `json:"short_ema"`
	LongEMA    float64   `json:"long_ema"`
	Close      float64   `json:"close"`
}
