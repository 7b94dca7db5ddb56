// Package exchange hosts market-data connectors for centralized venues.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"emacross-go/internal/signal"
)

const (
	// ProviderStub serves deterministic synthetic market data (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance reads spot market data from the Binance public REST API.
	ProviderBinance = "binance"
)

var (
	// ErrRateLimited is returned when the venue throttles or bans the caller.
	ErrRateLimited = errors.New("rate limited by provider")
	// ErrUnknownSymbol is returned for symbols the provider does not list.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrCandleWindow is returned when a candle request exceeds what the venue serves in one call.
	ErrCandleWindow = errors.New("candle window too large")
)

// Market is the instrument metadata needed to decide scan eligibility.
type Market struct {
	Symbol signal.Symbol
	ID     string // venue-native identifier, e.g. BTCUSDT
	Base   string
	Quote  string
	Active bool
	Spot   bool
}

// Provider is the read-only market-data surface the scanner depends on.
// Implementations must be safe for concurrent use.
type Provider interface {
	// ListMarkets enumerates every instrument the venue knows about.
	ListMarkets(ctx context.Context) ([]Market, error)
	// QuoteVolume24h returns the trailing 24h volume denominated in the quote asset.
	QuoteVolume24h(ctx context.Context, symbol signal.Symbol) (decimal.Decimal, error)
	// RecentCandles returns up to count candles ordered oldest to newest.
	RecentCandles(ctx context.Context, symbol signal.Symbol, timeframe string, count int) ([]signal.Candle, error)
}

// NewProvider constructs the provider named by the configuration.
func NewProvider(name string, log zerolog.Logger, opts ...Option) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderStub:
		return NewStub(), nil
	case ProviderBinance:
		return NewBinance(log, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", name)
	}
}
