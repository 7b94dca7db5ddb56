package exchange

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"emacross-go/internal/signal"
)

// Stub is an in-memory provider. NewStub seeds a small deterministic universe
// with synthetic wave-shaped candles; tests override markets, volumes, candles
// and per-symbol errors through the setters.
type Stub struct {
	mu        sync.RWMutex
	markets   []Market
	volumes   map[signal.Symbol]decimal.Decimal
	candles   map[signal.Symbol][]signal.Candle
	volErrs   map[signal.Symbol]error
	candleErr map[signal.Symbol]error
	listErr   error
	now       func() time.Time
	calls     map[string]int
}

// NewStub returns a stub with a deterministic default universe.
func NewStub() *Stub {
	s := NewEmptyStub()
	defaults := []struct {
		base, quote string
		active      bool
		spot        bool
		volume      int64
	}{
		{"BTC", "USDT", true, true, 950_000_000},
		{"ETH", "USDT", true, true, 420_000_000},
		{"SOL", "USDT", true, true, 160_000_000},
		{"DOGE", "USDT", true, true, 48_000_000},
		{"PEPE", "USDT", true, true, 750_000},
		{"LUNA", "USDT", false, true, 5_000_000},
		{"ETH", "BTC", true, true, 2_500},
	}
	for _, d := range defaults {
		m := Market{
			Symbol: signal.NewSymbol(d.base, d.quote),
			ID:     d.base + d.quote,
			Base:   d.base,
			Quote:  d.quote,
			Active: d.active,
			Spot:   d.spot,
		}
		s.markets = append(s.markets, m)
		s.volumes[m.Symbol] = decimal.NewFromInt(d.volume)
	}
	return s
}

// NewEmptyStub returns a stub with no markets.
func NewEmptyStub() *Stub {
	return &Stub{
		volumes:   make(map[signal.Symbol]decimal.Decimal),
		candles:   make(map[signal.Symbol][]signal.Candle),
		volErrs:   make(map[signal.Symbol]error),
		candleErr: make(map[signal.Symbol]error),
		now:       time.Now,
		calls:     make(map[string]int),
	}
}

// AddMarket registers an instrument with its 24h quote volume.
func (s *Stub) AddMarket(m Market, quoteVolume decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.Symbol == "" {
		m.Symbol = signal.NewSymbol(m.Base, m.Quote)
	}
	if m.ID == "" {
		m.ID = m.Base + m.Quote
	}
	s.markets = append(s.markets, m)
	s.volumes[m.Symbol] = quoteVolume
}

// SetCandles pins the candle history returned for a symbol.
func (s *Stub) SetCandles(symbol signal.Symbol, candles []signal.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candles[symbol] = append([]signal.Candle(nil), candles...)
}

// FailVolume makes QuoteVolume24h fail for symbol.
func (s *Stub) FailVolume(symbol signal.Symbol, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volErrs[symbol] = err
}

// FailCandles makes RecentCandles fail for symbol.
func (s *Stub) FailCandles(symbol signal.Symbol, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candleErr[symbol] = err
}

// FailList makes ListMarkets fail.
func (s *Stub) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// Calls reports how many times an operation ran ("markets", "volume", "candles").
func (s *Stub) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// ListMarkets returns the registered instruments sorted by symbol.
func (s *Stub) ListMarkets(ctx context.Context) ([]Market, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["markets"]++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := append([]Market(nil), s.markets...)
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// QuoteVolume24h returns the registered volume.
func (s *Stub) QuoteVolume24h(ctx context.Context, symbol signal.Symbol) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["volume"]++
	if err := s.volErrs[symbol]; err != nil {
		return decimal.Zero, err
	}
	vol, ok := s.volumes[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return vol, nil
}

// RecentCandles returns pinned candles (newest count) or a synthetic series.
func (s *Stub) RecentCandles(ctx context.Context, symbol signal.Symbol, timeframe string, count int) ([]signal.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.calls["candles"]++
	err := s.candleErr[symbol]
	pinned, hasPinned := s.candles[symbol]
	_, known := s.volumes[symbol]
	now := s.now
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if hasPinned {
		if len(pinned) > count {
			pinned = pinned[len(pinned)-count:]
		}
		return append([]signal.Candle(nil), pinned...), nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	step, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	return syntheticCandles(symbol, step, count, now()), nil
}

// syntheticCandles draws a sine wave whose phase depends on the symbol and the
// wall clock, so repeated scans occasionally observe crossovers.
func syntheticCandles(symbol signal.Symbol, step time.Duration, count int, now time.Time) []signal.Candle {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	seed := float64(h.Sum32()%1000) / 1000

	last := now.Truncate(step)
	base := 50 + seed*100
	out := make([]signal.Candle, count)
	for i := 0; i < count; i++ {
		open := last.Add(-time.Duration(count-1-i) * step)
		k := float64(open.Unix()/int64(step.Seconds())) / 12
		closePx := base * (1 + 0.03*math.Sin(k+seed*2*math.Pi))
		out[i] = signal.Candle{
			OpenTime: open,
			Open:     closePx * 0.999,
			High:     closePx * 1.002,
			Low:      closePx * 0.997,
			Close:    closePx,
			Volume:   1000 + seed*500,
		}
	}
	return out
}
