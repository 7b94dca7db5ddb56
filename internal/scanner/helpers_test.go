package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"emacross-go/internal/exchange"
	"emacross-go/internal/signal"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	onSleep func(n int)
}

func newFakeClock() *fakeClock { return &fakeClock{now: testStart} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	n := len(c.sleeps)
	hook := c.onSleep
	c.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

func candlesFrom(closes []float64) []signal.Candle {
	out := make([]signal.Candle, len(closes))
	for i, c := range closes {
		out[i] = signal.Candle{
			OpenTime: testStart.Add(time.Duration(i) * 3 * time.Minute),
			Open:     c, High: c, Low: c, Close: c, Volume: 10,
		}
	}
	return out
}

// bullishAtLast declines for n-1 bars so EMA9 sits below EMA20, then spikes on the final bar.
func bullishAtLast(n int) []float64 {
	closes := make([]float64, 0, n)
	for i := 0; i < n-1; i++ {
		closes = append(closes, 100-float64(i))
	}
	return append(closes, 200)
}

func flat(n int, px float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = px
	}
	return closes
}

func mirrorAround(closes []float64, pivot float64) []float64 {
	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = 2*pivot - c
	}
	return out
}

func usdtMarket(base string) exchange.Market {
	return exchange.Market{Base: base, Quote: "USDT", Active: true, Spot: true}
}

func vol(v string) decimal.Decimal { return decimal.RequireFromString(v) }
