// Package scanner selects the symbol universe and runs the periodic EMA crossover scan over it.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"emacross-go/internal/exchange"
	"emacross-go/internal/signal"
)

// Universe picks liquid, tradable spot pairs quoted in a reference currency.
type Universe struct {
	log      zerolog.Logger
	provider exchange.Provider
	quote    string
	workers  int
}

// NewUniverse constructs a selector; workers bounds concurrent volume lookups (minimum 1).
func NewUniverse(log zerolog.Logger, provider exchange.Provider, quoteAsset string, workers int) *Universe {
	if workers <= 0 {
		workers = 1
	}
	return &Universe{
		log:      log,
		provider: provider,
		quote:    strings.ToUpper(strings.TrimSpace(quoteAsset)),
		workers:  workers,
	}
}

// Select returns the sorted, deduplicated symbols whose 24h quote volume is at
// least minQuoteVolume. A failed volume lookup only drops that instrument;
// failing to enumerate markets is returned as an error.
func (u *Universe) Select(ctx context.Context, minQuoteVolume decimal.Decimal) ([]signal.Symbol, error) {
	markets, err := u.provider.ListMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate instruments: %w", err)
	}

	candidates := u.eligible(markets)
	var (
		mu       sync.Mutex
		selected = make(map[signal.Symbol]struct{}, len(candidates))
		failed   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for _, sym := range candidates {
		g.Go(func() error {
			vol, err := u.provider.QuoteVolume24h(gctx, sym)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				u.log.Warn().Err(err).Str("symbol", sym.String()).Msg("volume lookup failed, skipping")
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			if vol.LessThan(minQuoteVolume) {
				return nil
			}
			mu.Lock()
			selected[sym] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]signal.Symbol, 0, len(selected))
	for sym := range selected {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	u.log.Info().
		Int("markets", len(markets)).
		Int("candidates", len(candidates)).
		Int("selected", len(out)).
		Int("lookup_failures", failed).
		Str("quote", u.quote).
		Str("min_quote_volume", minQuoteVolume.String()).
		Msg("selected symbol universe")
	return out, nil
}

// eligible keeps active spot markets in the reference quote, deduplicated.
func (u *Universe) eligible(markets []exchange.Market) []signal.Symbol {
	seen := make(map[signal.Symbol]struct{}, len(markets))
	out := make([]signal.Symbol, 0, len(markets))
	for _, m := range markets {
		if !strings.EqualFold(m.Quote, u.quote) || !m.Active || !m.Spot {
			continue
		}
		if _, ok := seen[m.Symbol]; ok {
			continue
		}
		seen[m.Symbol] = struct{}{}
		out = append(out, m.Symbol)
	}
	return out
}
