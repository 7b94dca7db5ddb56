package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"emacross-go/internal/metrics"
	"emacross-go/internal/signal"
)

const (
	defaultBinanceBaseURL   = "https://api.binance.com"
	defaultRequestsPerSec   = 10
	defaultBurst            = 5
	defaultRequestTimeout   = 10 * time.Second
	binanceStatusTrading    = "TRADING"
	binancePermissionSpot   = "SPOT"
)

// BinanceMaxCandles is the largest kline window one request can return.
const BinanceMaxCandles = 1000

// Binance reads spot metadata, tickers and klines from the public REST API.
// Every request passes through one shared limiter so concurrent callers stay
// inside the venue's request budget.
type Binance struct {
	log     zerolog.Logger
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	timeout time.Duration

	mu  sync.RWMutex
	ids map[signal.Symbol]string
}

// Option configures provider construction parameters.
type Option func(*Binance)

// WithBaseURL overrides the REST endpoint, mainly for tests and mirrors.
func WithBaseURL(baseURL string) Option {
	return func(b *Binance) {
		if baseURL != "" {
			b.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Binance) {
		if client != nil {
			b.client = client
		}
	}
}

// WithRateLimit sets the sustained request rate and burst of the shared gate.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(b *Binance) {
		if perSecond <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		b.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTimeout bounds each HTTP round trip. It applies to a private copy of
// the client, so a shared client passed through WithHTTPClient is left as is.
func WithTimeout(d time.Duration) Option {
	return func(b *Binance) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// NewBinance constructs a Binance REST provider.
func NewBinance(log zerolog.Logger, opts ...Option) *Binance {
	b := &Binance{
		log:     log,
		client:  &http.Client{Timeout: defaultRequestTimeout},
		baseURL: defaultBinanceBaseURL,
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSec), defaultBurst),
		ids:     make(map[signal.Symbol]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.timeout > 0 {
		client := *b.client
		client.Timeout = b.timeout
		b.client = &client
	}
	return b
}

type binanceExchangeInfo struct {
	Symbols []binanceSymbol `json:"symbols"`
}

type binanceSymbol struct {
	Symbol               string   `json:"symbol"`
	Status               string   `json:"status"`
	BaseAsset            string   `json:"baseAsset"`
	QuoteAsset           string   `json:"quoteAsset"`
	IsSpotTradingAllowed bool     `json:"isSpotTradingAllowed"`
	Permissions          []string `json:"permissions"`
}

type binanceTicker struct {
	Symbol      string `json:"symbol"`
	QuoteVolume string `json:"quoteVolume"`
}

// ListMarkets loads exchangeInfo and remembers native ids for later lookups.
func (b *Binance) ListMarkets(ctx context.Context) ([]Market, error) {
	var info binanceExchangeInfo
	if err := b.getJSON(ctx, "exchangeInfo", "/api/v3/exchangeInfo", nil, &info); err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	markets := make([]Market, 0, len(info.Symbols))
	ids := make(map[signal.Symbol]string, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Symbol == "" || s.BaseAsset == "" || s.QuoteAsset == "" {
			continue
		}
		sym := signal.NewSymbol(s.BaseAsset, s.QuoteAsset)
		ids[sym] = s.Symbol
		markets = append(markets, Market{
			Symbol: sym,
			ID:     s.Symbol,
			Base:   strings.ToUpper(s.BaseAsset),
			Quote:  strings.ToUpper(s.QuoteAsset),
			Active: s.Status == binanceStatusTrading,
			Spot:   s.IsSpotTradingAllowed || hasPermission(s.Permissions, binancePermissionSpot),
		})
	}
	b.mu.Lock()
	b.ids = ids
	b.mu.Unlock()
	b.log.Debug().Int("markets", len(markets)).Msg("loaded binance exchange info")
	return markets, nil
}

// QuoteVolume24h reads the rolling 24h ticker for one symbol.
func (b *Binance) QuoteVolume24h(ctx context.Context, symbol signal.Symbol) (decimal.Decimal, error) {
	params := url.Values{"symbol": {b.nativeID(symbol)}}
	var ticker binanceTicker
	if err := b.getJSON(ctx, "ticker24hr", "/api/v3/ticker/24hr", params, &ticker); err != nil {
		return decimal.Zero, fmt.Errorf("ticker %s: %w", symbol, err)
	}
	vol, err := decimal.NewFromString(ticker.QuoteVolume)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ticker %s: invalid quote volume %q: %w", symbol, ticker.QuoteVolume, err)
	}
	return vol, nil
}

// RecentCandles fetches the latest count klines for the symbol. Windows larger
// than BinanceMaxCandles are rejected rather than silently truncated.
func (b *Binance) RecentCandles(ctx context.Context, symbol signal.Symbol, timeframe string, count int) ([]signal.Candle, error) {
	if count <= 0 {
		return nil, nil
	}
	if count > BinanceMaxCandles {
		return nil, fmt.Errorf("klines %s: %w: %d candles requested, at most %d per call", symbol, ErrCandleWindow, count, BinanceMaxCandles)
	}
	params := url.Values{
		"symbol":   {b.nativeID(symbol)},
		"interval": {timeframe},
		"limit":    {strconv.Itoa(count)},
	}
	var rows [][]json.RawMessage
	if err := b.getJSON(ctx, "klines", "/api/v3/klines", params, &rows); err != nil {
		return nil, fmt.Errorf("klines %s: %w", symbol, err)
	}
	candles := make([]signal.Candle, 0, len(rows))
	for i, row := range rows {
		c, err := parseBinanceKline(row)
		if err != nil {
			return nil, fmt.Errorf("klines %s row %d: %w", symbol, i, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func (b *Binance) nativeID(symbol signal.Symbol) string {
	b.mu.RLock()
	id, ok := b.ids[symbol]
	b.mu.RUnlock()
	if ok {
		return id
	}
	return strings.ReplaceAll(string(symbol), "-", "")
}

func (b *Binance) getJSON(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	target := b.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "emacross-go/1.0 (scanner)")
	resp, err := b.client.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		return err
	}
	defer resp.Body.Close()
	metrics.ProviderRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusTeapot:
		if retry := resp.Header.Get("Retry-After"); retry != "" {
			b.log.Warn().Str("endpoint", endpoint).Str("retry_after", retry).Msg("binance throttled request")
		}
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// parseBinanceKline decodes [openTime, open, high, low, close, volume, ...].
func parseBinanceKline(row []json.RawMessage) (signal.Candle, error) {
	if len(row) < 6 {
		return signal.Candle{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return signal.Candle{}, fmt.Errorf("open time: %w", err)
	}
	var fields [5]float64
	for i := range fields {
		var raw string
		if err := json.Unmarshal(row[i+1], &raw); err != nil {
			return signal.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return signal.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		fields[i] = v
	}
	return signal.Candle{
		OpenTime: time.UnixMilli(openTime).UTC(),
		Open:     fields[0],
		High:     fields[1],
		Low:      fields[2],
		Close:    fields[3],
		Volume:   fields[4],
	}, nil
}

func hasPermission(perms []string, want string) bool {
	for _, p := range perms {
		if strings.EqualFold(p, want) {
			return true
		}
	}
	return false
}
