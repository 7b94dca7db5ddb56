package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"emacross-go/internal/exchange"
	"emacross-go/internal/signal"
	"emacross-go/internal/strategy"
)

// Outcome classifies one detection attempt.
type Outcome int

const (
	// OutcomeNone means enough history was available and no crossover happened.
	OutcomeNone Outcome = iota
	// OutcomeCrossover means Result.Event is set.
	OutcomeCrossover
	// OutcomeInsufficient means the provider returned fewer candles than requested.
	OutcomeInsufficient
	// OutcomeFailed means the fetch failed or the response was malformed; Result.Err is set.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeCrossover:
		return "crossover"
	case OutcomeInsufficient:
		return "insufficient"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrMalformedCandles flags candle histories that are not strictly increasing in time.
var ErrMalformedCandles = errors.New("malformed candle history")

// Result is the per-symbol detection value. Failures are expected outcomes, not panics or returned errors.
type Result struct {
	Symbol  signal.Symbol
	Outcome Outcome
	Event   *signal.CrossoverEvent
	Err     error
}

// DetectorParams fixes the strategy mode, timeframe, lookback and EMA spans used for every symbol.
// An empty Strategy selects the EMA crossover.
type DetectorParams struct {
	Strategy    string
	Timeframe   string
	CandleCount int
	ShortPeriod int
	LongPeriod  int
}

// Detector fetches candle history and classifies the last two EMA samples.
type Detector struct {
	provider exchange.Provider
	strategy strategy.Strategy
	clock    Clock
	params   DetectorParams
}

// NewDetector builds the configured strategy and enforces candleCount >= long+2 and short < long.
func NewDetector(provider exchange.Provider, clock Clock, params DetectorParams) (*Detector, error) {
	if provider == nil {
		return nil, errors.New("nil provider")
	}
	if strings.TrimSpace(params.Timeframe) == "" {
		return nil, fmt.Errorf("%w: timeframe is required", strategy.ErrInvalidParams)
	}
	strat, err := strategy.Build(params.Strategy, strategy.Params{ShortPeriod: params.ShortPeriod, LongPeriod: params.LongPeriod})
	if err != nil {
		return nil, err
	}
	if params.CandleCount < params.LongPeriod+2 {
		return nil, fmt.Errorf("%w: candle count %d below long period+2 (%d)", strategy.ErrInvalidParams, params.CandleCount, params.LongPeriod+2)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Detector{provider: provider, strategy: strat, clock: clock, params: params}, nil
}

// Params returns the detector configuration.
func (d *Detector) Params() DetectorParams { return d.params }

// StrategyName identifies the strategy in logs.
func (d *Detector) StrategyName() string { return d.strategy.Name() }

// Detect runs one fetch-compute-classify pass for symbol.
func (d *Detector) Detect(ctx context.Context, symbol signal.Symbol) Result {
	res := Result{Symbol: symbol}
	candles, err := d.provider.RecentCandles(ctx, symbol, d.params.Timeframe, d.params.CandleCount)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	if len(candles) < d.params.CandleCount {
		res.Outcome = OutcomeInsufficient
		return res
	}
	if len(candles) > d.params.CandleCount {
		candles = candles[len(candles)-d.params.CandleCount:]
	}
	if err := checkOrdered(candles); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	reading := d.strategy.Evaluate(candles)
	if !reading.Crossed {
		res.Outcome = OutcomeNone
		return res
	}
	res.Outcome = OutcomeCrossover
	res.Event = &signal.CrossoverEvent{
		Symbol:     symbol,
		Direction:  reading.Direction,
		DetectedAt: d.clock.Now(),
		ShortEMA:   reading.ShortEMA,
		LongEMA:    reading.LongEMA,
		Close:      reading.Close,
	}
	return res
}

func checkOrdered(candles []signal.Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].OpenTime.After(candles[i-1].OpenTime) {
			return fmt.Errorf("%w: open time at index %d does not increase", ErrMalformedCandles, i)
		}
	}
	return nil
}
