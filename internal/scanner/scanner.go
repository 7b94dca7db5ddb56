package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"emacross-go/internal/metrics"
	"emacross-go/internal/signal"
)

// State is the scan loop lifecycle stage.
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateScanning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateScanning:
		return "scanning"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SymbolFailure records why a symbol was skipped in a cycle.
type SymbolFailure struct {
	Symbol signal.Symbol `json:"symbol"`
	Error  string        `json:"error"`
}

// CycleReport summarizes one full pass over the universe.
type CycleReport struct {
	ID           string                  `json:"id"`
	Cycle        int                     `json:"cycle"`
	StartedAt    time.Time               `json:"started_at"`
	FinishedAt   time.Time               `json:"finished_at"`
	Symbols      int                     `json:"symbols"`
	Events       []signal.CrossoverEvent `json:"events"`
	Insufficient []signal.Symbol         `json:"insufficient"`
	Failures     []SymbolFailure         `json:"failures"`
}

// Reporter receives every completed cycle.
type Reporter func(CycleReport)

// Option configures Scanner construction parameters.
type Option func(*Scanner)

const defaultScanDelay = 18 * time.Second

// WithWorkers bounds concurrent detections per cycle. One keeps the scan strictly sequential.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithDelay sets the fixed pause after each full pass. The pause is not
// aligned to candle boundaries, so scan times drift relative to candle closes.
func WithDelay(d time.Duration) Option {
	return func(s *Scanner) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithMaxCycles stops Run after n passes; zero runs until the context ends.
func WithMaxCycles(n int) Option {
	return func(s *Scanner) {
		if n >= 0 {
			s.maxCycles = n
		}
	}
}

// WithClock injects the time source used for sleeps and timestamps.
func WithClock(c Clock) Option {
	return func(s *Scanner) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithReporter registers a callback invoked after each completed cycle.
func WithReporter(r Reporter) Option {
	return func(s *Scanner) {
		if r != nil {
			s.reporters = append(s.reporters, r)
		}
	}
}

// Scanner selects the universe once, then repeatedly runs the detector over it.
type Scanner struct {
	log       zerolog.Logger
	universe  *Universe
	detector  *Detector
	minVolume decimal.Decimal
	clock     Clock
	delay     time.Duration
	workers   int
	maxCycles int
	reporters []Reporter

	mu      sync.RWMutex
	state   State
	symbols []signal.Symbol
	last    *CycleReport
}

// New wires a scanner from its collaborators.
func New(log zerolog.Logger, universe *Universe, detector *Detector, minQuoteVolume decimal.Decimal, opts ...Option) *Scanner {
	s := &Scanner{
		log:       log,
		universe:  universe,
		detector:  detector,
		minVolume: minQuoteVolume,
		clock:     SystemClock{},
		delay:     defaultScanDelay,
		workers:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run selects the universe and scans until ctx ends or MaxCycles passes complete.
// Only a universe selection failure or context cancellation is returned.
func (s *Scanner) Run(ctx context.Context) error {
	defer s.setState(StateStopped)

	s.setState(StateInitializing)
	params := s.detector.Params()
	s.log.Info().
		Str("strategy", s.detector.StrategyName()).
		Int("short", params.ShortPeriod).
		Int("long", params.LongPeriod).
		Str("timeframe", params.Timeframe).
		Msg("scanning for EMA crossovers")

	symbols, err := s.universe.Select(ctx, s.minVolume)
	if err != nil {
		return fmt.Errorf("select universe: %w", err)
	}
	s.mu.Lock()
	s.symbols = symbols
	s.mu.Unlock()
	metrics.UniverseSymbols.Set(float64(len(symbols)))
	if len(symbols) == 0 {
		s.log.Warn().Msg("universe is empty, scans will find nothing")
	}

	s.setState(StateScanning)
	for cycle := 1; ; cycle++ {
		report, err := s.scan(ctx, cycle, symbols)
		if err != nil {
			return err
		}
		s.publish(report)

		if s.maxCycles > 0 && cycle >= s.maxCycles {
			return nil
		}
		if err := s.clock.Sleep(ctx, s.delay); err != nil {
			return err
		}
	}
}

func (s *Scanner) scan(ctx context.Context, cycle int, symbols []signal.Symbol) (CycleReport, error) {
	report := CycleReport{
		ID:        uuid.NewString(),
		Cycle:     cycle,
		StartedAt: s.clock.Now(),
		Symbols:   len(symbols),
	}
	s.log.Info().
		Str("cycle_id", report.ID).
		Int("cycle", cycle).
		Str("at", report.StartedAt.Format(time.DateTime)).
		Int("symbols", len(symbols)).
		Msg("scanning symbols")

	results := make([]Result, len(symbols))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, sym := range symbols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Symbol: sym, Outcome: OutcomeFailed, Err: err}
				return nil
			}
			results[i] = s.detector.Detect(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, res := range results {
		switch res.Outcome {
		case OutcomeCrossover:
			report.Events = append(report.Events, *res.Event)
			metrics.Crossovers.WithLabelValues(res.Symbol.String(), res.Event.Direction.Label()).Inc()
			s.log.Info().
				Str("symbol", res.Symbol.String()).
				Str("direction", res.Event.Direction.String()).
				Float64("short_ema", res.Event.ShortEMA).
				Float64("long_ema", res.Event.LongEMA).
				Float64("close", res.Event.Close).
				Msgf("%s: %s detected!", res.Symbol, res.Event.Direction)
		case OutcomeInsufficient:
			report.Insufficient = append(report.Insufficient, res.Symbol)
			s.log.Debug().Str("symbol", res.Symbol.String()).Msg("insufficient candle history")
		case OutcomeFailed:
			report.Failures = append(report.Failures, SymbolFailure{Symbol: res.Symbol, Error: res.Err.Error()})
			metrics.DetectFailures.WithLabelValues(res.Symbol.String()).Inc()
			s.log.Warn().Err(res.Err).Str("symbol", res.Symbol.String()).Msg("error processing symbol")
		}
	}

	report.FinishedAt = s.clock.Now()
	elapsed := report.FinishedAt.Sub(report.StartedAt)
	metrics.ScanCycles.Inc()
	metrics.ScanDuration.Observe(elapsed.Seconds())
	s.log.Info().
		Str("cycle_id", report.ID).
		Int("crossovers", len(report.Events)).
		Int("failures", len(report.Failures)).
		Int("insufficient", len(report.Insufficient)).
		Dur("elapsed", elapsed).
		Msgf("scan complete, found %d crossovers", len(report.Events))
	return report, nil
}

func (s *Scanner) publish(report CycleReport) {
	s.mu.Lock()
	s.last = &report
	reporters := append([]Reporter(nil), s.reporters...)
	s.mu.Unlock()
	for _, r := range reporters {
		r(report)
	}
}

func (s *Scanner) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State reports the current lifecycle stage.
func (s *Scanner) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Universe returns a copy of the selected symbols.
func (s *Scanner) Universe() []signal.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]signal.Symbol(nil), s.symbols...)
}

// LastReport returns the most recent completed cycle, if any.
func (s *Scanner) LastReport() (CycleReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return CycleReport{}, false
	}
	return *s.last, true
}
