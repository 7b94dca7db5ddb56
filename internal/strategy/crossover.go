package strategy

import (
	"fmt"

	"emacross-go/internal/signal"
)

// Classify compares the short/long ordering at two consecutive samples.
// Ties at either sample never produce a crossover.
func Classify(prevShort, prevLong, currShort, currLong float64) (signal.Direction, bool) {
	switch {
	case prevShort < prevLong && currShort > currLong:
		return signal.Bullish, true
	case prevShort > prevLong && currShort < currLong:
		return signal.Bearish, true
	default:
		return 0, false
	}
}

// Reading captures both averages at the last sample along with the classification.
type Reading struct {
	Direction signal.Direction
	Crossed   bool
	ShortEMA  float64
	LongEMA   float64
	Close     float64
}

// EMACrossover flags the bar where the short EMA crosses the long EMA.
type EMACrossover struct {
	short int
	long  int
}

// NewEMACrossover validates the period pair.
func NewEMACrossover(short, long int) (*EMACrossover, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("%w: ema periods must be positive (short=%d long=%d)", ErrInvalidParams, short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("%w: short period %d must be below long period %d", ErrInvalidParams, short, long)
	}
	return &EMACrossover{short: short, long: long}, nil
}

// Name returns the identifier for logging.
func (s *EMACrossover) Name() string { return fmt.Sprintf("EMA%d/%d", s.short, s.long) }

// Evaluate computes both averages over the closes and classifies the last two samples.
// Fewer than two candles yields a zero Reading.
func (s *EMACrossover) Evaluate(candles []signal.Candle) Reading {
	if len(candles) < 2 {
		return Reading{}
	}
	closes := signal.Closes(candles)
	shortSeries := EMA(closes, s.short)
	longSeries := EMA(closes, s.long)

	last := len(closes) - 1
	prev := last - 1
	dir, crossed := Classify(shortSeries[prev], longSeries[prev], shortSeries[last], longSeries[last])
	return Reading{
		Direction: dir,
		Crossed:   crossed,
		ShortEMA:  shortSeries[last],
		LongEMA:   longSeries[last],
		Close:     closes[last],
	}
}
