package strategy

import (
	"errors"
	"fmt"
	"strings"

	"emacross-go/internal/signal"
)

// ErrInvalidParams reports a strategy configuration that cannot be evaluated.
var ErrInvalidParams = errors.New("invalid strategy params")

// Strategy defines behaviour shared by candle-driven strategy implementations.
type Strategy interface {
	Evaluate(candles []signal.Candle) Reading
	Name() string
}

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	ShortPeriod int
	LongPeriod  int
}

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, params Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "ema", "ema_cross", "ema_crossover":
		strat, err := NewEMACrossover(params.ShortPeriod, params.LongPeriod)
		if err != nil {
			return nil, err
		}
		return strat, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy mode %q", ErrInvalidParams, mode)
	}
}
