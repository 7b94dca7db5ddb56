package strategy

import (
	"errors"
	"testing"
	"time"

	"emacross-go/internal/signal"
)

func candlesFrom(closes []float64) []signal.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]signal.Candle, len(closes))
	for i, c := range closes {
		out[i] = signal.Candle{OpenTime: start.Add(time.Duration(i) * 3 * time.Minute), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return out
}

// descending closes drag the short EMA under the long one until a final spike.
func bullishCloses() []float64 {
	closes := make([]float64, 0, 10)
	for px := 10.0; px >= 2; px-- {
		closes = append(closes, px)
	}
	return append(closes, 20)
}

func mirror(closes []float64, pivot float64) []float64 {
	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = 2*pivot - c
	}
	return out
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		in      [4]float64
		want    signal.Direction
		crossed bool
	}{
		{"bullish", [4]float64{1, 2, 3, 2}, signal.Bullish, true},
		{"bearish", [4]float64{3, 2, 1, 2}, signal.Bearish, true},
		{"stays below", [4]float64{1, 2, 1.5, 2}, 0, false},
		{"stays above", [4]float64{3, 2, 4, 2}, 0, false},
		{"tie before", [4]float64{2, 2, 3, 2}, 0, false},
		{"tie after", [4]float64{1, 2, 2, 2}, 0, false},
	}
	for _, tc := range cases {
		dir, crossed := Classify(tc.in[0], tc.in[1], tc.in[2], tc.in[3])
		if dir != tc.want || crossed != tc.crossed {
			t.Fatalf("%s: got %v/%v want %v/%v", tc.name, dir, crossed, tc.want, tc.crossed)
		}
	}
}

func TestEvaluateBullishAndMirror(t *testing.T) {
	strat, err := NewEMACrossover(3, 5)
	if err != nil {
		t.Fatalf("NewEMACrossover: %v", err)
	}

	up := strat.Evaluate(candlesFrom(bullishCloses()))
	if !up.Crossed || up.Direction != signal.Bullish {
		t.Fatalf("expected bullish crossover, got %+v", up)
	}
	if up.ShortEMA <= up.LongEMA {
		t.Fatalf("short EMA should finish above long EMA: %+v", up)
	}

	down := strat.Evaluate(candlesFrom(mirror(bullishCloses(), 50)))
	if !down.Crossed || down.Direction != signal.Bearish {
		t.Fatalf("expected bearish crossover from mirrored series, got %+v", down)
	}
}

func TestEvaluateNoSwap(t *testing.T) {
	strat, _ := NewEMACrossover(9, 20)
	rising := make([]float64, 50)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	if r := strat.Evaluate(candlesFrom(rising)); r.Crossed {
		t.Fatalf("monotonic series should not cross, got %+v", r)
	}

	flat := make([]float64, 50)
	for i := range flat {
		flat[i] = 42
	}
	if r := strat.Evaluate(candlesFrom(flat)); r.Crossed {
		t.Fatalf("flat series should not cross, got %+v", r)
	}
}

func TestEvaluateShortHistory(t *testing.T) {
	strat, _ := NewEMACrossover(3, 5)
	if r := strat.Evaluate(candlesFrom([]float64{1})); r.Crossed || r.Direction != 0 {
		t.Fatalf("single candle must not classify, got %+v", r)
	}
	if r := strat.Evaluate(nil); r.Crossed {
		t.Fatalf("no candles must not classify")
	}
}

func TestNewEMACrossoverValidation(t *testing.T) {
	if _, err := NewEMACrossover(20, 9); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for inverted periods, got %v", err)
	}
	if _, err := NewEMACrossover(0, 9); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for zero period, got %v", err)
	}
	if _, err := NewEMACrossover(9, 9); err == nil {
		t.Fatalf("expected error for equal periods")
	}
}

func TestBuild(t *testing.T) {
	strat, err := Build("EMA_Cross", Params{ShortPeriod: 9, LongPeriod: 20})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if strat.Name() != "EMA9/20" {
		t.Fatalf("unexpected name %s", strat.Name())
	}
	if _, err := Build("obi", Params{ShortPeriod: 9, LongPeriod: 20}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
	strat, err = Build("ema", Params{ShortPeriod: 20, LongPeriod: 9})
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for inverted periods, got %v", err)
	}
	if strat != nil {
		t.Fatalf("failed build must return a nil Strategy, got %#v", strat)
	}
}
