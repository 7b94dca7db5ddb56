package strategy

import (
	"math"
	"testing"
)

const epsilon = 1e-9

// closedFormEMA expands the recurrence: (1-a)^n*x0 + sum_{k=1..n} a*(1-a)^(n-k)*x_k.
func closedFormEMA(values []float64, period, n int) float64 {
	a := Alpha(period)
	total := math.Pow(1-a, float64(n)) * values[0]
	for k := 1; k <= n; k++ {
		total += a * math.Pow(1-a, float64(n-k)) * values[k]
	}
	return total
}

func TestEMAMatchesClosedForm(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14, 15}
	got := EMA(closes, 3)
	if len(got) != len(closes) {
		t.Fatalf("expected %d samples, got %d", len(closes), len(got))
	}
	want := []float64{10, 10.5, 11.25, 12.125, 13.0625, 14.03125}
	for i := range closes {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Fatalf("ema[%d]=%.12f want %.12f", i, got[i], want[i])
		}
		if cf := closedFormEMA(closes, 3, i); math.Abs(got[i]-cf) > epsilon {
			t.Fatalf("ema[%d]=%.12f closed form %.12f", i, got[i], cf)
		}
	}
}

func TestEMAIsCausal(t *testing.T) {
	closes := []float64{5, 7, 6, 9, 4, 8, 10}
	full := EMA(closes, 4)
	for n := 1; n <= len(closes); n++ {
		prefix := EMA(closes[:n], 4)
		for i := range prefix {
			if prefix[i] != full[i] {
				t.Fatalf("prefix %d changed sample %d: %.6f vs %.6f", n, i, prefix[i], full[i])
			}
		}
	}
}

func TestEMAEdgeCases(t *testing.T) {
	if out := EMA(nil, 3); len(out) != 0 {
		t.Fatalf("expected empty output for empty input")
	}
	if out := EMA([]float64{1, 2}, 0); out != nil {
		t.Fatalf("expected nil for non-positive period")
	}
	if out := EMA([]float64{42}, 9); len(out) != 1 || out[0] != 42 {
		t.Fatalf("single value should seed the series, got %+v", out)
	}
}
