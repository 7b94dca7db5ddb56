// Package strategy contains the moving-average math and crossover rules applied to candle history.
package strategy

// EMA returns the causal exponential moving average of values. The series is
// seeded with the first value and each later point is value*alpha + prev*(1-alpha)
// with alpha = 2/(period+1), so index i only depends on values[0..i].
func EMA(values []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := Alpha(period)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// Alpha is the smoothing factor for a span of period samples.
func Alpha(period int) float64 {
	return 2 / (float64(period) + 1)
}
