// Package metrics exposes Prometheus collectors for the scan loop and provider traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScanCycles = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "scan_cycles_total", Help: "Completed full-universe scan passes"},
	)
	Crossovers = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "crossovers_total", Help: "EMA crossovers detected"},
		[]string{"symbol", "direction"},
	)
	DetectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "detect_failures_total", Help: "Per-symbol detection failures"},
		[]string{"symbol"},
	)
	UniverseSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "universe_symbols", Help: "Symbols selected for scanning"},
	)
	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_duration_seconds",
			Help:    "Wall time of one full scan pass",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_requests_total", Help: "Market-data HTTP requests by endpoint and status"},
		[]string{"endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(ScanCycles, Crossovers, DetectFailures, UniverseSymbols, ScanDuration, ProviderRequests)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
