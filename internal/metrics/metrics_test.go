package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesScanMetrics(t *testing.T) {
	Crossovers.WithLabelValues("BTC-USDT", "bullish").Inc()
	ScanCycles.Inc()
	UniverseSymbols.Set(3)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	for _, want := range []string{
		`crossovers_total{direction="bullish",symbol="BTC-USDT"}`,
		"scan_cycles_total",
		"universe_symbols 3",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("%s not found in scrape output", want)
		}
	}
}
