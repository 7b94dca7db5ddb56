package main

import (
	"context"
	"errors"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"emacross-go/internal/config"
	"emacross-go/internal/exchange"
	"emacross-go/internal/httpapi"
	"emacross-go/internal/scanner"
	"emacross-go/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "config file path (missing file falls back to defaults)")
	timeframe := flag.String("timeframe", "", "candle timeframe, e.g. 3m")
	shortPeriod := flag.Int("short", 0, "short EMA period")
	longPeriod := flag.Int("long", 0, "long EMA period")
	minVolume := flag.Float64("min-volume", -1, "minimum 24h quote volume")
	candles := flag.Int("candles", 0, "candle lookback count")
	delay := flag.Int("delay", -1, "seconds to wait between scans")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			util.NewLogger("info", true).Fatal().Err(err).Msg("load config")
		}
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	applyFlags(cfg, *timeframe, *shortPeriod, *longPeriod, *minVolume, *candles, *delay)

	log := util.NewLogger(cfg.App.LogLevel, cfg.App.PrettyLogs)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	provider, err := exchange.NewProvider(cfg.Exchange.Provider, log,
		exchange.WithBaseURL(cfg.Exchange.BaseURL),
		exchange.WithRateLimit(cfg.Exchange.RequestsPerSecond, cfg.Exchange.Burst),
		exchange.WithTimeout(time.Duration(cfg.Exchange.TimeoutMs)*time.Millisecond),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build provider")
	}

	clock := scanner.SystemClock{}
	detector, err := scanner.NewDetector(provider, clock, scanner.DetectorParams{
		Strategy:    cfg.Scanner.Strategy,
		Timeframe:   cfg.Scanner.Timeframe,
		CandleCount: cfg.Scanner.CandleCount,
		ShortPeriod: cfg.Scanner.ShortPeriod,
		LongPeriod:  cfg.Scanner.LongPeriod,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build detector")
	}
	universe := scanner.NewUniverse(log, provider, cfg.Scanner.QuoteAsset, cfg.Scanner.Workers)
	scan := scanner.New(log, universe, detector, decimal.NewFromFloat(cfg.Scanner.MinQuoteVolume),
		scanner.WithClock(clock),
		scanner.WithDelay(cfg.Scanner.ScanDelay()),
		scanner.WithWorkers(cfg.Scanner.Workers),
		scanner.WithMaxCycles(cfg.Scanner.MaxCycles),
	)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A finished scan (max_cycles reached) also stops the status server.
		defer cancel()
		return scan.Run(gctx)
	})
	if cfg.App.StatusAddr != "" {
		srv := httpapi.NewServer(cfg.App.StatusAddr, httpapi.NewHandler(scan, log), log)
		g.Go(func() error { return srv.Run(gctx) })
	}

	log.Info().
		Str("provider", cfg.Exchange.Provider).
		Str("quote", cfg.Scanner.QuoteAsset).
		Int("workers", cfg.Scanner.Workers).
		Msg("scanner started")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("scanner stopped")
	}
	log.Info().Msg("shutting down")
}

// applyFlags overlays explicitly set CLI flags; zero/negative sentinels mean "not set".
func applyFlags(cfg *config.Config, timeframe string, short, long int, minVolume float64, candles, delay int) {
	if timeframe != "" {
		cfg.Scanner.Timeframe = timeframe
	}
	if short > 0 {
		cfg.Scanner.ShortPeriod = short
	}
	if long > 0 {
		cfg.Scanner.LongPeriod = long
	}
	if minVolume >= 0 {
		cfg.Scanner.MinQuoteVolume = minVolume
	}
	if candles > 0 {
		cfg.Scanner.CandleCount = candles
	}
	if delay >= 0 {
		cfg.Scanner.ScanDelaySecs = delay
	}
}
