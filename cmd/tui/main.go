package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"emacross-go/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== EMA Crossover Scanner ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit scan parameters")
		fmt.Println("3) Edit exchange settings")
		fmt.Println("4) Save config")
		fmt.Println("5) Launch scanner")
		fmt.Println("6) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editScanner(reader, cfg)
		case "3":
			editExchange(reader, cfg)
		case "4":
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "refusing to save invalid config: %v\n", err)
			} else if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "5":
			launchScanner(reader)
		case "6":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	s := cfg.Scanner
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Provider: %s (%s, %.1f req/s burst %d)\n", cfg.Exchange.Provider, cfg.Exchange.BaseURL, cfg.Exchange.RequestsPerSecond, cfg.Exchange.Burst)
	fmt.Printf("Quote asset: %s | min 24h quote volume: %.0f\n", s.QuoteAsset, s.MinQuoteVolume)
	fmt.Printf("EMA %d/%d on %s candles, lookback %d\n", s.ShortPeriod, s.LongPeriod, s.Timeframe, s.CandleCount)
	fmt.Printf("Delay between scans: %ds | workers: %d\n", s.ScanDelaySecs, s.Workers)
	if err := cfg.Validate(); err != nil {
		fmt.Printf("WARNING: %v\n", err)
	}
}

func editScanner(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Scan Parameters ---")
	cfg.Scanner.Timeframe = promptString(reader, "Timeframe", cfg.Scanner.Timeframe)
	cfg.Scanner.ShortPeriod = promptInt(reader, "Short EMA period", cfg.Scanner.ShortPeriod)
	cfg.Scanner.LongPeriod = promptInt(reader, "Long EMA period", cfg.Scanner.LongPeriod)
	cfg.Scanner.MinQuoteVolume = promptFloat(reader, "Min 24h quote volume", cfg.Scanner.MinQuoteVolume)
	cfg.Scanner.CandleCount = promptInt(reader, "Candle lookback", cfg.Scanner.CandleCount)
	cfg.Scanner.ScanDelaySecs = promptInt(reader, "Delay between scans (s)", cfg.Scanner.ScanDelaySecs)
	cfg.Scanner.Workers = promptInt(reader, "Workers", cfg.Scanner.Workers)
	cfg.Scanner.Strategy = promptString(reader, "Strategy mode", cfg.Scanner.Strategy)
}

func editExchange(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Exchange ---")
	cfg.Exchange.Provider = promptString(reader, "Provider (binance|stub)", cfg.Exchange.Provider)
	cfg.Exchange.BaseURL = promptString(reader, "Base URL", cfg.Exchange.BaseURL)
	cfg.Exchange.RequestsPerSecond = promptFloat(reader, "Requests per second", cfg.Exchange.RequestsPerSecond)
	cfg.Exchange.Burst = promptInt(reader, "Burst", cfg.Exchange.Burst)
	cfg.Scanner.QuoteAsset = strings.ToUpper(promptString(reader, "Quote asset", cfg.Scanner.QuoteAsset))
}

func launchScanner(reader *bufio.Reader) {
	fmt.Println("Launching scanner (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/scanner", "-config", locateConfig())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start scanner: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the scanner and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	if line = strings.TrimSpace(line); line == "" {
		return current
	}
	return line
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

func promptInt(reader *bufio.Reader, label string, current int) int {
	fmt.Printf("%s [%d]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.Atoi(line)
	if err != nil {
		fmt.Printf("invalid integer, keeping %d\n", current)
		return current
	}
	return val
}

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if filepath.IsAbs(defaultConfigPath) {
		return defaultConfigPath
	}
	return filepath.Clean(defaultConfigPath)
}
