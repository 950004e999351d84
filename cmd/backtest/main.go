package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/data"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/reporting"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/validation"
)

const (
	DefaultCommission = 0.001
	DefaultSlippage   = 0.0005
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to JSON configuration file")
		dataFile    = flag.String("data", "", "Path to historical 5m candles CSV (required)")
		unixMillis  = flag.Bool("unix-millis", false, "Timestamp column holds Unix milliseconds")
		commission  = flag.Float64("commission", DefaultCommission, "Per-side commission (0.001 = 0.1%)")
		slippage    = flag.Float64("slippage", DefaultSlippage, "Per-side slippage (0.0005 = 5 bps)")
		periodStr   = flag.String("period", "", "Limit data to a trailing window (e.g. 7d, 30d, 168h)")
		fromStr     = flag.String("from", "", "Start of date range (RFC3339 or 2006-01-02)")
		toStr       = flag.String("to", "", "End of date range (RFC3339 or 2006-01-02)")
		output      = flag.String("output", "", "Write trades to file (.csv or .xlsx)")
		equityOut   = flag.String("equity", "", "Write the equity curve CSV to file")
		jsonOut     = flag.String("json", "", "Write summary metrics JSON to file")
		consoleOnly = flag.Bool("console-only", false, "Only display results, do not write files")
		envFile     = flag.String("env", ".env", "Environment file path")

		wfEnable    = flag.Bool("wf-enable", false, "Run walk-forward validation instead of a single backtest")
		wfRolling   = flag.Bool("wf-rolling", false, "Use rolling walk-forward folds instead of a simple holdout split")
		wfSplit     = flag.Float64("wf-split-ratio", 0.7, "Train fraction for holdout validation")
		wfTrainDays = flag.Int("wf-train-days", 180, "Training window in days (rolling mode)")
		wfTestDays  = flag.Int("wf-test-days", 60, "Test window in days (rolling mode)")
		wfRollDays  = flag.Int("wf-roll-days", 30, "Roll step in days (rolling mode)")
	)

	flag.Parse()

	if *dataFile == "" {
		log.Fatal("❌ -data is required: path to a 5m candles CSV")
	}

	// Shorthand config names resolve under configs/
	if *configFile != "" && !strings.ContainsAny(*configFile, "/\\") {
		*configFile = filepath.Join("configs", *configFile+".json")
	}

	if err := loadEnvFile(*envFile); err != nil {
		log.Printf("Warning: Could not load .env file (%v), checking environment variables...", err)
	}

	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	bars, err := loadBars(*dataFile, *unixMillis, *periodStr, *fromStr, *toStr)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Printf("📊 Loaded %d bars from %s\n\n", len(bars), *dataFile)

	console := reporting.NewDefaultConsoleReporter()
	console.PrintConfig(cfg)

	if *wfEnable {
		runWalkForward(cfg, bars, *slippage, *commission, validation.WalkForwardConfig{
			Enable:     true,
			Rolling:    *wfRolling,
			SplitRatio: *wfSplit,
			TrainDays:  *wfTrainDays,
			TestDays:   *wfTestDays,
			RollDays:   *wfRollDays,
		})
		return
	}

	engine := backtest.NewEngine(cfg, *slippage, *commission)
	results, err := engine.Run(bars)
	if err != nil {
		log.Fatalf("❌ Backtest failed: %v", err)
	}

	console.OutputResultsWithContext(results, cfg.Symbol, cfg.Interval)

	if *consoleOnly {
		return
	}

	files := reporting.NewDefaultFileReporter()
	if *output != "" {
		if err := files.WriteTrades(results, *output); err != nil {
			log.Fatalf("❌ Failed to write trades: %v", err)
		}
		fmt.Printf("💾 Trades written to %s\n", *output)
	}
	if *equityOut != "" {
		if err := files.WriteEquityCurveCSV(results, *equityOut); err != nil {
			log.Fatalf("❌ Failed to write equity curve: %v", err)
		}
		fmt.Printf("💾 Equity curve written to %s\n", *equityOut)
	}
	if *jsonOut != "" {
		if err := files.WriteResultsJSON(results, *jsonOut); err != nil {
			log.Fatalf("❌ Failed to write results JSON: %v", err)
		}
		fmt.Printf("💾 Results JSON written to %s\n", *jsonOut)
	}
}

// runWalkForward replays the same configuration over train/test windows
// and reports the out-of-sample degradation
func runWalkForward(cfg *config.Config, bars []types.OHLCV, slippage, commission float64, wfConfig validation.WalkForwardConfig) {
	runner := func(window []types.OHLCV) (*backtest.Results, error) {
		return backtest.NewEngine(cfg, slippage, commission).Run(window)
	}

	validator := validation.NewWalkForwardValidator(runner)
	summary, err := validator.Validate(bars, wfConfig)
	if err != nil {
		log.Fatalf("❌ Walk-forward validation failed: %v", err)
	}

	if summary.IsRobust {
		fmt.Println("✅ Configuration holds up out of sample")
	} else {
		fmt.Printf("⚠️  Out-of-sample degradation is %s — treat in-sample results with caution\n", summary.OverfittingRisk)
	}
}

// loadBars loads, validates and slices the bar series per the CLI flags
func loadBars(path string, unixMillis bool, periodStr, fromStr, toStr string) ([]types.OHLCV, error) {
	format := data.DefaultCSVFormat
	if unixMillis {
		format = data.UnixMillisCSVFormat
	}
	provider := data.NewCachedProvider(data.NewCSVProviderWithFormat(format))

	bars, err := provider.LoadData(path)
	if err != nil {
		return nil, err
	}
	if err := provider.ValidateData(bars); err != nil {
		return nil, fmt.Errorf("data validation failed: %w", err)
	}

	filter := data.NewFilter()

	if fromStr != "" || toStr != "" {
		from, err := parseDate(fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid -from: %w", err)
		}
		to, err := parseDate(toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid -to: %w", err)
		}
		bars = filter.FilterByDateRange(bars, from, to)
	}

	if periodStr != "" {
		period, ok := data.ParseTrailingPeriod(periodStr)
		if !ok {
			return nil, fmt.Errorf("invalid -period %q (use e.g. 7d, 30d, 168h)", periodStr)
		}
		bars = filter.FilterByPeriod(bars, period)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars left after filtering")
	}
	return bars, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err == nil {
		return godotenv.Load(envFile)
	}
	return fmt.Errorf("env file %s not found", envFile)
}
