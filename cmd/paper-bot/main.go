package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/internal/execution"
	"github.com/ducminhle1904/btc-intraday-bot/internal/logger"
	"github.com/ducminhle1904/btc-intraday-bot/internal/monitoring"
	"github.com/ducminhle1904/btc-intraday-bot/internal/orchestrator"
	"github.com/ducminhle1904/btc-intraday-bot/internal/risk"
	"github.com/ducminhle1904/btc-intraday-bot/internal/state"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/data"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

const (
	DefaultBarDelay    = 3 * time.Second
	DefaultMetricsAddr = ":9090"
	DefaultCommission  = 0.001
	DefaultSlippage    = 0.0005
)

// paperBot replays a historical bar file through the live decision chain
// at a configurable cadence, with metrics and health endpoints attached
type paperBot struct {
	cfg    *config.Config
	orch   *orchestrator.Orchestrator
	broker *execution.SimulatedBroker
	log    *logger.Logger
	health *monitoring.HealthChecker
	store  *state.Store

	tradeCount int
	prevState  risk.State
	lastBar    time.Time
}

func main() {
	var (
		configFile  = flag.String("config", "", "Path to JSON configuration file")
		dataFile    = flag.String("data", "", "Path to historical 5m candles CSV (required)")
		unixMillis  = flag.Bool("unix-millis", false, "Timestamp column holds Unix milliseconds")
		barDelay    = flag.Duration("bar-delay", DefaultBarDelay, "Wall-clock delay between replayed bars")
		metricsAddr = flag.String("metrics-addr", DefaultMetricsAddr, "Address for /metrics and /health")
		commission  = flag.Float64("commission", DefaultCommission, "Per-side commission")
		slippage    = flag.Float64("slippage", DefaultSlippage, "Per-side slippage")
		stateDir    = flag.String("state-dir", "", "Directory for session state persistence (empty = disabled)")
		envFile     = flag.String("env", ".env", "Environment file path")
	)

	flag.Parse()

	if *dataFile == "" {
		log.Fatal("❌ -data is required: path to a 5m candles CSV")
	}

	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			log.Printf("Warning: Could not load .env file: %v", err)
		}
	}

	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	fileLog, err := logger.NewLogger(cfg.Symbol, cfg.Interval)
	if err != nil {
		log.Fatalf("❌ Failed to open log file: %v", err)
	}
	defer fileLog.Close()

	broker := execution.NewSimulatedBroker(*slippage, *commission)
	orch, err := orchestrator.New(cfg, broker, fileLog)
	if err != nil {
		log.Fatalf("❌ Failed to assemble engine: %v", err)
	}

	format := data.DefaultCSVFormat
	if *unixMillis {
		format = data.UnixMillisCSVFormat
	}
	provider := data.NewCSVProviderWithFormat(format)
	bars, err := provider.LoadData(*dataFile)
	if err != nil {
		log.Fatalf("❌ Failed to load bars: %v", err)
	}
	if err := provider.ValidateData(bars); err != nil {
		log.Fatalf("❌ Data validation failed: %v", err)
	}

	bot := &paperBot{
		cfg:    cfg,
		orch:   orch,
		broker: broker,
		log:    fileLog,
		health: monitoring.NewHealthChecker(10 * *barDelay),
	}

	if *stateDir != "" {
		bot.store = state.NewStore(fileLog, *stateDir, cfg.Symbol)
		snap, lastBar, found, err := bot.store.Load()
		if err != nil {
			log.Fatalf("❌ Failed to load session state: %v", err)
		}
		if found {
			orch.RestoreSession(snap, lastBar)
			bot.prevState = snap.State
			fmt.Printf("♻️  Resumed session: equity $%.2f, governor %s, %d trades on record\n",
				snap.Portfolio.Equity, snap.State, len(snap.Portfolio.ClosedTrades))
			fileLog.Status("Session state restored: equity %.2f, governor %s", snap.Portfolio.Equity, snap.State)
		}
	}

	server := startMonitoringServer(*metricsAddr, bot.health)
	defer server.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🚀 Paper trading %s %s: %d bars, one every %s, metrics on %s\n",
		cfg.Symbol, cfg.Interval, len(bars), *barDelay, *metricsAddr)
	fileLog.Status("Paper session started: %d bars at %s cadence", len(bars), *barDelay)

	bot.run(ctx, bars, *barDelay)
	bot.saveState()

	portfolio := orch.Governor().Portfolio()
	fmt.Printf("\n🏁 Session over: equity $%.2f after %d trades (governor %s)\n",
		portfolio.Equity, bot.tradeCount, orch.Governor().State())
	fileLog.Status("Paper session ended: equity %.2f after %d trades", portfolio.Equity, bot.tradeCount)
}

// run drives the replay loop until the bars run out or the context is
// cancelled
func (b *paperBot) run(ctx context.Context, bars []types.OHLCV, delay time.Duration) {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for _, bar := range bars {
		select {
		case <-ctx.Done():
			fmt.Println("\n🛑 Interrupted, shutting down")
			return
		case <-ticker.C:
		}

		b.broker.OnBar(bar)
		result, err := b.orch.ProcessBar(bar)
		if err != nil {
			b.log.Error("Fatal engine error: %v", err)
			b.health.AddError(err.Error())
			monitoring.RecordError("contract")
			return
		}

		b.observe(bar, result)
	}
}

// observe pushes the bar outcome into the metrics and health surfaces
// and persists session state when the governor accounting moved
func (b *paperBot) observe(bar types.OHLCV, result orchestrator.BarResult) {
	price := bar.Close
	b.lastBar = bar.Timestamp
	b.health.MarkBar(price)
	b.health.SetHalted(result.GovernorState == risk.StateHalted)

	monitoring.UpdatePrice(b.cfg.Symbol, price)

	portfolio := b.orch.Governor().Portfolio()
	monitoring.UpdatePortfolio(b.cfg.Symbol, portfolio.Equity, portfolio.Drawdown())

	if result.OrderErr != nil {
		b.log.Warning("Order submission failed: %v", result.OrderErr)
		monitoring.RecordError("order")
	}

	// State transitions
	stateChanged := b.prevState != result.GovernorState
	if b.prevState == risk.StateActive && result.GovernorState == risk.StateHalted {
		monitoring.RecordHalt(string(b.orch.Governor().HaltedBecause()))
	}
	if b.prevState == risk.StateHalted && result.GovernorState == risk.StateActive {
		monitoring.RecordSessionReset()
	}
	b.prevState = result.GovernorState

	// Newly archived trades since the last bar
	archive := b.orch.Lifecycle().Archive()
	for _, trade := range archive[b.tradeCount:] {
		monitoring.RecordTradeClosed(b.cfg.Symbol, trade.Reason.String(), trade.ReturnPct)
	}
	tradeClosed := len(archive) > b.tradeCount
	b.tradeCount = len(archive)

	if stateChanged || tradeClosed {
		b.saveState()
	}
}

func (b *paperBot) saveState() {
	if b.store == nil {
		return
	}
	if err := b.store.Save(b.orch.Governor().Snapshot(), b.lastBar); err != nil {
		b.log.Warning("Failed to persist session state: %v", err)
	}
}

func startMonitoringServer(addr string, health *monitoring.HealthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Warning: monitoring server stopped: %v", err)
		}
	}()
	return server
}
