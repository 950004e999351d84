package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Trading metrics
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intraday_bot_trades_total",
			Help: "Total number of closed trades by exit reason",
		},
		[]string{"symbol", "exit_reason"},
	)

	tradeReturn = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intraday_bot_trade_return",
			Help:    "Distribution of per-trade fractional returns",
			Buckets: []float64{-0.05, -0.02, -0.01, -0.005, 0, 0.005, 0.01, 0.02, 0.05},
		},
		[]string{"symbol"},
	)

	// Portfolio metrics
	equity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intraday_bot_equity",
			Help: "Current realized equity",
		},
		[]string{"symbol"},
	)

	drawdown = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intraday_bot_drawdown",
			Help: "Current drawdown from peak equity",
		},
		[]string{"symbol"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intraday_bot_current_price",
			Help: "Close price of the last processed bar",
		},
		[]string{"symbol"},
	)

	// Risk governor metrics
	governorHalts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intraday_bot_governor_halts_total",
			Help: "Circuit breaker halts by reason",
		},
		[]string{"reason"},
	)

	governorHalted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "intraday_bot_governor_halted",
			Help: "1 while the risk governor is halted, 0 while active",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intraday_bot_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(tradeReturn)
	prometheus.MustRegister(equity)
	prometheus.MustRegister(drawdown)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(governorHalts)
	prometheus.MustRegister(governorHalted)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordTradeClosed records one completed round trip
func RecordTradeClosed(symbol, exitReason string, returnPct float64) {
	tradesTotal.WithLabelValues(symbol, exitReason).Inc()
	tradeReturn.WithLabelValues(symbol).Observe(returnPct)
}

// UpdatePortfolio updates the equity and drawdown gauges
func UpdatePortfolio(symbol string, currentEquity, currentDrawdown float64) {
	equity.WithLabelValues(symbol).Set(currentEquity)
	drawdown.WithLabelValues(symbol).Set(currentDrawdown)
}

// UpdatePrice updates the last bar price gauge
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// RecordHalt records a circuit breaker trip
func RecordHalt(reason string) {
	governorHalts.WithLabelValues(reason).Inc()
	governorHalted.Set(1)
}

// RecordSessionReset marks the governor active again
func RecordSessionReset() {
	governorHalted.Set(0)
}

// RecordError records an error by category
func RecordError(category string) {
	errorsTotal.WithLabelValues(category).Inc()
}
