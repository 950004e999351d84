package sizing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/internal/risk"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

func portfolioWithTrades(pnls ...float64) risk.PortfolioState {
	trades := make([]risk.ClosedTrade, len(pnls))
	for i, pnl := range pnls {
		trades[i] = risk.ClosedTrade{PnL: pnl, ClosedAt: time.Now()}
	}
	return risk.PortfolioState{Equity: 1000, PeakEquity: 1000, ClosedTrades: trades}
}

func TestSizer_Fixed(t *testing.T) {
	sizer, err := NewSizer(config.SizingConfig{
		Method:          config.SizingMethodFixed,
		FixedFraction:   0.5,
		MaxPositionSize: 0.99,
	}, 0.005)
	require.NoError(t, err)

	assert.Equal(t, 0.5, sizer.ComputeSize(portfolioWithTrades()))
}

// TestSizer_PercentRiskClamp verifies the documented boundary:
// risk_per_trade=0.02 over stop_loss=0.005 is 4.0, clamped to 0.99.
func TestSizer_PercentRiskClamp(t *testing.T) {
	sizer, err := NewSizer(config.SizingConfig{
		Method:          config.SizingMethodPercentRisk,
		RiskPerTrade:    0.02,
		MaxPositionSize: 0.99,
	}, 0.005)
	require.NoError(t, err)

	assert.Equal(t, 0.99, sizer.ComputeSize(portfolioWithTrades()))
}

func TestSizer_PercentRiskUnclamped(t *testing.T) {
	sizer, err := NewSizer(config.SizingConfig{
		Method:          config.SizingMethodPercentRisk,
		RiskPerTrade:    0.005,
		MaxPositionSize: 0.99,
	}, 0.01)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, sizer.ComputeSize(portfolioWithTrades()), 1e-9)
}

func TestSizer_KellyFallsBackToFixedWithoutHistory(t *testing.T) {
	sizer, err := NewSizer(config.SizingConfig{
		Method:              config.SizingMethodKelly,
		FixedFraction:       0.3,
		KellyLookbackTrades: 10,
		MaxKellyFraction:    0.25,
		MaxPositionSize:     0.99,
	}, 0.005)
	require.NoError(t, err)

	size := sizer.ComputeSize(portfolioWithTrades(10, -5, 10))
	assert.Equal(t, 0.3, size)
}

func TestSizer_KellyFraction(t *testing.T) {
	sizer, err := NewSizer(config.SizingConfig{
		Method:              config.SizingMethodKelly,
		FixedFraction:       0.3,
		KellyLookbackTrades: 4,
		MaxKellyFraction:    0.5,
		MaxPositionSize:     0.99,
	}, 0.005)
	require.NoError(t, err)

	// Win rate 0.5, avg win 20, avg loss 10, payoff 2.0:
	// f = 0.5 - 0.5/2 = 0.25
	size := sizer.ComputeSize(portfolioWithTrades(20, -10, 20, -10))
	assert.InDelta(t, 0.25, size, 1e-9)
}

func TestSizer_KellyNegativeEdgeIsZero(t *testing.T) {
	sizer, err := NewSizer(config.SizingConfig{
		Method:              config.SizingMethodKelly,
		FixedFraction:       0.3,
		KellyLookbackTrades: 4,
		MaxKellyFraction:    0.5,
		MaxPositionSize:     0.99,
	}, 0.005)
	require.NoError(t, err)

	// Win rate 0.25 and payoff 1.0: f = 0.25 - 0.75 < 0 => skip entry
	size := sizer.ComputeSize(portfolioWithTrades(10, -10, -10, -10))
	assert.Equal(t, 0.0, size)
}

func TestSizer_VolatilityAdjustedBounds(t *testing.T) {
	cfg := config.SizingConfig{
		Method:               config.SizingMethodVolatilityAdjusted,
		BaseSize:             0.4,
		VolatilityLookback:   10,
		VolatilityMultiplier: 2.0,
		MaxPositionSize:      0.99,
	}
	sizer, err := NewSizer(cfg, 0.005)
	require.NoError(t, err)

	// Before a full window: base size unscaled.
	assert.Equal(t, 0.4, sizer.ComputeSize(risk.PortfolioState{}))

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < 40; i++ {
		// Calm then violent regime; the final sizes must stay bounded.
		if i < 20 {
			price *= 1.001
		} else if i%2 == 0 {
			price *= 1.05
		} else {
			price *= 0.95
		}
		sizer.OnBar(types.OHLCV{Close: price, Timestamp: base.Add(time.Duration(i) * 5 * time.Minute)})
	}

	size := sizer.ComputeSize(risk.PortfolioState{})
	assert.GreaterOrEqual(t, size, cfg.BaseSize/cfg.VolatilityMultiplier-1e-9)
	assert.LessOrEqual(t, size, cfg.BaseSize*cfg.VolatilityMultiplier+1e-9)
	assert.Less(t, size, cfg.BaseSize, "violent regime must shrink the size below base")
}

func TestSizer_UnknownMethodRejected(t *testing.T) {
	_, err := NewSizer(config.SizingConfig{Method: "martingale"}, 0.005)
	assert.Error(t, err)
}
