package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBadParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty symbol", func(c *Config) { c.Symbol = "" }},
		{"zero balance", func(c *Config) { c.InitialBalance = 0 }},
		{"zero EMA period", func(c *Config) { c.Indicators.EMAPeriod = 0 }},
		{"RSI period too small", func(c *Config) { c.Indicators.RSIPeriod = 1 }},
		{"oversold out of range", func(c *Config) { c.Indicators.RSIOversold = 120 }},
		{"zero stop loss", func(c *Config) { c.Exit.StopLossPercent = 0 }},
		{"take profit above 100%", func(c *Config) { c.Exit.TakeProfitPercent = 1.5 }},
		{"zero hold duration", func(c *Config) { c.Exit.MaxHoldMinutes = 0 }},
		{"unknown sizing method", func(c *Config) { c.Sizing.Method = "martingale" }},
		{"zero max position", func(c *Config) { c.Sizing.MaxPositionSize = 0 }},
		{"zero daily loss limit", func(c *Config) { c.Risk.DailyLossLimitPercent = 0 }},
		{"force liquidation below halt", func(c *Config) {
			c.Risk.MaxDrawdownPercent = 0.15
			c.Risk.ForceLiquidationDrawdown = 0.10
		}},
		{"obv condition without obv", func(c *Config) {
			c.Entry.OBVRising = true
			c.Indicators.UseOBV = false
		}},
		{"macd fast above slow", func(c *Config) {
			c.Indicators.UseMACD = true
			c.Indicators.MACDFast = 26
			c.Indicators.MACDSlow = 12
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_SizingMethodSubParameters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizing.Method = SizingMethodPercentRisk
	assert.Error(t, cfg.Validate(), "percent_risk without risk_per_trade must fail")

	cfg.Sizing.RiskPerTrade = 0.02
	assert.NoError(t, cfg.Validate())

	cfg.Sizing.Method = SizingMethodKelly
	cfg.Sizing.KellyLookbackTrades = 20
	cfg.Sizing.MaxKellyFraction = 0.25
	assert.NoError(t, cfg.Validate())

	cfg.Sizing.Method = SizingMethodVolatilityAdjusted
	assert.Error(t, cfg.Validate(), "volatility_adjusted without sub-parameters must fail")

	cfg.Sizing.BaseSize = 0.5
	cfg.Sizing.VolatilityLookback = 20
	cfg.Sizing.VolatilityMultiplier = 2.0
	assert.NoError(t, cfg.Validate())
}
