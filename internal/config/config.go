package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Default strategy parameter values
const (
	DefaultSymbol        = "BTCUSD"
	DefaultInterval      = "5m"
	DefaultInitialCash   = 1000.0
	DefaultEMAPeriod     = 20
	DefaultRSIPeriod     = 14
	DefaultRSIOversold   = 30.0
	DefaultBBPeriod      = 20
	DefaultBBStdDev      = 2.0
	DefaultMACDFast      = 12
	DefaultMACDSlow      = 26
	DefaultMACDSignal    = 9
	DefaultStopLoss      = 0.005 // 0.5%
	DefaultTakeProfit    = 0.01  // 1%
	DefaultMaxHoldMins   = 30
	DefaultFixedFraction = 0.99
	DefaultMaxPosition   = 0.99

	// Portfolio circuit breaker defaults
	DefaultDailyLossLimit   = 0.05
	DefaultMaxConsecLosses  = 3
	DefaultMaxDrawdown      = 0.15
	DefaultForceLiquidation = 0.20
)

// Sizing method names accepted in configuration. The set is closed; the
// sizing package switches exhaustively over it.
const (
	SizingMethodFixed              = "fixed"
	SizingMethodPercentRisk        = "percent_risk"
	SizingMethodKelly              = "kelly"
	SizingMethodVolatilityAdjusted = "volatility_adjusted"
)

// Config holds every parameter the decision engine consumes. It is
// validated and frozen before the orchestrator starts; the engine treats
// it as read-only for the session.
type Config struct {
	Symbol         string  `json:"symbol"`
	Interval       string  `json:"interval"`
	InitialBalance float64 `json:"initial_balance"`

	Indicators IndicatorsConfig `json:"indicators"`
	Entry      EntryConfig      `json:"entry"`
	Exit       ExitConfig       `json:"exit"`
	Sizing     SizingConfig     `json:"sizing"`
	Risk       RiskConfig       `json:"risk"`
}

// IndicatorsConfig selects indicator periods and optional extras
type IndicatorsConfig struct {
	EMAPeriod   int     `json:"ema_period"`
	RSIPeriod   int     `json:"rsi_period"`
	RSIOversold float64 `json:"rsi_oversold"`

	UseOBV bool `json:"use_obv"`

	UseBollinger bool    `json:"use_bollinger"`
	BBPeriod     int     `json:"bb_period"`
	BBStdDev     float64 `json:"bb_std_dev"`

	UseMACD    bool `json:"use_macd"`
	MACDFast   int  `json:"macd_fast"`
	MACDSlow   int  `json:"macd_slow"`
	MACDSignal int  `json:"macd_signal"`
}

// EntryConfig toggles each entry condition independently; the entry signal
// is the conjunction of the enabled conditions.
type EntryConfig struct {
	PriceAboveEMA bool `json:"price_above_ema"`
	RSIOversold   bool `json:"rsi_oversold"`
	OBVRising     bool `json:"obv_rising"`
}

// ExitConfig holds the exit rule parameters
type ExitConfig struct {
	StopLossPercent   float64 `json:"stop_loss_percent"`
	TakeProfitPercent float64 `json:"take_profit_percent"`

	TrailingEnabled bool    `json:"trailing_enabled"`
	TrailPercent    float64 `json:"trail_percent"`

	MaxHoldMinutes int `json:"max_hold_minutes"`
}

// SizingConfig selects the position sizing method and its sub-parameters
type SizingConfig struct {
	Method          string  `json:"method"`
	MaxPositionSize float64 `json:"max_position_size"`

	// fixed
	FixedFraction float64 `json:"fixed_fraction"`

	// percent_risk
	RiskPerTrade float64 `json:"risk_per_trade"`

	// kelly
	KellyLookbackTrades int     `json:"kelly_lookback_trades"`
	MaxKellyFraction    float64 `json:"max_kelly_fraction"`

	// volatility_adjusted
	BaseSize             float64 `json:"base_size"`
	VolatilityLookback   int     `json:"volatility_lookback"`
	VolatilityMultiplier float64 `json:"volatility_multiplier"`
}

// RiskConfig holds the portfolio-level circuit breaker thresholds
type RiskConfig struct {
	DailyLossLimitPercent    float64 `json:"daily_loss_limit_percent"`
	MaxConsecutiveLosses     int     `json:"max_consecutive_losses"`
	MaxDrawdownPercent       float64 `json:"max_drawdown_percent"`
	ForceLiquidationDrawdown float64 `json:"force_liquidation_drawdown"`
}

// DefaultConfig returns a configuration mirroring the strategy defaults:
// EMA(20) trend filter, RSI(14) < 30, OBV rising, 0.5% stop, 1% target,
// 30 minute maximum hold, fixed 99% sizing.
func DefaultConfig() *Config {
	return &Config{
		Symbol:         DefaultSymbol,
		Interval:       DefaultInterval,
		InitialBalance: DefaultInitialCash,
		Indicators: IndicatorsConfig{
			EMAPeriod:   DefaultEMAPeriod,
			RSIPeriod:   DefaultRSIPeriod,
			RSIOversold: DefaultRSIOversold,
			UseOBV:      true,
			BBPeriod:    DefaultBBPeriod,
			BBStdDev:    DefaultBBStdDev,
			MACDFast:    DefaultMACDFast,
			MACDSlow:    DefaultMACDSlow,
			MACDSignal:  DefaultMACDSignal,
		},
		Entry: EntryConfig{
			PriceAboveEMA: true,
			RSIOversold:   true,
			OBVRising:     true,
		},
		Exit: ExitConfig{
			StopLossPercent:   DefaultStopLoss,
			TakeProfitPercent: DefaultTakeProfit,
			MaxHoldMinutes:    DefaultMaxHoldMins,
		},
		Sizing: SizingConfig{
			Method:          SizingMethodFixed,
			MaxPositionSize: DefaultMaxPosition,
			FixedFraction:   DefaultFixedFraction,
		},
		Risk: RiskConfig{
			DailyLossLimitPercent:    DefaultDailyLossLimit,
			MaxConsecutiveLosses:     DefaultMaxConsecLosses,
			MaxDrawdownPercent:       DefaultMaxDrawdown,
			ForceLiquidationDrawdown: DefaultForceLiquidation,
		},
	}
}

// LoadFromFile loads a configuration from a JSON file on top of the
// defaults, then applies environment overrides.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies a small set of environment overrides, useful
// when the same config file drives multiple sessions.
func (c *Config) applyEnvOverrides() {
	c.Symbol = getEnv("TRADING_SYMBOL", c.Symbol)
	c.Interval = getEnv("TRADING_INTERVAL", c.Interval)
	c.InitialBalance = getEnvFloat("INITIAL_BALANCE", c.InitialBalance)
	c.Sizing.Method = getEnv("SIZING_METHOD", c.Sizing.Method)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
