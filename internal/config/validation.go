package config

import (
	"fmt"
)

// Validation bounds for configuration parameters
const (
	MinEMAPeriod  = 1
	MinRSIPeriod  = 2
	MinBBPeriod   = 2
	MaxThreshold  = 1.0 // Fractional percentages live in (0, 1]
	MaxRSILevel   = 100.0
	MinHoldMins   = 1
)

// Validate performs comprehensive validation on the configuration. A nil
// return means every parameter is usable and the config can be frozen for
// the session.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be positive, got: %.2f", c.InitialBalance)
	}

	if err := c.validateIndicators(); err != nil {
		return err
	}
	if err := c.validateExit(); err != nil {
		return err
	}
	if err := c.validateSizing(); err != nil {
		return err
	}
	return c.validateRisk()
}

func (c *Config) validateIndicators() error {
	ind := c.Indicators

	if ind.EMAPeriod < MinEMAPeriod {
		return fmt.Errorf("EMA period must be at least %d, got: %d", MinEMAPeriod, ind.EMAPeriod)
	}
	if ind.RSIPeriod < MinRSIPeriod {
		return fmt.Errorf("RSI period must be at least %d, got: %d", MinRSIPeriod, ind.RSIPeriod)
	}
	if ind.RSIOversold <= 0 || ind.RSIOversold >= MaxRSILevel {
		return fmt.Errorf("RSI oversold threshold must be between 0 and %.0f, got: %.2f", MaxRSILevel, ind.RSIOversold)
	}

	if ind.UseBollinger {
		if ind.BBPeriod < MinBBPeriod {
			return fmt.Errorf("Bollinger period must be at least %d, got: %d", MinBBPeriod, ind.BBPeriod)
		}
		if ind.BBStdDev <= 0 {
			return fmt.Errorf("Bollinger std dev multiplier must be positive, got: %.2f", ind.BBStdDev)
		}
	}

	if ind.UseMACD {
		if ind.MACDFast <= 0 || ind.MACDSlow <= 0 || ind.MACDSignal <= 0 {
			return fmt.Errorf("MACD periods must be positive, got: %d/%d/%d", ind.MACDFast, ind.MACDSlow, ind.MACDSignal)
		}
		if ind.MACDFast >= ind.MACDSlow {
			return fmt.Errorf("MACD fast period must be below slow period, got: %d/%d", ind.MACDFast, ind.MACDSlow)
		}
	}

	if c.Entry.OBVRising && !ind.UseOBV {
		return fmt.Errorf("entry condition obv_rising requires use_obv")
	}

	return nil
}

func (c *Config) validateExit() error {
	exit := c.Exit

	if exit.StopLossPercent <= 0 || exit.StopLossPercent > MaxThreshold {
		return fmt.Errorf("stop loss percent must be within (0, %.2f], got: %.4f", MaxThreshold, exit.StopLossPercent)
	}
	if exit.TakeProfitPercent <= 0 || exit.TakeProfitPercent > MaxThreshold {
		return fmt.Errorf("take profit percent must be within (0, %.2f], got: %.4f", MaxThreshold, exit.TakeProfitPercent)
	}
	if exit.TrailingEnabled && (exit.TrailPercent <= 0 || exit.TrailPercent > MaxThreshold) {
		return fmt.Errorf("trail percent must be within (0, %.2f], got: %.4f", MaxThreshold, exit.TrailPercent)
	}
	if exit.MaxHoldMinutes < MinHoldMins {
		return fmt.Errorf("max hold minutes must be at least %d, got: %d", MinHoldMins, exit.MaxHoldMinutes)
	}

	return nil
}

func (c *Config) validateSizing() error {
	s := c.Sizing

	if s.MaxPositionSize <= 0 || s.MaxPositionSize > MaxThreshold {
		return fmt.Errorf("max position size must be within (0, %.2f], got: %.4f", MaxThreshold, s.MaxPositionSize)
	}

	switch s.Method {
	case SizingMethodFixed:
		if s.FixedFraction <= 0 || s.FixedFraction > MaxThreshold {
			return fmt.Errorf("fixed fraction must be within (0, %.2f], got: %.4f", MaxThreshold, s.FixedFraction)
		}
	case SizingMethodPercentRisk:
		if s.RiskPerTrade <= 0 || s.RiskPerTrade > MaxThreshold {
			return fmt.Errorf("risk per trade must be within (0, %.2f], got: %.4f", MaxThreshold, s.RiskPerTrade)
		}
	case SizingMethodKelly:
		if s.KellyLookbackTrades <= 0 {
			return fmt.Errorf("kelly lookback trades must be positive, got: %d", s.KellyLookbackTrades)
		}
		if s.MaxKellyFraction <= 0 || s.MaxKellyFraction > MaxThreshold {
			return fmt.Errorf("max kelly fraction must be within (0, %.2f], got: %.4f", MaxThreshold, s.MaxKellyFraction)
		}
		if s.FixedFraction <= 0 || s.FixedFraction > MaxThreshold {
			return fmt.Errorf("kelly fallback requires a valid fixed fraction, got: %.4f", s.FixedFraction)
		}
	case SizingMethodVolatilityAdjusted:
		if s.BaseSize <= 0 || s.BaseSize > MaxThreshold {
			return fmt.Errorf("base size must be within (0, %.2f], got: %.4f", MaxThreshold, s.BaseSize)
		}
		if s.VolatilityLookback <= 1 {
			return fmt.Errorf("volatility lookback must be above 1, got: %d", s.VolatilityLookback)
		}
		if s.VolatilityMultiplier <= 1 {
			return fmt.Errorf("volatility multiplier must be above 1, got: %.2f", s.VolatilityMultiplier)
		}
	default:
		return fmt.Errorf("unknown sizing method: %q", s.Method)
	}

	return nil
}

func (c *Config) validateRisk() error {
	r := c.Risk

	if r.DailyLossLimitPercent <= 0 || r.DailyLossLimitPercent > MaxThreshold {
		return fmt.Errorf("daily loss limit must be within (0, %.2f], got: %.4f", MaxThreshold, r.DailyLossLimitPercent)
	}
	if r.MaxConsecutiveLosses <= 0 {
		return fmt.Errorf("max consecutive losses must be positive, got: %d", r.MaxConsecutiveLosses)
	}
	if r.MaxDrawdownPercent <= 0 || r.MaxDrawdownPercent > MaxThreshold {
		return fmt.Errorf("max drawdown must be within (0, %.2f], got: %.4f", MaxThreshold, r.MaxDrawdownPercent)
	}
	if r.ForceLiquidationDrawdown <= 0 || r.ForceLiquidationDrawdown > MaxThreshold {
		return fmt.Errorf("force liquidation drawdown must be within (0, %.2f], got: %.4f", MaxThreshold, r.ForceLiquidationDrawdown)
	}
	if r.ForceLiquidationDrawdown < r.MaxDrawdownPercent {
		return fmt.Errorf("force liquidation drawdown %.4f must not be below the halt threshold %.4f",
			r.ForceLiquidationDrawdown, r.MaxDrawdownPercent)
	}

	return nil
}
