package sizing

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/internal/risk"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Method is the closed set of sizing policies. Configuration selects one
// by name; everything else switches exhaustively over this enum.
type Method int

const (
	MethodFixed Method = iota
	MethodPercentRisk
	MethodKelly
	MethodVolatilityAdjusted
)

func (m Method) String() string {
	switch m {
	case MethodFixed:
		return "FIXED"
	case MethodPercentRisk:
		return "PERCENT_RISK"
	case MethodKelly:
		return "KELLY"
	case MethodVolatilityAdjusted:
		return "VOLATILITY_ADJUSTED"
	default:
		return "UNKNOWN"
	}
}

// ParseMethod maps a configured method name onto the enum
func ParseMethod(name string) (Method, error) {
	switch name {
	case config.SizingMethodFixed:
		return MethodFixed, nil
	case config.SizingMethodPercentRisk:
		return MethodPercentRisk, nil
	case config.SizingMethodKelly:
		return MethodKelly, nil
	case config.SizingMethodVolatilityAdjusted:
		return MethodVolatilityAdjusted, nil
	default:
		return 0, fmt.Errorf("unknown sizing method: %q", name)
	}
}

// Sizer computes the target position size, as a fraction of capital, for a
// new entry. Every method clamps to [0, maxPositionSize]; a result of 0
// means skip the entry, not an error.
type Sizer struct {
	method Method
	cfg    config.SizingConfig

	// stop distance ties PercentRisk sizing to the configured stop
	stopLossPercent float64

	// rolling close-to-close log returns for VolatilityAdjusted
	returns    []float64
	lastClose  float64
	hasClose   bool
	volBaseline float64
	volSamples  int
}

// NewSizer creates a sizer for the configured method. The stop-loss
// percent comes from the exit configuration so PercentRisk loses exactly
// riskPerTrade of equity on a stop-out.
func NewSizer(cfg config.SizingConfig, stopLossPercent float64) (*Sizer, error) {
	method, err := ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	if method == MethodPercentRisk && stopLossPercent <= 0 {
		return nil, fmt.Errorf("percent_risk sizing requires a positive stop loss percent")
	}

	return &Sizer{
		method:          method,
		cfg:             cfg,
		stopLossPercent: stopLossPercent,
	}, nil
}

// Method returns the active sizing method
func (s *Sizer) Method() Method {
	return s.method
}

// OnBar feeds the sizer one bar so VolatilityAdjusted can track realized
// volatility. The other methods ignore it.
func (s *Sizer) OnBar(bar types.OHLCV) {
	if s.method != MethodVolatilityAdjusted {
		return
	}

	if s.hasClose && s.lastClose > 0 && bar.Close > 0 {
		s.returns = append(s.returns, math.Log(bar.Close/s.lastClose))
		if len(s.returns) > s.cfg.VolatilityLookback {
			s.returns = s.returns[1:]
		}
		if len(s.returns) == s.cfg.VolatilityLookback {
			s.trackBaseline(s.realizedVol())
		}
	}
	s.lastClose = bar.Close
	s.hasClose = true
}

// ComputeSize returns the target entry size for the current portfolio
func (s *Sizer) ComputeSize(portfolio risk.PortfolioState) float64 {
	var size float64

	switch s.method {
	case MethodFixed:
		size = s.cfg.FixedFraction
	case MethodPercentRisk:
		size = s.cfg.RiskPerTrade / s.stopLossPercent
	case MethodKelly:
		size = s.kellySize(portfolio)
	case MethodVolatilityAdjusted:
		size = s.volatilityAdjustedSize()
	}

	return s.clamp(size)
}

// kellySize computes the Kelly fraction from the trailing lookback trades.
// With fewer completed trades than the lookback it falls back to the fixed
// fraction (a policy degeneracy, recovered locally).
func (s *Sizer) kellySize(portfolio risk.PortfolioState) float64 {
	trades := portfolio.ClosedTrades
	if len(trades) < s.cfg.KellyLookbackTrades {
		return s.cfg.FixedFraction
	}

	recent := trades[len(trades)-s.cfg.KellyLookbackTrades:]
	wins := 0
	sumWin := 0.0
	sumLoss := 0.0
	for _, trade := range recent {
		if trade.PnL > 0 {
			wins++
			sumWin += trade.PnL
		} else {
			sumLoss += math.Abs(trade.PnL)
		}
	}

	winRate := float64(wins) / float64(len(recent))
	if wins == 0 {
		return 0
	}

	losses := len(recent) - wins
	if losses == 0 || sumLoss == 0 {
		// No losing trades in the window: payoff ratio diverges and the
		// Kelly fraction degenerates to the win rate.
		return math.Min(winRate, s.cfg.MaxKellyFraction)
	}

	avgWin := sumWin / float64(wins)
	avgLoss := sumLoss / float64(losses)
	payoff := avgWin / avgLoss

	kelly := winRate - (1-winRate)/payoff
	if kelly < 0 {
		return 0
	}
	return math.Min(kelly, s.cfg.MaxKellyFraction)
}

// volatilityAdjustedSize scales the base size inversely with current
// realized volatility relative to its smoothed baseline, bounded to
// [base/multiplier, base*multiplier]. Until a full lookback window exists
// it returns the base size unscaled.
func (s *Sizer) volatilityAdjustedSize() float64 {
	if len(s.returns) < s.cfg.VolatilityLookback || s.volBaseline <= 0 {
		return s.cfg.BaseSize
	}

	vol := s.realizedVol()
	if vol <= 0 {
		return s.cfg.BaseSize * s.cfg.VolatilityMultiplier
	}

	scale := s.volBaseline / vol
	if scale > s.cfg.VolatilityMultiplier {
		scale = s.cfg.VolatilityMultiplier
	}
	if scale < 1/s.cfg.VolatilityMultiplier {
		scale = 1 / s.cfg.VolatilityMultiplier
	}

	return s.cfg.BaseSize * scale
}

// realizedVol is the standard deviation of the rolling return window
func (s *Sizer) realizedVol() float64 {
	mean := 0.0
	for _, r := range s.returns {
		mean += r
	}
	mean /= float64(len(s.returns))

	variance := 0.0
	for _, r := range s.returns {
		variance += math.Pow(r-mean, 2)
	}
	variance /= float64(len(s.returns))
	return math.Sqrt(variance)
}

// trackBaseline smooths realized volatility into a slow-moving reference
func (s *Sizer) trackBaseline(vol float64) {
	s.volSamples++
	if s.volSamples == 1 {
		s.volBaseline = vol
		return
	}
	alpha := 2.0 / float64(s.cfg.VolatilityLookback+1)
	s.volBaseline = vol*alpha + s.volBaseline*(1-alpha)
}

// clamp bounds a size to [0, maxPositionSize]
func (s *Sizer) clamp(size float64) float64 {
	if size < 0 {
		return 0
	}
	if size > s.cfg.MaxPositionSize {
		return s.cfg.MaxPositionSize
	}
	return size
}
