package backtest

import (
	"math"
	"time"
)

// CalculateSharpeRatio computes the per-trade Sharpe ratio from the
// realized trade returns, with a zero risk-free rate
func (r *Results) CalculateSharpeRatio() float64 {
	if len(r.Trades) == 0 {
		return 0
	}

	returns := make([]float64, 0, len(r.Trades))
	for _, trade := range r.Trades {
		returns = append(returns, trade.ReturnPct)
	}

	avgReturn := 0.0
	for _, ret := range returns {
		avgReturn += ret
	}
	avgReturn /= float64(len(returns))

	variance := 0.0
	for _, ret := range returns {
		variance += math.Pow(ret-avgReturn, 2)
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev < 1e-10 {
		return 0
	}
	return avgReturn / stdDev
}

// CalculateSortinoRatio computes the Sortino ratio from the equity curve:
// average bar return over the downside deviation
func (r *Results) CalculateSortinoRatio() float64 {
	if len(r.EquityCurve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(r.EquityCurve)-1)
	for i := 1; i < len(r.EquityCurve); i++ {
		prev := r.EquityCurve[i-1].Equity
		if prev > 0 {
			returns = append(returns, (r.EquityCurve[i].Equity-prev)/prev)
		}
	}
	if len(returns) == 0 {
		return 0
	}

	avgReturn := 0.0
	for _, ret := range returns {
		avgReturn += ret
	}
	avgReturn /= float64(len(returns))

	downside := 0.0
	for _, ret := range returns {
		if ret < 0 {
			downside += ret * ret
		}
	}
	downside = math.Sqrt(downside / float64(len(returns)))

	if downside < 1e-10 {
		return 0
	}
	return avgReturn / downside
}

// CalculateProfitFactor computes gross profit over gross loss
func (r *Results) CalculateProfitFactor() float64 {
	totalProfit := 0.0
	totalLoss := 0.0
	for _, trade := range r.Trades {
		if trade.PnL > 0 {
			totalProfit += trade.PnL
		} else {
			totalLoss += math.Abs(trade.PnL)
		}
	}

	if totalLoss == 0 {
		if totalProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return totalProfit / totalLoss
}

// CalculateWinRate computes the winning percentage of closed trades
func (r *Results) CalculateWinRate() float64 {
	if len(r.Trades) == 0 {
		return 0
	}
	wins := 0
	for _, trade := range r.Trades {
		if trade.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(r.Trades)) * 100
}

// CalculateMaxDrawdown computes the largest peak-to-trough decline of the
// realized equity curve
func (r *Results) CalculateMaxDrawdown() float64 {
	maxDD := 0.0
	peak := r.StartBalance
	for _, point := range r.EquityCurve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if peak > 0 {
			dd := (peak - point.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// CalculateAnnualizedReturn computes the compound annual growth rate over
// the backtest span
func (r *Results) CalculateAnnualizedReturn() float64 {
	if len(r.EquityCurve) < 2 || r.StartBalance <= 0 {
		return 0
	}

	first := r.EquityCurve[0]
	last := r.EquityCurve[len(r.EquityCurve)-1]
	years := last.Timestamp.Sub(first.Timestamp).Hours() / (24 * 365.25)
	if years <= 0 {
		return 0
	}
	return math.Pow(r.EndBalance/r.StartBalance, 1.0/years) - 1.0
}

// UpdateMetrics recomputes every derived metric from the raw run data
func (r *Results) UpdateMetrics() {
	r.SharpeRatio = r.CalculateSharpeRatio()
	r.SortinoRatio = r.CalculateSortinoRatio()
	r.ProfitFactor = r.CalculateProfitFactor()
	r.WinRate = r.CalculateWinRate()
	r.MaxDrawdown = r.CalculateMaxDrawdown()
	r.AnnualizedReturn = r.CalculateAnnualizedReturn()

	wins := 0
	for _, trade := range r.Trades {
		if trade.PnL > 0 {
			wins++
		}
	}
	r.TotalTrades = len(r.Trades)
	r.WinningTrades = wins
	r.LosingTrades = r.TotalTrades - wins
}

// AverageHoldTime returns the mean time in position across closed trades
func (r *Results) AverageHoldTime() time.Duration {
	if len(r.Trades) == 0 {
		return 0
	}
	var total time.Duration
	for _, trade := range r.Trades {
		total += trade.ExitTime.Sub(trade.EntryTime)
	}
	return total / time.Duration(len(r.Trades))
}
