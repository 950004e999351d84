package indicators

import (
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// MACD computes the Moving Average Convergence Divergence line, its signal
// line, and the histogram, all from streaming EMA state.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
}

// NewMACD creates a new MACD instance with specified fast, slow, and signal periods
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:   NewEMA(fast),
		slow:   NewEMA(slow),
		signal: NewEMA(signal),
	}
}

// UpdateBar advances the fast and slow EMAs with the latest close,
// then feeds the MACD line into the signal EMA once both are seeded
func (m *MACD) UpdateBar(bar types.OHLCV) {
	m.fast.UpdateBar(bar)
	m.slow.UpdateBar(bar)

	if m.fast.Ready() && m.slow.Ready() {
		macdLine := m.fast.GetLastValue() - m.slow.GetLastValue()
		m.signal.UpdateBar(types.OHLCV{Close: macdLine})
	}
}

// Ready returns whether the slow EMA and the signal EMA are both seeded
func (m *MACD) Ready() bool {
	return m.slow.Ready() && m.signal.Ready()
}

// Values returns the MACD line, signal line, and histogram
func (m *MACD) Values() (macdLine, signalLine, histogram float64) {
	if !m.fast.Ready() || !m.slow.Ready() {
		return 0, 0, 0
	}

	macdLine = m.fast.GetLastValue() - m.slow.GetLastValue()
	signalLine = m.signal.GetLastValue()
	histogram = macdLine - signalLine
	return macdLine, signalLine, histogram
}

// GetName returns the indicator name
func (m *MACD) GetName() string {
	return "MACD"
}

// GetRequiredPeriods returns the minimum number of bars needed
func (m *MACD) GetRequiredPeriods() int {
	return m.slow.GetRequiredPeriods() + m.signal.GetRequiredPeriods()
}

// ResetState resets all EMA state for new data periods
func (m *MACD) ResetState() {
	m.fast.ResetState()
	m.slow.ResetState()
	m.signal.ResetState()
}
