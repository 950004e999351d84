package execution

import (
	"fmt"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// SimulatedBroker fills intents against the most recent bar close with
// configurable slippage and commission, both folded into an all-in fill
// price. Fills queue until the next DrainFills call, which models the
// one-bar reconciliation delay of a real execution venue.
type SimulatedBroker struct {
	slippage   float64
	commission float64

	lastBar  types.OHLCV
	hasBar   bool
	pending  []types.Fill

	rejectOpens  bool
	rejectCloses bool
}

// NewSimulatedBroker creates a simulated broker with fractional slippage
// and commission rates (e.g. 0.0005 and 0.001)
func NewSimulatedBroker(slippage, commission float64) *SimulatedBroker {
	return &SimulatedBroker{
		slippage:   slippage,
		commission: commission,
	}
}

// GetName returns the broker name
func (b *SimulatedBroker) GetName() string {
	return "Simulated Broker"
}

// OnBar gives the broker the bar that intents submitted during this bar
// will fill against
func (b *SimulatedBroker) OnBar(bar types.OHLCV) {
	b.lastBar = bar
	b.hasBar = true
}

// SetRejectOpens makes subsequent open submissions fail, for testing the
// rejection path
func (b *SimulatedBroker) SetRejectOpens(reject bool) {
	b.rejectOpens = reject
}

// SetRejectCloses makes subsequent close submissions fail
func (b *SimulatedBroker) SetRejectCloses(reject bool) {
	b.rejectCloses = reject
}

// SubmitOpen fills a buy at close * (1 + slippage + commission)
func (b *SimulatedBroker) SubmitOpen(intent types.OpenOrderIntent) error {
	if b.rejectOpens {
		return fmt.Errorf("open order rejected for %s", intent.Symbol)
	}
	if !b.hasBar {
		return fmt.Errorf("no market data for %s", intent.Symbol)
	}

	price := b.lastBar.Close * (1 + b.slippage + b.commission)
	b.pending = append(b.pending, types.Fill{
		Symbol:    intent.Symbol,
		Price:     price,
		Quantity:  intent.SizeFraction,
		Timestamp: b.lastBar.Timestamp,
	})
	return nil
}

// SubmitClose fills a sell at close * (1 - slippage - commission), echoing
// the triggering reason for the audit trail
func (b *SimulatedBroker) SubmitClose(intent types.CloseOrderIntent) error {
	if b.rejectCloses {
		return fmt.Errorf("close order rejected for %s", intent.Symbol)
	}
	if !b.hasBar {
		return fmt.Errorf("no market data for %s", intent.Symbol)
	}

	price := b.lastBar.Close * (1 - b.slippage - b.commission)
	b.pending = append(b.pending, types.Fill{
		Symbol:    intent.Symbol,
		Price:     price,
		Timestamp: b.lastBar.Timestamp,
		IsClose:   true,
		Reason:    intent.Reason,
	})
	return nil
}

// DrainFills returns the queued fills and clears the queue
func (b *SimulatedBroker) DrainFills() []types.Fill {
	fills := b.pending
	b.pending = nil
	return fills
}
