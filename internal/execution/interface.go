package execution

import (
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Broker is the order execution collaborator. It accepts intents and
// reports fills asynchronously; the engine drains pending fills at the
// start of the next bar, never mid-computation. Slippage and commission
// are the broker's concern, reflected in the fill price.
type Broker interface {
	// SubmitOpen submits an open-position order intent
	SubmitOpen(intent types.OpenOrderIntent) error

	// SubmitClose submits a close-position order intent
	SubmitClose(intent types.CloseOrderIntent) error

	// DrainFills returns and clears the fills accumulated since the last
	// drain, in execution order
	DrainFills() []types.Fill

	// GetName returns the broker name
	GetName() string
}
