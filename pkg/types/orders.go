package types

import "time"

// OpenOrderIntent asks the execution collaborator to open a position.
// Slippage and commission are the collaborator's concern.
type OpenOrderIntent struct {
	Symbol       string
	Direction    Direction
	SizeFraction float64
	Timestamp    time.Time
}

// CloseOrderIntent asks the execution collaborator to close the open
// position, with the triggering rule attached for audit logging.
type CloseOrderIntent struct {
	Symbol    string
	Reason    ExitReason
	Timestamp time.Time
}

// Fill is an asynchronous execution report. Fills are consumed at the
// start of the next bar, never mid-computation.
type Fill struct {
	Symbol    string
	Price     float64
	Quantity  float64
	Timestamp time.Time
	IsClose   bool
	Reason    ExitReason // meaningful only when IsClose
}
