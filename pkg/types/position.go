package types

import "time"

// PositionStatus is the lifecycle state of the single open position
type PositionStatus int

const (
	StatusNone PositionStatus = iota
	StatusOpen
	StatusClosing
	StatusClosed
)

func (s PositionStatus) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusOpen:
		return "OPEN"
	case StatusClosing:
		return "CLOSING"
	case StatusClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ExitReason identifies which exit rule closed a position. The numeric
// order is the evaluation priority: on a gap bar that qualifies for both
// the stop and the target, the stop wins.
type ExitReason int

const (
	ExitStopLoss ExitReason = iota
	ExitTakeProfit
	ExitTrailingStop
	ExitTimeLimit
	ExitForceLiquidation
	ExitEndOfData
)

func (r ExitReason) String() string {
	switch r {
	case ExitStopLoss:
		return "STOP_LOSS"
	case ExitTakeProfit:
		return "TAKE_PROFIT"
	case ExitTrailingStop:
		return "TRAILING_STOP"
	case ExitTimeLimit:
		return "TIME_EXIT"
	case ExitForceLiquidation:
		return "FORCE_LIQUIDATION"
	case ExitEndOfData:
		return "END_OF_DATA"
	default:
		return "UNKNOWN"
	}
}

// Position is the single open position. At most one exists at a time;
// it is created on entry acceptance and archived once closed.
type Position struct {
	Symbol    string
	Direction Direction

	EntryPrice float64
	EntryTime  time.Time
	Size       float64 // fraction of capital

	StopPrice        float64 // current stop; only ever ratchets upward
	InitialStopPrice float64 // stop as computed at entry
	TakeProfitPrice  float64

	TrailingEnabled bool
	TrailAnchor     float64 // highest high seen while open

	Status PositionStatus
}
