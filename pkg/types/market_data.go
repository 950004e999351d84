package types

import "time"

// OHLCV is one consolidated price bar. Bars arrive in strictly increasing
// timestamp order; the feed never duplicates or reorders them.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Direction of a position. The engine is long-only but the wire types keep
// the field so the execution collaborator does not have to assume it.
type Direction int

const (
	DirectionLong Direction = iota
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "LONG"
	case DirectionShort:
		return "SHORT"
	default:
		return "UNKNOWN"
	}
}
