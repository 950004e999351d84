package indicators

import (
	"fmt"
	"time"

	engerrors "github.com/ducminhle1904/btc-intraday-bot/internal/errors"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// EngineConfig selects which indicators the engine maintains and their
// periods. Bollinger Bands and MACD are optional extras.
type EngineConfig struct {
	EMAPeriod int
	RSIPeriod int

	UseOBV bool

	UseBollinger bool
	BBPeriod     int
	BBStdDev     float64

	UseMACD    bool
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// Snapshot is a read-only view of all indicator values after one bar.
// Ready is false until every configured indicator has consumed its warmup.
type Snapshot struct {
	Timestamp time.Time
	Ready     bool

	EMA float64
	RSI float64

	OBV       float64
	OBVRising bool

	BBUpper  float64
	BBMiddle float64
	BBLower  float64

	MACDLine      float64
	MACDSignal    float64
	MACDHistogram float64
}

// Engine owns the streaming state for the configured indicator set and
// advances all of it exactly once per bar.
type Engine struct {
	config EngineConfig

	ema  *EMA
	rsi  *RSI
	obv  *OBV
	bb   *BollingerBands
	macd *MACD

	lastTimestamp time.Time
	barsSeen      int
}

// NewEngine creates a new indicator engine for the given configuration
func NewEngine(config EngineConfig) *Engine {
	e := &Engine{
		config: config,
		ema:    NewEMA(config.EMAPeriod),
		rsi:    NewRSI(config.RSIPeriod),
	}

	if config.UseOBV {
		e.obv = NewOBV()
	}
	if config.UseBollinger {
		e.bb = NewBollingerBands(config.BBPeriod, config.BBStdDev)
	}
	if config.UseMACD {
		e.macd = NewMACD(config.MACDFast, config.MACDSlow, config.MACDSignal)
	}

	return e
}

// Update advances every configured indicator with one new bar and returns
// the resulting snapshot. Feeding a bar whose timestamp is not strictly
// after the previous bar is a contract violation.
func (e *Engine) Update(bar types.OHLCV) (Snapshot, error) {
	if e.barsSeen > 0 && !bar.Timestamp.After(e.lastTimestamp) {
		return Snapshot{}, engerrors.NewContractViolation("indicators", "Update",
			fmt.Sprintf("bar timestamp %s is not after previous bar %s",
				bar.Timestamp.Format(time.RFC3339), e.lastTimestamp.Format(time.RFC3339)))
	}
	e.lastTimestamp = bar.Timestamp
	e.barsSeen++

	e.ema.UpdateBar(bar)
	e.rsi.UpdateBar(bar)
	if e.obv != nil {
		e.obv.UpdateBar(bar)
	}
	if e.bb != nil {
		e.bb.UpdateBar(bar)
	}
	if e.macd != nil {
		e.macd.UpdateBar(bar)
	}

	return e.snapshot(bar.Timestamp), nil
}

// snapshot assembles the read-only indicator view for the current bar
func (e *Engine) snapshot(ts time.Time) Snapshot {
	snap := Snapshot{
		Timestamp: ts,
		Ready:     e.ready(),
		EMA:       e.ema.GetLastValue(),
		RSI:       e.rsi.GetLastValue(),
	}

	if e.obv != nil {
		snap.OBV = e.obv.GetLastValue()
		snap.OBVRising = e.obv.Rising()
	}
	if e.bb != nil {
		snap.BBUpper, snap.BBMiddle, snap.BBLower = e.bb.Bands()
	}
	if e.macd != nil {
		snap.MACDLine, snap.MACDSignal, snap.MACDHistogram = e.macd.Values()
	}

	return snap
}

// ready reports whether every configured indicator has finished warmup
func (e *Engine) ready() bool {
	ready := e.ema.Ready() && e.rsi.Ready()
	if e.obv != nil {
		ready = ready && e.obv.Ready()
	}
	if e.bb != nil {
		ready = ready && e.bb.Ready()
	}
	if e.macd != nil {
		ready = ready && e.macd.Ready()
	}
	return ready
}

// WarmupBars returns the number of bars needed before the engine is ready
func (e *Engine) WarmupBars() int {
	warmup := e.ema.GetRequiredPeriods()
	if p := e.rsi.GetRequiredPeriods(); p > warmup {
		warmup = p
	}
	if e.obv != nil {
		if p := e.obv.GetRequiredPeriods(); p > warmup {
			warmup = p
		}
	}
	if e.bb != nil {
		if p := e.bb.GetRequiredPeriods(); p > warmup {
			warmup = p
		}
	}
	if e.macd != nil {
		if p := e.macd.GetRequiredPeriods(); p > warmup {
			warmup = p
		}
	}
	return warmup
}

// BarsSeen returns the number of bars the engine has consumed
func (e *Engine) BarsSeen() int {
	return e.barsSeen
}

// ResetState resets every indicator for a new data period
func (e *Engine) ResetState() {
	e.ema.ResetState()
	e.rsi.ResetState()
	if e.obv != nil {
		e.obv.ResetState()
	}
	if e.bb != nil {
		e.bb.ResetState()
	}
	if e.macd != nil {
		e.macd.ResetState()
	}
	e.lastTimestamp = time.Time{}
	e.barsSeen = 0
}
