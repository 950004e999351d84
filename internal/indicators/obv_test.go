package indicators

import (
	"testing"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

func TestOBV_CumulativeValue(t *testing.T) {
	obv := NewOBV()

	bars := barsFromCloses(100, 101, 100, 100)
	for i := range bars {
		bars[i].Volume = 500.0
		obv.UpdateBar(bars[i])
	}

	// +500 (rise), -500 (fall), unchanged (flat) => 0
	if obv.GetLastValue() != 0 {
		t.Errorf("Expected OBV 0, got %f", obv.GetLastValue())
	}
}

func TestOBV_RisingIsStrict(t *testing.T) {
	obv := NewOBV()

	// Rise then flat: the flat bar leaves OBV unchanged, so Rising must
	// flip to false even though OBV has not dropped.
	bars := barsFromCloses(100, 101, 101)
	obv.UpdateBar(bars[0])
	obv.UpdateBar(bars[1])
	if !obv.Rising() {
		t.Error("Expected OBV rising after an up bar")
	}

	obv.UpdateBar(bars[2])
	if obv.Rising() {
		t.Error("Expected OBV not rising after a flat bar")
	}
}

func TestOBV_FallingBarSubtractsVolume(t *testing.T) {
	obv := NewOBV()

	obv.UpdateBar(types.OHLCV{Close: 100, Volume: 300})
	obv.UpdateBar(types.OHLCV{Close: 99, Volume: 300})

	if obv.GetLastValue() != -300 {
		t.Errorf("Expected OBV -300 after a down bar, got %f", obv.GetLastValue())
	}
	if obv.Rising() {
		t.Error("Expected OBV not rising after a down bar")
	}
}

func TestOBV_ReadyAfterThreeBars(t *testing.T) {
	obv := NewOBV()

	bars := barsFromCloses(100, 101, 102)
	obv.UpdateBar(bars[0])
	obv.UpdateBar(bars[1])
	if obv.Ready() {
		t.Error("OBV should not be ready before a bar-over-bar comparison exists")
	}

	obv.UpdateBar(bars[2])
	if !obv.Ready() {
		t.Error("OBV should be ready after three bars")
	}
}
