package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

func TestSimulatedBroker_OpenFillIncludesCosts(t *testing.T) {
	broker := NewSimulatedBroker(0.0005, 0.001)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	broker.OnBar(types.OHLCV{Close: 50000, Timestamp: ts})

	err := broker.SubmitOpen(types.OpenOrderIntent{Symbol: "BTCUSD", SizeFraction: 0.5})
	require.NoError(t, err)

	fills := broker.DrainFills()
	require.Len(t, fills, 1)
	assert.InDelta(t, 50000*1.0015, fills[0].Price, 1e-6)
	assert.Equal(t, 0.5, fills[0].Quantity)
	assert.False(t, fills[0].IsClose)

	// Drained queue stays empty
	assert.Empty(t, broker.DrainFills())
}

func TestSimulatedBroker_CloseFillEchoesReason(t *testing.T) {
	broker := NewSimulatedBroker(0.0005, 0.001)
	broker.OnBar(types.OHLCV{Close: 50000, Timestamp: time.Now()})

	err := broker.SubmitClose(types.CloseOrderIntent{Symbol: "BTCUSD", Reason: types.ExitTakeProfit})
	require.NoError(t, err)

	fills := broker.DrainFills()
	require.Len(t, fills, 1)
	assert.True(t, fills[0].IsClose)
	assert.Equal(t, types.ExitTakeProfit, fills[0].Reason)
	assert.InDelta(t, 50000*0.9985, fills[0].Price, 1e-6)
}

func TestSimulatedBroker_Rejections(t *testing.T) {
	broker := NewSimulatedBroker(0, 0)
	broker.OnBar(types.OHLCV{Close: 100, Timestamp: time.Now()})

	broker.SetRejectOpens(true)
	assert.Error(t, broker.SubmitOpen(types.OpenOrderIntent{Symbol: "BTCUSD"}))

	broker.SetRejectCloses(true)
	assert.Error(t, broker.SubmitClose(types.CloseOrderIntent{Symbol: "BTCUSD"}))

	assert.Empty(t, broker.DrainFills())
}

func TestSimulatedBroker_NoMarketData(t *testing.T) {
	broker := NewSimulatedBroker(0, 0)
	assert.Error(t, broker.SubmitOpen(types.OpenOrderIntent{Symbol: "BTCUSD"}))
}
