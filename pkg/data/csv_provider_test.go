package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataDefaultFormat(t *testing.T) {
	path := writeTempCSV(t, `timestamp,open,high,low,close,volume
2024-06-01 12:00:00,100,101,99,100.5,1500
2024-06-01 12:05:00,100.5,102,100,101.5,1800
`)

	provider := NewCSVProvider()
	bars, err := provider.LoadData(path)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, 101.5, bars[1].Close)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC), bars[1].Timestamp)
	require.NoError(t, provider.ValidateData(bars))
}

func TestLoadDataUnixMillisFormat(t *testing.T) {
	path := writeTempCSV(t, `timestamp,open,high,low,close,volume
1717243200000,100,101,99,100.5,1500
`)

	provider := NewCSVProviderWithFormat(UnixMillisCSVFormat)
	bars, err := provider.LoadData(path)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), bars[0].Timestamp)
}

func TestLoadDataSkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, `timestamp,open,high,low,close,volume
2024-06-01 12:00:00,100,101,99,100.5,1500
not-a-date,100,101,99,100.5,1500
2024-06-01 12:05:00,abc,101,99,100.5,1500
2024-06-01 12:10:00,100,95,99,100.5,1500
2024-06-01 12:15:00,100,101,99,100.5,1500
`)

	provider := NewCSVProvider()
	bars, err := provider.LoadData(path)
	require.NoError(t, err)

	// Bad timestamp, bad open, incoherent high: all skipped
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 15, 0, 0, time.UTC), bars[1].Timestamp)
}

func TestLoadDataMissingFile(t *testing.T) {
	provider := NewCSVProvider()
	_, err := provider.LoadData(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestValidateDataRejectsOutOfOrder(t *testing.T) {
	provider := NewCSVProvider()
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	bars := []types.OHLCV{
		{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1, Timestamp: ts},
		{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1, Timestamp: ts},
	}
	require.Error(t, provider.ValidateData(bars))

	require.Error(t, provider.ValidateData(nil))
}

func TestCachedProviderHitsDiskOnce(t *testing.T) {
	path := writeTempCSV(t, `timestamp,open,high,low,close,volume
2024-06-01 12:00:00,100,101,99,100.5,1500
`)

	provider := NewCachedProvider(NewCSVProvider())
	first, err := provider.LoadData(path)
	require.NoError(t, err)

	// Delete the file: the second load must come from the cache
	require.NoError(t, os.Remove(path))
	second, err := provider.LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	provider.ClearCache()
	_, err = provider.LoadData(path)
	require.Error(t, err)
}
