package data

import (
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Provider loads historical bars from some source
type Provider interface {
	// LoadData loads historical bars from the specified source
	LoadData(source string) ([]types.OHLCV, error)

	// ValidateData validates the integrity of the loaded bars
	ValidateData(data []types.OHLCV) error

	// GetName returns the name of the provider
	GetName() string
}

// Cache stores loaded bar series keyed by source
type Cache interface {
	// Get retrieves a series from the cache if available
	Get(key string) ([]types.OHLCV, bool)

	// Set stores a series in the cache
	Set(key string, data []types.OHLCV)

	// Clear removes all cached series
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// CSVColumnMapping defines the column positions and timestamp format of a
// CSV bar file
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int

	// DateFormat is a time.Parse layout; empty means the timestamp
	// column holds Unix milliseconds
	DateFormat string
}

// Predefined CSV formats
var (
	DefaultCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    5,
		MinColumns:   6,
		DateFormat:   "2006-01-02 15:04:05",
	}

	// UnixMillisCSVFormat matches exchange kline dumps where the first
	// column is a millisecond epoch
	UnixMillisCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    5,
		MinColumns:   6,
	}
)
