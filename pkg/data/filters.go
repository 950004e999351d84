package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Filter provides time-based slicing of bar series
type Filter struct{}

// NewFilter creates a new bar filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByPeriod keeps the trailing period of the series, measured back
// from the last bar
func (f *Filter) FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV {
	if period <= 0 || len(data) == 0 {
		return data
	}

	cutoff := data[len(data)-1].Timestamp.Add(-period)
	for i, candle := range data {
		if !candle.Timestamp.Before(cutoff) {
			return data[i:]
		}
	}
	return data
}

// FilterByDateRange keeps bars within [start, end] inclusive. A zero
// start or end leaves that side unbounded.
func (f *Filter) FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV {
	if len(data) == 0 {
		return data
	}

	var filtered []types.OHLCV
	for _, candle := range data {
		if !start.IsZero() && candle.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && candle.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, candle)
	}
	return filtered
}

// ValidateTimeSequence ensures bars are strictly chronological
func (f *Filter) ValidateTimeSequence(data []types.OHLCV) error {
	for i := 1; i < len(data); i++ {
		if !data[i].Timestamp.After(data[i-1].Timestamp) {
			return fmt.Errorf("timestamp at index %d (%s) is not after index %d (%s)",
				i, data[i].Timestamp.Format(time.RFC3339),
				i-1, data[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// ParseTrailingPeriod parses period strings like "7d", "30d" or any raw
// Go duration such as "168h"
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		nStr := strings.TrimSuffix(s, "d")
		if nStr == "" {
			return 0, false
		}
		n, err := strconv.Atoi(nStr)
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
