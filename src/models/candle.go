package models

import (
	"fmt"
	"sort"
	"time"
)

// TimeLayout is the canonical timestamp format carried on a Candle:
// RFC3339 at second precision, UTC, 'Z' suffixed.
const TimeLayout = "2006-01-02T15:04:05Z"

// Candle is one OHLCV sample for a symbol at a point in time. It is a
// value type: windows hold copies, never shared references.
type Candle struct {
	Time   string  `json:"time" csv:"time"`
	Open   float64 `json:"open" csv:"open"`
	High   float64 `json:"high" csv:"high"`
	Low    float64 `json:"low" csv:"low"`
	Close  float64 `json:"close" csv:"close"`
	Volume float64 `json:"volume" csv:"volume"`
}

// ParseTime parses the candle timestamp into a UTC instant.
func (c Candle) ParseTime() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, c.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse candle time %q: %w", c.Time, err)
	}

	return ts.UTC(), nil
}

var providerTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// NormalizeTimestamp converts an upstream datetime string into the
// canonical TimeLayout form.
func NormalizeTimestamp(raw string) (string, error) {
	for _, layout := range providerTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC().Format(TimeLayout), nil
		}
	}

	return "", fmt.Errorf("unrecognized timestamp %q", raw)
}

// SortDescendingByTime orders candles newest first, in place. This is a
// display-time sort: storage order is arrival order and may differ.
// Candles whose timestamps fail to parse fall back to string comparison;
// the sort is stable, so equal timestamps keep their arrival order.
func SortDescendingByTime(candles []Candle) {
	sort.SliceStable(candles, func(i, j int) bool {
		ti, errI := candles[i].ParseTime()
		tj, errJ := candles[j].ParseTime()
		if errI != nil || errJ != nil {
			return candles[i].Time > candles[j].Time
		}

		return ti.After(tj)
	})
}
