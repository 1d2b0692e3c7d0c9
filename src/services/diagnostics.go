package services

import (
	"sort"
	"time"

	"github.com/quantfeeds/candlekeeper/src/models"
	"github.com/quantfeeds/candlekeeper/src/store"
)

// SampleInterval is the expected spacing between consecutive candles.
const SampleInterval = 5 * time.Minute

// DiagnosticsService runs read-only consistency analyses over the store.
type DiagnosticsService struct {
	store *store.CandleStore
}

func NewDiagnosticsService(candleStore *store.CandleStore) *DiagnosticsService {
	return &DiagnosticsService{store: candleStore}
}

// GapReport is one symbol's entry in the CheckGaps report.
type GapReport struct {
	Status  string `json:"status"`
	Stored  int    `json:"stored"`
	Message string `json:"message,omitempty"`
}

// CheckGaps scans every symbol for missing samples: the snapshot is
// sorted ascending by time and any consecutive delta other than exactly
// SampleInterval is a gap. A symbol whose timestamps fail to parse gets
// an error entry; the scan of the other symbols continues.
func (s *DiagnosticsService) CheckGaps() map[string]GapReport {
	report := make(map[string]GapReport)

	s.store.ForEachSymbol(func(symbol string, candles []models.Candle) {
		report[symbol] = checkSymbolGaps(candles)
	})

	return report
}

func checkSymbolGaps(candles []models.Candle) GapReport {
	stored := len(candles)
	if stored < 2 {
		return GapReport{Status: "ok", Stored: stored}
	}

	times := make([]time.Time, 0, stored)
	for _, c := range candles {
		ts, err := c.ParseTime()
		if err != nil {
			return GapReport{Status: "error", Stored: stored, Message: err.Error()}
		}

		times = append(times, ts)
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	for i := 1; i < len(times); i++ {
		if times[i].Sub(times[i-1]) != SampleInterval {
			return GapReport{Status: "gap_detected", Stored: stored}
		}
	}

	return GapReport{Status: "ok", Stored: stored}
}

// LastUpdateReport is one symbol's entry in the LastUpdate report.
// LastUpdate is null for an empty window.
type LastUpdateReport struct {
	LastUpdate *string `json:"last_update"`
	Stored     int     `json:"stored"`
}

// LastUpdate reports each symbol's latest candle timestamp via a full
// scan; storage order is never assumed to be time-sorted. Canonical
// timestamps compare chronologically as strings.
func (s *DiagnosticsService) LastUpdate() map[string]LastUpdateReport {
	report := make(map[string]LastUpdateReport)

	s.store.ForEachSymbol(func(symbol string, candles []models.Candle) {
		var latest *string
		for i := range candles {
			if latest == nil || candles[i].Time > *latest {
				ts := candles[i].Time
				latest = &ts
			}
		}

		report[symbol] = LastUpdateReport{LastUpdate: latest, Stored: len(candles)}
	})

	return report
}
