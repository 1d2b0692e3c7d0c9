package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/quantfeeds/candlekeeper/src/models"
	"github.com/quantfeeds/candlekeeper/src/store"
)

// rosterSymbols is the fixed set of pairs covered by SyncAll.
var rosterSymbols = []string{
	"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "AUDUSD", "USDCAD", "NZDUSD",
	"EURGBP", "EURJPY", "GBPJPY", "EURCHF", "AUDJPY", "CHFJPY", "EURAUD",
}

// SyncService reconciles symbol windows against the upstream provider.
// It is a writer of the store; the provider round trip always runs
// outside any store lock.
type SyncService struct {
	store    *store.CandleStore
	provider TimeSeriesProvider
}

func NewSyncService(candleStore *store.CandleStore, provider TimeSeriesProvider) *SyncService {
	return &SyncService{
		store:    candleStore,
		provider: provider,
	}
}

// SyncOne fetches a fresh batch for the symbol and atomically replaces
// its window, returning the count stored. The symbol must be exactly six
// characters, split 3+3 into the base/quote pair the provider
// understands. On any upstream failure the window is left untouched.
func (s *SyncService) SyncOne(ctx context.Context, symbol string) (int, error) {
	if len(symbol) != 6 {
		return 0, fmt.Errorf("SyncOne: %w: got %q", models.ErrInvalidSymbolFormat, symbol)
	}

	base, quote := symbol[:3], symbol[3:]

	resp, err := s.provider.FetchTimeSeries(ctx, base, quote)
	if err != nil {
		return 0, fmt.Errorf("SyncOne: %w: %v", models.ErrUpstream, err)
	}

	if resp.Status != "ok" {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("provider status %q", resp.Status)
		}

		return 0, fmt.Errorf("SyncOne: %w: %s", models.ErrUpstream, msg)
	}

	if resp.Values == nil {
		return 0, fmt.Errorf("SyncOne: %w: response missing values", models.ErrUpstream)
	}

	candles := mapRecords(symbol, resp.Values)

	s.store.ReplaceAll(symbol, candles)

	return len(candles), nil
}

// SyncResult is one symbol's entry in the SyncAll report.
type SyncResult struct {
	Status  string `json:"status"`
	Stored  *int   `json:"stored,omitempty"`
	Message string `json:"message,omitempty"`
}

// SyncAll runs SyncOne across the fixed roster, fetching symbols
// concurrently. A failure on one symbol is recorded in its entry and
// never aborts the others.
func (s *SyncService) SyncAll(ctx context.Context) map[string]SyncResult {
	results := make(map[string]SyncResult, len(rosterSymbols))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range rosterSymbols {
		wg.Add(1)

		go func(symbol string) {
			defer wg.Done()

			stored, err := s.SyncOne(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				log.Errorf("SyncAll: %s: %v", symbol, err)
				results[symbol] = SyncResult{Status: "error", Message: err.Error()}
				return
			}

			results[symbol] = SyncResult{Status: "synced", Stored: &stored}
		}(symbol)
	}

	wg.Wait()

	return results
}

// mapRecords converts provider records, delivered newest first, into
// candles ordered oldest first by iterating in reverse. A record that
// fails to map is skipped without aborting the batch.
func mapRecords(symbol string, values []models.TimeSeriesValue) []models.Candle {
	candles := make([]models.Candle, 0, len(values))

	skipped := 0
	for i := len(values) - 1; i >= 0; i-- {
		c, err := mapRecord(values[i])
		if err != nil {
			skipped++
			log.Debugf("mapRecords: %s: skipping record: %v", symbol, err)
			continue
		}

		candles = append(candles, c)
	}

	if skipped > 0 {
		log.Warnf("mapRecords: %s: skipped %d malformed records", symbol, skipped)
	}

	return candles
}

func mapRecord(v models.TimeSeriesValue) (models.Candle, error) {
	ts, err := models.NormalizeTimestamp(v.Datetime)
	if err != nil {
		return models.Candle{}, fmt.Errorf("mapRecord: %w", err)
	}

	prices := make([]float64, 4)
	for i, field := range []string{v.Open, v.High, v.Low, v.Close} {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("mapRecord: failed to parse %q: %w", field, err)
		}
		prices[i] = value
	}

	// The provider supplies no volume; it is forced to zero.
	return models.Candle{
		Time:   ts,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: 0,
	}, nil
}
