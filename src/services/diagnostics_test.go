package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfeeds/candlekeeper/src/models"
	"github.com/quantfeeds/candlekeeper/src/store"
)

func candlesAt(times ...string) []models.Candle {
	candles := make([]models.Candle, len(times))
	for i, ts := range times {
		candles[i] = models.Candle{Time: ts}
	}
	return candles
}

func TestCheckGaps(t *testing.T) {
	t.Run("contiguous five minute grid is ok", func(t *testing.T) {
		s := store.NewCandleStore()
		s.ReplaceAll("EURUSD", candlesAt("2024-01-01T00:00:00Z", "2024-01-01T00:05:00Z", "2024-01-01T00:10:00Z"))

		report := NewDiagnosticsService(s).CheckGaps()

		require.Contains(t, report, "EURUSD")
		assert.Equal(t, GapReport{Status: "ok", Stored: 3}, report["EURUSD"])
	})

	t.Run("missing sample is a gap", func(t *testing.T) {
		s := store.NewCandleStore()
		s.ReplaceAll("EURUSD", candlesAt("2024-01-01T00:00:00Z", "2024-01-01T00:05:00Z", "2024-01-01T00:10:00Z", "2024-01-01T00:20:00Z"))

		report := NewDiagnosticsService(s).CheckGaps()

		assert.Equal(t, "gap_detected", report["EURUSD"].Status)
	})

	t.Run("sorts before walking, so storage order does not matter", func(t *testing.T) {
		s := store.NewCandleStore()
		s.ReplaceAll("EURUSD", candlesAt("2024-01-01T00:10:00Z", "2024-01-01T00:00:00Z", "2024-01-01T00:05:00Z"))

		report := NewDiagnosticsService(s).CheckGaps()

		assert.Equal(t, "ok", report["EURUSD"].Status)
	})

	t.Run("fewer than two candles is trivially ok", func(t *testing.T) {
		s := store.NewCandleStore()
		s.ReplaceAll("EURUSD", candlesAt("2024-01-01T00:00:00Z"))
		s.Get("GBPUSD")

		report := NewDiagnosticsService(s).CheckGaps()

		assert.Equal(t, "ok", report["EURUSD"].Status)
		assert.Equal(t, GapReport{Status: "ok", Stored: 0}, report["GBPUSD"])
	})

	t.Run("parse failure is isolated per symbol", func(t *testing.T) {
		s := store.NewCandleStore()
		s.ReplaceAll("EURUSD", candlesAt("not-a-time", "2024-01-01T00:05:00Z"))
		s.ReplaceAll("GBPUSD", candlesAt("2024-01-01T00:00:00Z", "2024-01-01T00:05:00Z"))

		report := NewDiagnosticsService(s).CheckGaps()

		assert.Equal(t, "error", report["EURUSD"].Status)
		assert.NotEmpty(t, report["EURUSD"].Message)
		assert.Equal(t, "ok", report["GBPUSD"].Status)
	})
}

func TestLastUpdate(t *testing.T) {
	t.Run("reports the latest timestamp via full scan", func(t *testing.T) {
		s := store.NewCandleStore()
		s.ReplaceAll("EURUSD", candlesAt("2024-01-01T00:10:00Z", "2024-01-01T00:20:00Z", "2024-01-01T00:00:00Z"))

		report := NewDiagnosticsService(s).LastUpdate()

		require.Contains(t, report, "EURUSD")
		require.NotNil(t, report["EURUSD"].LastUpdate)
		assert.Equal(t, "2024-01-01T00:20:00Z", *report["EURUSD"].LastUpdate)
		assert.Equal(t, 3, report["EURUSD"].Stored)
	})

	t.Run("empty window reports null and zero", func(t *testing.T) {
		s := store.NewCandleStore()
		s.Get("EURUSD")

		report := NewDiagnosticsService(s).LastUpdate()

		require.Contains(t, report, "EURUSD")
		assert.Nil(t, report["EURUSD"].LastUpdate)
		assert.Equal(t, 0, report["EURUSD"].Stored)
	})
}
