package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfeeds/candlekeeper/src/models"
)

func makeCandles(n int) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			Time: fmt.Sprintf("2024-01-01T00:00:%02dZ", i%60),
			Open: float64(i),
		}
	}
	return candles
}

func TestGet(t *testing.T) {
	t.Run("unseen symbol returns empty", func(t *testing.T) {
		s := NewCandleStore()

		candles := s.Get("EURUSD")

		assert.NotNil(t, candles)
		assert.Len(t, candles, 0)
	})

	t.Run("snapshot is defensive", func(t *testing.T) {
		s := NewCandleStore()
		s.AppendOne("EURUSD", models.Candle{Time: "2024-01-01T00:00:00Z", Open: 1.1})

		first := s.Get("EURUSD")
		first[0].Open = 9.9

		second := s.Get("EURUSD")
		assert.Equal(t, 1.1, second[0].Open)
	})
}

func TestAppendOne(t *testing.T) {
	t.Run("keeps append order below capacity", func(t *testing.T) {
		s := NewCandleStore()
		for _, c := range makeCandles(5) {
			s.AppendOne("EURUSD", c)
		}

		got := s.Get("EURUSD")

		require.Len(t, got, 5)
		for i, c := range got {
			assert.Equal(t, float64(i), c.Open)
		}
	})

	t.Run("evicts oldest beyond capacity", func(t *testing.T) {
		s := NewCandleStore()
		for _, c := range makeCandles(Capacity + 50) {
			s.AppendOne("EURUSD", c)
		}

		got := s.Get("EURUSD")

		require.Len(t, got, Capacity)
		assert.Equal(t, float64(50), got[0].Open)
		assert.Equal(t, float64(Capacity+49), got[len(got)-1].Open)
	})
}

func TestReplaceAll(t *testing.T) {
	t.Run("stores all when under capacity", func(t *testing.T) {
		s := NewCandleStore()
		s.ReplaceAll("EURUSD", makeCandles(10))

		got := s.Get("EURUSD")

		require.Len(t, got, 10)
		for i, c := range got {
			assert.Equal(t, float64(i), c.Open)
		}
	})

	t.Run("truncates to the first capacity elements", func(t *testing.T) {
		s := NewCandleStore()
		s.ReplaceAll("EURUSD", makeCandles(Capacity+30))

		got := s.Get("EURUSD")

		require.Len(t, got, Capacity)
		assert.Equal(t, float64(0), got[0].Open)
		assert.Equal(t, float64(Capacity-1), got[len(got)-1].Open)
	})

	t.Run("discards previous contents", func(t *testing.T) {
		s := NewCandleStore()
		for _, c := range makeCandles(20) {
			s.AppendOne("EURUSD", c)
		}

		s.ReplaceAll("EURUSD", makeCandles(3))

		assert.Len(t, s.Get("EURUSD"), 3)
	})

	t.Run("never visible as empty to concurrent readers", func(t *testing.T) {
		s := NewCandleStore()
		s.ReplaceAll("EURUSD", makeCandles(10))

		done := make(chan struct{})
		var wg sync.WaitGroup

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s.ReplaceAll("EURUSD", makeCandles(10))
			}
			close(done)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					assert.Len(t, s.Get("EURUSD"), 10)
				}
			}
		}()

		wg.Wait()
	})
}

func TestClear(t *testing.T) {
	t.Run("never-seen symbol reports false", func(t *testing.T) {
		s := NewCandleStore()

		assert.False(t, s.Clear("EURUSD"))
	})

	t.Run("clears in place and keeps the symbol known", func(t *testing.T) {
		s := NewCandleStore()
		s.AppendOne("EURUSD", makeCandles(1)[0])

		assert.True(t, s.Clear("EURUSD"))
		assert.Len(t, s.Get("EURUSD"), 0)

		// Clearing again is a no-op, not an error.
		assert.True(t, s.Clear("EURUSD"))
	})
}

func TestForEachSymbol(t *testing.T) {
	t.Run("visits every known symbol with a snapshot", func(t *testing.T) {
		s := NewCandleStore()
		s.AppendOne("EURUSD", makeCandles(2)[0])
		s.AppendOne("GBPUSD", makeCandles(2)[1])

		seen := make(map[string]int)
		s.ForEachSymbol(func(symbol string, candles []models.Candle) {
			seen[symbol] = len(candles)
		})

		assert.Equal(t, map[string]int{"EURUSD": 1, "GBPUSD": 1}, seen)
	})
}
