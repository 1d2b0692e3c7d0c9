package store

import (
	"sync"

	"github.com/quantfeeds/candlekeeper/src/models"
)

// Capacity is the maximum number of candles retained per symbol.
const Capacity = 100

// window is the bounded, insertion-ordered candle buffer for one symbol.
// Each window carries its own lock so mutations on unrelated symbols do
// not contend.
type window struct {
	mu      sync.RWMutex
	candles []models.Candle
}

func (w *window) append(c models.Candle) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.candles = append(w.candles, c)
	if len(w.candles) > Capacity {
		w.candles = w.candles[len(w.candles)-Capacity:]
	}
}

// replace swaps the whole buffer in one assignment under the write lock,
// so a concurrent reader sees either the old window or the new one in
// full, never an empty mid-rebuild state.
func (w *window) replace(candles []models.Candle) {
	next := make([]models.Candle, 0, Capacity)
	for _, c := range candles {
		if len(next) == Capacity {
			break
		}
		next = append(next, c)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.candles = next
}

func (w *window) snapshot() []models.Candle {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]models.Candle, len(w.candles))
	copy(out, w.candles)

	return out
}

func (w *window) clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.candles = nil
}

// CandleStore maps case-sensitive symbol identifiers to bounded candle
// windows. Symbols are created lazily on read or append. The store is
// process-wide state, injected into its collaborators rather than held
// as a package global.
type CandleStore struct {
	mu      sync.RWMutex
	windows map[string]*window
}

func NewCandleStore() *CandleStore {
	return &CandleStore{
		windows: make(map[string]*window),
	}
}

// window returns the symbol's buffer, creating an empty one if absent.
func (s *CandleStore) window(symbol string) *window {
	s.mu.RLock()
	w, ok := s.windows[symbol]
	s.mu.RUnlock()

	if ok {
		return w
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows[symbol]; ok {
		return w
	}

	w = &window{}
	s.windows[symbol] = w

	return w
}

// Get returns a point-in-time copy of the symbol's window in storage
// order. An unseen symbol yields an empty (non-nil) slice.
func (s *CandleStore) Get(symbol string) []models.Candle {
	return s.window(symbol).snapshot()
}

// AppendOne inserts the candle at the tail of the symbol's window,
// evicting from the head once the window is at capacity. Arrival order,
// not time order, governs eviction.
func (s *CandleStore) AppendOne(symbol string, c models.Candle) {
	s.window(symbol).append(c)
}

// ReplaceAll atomically substitutes the symbol's window with the first
// Capacity elements of candles, in the given order.
func (s *CandleStore) ReplaceAll(symbol string, candles []models.Candle) {
	s.window(symbol).replace(candles)
}

// Clear empties the symbol's window in place and reports whether the
// symbol had been seen. The symbol stays known: subsequent reads return
// empty, not "unknown symbol".
func (s *CandleStore) Clear(symbol string) bool {
	s.mu.RLock()
	w, ok := s.windows[symbol]
	s.mu.RUnlock()

	if !ok {
		return false
	}

	w.clear()

	return true
}

// ForEachSymbol calls fn with a snapshot of every known symbol's window.
// Iteration order is unspecified.
func (s *CandleStore) ForEachSymbol(fn func(symbol string, candles []models.Candle)) {
	s.mu.RLock()
	windows := make(map[string]*window, len(s.windows))
	for symbol, w := range s.windows {
		windows[symbol] = w
	}
	s.mu.RUnlock()

	for symbol, w := range windows {
		fn(symbol, w.snapshot())
	}
}
