package structure

import (
	"sort"
	"sync"

	"StructureSentinel/internal/model"
)

// StateStore owns the per-symbol structure memory. Access to one symbol is
// serialized; different symbols never contend beyond the map lookup.
type StateStore struct {
	mu      sync.Mutex
	entries map[string]*stateEntry
}

// Lock order is entry then store; acquire and Get never hold both.
type stateEntry struct {
	mu    sync.Mutex
	state model.SymbolState
	dead  bool // removed by Reset; holders of a stale pointer must look up again
}

// NewStateStore creates an empty store.
func NewStateStore() *StateStore {
	return &StateStore{entries: make(map[string]*stateEntry)}
}

// acquire returns the locked entry for symbol, creating it when absent.
// The caller must unlock it.
func (s *StateStore) acquire(symbol string) *stateEntry {
	for {
		s.mu.Lock()
		e, ok := s.entries[symbol]
		if !ok {
			e = &stateEntry{state: model.SymbolState{Bias: model.BiasUnset}}
			s.entries[symbol] = e
		}
		s.mu.Unlock()
		e.mu.Lock()
		if !e.dead {
			return e
		}
		e.mu.Unlock()
	}
}

// Get returns a copy of the symbol's state.
func (s *StateStore) Get(symbol string) (model.SymbolState, bool) {
	s.mu.Lock()
	e, ok := s.entries[symbol]
	s.mu.Unlock()
	if !ok {
		return model.SymbolState{Bias: model.BiasUnset}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return model.SymbolState{Bias: model.BiasUnset}, false
	}
	return copyState(e.state), true
}

// Reset forgets everything known about symbol. It waits for an in-flight
// evaluation of the symbol to finish; evaluations that start afterwards see
// fresh state.
func (s *StateStore) Reset(symbol string) {
	for {
		s.mu.Lock()
		e, ok := s.entries[symbol]
		s.mu.Unlock()
		if !ok {
			return
		}
		e.mu.Lock()
		if e.dead {
			// retired by a concurrent Reset; the map may hold a newer entry
			e.mu.Unlock()
			continue
		}
		s.mu.Lock()
		if s.entries[symbol] == e {
			delete(s.entries, symbol)
		}
		s.mu.Unlock()
		e.dead = true
		e.state = model.SymbolState{Bias: model.BiasUnset}
		e.mu.Unlock()
		return
	}
}

// ResetAll clears every symbol.
func (s *StateStore) ResetAll() {
	for _, sym := range s.Symbols() {
		s.Reset(sym)
	}
}

// Symbols lists tracked symbols in sorted order.
func (s *StateStore) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for sym := range s.entries {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func copyState(st model.SymbolState) model.SymbolState {
	if st.PendingBreak != nil {
		pb := *st.PendingBreak
		st.PendingBreak = &pb
	}
	return st
}
