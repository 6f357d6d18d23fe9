package instrument

import (
	"strings"
	"sync"
)

// Table resolves the pip size of a symbol. Explicit overrides win over the
// built-in rules.
type Table struct {
	mu        sync.RWMutex
	overrides map[string]float64
}

// NewTable creates a table with optional per-symbol overrides.
func NewTable(overrides map[string]float64) *Table {
	t := &Table{overrides: make(map[string]float64, len(overrides))}
	for sym, pip := range overrides {
		if pip > 0 {
			t.overrides[normalize(sym)] = pip
		}
	}
	return t
}

// Set registers or replaces an override.
func (t *Table) Set(symbol string, pip float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overrides[normalize(symbol)] = pip
}

// PipSize returns the price value of one pip for symbol.
func (t *Table) PipSize(symbol string) float64 {
	key := normalize(symbol)
	t.mu.RLock()
	pip, ok := t.overrides[key]
	t.mu.RUnlock()
	if ok {
		return pip
	}
	return defaultPip(key)
}

// Buffer converts a pip count into price units for symbol.
func (t *Table) Buffer(symbol string, pips float64) float64 {
	return pips * t.PipSize(symbol)
}

// normalize strips broker suffixes ("EURUSDm", "EURUSD.r") and separators.
func normalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.IndexAny(s, ".#"); i > 0 {
		s = s[:i]
	}
	s = strings.NewReplacer("/", "", "-", "", "_", "", "=X", "").Replace(s)
	if len(s) == 7 && isFXPair(s[:6]) {
		s = s[:6]
	}
	return s
}

var currencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CHF": true,
	"AUD": true, "NZD": true, "CAD": true, "SEK": true, "NOK": true,
	"SGD": true, "HKD": true, "ZAR": true, "MXN": true, "TRY": true,
}

func isFXPair(s string) bool {
	return len(s) == 6 && currencies[s[:3]] && currencies[s[3:]]
}

func defaultPip(s string) float64 {
	switch {
	case strings.HasPrefix(s, "XAU"), strings.HasPrefix(s, "GOLD"):
		return 0.1
	case strings.HasPrefix(s, "XAG"), strings.HasPrefix(s, "SILVER"):
		return 0.01
	case strings.HasPrefix(s, "BTC"), strings.HasPrefix(s, "ETH"):
		return 1
	case isFXPair(s) && strings.Contains(s, "JPY"):
		return 0.01
	case isFXPair(s):
		return 0.0001
	case strings.HasPrefix(s, "^"), strings.Contains(s, "500"), strings.Contains(s, "NAS"), strings.Contains(s, "US30"):
		return 1
	default:
		return 0.0001
	}
}
