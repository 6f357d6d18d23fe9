package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Range returns High-Low.
func (b OHLCV) Range() float64 { return b.High - b.Low }

// Bullish reports whether the bar closed above its open.
func (b OHLCV) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b OHLCV) Bearish() bool { return b.Close < b.Open }

// PriceSeries holds a window of bars for one symbol and timeframe.
// The last bar may still be forming.
type PriceSeries struct {
	Symbol    string
	Timeframe Timeframe
	Bars      []OHLCV
	FetchedAt time.Time
}
