package collector

import (
	"context"
	"fmt"
	"time"

	"StructureSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Data  map[string][]model.OHLCV // keyed by "SYMBOL@tf"
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol string, tf model.Timeframe, count int) ([]model.OHLCV, error) {
	if bars, ok := m.Data[symbol+"@"+tf.String()]; ok {
		return tail(bars, count), nil
	}
	return generateMockBars(m.Price, tf, count), nil
}

// generateMockBars produces a gently oscillating series ending at the current tf bucket.
func generateMockBars(basePrice float64, tf model.Timeframe, count int) []model.OHLCV {
	if basePrice == 0 {
		basePrice = 100
	}
	step := tf.Duration()
	if step == 0 {
		step = time.Hour
	}
	end := tf.Align(time.Now())
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		wave := float64((i%12)-6) * 0.001
		p := basePrice * (1 + float64(i-count/2)*0.0005 + wave)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.002,
			Low:    p * 0.997,
			Close:  p,
			Volume: 1000,
		}
	}
	return bars
}

// Collector fetches bar windows for the engine.
type Collector struct {
	Fetcher Fetcher
	Window  int
}

// NewCollector creates a new Collector requesting window bars per series.
func NewCollector(fetcher Fetcher, window int) *Collector {
	return &Collector{Fetcher: fetcher, Window: window}
}

// Collect fetches one chronologically ordered window for symbol on tf.
func (c *Collector) Collect(ctx context.Context, symbol string, tf model.Timeframe) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchBars(ctx, symbol, tf, c.Window)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s bars: %w", symbol, tf, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch %s %s bars: empty response", symbol, tf)
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: tf,
		Bars:      tail(EnsureSorted(bars), c.Window),
		FetchedAt: time.Now(),
	}, nil
}
