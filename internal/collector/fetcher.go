package collector

import (
	"context"

	"StructureSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns up to count bars for symbol, oldest first. The last
	// bar may still be forming.
	FetchBars(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.OHLCV, error)
	Name() string
}
