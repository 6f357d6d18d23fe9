package structure

import (
	"time"

	"StructureSentinel/internal/model"
)

var t0 = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

func at(i int) time.Time { return t0.Add(time.Duration(i) * 15 * time.Minute) }

func flatBar(i int) model.OHLCV {
	return model.OHLCV{Time: at(i), Open: 100, High: 100.5, Low: 99.5, Close: 100.2, Volume: 1}
}

// pathBar is a unit-range bar around mid with a half-range body, never a displacement candle.
func pathBar(i int, mid float64, up bool) model.OHLCV {
	b := model.OHLCV{Time: at(i), High: mid + 0.5, Low: mid - 0.5, Volume: 1}
	if up {
		b.Open, b.Close = mid-0.25, mid+0.25
	} else {
		b.Open, b.Close = mid+0.25, mid-0.25
	}
	return b
}

// breakoutSeries returns 25 bars: 23 flat bars, a bullish displacement bar at
// index 23 closing above the flat highs and a forming bar at index 24.
func breakoutSeries() []model.OHLCV {
	bars := make([]model.OHLCV, 0, 25)
	for i := 0; i < 23; i++ {
		bars = append(bars, flatBar(i))
	}
	bars = append(bars, model.OHLCV{Time: at(23), Open: 100.2, High: 103.2, Low: 100.1, Close: 103.0, Volume: 5})
	bars = append(bars, pathBar(24, 102.5, true))
	return bars
}

// pullbackSeries extends breakoutSeries with a rally, a lower high and a lower
// low that still holds above the broken level (100.5).
func pullbackSeries() []model.OHLCV {
	bars := breakoutSeries()
	path := []struct {
		mid float64
		up  bool
	}{
		{103.25, true}, {104.0, true}, {104.75, true}, // 25-27, high 105.25
		{104.0, false}, {103.25, false}, {102.5, false}, {101.75, false}, // 28-31, low 101.25
		{102.5, true}, {103.25, true}, {104.0, true}, // 32-34, high 104.5
		{103.25, false}, {102.25, false}, {100.75, false}, // 35-37, low 100.25
		{101.5, true}, {102.25, true}, {103.0, true}, {103.75, true}, // 38-41
	}
	for k, p := range path {
		bars = append(bars, pathBar(25+k, p.mid, p.up))
	}
	return bars
}

func sw(i int, price float64, kind model.SwingKind) model.Swing {
	return model.Swing{Time: at(i), Price: price, Kind: kind}
}
