package collector

import (
	"sort"

	"StructureSentinel/internal/model"
)

// Aggregate merges bars into tf buckets aligned in UTC. Input must share a
// timeframe no larger than tf.
func Aggregate(bars []model.OHLCV, tf model.Timeframe) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	var out []model.OHLCV
	var cur model.OHLCV
	var curKey int64
	started := false

	for _, b := range bars {
		key := tf.Align(b.Time).Unix()
		if !started || key != curKey {
			if started {
				out = append(out, cur)
			}
			cur = model.OHLCV{Time: tf.Align(b.Time), Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			curKey = key
			started = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	return append(out, cur)
}

// EnsureSorted returns bars in ascending time order, copying only when needed.
func EnsureSorted(bars []model.OHLCV) []model.OHLCV {
	if sort.SliceIsSorted(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) }) {
		return bars
	}
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// tail returns the last n bars, or all of them when n <= 0 or n >= len.
func tail(bars []model.OHLCV, n int) []model.OHLCV {
	if n <= 0 || n >= len(bars) {
		return bars
	}
	return bars[len(bars)-n:]
}
