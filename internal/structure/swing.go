package structure

import "StructureSentinel/internal/model"

// DetectSwings returns every bar that is a local extreme over lookback bars on
// both sides. A neighbor only disqualifies a high if it exceeds it by more than
// the tolerance fraction (symmetrically for lows). One bar can be both a high
// and a low; the high is emitted first.
func DetectSwings(bars []model.OHLCV, lookback int, tolerance float64) []model.Swing {
	if lookback < 1 || len(bars) < 2*lookback+1 {
		return nil
	}
	out := make([]model.Swing, 0, len(bars)/lookback)
	for i := lookback; i < len(bars)-lookback; i++ {
		high, low := bars[i].High, bars[i].Low
		isHigh, isLow := true, true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if high < bars[j].High*(1-tolerance) {
				isHigh = false
			}
			if low > bars[j].Low*(1+tolerance) {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			out = append(out, model.Swing{Time: bars[i].Time, Price: high, Kind: model.SwingHigh})
		}
		if isLow {
			out = append(out, model.Swing{Time: bars[i].Time, Price: low, Kind: model.SwingLow})
		}
	}
	return out
}
