package structure

import (
	"StructureSentinel/internal/calculator"
	"StructureSentinel/internal/model"
)

// BreakParams configures DetectBreak.
type BreakParams struct {
	PipBuffer              float64 // price units beyond the swing level
	DisplacementMultiplier float64 // confirmed range must exceed this times the average range
	BodyThreshold          float64 // minimum body/range fraction
	Lookback               int     // bars averaged before the confirmed bar
}

// DetectBreak checks the last confirmed bar (bars[len-2]) for a close beyond the
// most recent swing high or low, backed by a displacement candle. The last bar
// in the window is treated as still forming and is never evaluated.
func DetectBreak(bars []model.OHLCV, swings []model.Swing, p BreakParams) *model.BreakEvent {
	if len(swings) < 2 || p.Lookback < 1 || len(bars) < p.Lookback+2 {
		return nil
	}
	hi := lastOfKind(swings, model.SwingHigh)
	lo := lastOfKind(swings, model.SwingLow)
	if hi < 0 || lo < 0 {
		return nil
	}

	c := len(bars) - 2
	bar := bars[c]

	avgRange, err := calculator.AverageRange(bars, c-p.Lookback, c)
	if err != nil || avgRange == 0 {
		return nil
	}
	displaced := bar.Range() > p.DisplacementMultiplier*avgRange &&
		calculator.BodyPercent(bar) > p.BodyThreshold
	if !displaced {
		return nil
	}

	if level := swings[hi].Price; bar.Close > level+p.PipBuffer && bar.Bullish() {
		return &model.BreakEvent{Kind: model.BullishBreak, Level: level, BreakPrice: bar.Close, At: bar.Time}
	}
	if level := swings[lo].Price; bar.Close < level-p.PipBuffer && bar.Bearish() {
		return &model.BreakEvent{Kind: model.BearishBreak, Level: level, BreakPrice: bar.Close, At: bar.Time}
	}
	return nil
}

// compressAfterBreak removes the broken swing and any later swings of the same
// kind, keeps later opposite-kind swings and appends the breaking bar's extreme
// as the new swing. Alternate then keeps the more extreme protecting swing.
func compressAfterBreak(swings []model.Swing, brk *model.BreakEvent, bar model.OHLCV) []model.Swing {
	kind, price := model.SwingHigh, bar.High
	if brk.Kind == model.BearishBreak {
		kind, price = model.SwingLow, bar.Low
	}
	k := lastOfKind(swings, kind)
	if k < 0 {
		return swings
	}
	out := make([]model.Swing, 0, k+2)
	out = append(out, swings[:k]...)
	for _, s := range swings[k+1:] {
		if s.Kind != kind {
			out = append(out, s)
		}
	}
	out = append(out, model.Swing{Time: bar.Time, Price: price, Kind: kind})
	return Alternate(out)
}
