package scheduler

import (
	"sort"

	"StructureSentinel/internal/model"
)

func directional(b model.Bias) bool {
	return b == model.BiasBullish || b == model.BiasBearish
}

// Topdown takes the bias of the highest timeframe that has one as dominant and
// counts how many timeframes agree with it. Trading is allowed only when every
// evaluated timeframe agrees.
func Topdown(symbol string, snapshots []*model.StructureSnapshot) *model.TopdownSummary {
	ordered := make([]*model.StructureSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s != nil {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timeframe.Rank() > ordered[j].Timeframe.Rank()
	})

	sum := &model.TopdownSummary{
		Symbol:       symbol,
		Snapshots:    ordered,
		DominantBias: model.BiasNeutral,
		TradeContext: model.ContextNoBias,
	}
	for _, s := range ordered {
		if directional(s.Bias) {
			sum.DominantBias = s.Bias
			sum.DominantTimeframe = s.Timeframe
			break
		}
	}
	if !directional(sum.DominantBias) {
		return sum
	}

	for _, s := range ordered {
		if s.Bias == sum.DominantBias {
			sum.AlignmentScore++
		}
	}
	sum.TradeAllowed = sum.AlignmentScore == len(ordered)
	if sum.TradeAllowed {
		sum.TradeContext = model.ContextAligned
	} else {
		sum.TradeContext = model.ContextMixed
	}
	return sum
}

func byRankDesc(tfs []model.Timeframe) []model.Timeframe {
	out := append([]model.Timeframe(nil), tfs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank() > out[j].Rank() })
	return out
}
