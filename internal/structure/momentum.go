package structure

import "StructureSentinel/internal/model"

// MomentumScore scores the last three highs and the last three lows
// independently: +1 per strictly rising leg, -1 per strictly falling leg.
func MomentumScore(swings []model.Swing) int {
	score := 0
	for _, k := range []model.SwingKind{model.SwingHigh, model.SwingLow} {
		p := prices(swings, k)
		if len(p) < 3 {
			continue
		}
		x, y, z := p[len(p)-3], p[len(p)-2], p[len(p)-1]
		switch {
		case z > y && y > x:
			score++
		case z < y && y < x:
			score--
		}
	}
	return score
}
