package structure

import "StructureSentinel/internal/model"

// Alternate coalesces runs of same-kind swings so highs and lows strictly
// alternate. Within a run the most extreme swing survives; ties keep the earlier one.
func Alternate(swings []model.Swing) []model.Swing {
	out := make([]model.Swing, 0, len(swings))
	for _, s := range swings {
		n := len(out)
		if n == 0 || out[n-1].Kind != s.Kind {
			out = append(out, s)
			continue
		}
		prev := out[n-1]
		switch s.Kind {
		case model.SwingHigh:
			if s.Price > prev.Price {
				out[n-1] = s
			}
		case model.SwingLow:
			if s.Price < prev.Price {
				out[n-1] = s
			}
		}
	}
	return out
}

// lastOfKind returns the index of the most recent swing of kind k, or -1.
func lastOfKind(swings []model.Swing, k model.SwingKind) int {
	for i := len(swings) - 1; i >= 0; i-- {
		if swings[i].Kind == k {
			return i
		}
	}
	return -1
}

// prices returns the prices of all swings of kind k in order.
func prices(swings []model.Swing, k model.SwingKind) []float64 {
	var out []float64
	for _, s := range swings {
		if s.Kind == k {
			out = append(out, s.Price)
		}
	}
	return out
}
