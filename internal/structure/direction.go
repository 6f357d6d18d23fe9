package structure

import "StructureSentinel/internal/model"

// ClassifyDirection reads the last full swing cycle of an alternating sequence.
// Both legs must move the same way for a non-neutral reading.
func ClassifyDirection(swings []model.Swing, tolerance float64) model.Direction {
	n := len(swings)
	if n < 4 {
		return model.DirectionNeutral
	}
	a, b, c, d := swings[n-4], swings[n-3], swings[n-2], swings[n-1]

	var h1, h2, l1, l2 float64
	switch {
	case a.Kind == model.SwingHigh && b.Kind == model.SwingLow && c.Kind == model.SwingHigh && d.Kind == model.SwingLow:
		h1, l1, h2, l2 = a.Price, b.Price, c.Price, d.Price
	case a.Kind == model.SwingLow && b.Kind == model.SwingHigh && c.Kind == model.SwingLow && d.Kind == model.SwingHigh:
		l1, h1, l2, h2 = a.Price, b.Price, c.Price, d.Price
	default:
		return model.DirectionNeutral
	}

	switch {
	case higher(h1, h2, tolerance) && higher(l1, l2, tolerance):
		return model.DirectionBullish
	case lower(h1, h2, tolerance) && lower(l1, l2, tolerance):
		return model.DirectionBearish
	}
	return model.DirectionNeutral
}

// higher reports whether next clears prev by more than the tolerance fraction.
func higher(prev, next, tolerance float64) bool {
	return next > prev*(1+tolerance)
}

func lower(prev, next, tolerance float64) bool {
	return next < prev*(1-tolerance)
}
