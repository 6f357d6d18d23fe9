package calculator

import (
	"errors"
	"math"

	"StructureSentinel/internal/model"
)

// CalculateSMA computes the simple moving average of the given values over the specified period.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// AverageRange returns the mean High-Low of bars[from:to].
func AverageRange(bars []model.OHLCV, from, to int) (float64, error) {
	if from < 0 || to > len(bars) || from >= to {
		return 0, errors.New("invalid bar range")
	}
	return CalculateSMA(extractRanges(bars[from:to]), to-from)
}

// BodyPercent returns |Close-Open| as a fraction of the bar range, or 0 for a zero-range bar.
func BodyPercent(b model.OHLCV) float64 {
	r := b.Range()
	if r == 0 {
		return 0
	}
	return math.Abs(b.Close-b.Open) / r
}

func extractRanges(bars []model.OHLCV) []float64 {
	ranges := make([]float64, len(bars))
	for i, b := range bars {
		ranges[i] = b.Range()
	}
	return ranges
}
