package structure

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMissingSymbol is returned when an evaluation has no symbol to key state by.
	ErrMissingSymbol = errors.New("structure: symbol is required")
	// ErrInvalidParams is returned for out-of-range configuration values.
	ErrInvalidParams = errors.New("structure: invalid params")
)

// Params configures one evaluation.
type Params struct {
	InternalLookback int     // swing half-width for micro structure
	ExternalLookback int     // swing half-width for macro structure
	Tolerance        float64 // fractional slack for swing and direction comparisons

	PipBuffer              float64 // price units, already scaled by the instrument pip size
	DisplacementMultiplier float64
	BodyThreshold          float64
	BreakLookback          int // bars averaged for displacement
}

// DefaultParams returns the stock configuration with a zero pip buffer.
func DefaultParams() Params {
	return Params{
		InternalLookback:       3,
		ExternalLookback:       7,
		Tolerance:              0.00005,
		DisplacementMultiplier: 1.5,
		BodyThreshold:          0.6,
		BreakLookback:          20,
	}
}

// Validate checks that every parameter is usable.
func (p Params) Validate() error {
	switch {
	case p.InternalLookback < 1:
		return fmt.Errorf("%w: internal lookback must be >= 1, got %d", ErrInvalidParams, p.InternalLookback)
	case p.ExternalLookback < 1:
		return fmt.Errorf("%w: external lookback must be >= 1, got %d", ErrInvalidParams, p.ExternalLookback)
	case !finite(p.Tolerance, p.PipBuffer, p.DisplacementMultiplier, p.BodyThreshold):
		return fmt.Errorf("%w: float params must be finite", ErrInvalidParams)
	case p.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must be >= 0, got %g", ErrInvalidParams, p.Tolerance)
	case p.PipBuffer < 0:
		return fmt.Errorf("%w: pip buffer must be >= 0, got %g", ErrInvalidParams, p.PipBuffer)
	case p.DisplacementMultiplier <= 0:
		return fmt.Errorf("%w: displacement multiplier must be positive, got %g", ErrInvalidParams, p.DisplacementMultiplier)
	case p.BodyThreshold < 0 || p.BodyThreshold >= 1:
		return fmt.Errorf("%w: body threshold must be in [0,1), got %g", ErrInvalidParams, p.BodyThreshold)
	case p.BreakLookback < 1:
		return fmt.Errorf("%w: break lookback must be >= 1, got %d", ErrInvalidParams, p.BreakLookback)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MinBars is the shortest window that yields swings for both lookbacks.
func (p Params) MinBars() int {
	lb := p.InternalLookback
	if p.ExternalLookback > lb {
		lb = p.ExternalLookback
	}
	return 2*lb + 1
}

func (p Params) breakParams() BreakParams {
	return BreakParams{
		PipBuffer:              p.PipBuffer,
		DisplacementMultiplier: p.DisplacementMultiplier,
		BodyThreshold:          p.BodyThreshold,
		Lookback:               p.BreakLookback,
	}
}
