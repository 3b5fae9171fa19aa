// Package recovery models supply restoration after a grid disturbance and the
// DER dispatch that bridges the gap.
package recovery

import "math"

// Curve gives the fraction of supply restored at a minute after the event.
type Curve interface {
	At(minute float64) float64
}

// Sigmoid is the adaptive recovery profile.
type Sigmoid struct {
	K        float64 `json:"k"`
	Midpoint float64 `json:"midpoint"`
}

// DefaultSigmoid returns k=0.5 centred on minute 4.
func DefaultSigmoid() Sigmoid { return Sigmoid{K: 0.5, Midpoint: 4} }

func (s Sigmoid) At(minute float64) float64 {
	return clamp01(1 / (1 + math.Exp(-s.K*(minute-s.Midpoint))))
}

// RuleBased is the baseline profile: a slow ramp to a plateau until the delay
// elapses, then a steeper linear ramp.
type RuleBased struct {
	Delay        float64 `json:"delay"`
	PlateauLevel float64 `json:"plateau_level"`
	Slope        float64 `json:"slope"`
}

// DefaultRuleBased returns 10% reached linearly by minute 10, then +9%/min.
func DefaultRuleBased() RuleBased {
	return RuleBased{Delay: 10, PlateauLevel: 0.1, Slope: 0.09}
}

func (r RuleBased) At(minute float64) float64 {
	if minute < r.Delay {
		if r.Delay <= 0 {
			return clamp01(r.PlateauLevel)
		}
		return clamp01(r.PlateauLevel * minute / r.Delay)
	}
	return clamp01(r.PlateauLevel + r.Slope*(minute-r.Delay))
}

// DefaultMinutes is the length of the post-disturbance window.
const DefaultMinutes = 16

// Sample evaluates c at minutes 0..minutes-1.
func Sample(c Curve, minutes int) []float64 {
	if minutes < 0 {
		minutes = 0
	}
	out := make([]float64, minutes)
	for i := range out {
		out[i] = c.At(float64(i))
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, 1))
}
