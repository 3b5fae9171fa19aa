package model

import (
	"math"
	"time"
)

// TimeStep is one sample of the simulation horizon.
type TimeStep struct {
	Index int
	Time  time.Time // optional; zero when only the ordinal index is known

	Demand float64 // kW, non-negative
	PV     float64 // kW, zero if absent
	Wind   float64 // kW, zero if absent
	Price  float64 // spot price, may be negative

	// IsHighPrice is derived over the horizon by the series builder.
	IsHighPrice bool

	// Optional weather channels, only read by disturbance events.
	Irradiance float64 // W/m2
	WindSpeed  float64 // m/s
}

// Renewable returns the combined renewable supply of the step.
func (s TimeStep) Renewable() float64 {
	return s.PV + s.Wind
}

// NetLoad is demand minus renewable generation. Negative values are a surplus.
func (s TimeStep) NetLoad() float64 {
	return s.Demand - s.Renewable()
}

// HasNaN reports whether one of the fields read by the dispatch core is NaN.
func (s TimeStep) HasNaN() bool {
	return math.IsNaN(s.Demand) || math.IsNaN(s.PV) || math.IsNaN(s.Wind) || math.IsNaN(s.Price)
}

// Demands extracts the demand column of a horizon.
func Demands(steps []TimeStep) []float64 {
	out := make([]float64, len(steps))
	for i, s := range steps {
		out[i] = s.Demand
	}
	return out
}

// Prices extracts the price column of a horizon.
func Prices(steps []TimeStep) []float64 {
	out := make([]float64, len(steps))
	for i, s := range steps {
		out[i] = s.Price
	}
	return out
}
