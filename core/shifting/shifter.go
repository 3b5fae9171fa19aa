// Package shifting redistributes above-average load to neighbouring steps.
package shifting

import (
	"fmt"
	"math"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"gonum.org/v1/gonum/stat"
)

// DefaultFlexibleLoadRatio is the share of the original demand that may move.
const DefaultFlexibleLoadRatio = 0.3

// meanTolerance is the relative margin above the mean below which a step is
// treated as average.
const meanTolerance = 1e-12

// Shifter moves part of each peak step to its two neighbours.
type Shifter struct {
	FlexibleLoadRatio float64 `json:"flexible_load_ratio"`
}

// New returns a Shifter with the given ratio.
func New(ratio float64) Shifter {
	return Shifter{FlexibleLoadRatio: ratio}
}

// Shift returns a shifted copy of load. The mean is taken once before the
// sweep; interior steps are processed left to right and each step sees the
// inflow from its left neighbour. Inputs are not modified.
func (s Shifter) Shift(load, original []float64) ([]float64, error) {
	if len(load) != len(original) {
		return nil, fmt.Errorf("load has %d steps, original demand has %d", len(load), len(original))
	}
	out := make([]float64, len(load))
	copy(out, load)
	if len(out) < 3 {
		return out, nil
	}
	avg := stat.Mean(out, nil)
	// The mean of a flat series can land an ULP below its values.
	tol := meanTolerance * math.Max(1, math.Abs(avg))
	for t := 1; t < len(out)-1; t++ {
		if out[t]-avg <= tol {
			continue
		}
		amount := math.Min(s.FlexibleLoadRatio*original[t], out[t]-avg)
		if amount <= 0 {
			continue
		}
		out[t] -= amount
		out[t-1] += amount / 2
		out[t+1] += amount / 2
	}
	return out, nil
}

// ShiftRecords applies Shift to the optimised load of a dispatch trace using
// the step demand as the original series.
func (s Shifter) ShiftRecords(records []model.DispatchRecord) ([]float64, error) {
	return s.Shift(OptimisedLoads(records), Demands(records))
}

// OptimisedLoads extracts the optimised load of each record.
func OptimisedLoads(records []model.DispatchRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.OptimisedLoad
	}
	return out
}

// Demands extracts the demand of each record.
func Demands(records []model.DispatchRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Demand
	}
	return out
}
