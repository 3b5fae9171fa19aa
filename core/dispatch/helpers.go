package dispatch

import (
	"math"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// effectiveLimits clamps the selected rates into [0, powerLimit].
func effectiveLimits(sel RateSelector, step model.TimeStep, b model.BatteryParams, f model.FuelCellParams) Limits {
	l := sel.Limits(step, b, f)
	return Limits{
		BatteryKW:  clamp(l.BatteryKW, 0, b.PowerLimitKW),
		FuelCellKW: clamp(l.FuelCellKW, 0, f.PowerLimitKW),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
