package dispatch

import "github.com/cavusmuhammed68/ICC-IEEE/core/model"

// Limits is the per-step power cap for each resource.
type Limits struct {
	BatteryKW  float64
	FuelCellKW float64
}

// RateSelector decides the discharge caps for one step. The simulator always
// clamps the result to the physical power limits.
type RateSelector interface {
	Limits(step model.TimeStep, battery model.BatteryParams, fuelCell model.FuelCellParams) Limits
}

// FixedRate uses the physical power limits unchanged.
type FixedRate struct{}

func (FixedRate) Limits(_ model.TimeStep, b model.BatteryParams, f model.FuelCellParams) Limits {
	return Limits{BatteryKW: b.PowerLimitKW, FuelCellKW: f.PowerLimitKW}
}

// PriceAwareRate discharges harder during high-price steps. The same rate is
// applied to the battery and the fuel cell.
type PriceAwareRate struct {
	HighKW   float64 `json:"high_kw"`
	NormalKW float64 `json:"normal_kw"`
}

// DefaultPriceAwareRate returns the 0.7 / 0.4 kW market rates.
func DefaultPriceAwareRate() PriceAwareRate {
	return PriceAwareRate{HighKW: 0.7, NormalKW: 0.4}
}

func (r PriceAwareRate) Limits(step model.TimeStep, _ model.BatteryParams, _ model.FuelCellParams) Limits {
	kw := r.NormalKW
	if step.IsHighPrice {
		kw = r.HighKW
	}
	return Limits{BatteryKW: kw, FuelCellKW: kw}
}

// StepCap applies one constant cap to both resources.
type StepCap struct {
	KW float64 `json:"kw"`
}

func (c StepCap) Limits(model.TimeStep, model.BatteryParams, model.FuelCellParams) Limits {
	return Limits{BatteryKW: c.KW, FuelCellKW: c.KW}
}
