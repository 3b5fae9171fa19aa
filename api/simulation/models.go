package simulation

import (
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/core/factory"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// StepRequest is one sample of the submitted horizon.
type StepRequest struct {
	Time   *time.Time `json:"time,omitempty"`
	Demand float64    `json:"demand" binding:"gte=0"`
	PV     float64    `json:"pv" binding:"gte=0"`
	Wind   float64    `json:"wind" binding:"gte=0"`
	Price  float64    `json:"price"`
}

// DispatchRequest is the body of POST /api/v1/dispatch. Every optional field
// overrides the configured variant.
type DispatchRequest struct {
	Variant           string                `json:"variant" binding:"omitempty,oneof=standalone market"`
	Steps             []StepRequest         `json:"steps" binding:"required,min=1,dive"`
	Battery           *model.BatteryParams  `json:"battery,omitempty"`
	FuelCell          *model.FuelCellParams `json:"fuel_cell,omitempty"`
	InitialSoCKWh     *float64              `json:"initial_soc_kwh,omitempty"`
	Rates             *factory.ModuleConfig `json:"rates,omitempty"`
	ChargeFromSurplus *bool                 `json:"charge_from_surplus,omitempty"`
}

// TimeSteps converts the request samples to an indexed horizon.
func (r DispatchRequest) TimeSteps() []model.TimeStep {
	out := make([]model.TimeStep, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = model.TimeStep{Index: i, Demand: s.Demand, PV: s.PV, Wind: s.Wind, Price: s.Price}
		if s.Time != nil {
			out[i].Time = *s.Time
		}
	}
	return out
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// KPI is the daily eco figure of one variant.
type KPI struct {
	Date            string  `json:"date"`
	Variant         string  `json:"variant"`
	LocalKWh        float64 `json:"local_kwh"`
	GridKWh         float64 `json:"grid_kwh"`
	CO2Avoided      float64 `json:"co2_avoided_g"`
	SelfSufficiency float64 `json:"self_sufficiency"`
}
