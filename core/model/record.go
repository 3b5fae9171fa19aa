package model

import (
	"math"
	"time"
)

// Mode is a human-friendly battery operating mode for a step.
// Values are stable; they are written to CSV and JSON exports.
type Mode string

const (
	ModeCharging    Mode = "CHARGING"
	ModeIdle        Mode = "IDLE"
	ModeDischarging Mode = "DISCHARGING"
)

// ModeFromDispatch maps a signed battery dispatch to a Mode.
func ModeFromDispatch(kw float64) Mode {
	switch {
	case kw < 0:
		return ModeCharging
	case kw > 0:
		return ModeDischarging
	default:
		return ModeIdle
	}
}

// DispatchRecord is the allocation decided for one step of the horizon.
// BatteryDispatch is signed: negative while charging, positive while discharging.
type DispatchRecord struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time,omitempty"`

	Demand        float64 `json:"demand"`
	Renewable     float64 `json:"renewable"`
	RenewableUsed float64 `json:"renewable_used"`

	BatteryDispatch  float64 `json:"battery_dispatch"`
	FuelCellDispatch float64 `json:"fuel_cell_dispatch"`
	GridImport       float64 `json:"grid_import"`
	Curtailed        float64 `json:"curtailed"`

	// OptimisedLoad is demand minus the DER discharge of the step.
	OptimisedLoad float64 `json:"optimised_load"`

	SoCStart          float64 `json:"soc_start"`
	SoCEnd            float64 `json:"soc_end"`
	FuelCellEnergyEnd float64 `json:"fuel_cell_energy_end"`

	Price     float64 `json:"price"`
	HighPrice bool    `json:"high_price"`
	Mode      Mode    `json:"mode"`
}

// BatteryDischarge returns the positive part of the battery dispatch.
func (r DispatchRecord) BatteryDischarge() float64 {
	return math.Max(r.BatteryDispatch, 0)
}

// BatteryCharge returns the raw energy drawn into the battery, as a positive value.
func (r DispatchRecord) BatteryCharge() float64 {
	return math.Max(-r.BatteryDispatch, 0)
}

// DERDispatch is the combined battery discharge and fuel cell output.
func (r DispatchRecord) DERDispatch() float64 {
	return r.BatteryDischarge() + r.FuelCellDispatch
}

// Supplied is the part of demand covered by renewables, battery, fuel cell and grid.
func (r DispatchRecord) Supplied() float64 {
	return r.RenewableUsed + r.BatteryDischarge() + r.FuelCellDispatch + r.GridImport
}
