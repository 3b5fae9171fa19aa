package model

import (
	"fmt"
	"math"
)

// BatteryParams are the fixed physical parameters of the battery.
// Efficiency is applied on charge only.
type BatteryParams struct {
	CapacityKWh  float64 `json:"capacity_kwh"`
	PowerLimitKW float64 `json:"power_limit_kw"`
	Efficiency   float64 `json:"efficiency"`
}

// Validate checks that the battery parameters are physically meaningful.
func (p BatteryParams) Validate() error {
	if p.CapacityKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if p.PowerLimitKW <= 0 {
		return fmt.Errorf("battery power limit must be positive")
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return fmt.Errorf("battery efficiency must be in (0, 1]")
	}
	return nil
}

// BatteryState is the mutable battery state owned by one simulation run.
type BatteryState struct {
	Params BatteryParams `json:"params"`
	SoCKWh float64       `json:"soc_kwh"`
}

// NewBatteryState validates params and the initial state of charge.
func NewBatteryState(p BatteryParams, socKWh float64) (BatteryState, error) {
	if err := p.Validate(); err != nil {
		return BatteryState{}, err
	}
	if socKWh < 0 || socKWh > p.CapacityKWh || math.IsNaN(socKWh) {
		return BatteryState{}, fmt.Errorf("initial soc %.3f outside [0, %.3f]", socKWh, p.CapacityKWh)
	}
	return BatteryState{Params: p, SoCKWh: socKWh}, nil
}

// Headroom is the raw energy the battery can still accept before reaching capacity,
// accounting for the charge efficiency.
func (b BatteryState) Headroom() float64 {
	room := (b.Params.CapacityKWh - b.SoCKWh) / b.Params.Efficiency
	if room < 0 {
		return 0
	}
	return room
}

// Charge stores raw*Efficiency and returns the raw energy accepted.
func (b *BatteryState) Charge(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	raw = math.Min(raw, b.Headroom())
	b.SoCKWh = math.Min(b.SoCKWh+raw*b.Params.Efficiency, b.Params.CapacityKWh)
	return raw
}

// Discharge withdraws up to raw energy without losses and returns the amount delivered.
func (b *BatteryState) Discharge(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	raw = math.Min(raw, b.SoCKWh)
	b.SoCKWh = math.Max(b.SoCKWh-raw, 0)
	return raw
}

// SoCFraction returns the state of charge as a fraction of capacity.
func (b BatteryState) SoCFraction() float64 {
	return b.SoCKWh / b.Params.CapacityKWh
}

// FuelCellParams are the fixed parameters of the fuel cell.
type FuelCellParams struct {
	PowerLimitKW     float64 `json:"power_limit_kw"`
	InitialEnergyKWh float64 `json:"initial_energy_kwh"`
}

// Validate checks the fuel cell parameters.
func (p FuelCellParams) Validate() error {
	if p.PowerLimitKW <= 0 {
		return fmt.Errorf("fuel cell power limit must be positive")
	}
	if p.InitialEnergyKWh < 0 {
		return fmt.Errorf("fuel cell energy must be >= 0")
	}
	return nil
}

// FuelCellState tracks the remaining fuel energy. It never increases within a run.
type FuelCellState struct {
	Params    FuelCellParams `json:"params"`
	EnergyKWh float64        `json:"energy_kwh"`
}

// NewFuelCellState returns a fuel cell loaded with its initial energy.
func NewFuelCellState(p FuelCellParams) (FuelCellState, error) {
	if err := p.Validate(); err != nil {
		return FuelCellState{}, err
	}
	return FuelCellState{Params: p, EnergyKWh: p.InitialEnergyKWh}, nil
}

// Draw consumes up to raw energy and returns the amount delivered.
func (f *FuelCellState) Draw(raw float64) float64 {
	if raw <= 0 || f.EnergyKWh <= 0 {
		return 0
	}
	raw = math.Min(raw, f.EnergyKWh)
	f.EnergyKWh = math.Max(f.EnergyKWh-raw, 0)
	return raw
}

// Depleted reports whether the fuel cell has no energy left.
func (f FuelCellState) Depleted() bool {
	return f.EnergyKWh <= 0
}
