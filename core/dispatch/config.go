package dispatch

import (
	"errors"
	"fmt"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// ErrInvalidConfig is returned by NewSimulator when the configuration cannot
// describe a physical system.
var ErrInvalidConfig = errors.New("invalid dispatch config")

// Variant names used in logs, metrics and trace records.
const (
	VariantStandalone = "standalone"
	VariantMarket     = "market"
	VariantRecovery   = "recovery"
)

// Config defines a single dispatch run. Every run starts from this state.
type Config struct {
	Name          string               `json:"name"`
	Battery       model.BatteryParams  `json:"battery"`
	InitialSoCKWh float64              `json:"initial_soc_kwh"`
	FuelCell      model.FuelCellParams `json:"fuel_cell"`
	// Rates chooses the per-step discharge cap. Nil means FixedRate.
	Rates RateSelector `json:"-"`
	// ChargeFromSurplus routes renewable surplus into the battery. When false
	// the surplus is curtailed.
	ChargeFromSurplus bool `json:"charge_from_surplus"`
}

// Validate checks battery, fuel cell and initial state.
func (c Config) Validate() error {
	if err := c.Battery.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.InitialSoCKWh < 0 || c.InitialSoCKWh > c.Battery.CapacityKWh {
		return fmt.Errorf("%w: initial soc %.3f outside [0, %.3f]", ErrInvalidConfig, c.InitialSoCKWh, c.Battery.CapacityKWh)
	}
	if err := c.FuelCell.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// StandaloneConfig is the physical dispatch variant: battery at half charge,
// fixed power limits.
func StandaloneConfig() Config {
	return Config{
		Name:              VariantStandalone,
		Battery:           model.BatteryParams{CapacityKWh: 5, PowerLimitKW: 2, Efficiency: 0.95},
		InitialSoCKWh:     2.5,
		FuelCell:          model.FuelCellParams{PowerLimitKW: 2, InitialEnergyKWh: 10},
		Rates:             FixedRate{},
		ChargeFromSurplus: true,
	}
}

// MarketConfig is the price-aware variant: battery starts full and both
// resources follow the high/normal price rates.
func MarketConfig() Config {
	return Config{
		Name:              VariantMarket,
		Battery:           model.BatteryParams{CapacityKWh: 5, PowerLimitKW: 2, Efficiency: 0.95},
		InitialSoCKWh:     5,
		FuelCell:          model.FuelCellParams{PowerLimitKW: 2, InitialEnergyKWh: 10},
		Rates:             DefaultPriceAwareRate(),
		ChargeFromSurplus: true,
	}
}

// RecoveryConfig is the unit-normalized variant used under a recovery curve.
func RecoveryConfig() Config {
	return Config{
		Name:              VariantRecovery,
		Battery:           model.BatteryParams{CapacityKWh: 5, PowerLimitKW: 0.5, Efficiency: 1},
		InitialSoCKWh:     5,
		FuelCell:          model.FuelCellParams{PowerLimitKW: 0.5, InitialEnergyKWh: 10},
		Rates:             StepCap{KW: 0.5},
		ChargeFromSurplus: true,
	}
}
