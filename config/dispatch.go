package config

import (
	"fmt"

	"github.com/cavusmuhammed68/ICC-IEEE/core/dispatch"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/stats"
)

// DispatchConfig holds the per-variant initial state and the market rates.
type DispatchConfig struct {
	// InitialSoCKWh is the standalone starting charge. Unset means half
	// capacity; 0 starts empty.
	InitialSoCKWh *float64 `json:"initial_soc_kwh"`
	// MarketInitialSoCKWh is the market starting charge. Unset means full.
	MarketInitialSoCKWh *float64 `json:"market_initial_soc_kwh"`
	HighRateKW          float64  `json:"high_rate_kw"`
	NormalRateKW        float64  `json:"normal_rate_kw"`
	// ChargeFromSurplus defaults to true when unset.
	ChargeFromSurplus *bool `json:"charge_from_surplus"`
	// PriceScale converts the dataset price unit into currency per kWh.
	PriceScale float64 `json:"price_scale"`
}

// SetDefaults fills unset values relative to the battery capacity.
func (c *DispatchConfig) SetDefaults(b model.BatteryParams) {
	if c.InitialSoCKWh == nil {
		c.InitialSoCKWh = ptr(b.CapacityKWh / 2)
	}
	if c.MarketInitialSoCKWh == nil {
		c.MarketInitialSoCKWh = ptr(b.CapacityKWh)
	}
	def := dispatch.DefaultPriceAwareRate()
	if c.HighRateKW == 0 {
		c.HighRateKW = def.HighKW
	}
	if c.NormalRateKW == 0 {
		c.NormalRateKW = def.NormalKW
	}
	if c.ChargeFromSurplus == nil {
		c.ChargeFromSurplus = ptr(true)
	}
	if c.PriceScale == 0 {
		c.PriceScale = stats.DefaultPriceScale
	}
}

// Validate checks rates and initial charges against the battery.
func (c DispatchConfig) Validate(b model.BatteryParams) error {
	for _, f := range []struct {
		name string
		soc  *float64
	}{
		{"initial_soc_kwh", c.InitialSoCKWh},
		{"market_initial_soc_kwh", c.MarketInitialSoCKWh},
	} {
		if f.soc != nil && (*f.soc < 0 || *f.soc > b.CapacityKWh) {
			return fmt.Errorf("dispatch.%s %.3f outside [0, %.3f]", f.name, *f.soc, b.CapacityKWh)
		}
	}
	if c.HighRateKW < 0 || c.NormalRateKW < 0 {
		return fmt.Errorf("dispatch rates must be >= 0")
	}
	if c.PriceScale <= 0 {
		return fmt.Errorf("dispatch.price_scale must be > 0")
	}
	return nil
}

func (c DispatchConfig) chargeFromSurplus() bool {
	return c.ChargeFromSurplus == nil || *c.ChargeFromSurplus
}

// initialSoC resolves an optional starting charge against its default.
func initialSoC(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func ptr[T any](v T) *T { return &v }

// Standalone builds the fixed-rate simulator configuration.
func (c *Config) Standalone() dispatch.Config {
	cfg := dispatch.StandaloneConfig()
	cfg.Battery = c.Battery
	cfg.FuelCell = c.FuelCell
	cfg.InitialSoCKWh = initialSoC(c.Dispatch.InitialSoCKWh, c.Battery.CapacityKWh/2)
	cfg.ChargeFromSurplus = c.Dispatch.chargeFromSurplus()
	return cfg
}

// Market builds the price-aware simulator configuration.
func (c *Config) Market() dispatch.Config {
	cfg := dispatch.MarketConfig()
	cfg.Battery = c.Battery
	cfg.FuelCell = c.FuelCell
	cfg.InitialSoCKWh = initialSoC(c.Dispatch.MarketInitialSoCKWh, c.Battery.CapacityKWh)
	cfg.Rates = dispatch.PriceAwareRate{HighKW: c.Dispatch.HighRateKW, NormalKW: c.Dispatch.NormalRateKW}
	cfg.ChargeFromSurplus = c.Dispatch.chargeFromSurplus()
	return cfg
}

// Variant returns the simulator configuration for a variant name.
func (c *Config) Variant(name string) (dispatch.Config, error) {
	switch name {
	case dispatch.VariantStandalone, "":
		return c.Standalone(), nil
	case dispatch.VariantMarket:
		return c.Market(), nil
	case dispatch.VariantRecovery:
		return c.Recovery.System.SimulatorConfig(), nil
	default:
		return dispatch.Config{}, fmt.Errorf("unknown variant %q", name)
	}
}
