package metrics

import "github.com/cavusmuhammed68/ICC-IEEE/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// EmissionFactor is the grid carbon intensity in g CO2 per kWh, used by
	// the eco KPIs.
	EmissionFactor float64 `json:"emission_factor"`
	// ListenAddr serves /metrics when a prometheus sink is configured.
	ListenAddr string `json:"listen_addr"`
}

// SetDefaults applies the default emission factor.
func (c *Config) SetDefaults() {
	if c.EmissionFactor == 0 {
		c.EmissionFactor = 56
	}
}
