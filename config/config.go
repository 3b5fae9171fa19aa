package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cavusmuhammed68/ICC-IEEE/core/factory"
	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/series"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/dataset"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/mqtt"
)

type Config struct {
	Battery  model.BatteryParams  `json:"battery"`
	FuelCell model.FuelCellParams `json:"fuel_cell"`
	Dispatch DispatchConfig       `json:"dispatch"`
	Shifting ShiftingConfig       `json:"shifting"`
	Recovery RecoveryConfig       `json:"recovery"`
	Series   series.Config        `json:"series"`
	Dataset  dataset.Config       `json:"dataset"`
	Metrics  metrics.Config       `json:"metrics"`
	Trace    factory.ModuleConfig `json:"trace"`
	MQTT     mqtt.Config          `json:"mqtt"`
	Sentry   SentryConfig         `json:"sentry"`
	Log      LogConfig            `json:"log"`
	Output   OutputConfig         `json:"output"`
	API      APIConfig            `json:"api"`
}

// Default returns a configuration with every section at its default.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	if c.Battery.CapacityKWh == 0 {
		c.Battery.CapacityKWh = 5
	}
	if c.Battery.PowerLimitKW == 0 {
		c.Battery.PowerLimitKW = 2
	}
	if c.Battery.Efficiency == 0 {
		c.Battery.Efficiency = 0.95
	}
	if c.FuelCell == (model.FuelCellParams{}) {
		c.FuelCell = model.FuelCellParams{PowerLimitKW: 2, InitialEnergyKWh: 10}
	}
	c.Dispatch.SetDefaults(c.Battery)
	c.Shifting.SetDefaults()
	c.Recovery.SetDefaults()
	c.Series.SetDefaults()
	c.Dataset.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
	c.Log.SetDefaults()
	c.Output.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Battery.Validate(); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	if err := c.FuelCell.Validate(); err != nil {
		return fmt.Errorf("fuel_cell: %w", err)
	}
	if err := c.Dispatch.Validate(c.Battery); err != nil {
		return err
	}
	if err := c.Shifting.Validate(); err != nil {
		return err
	}
	if err := c.Recovery.Validate(); err != nil {
		return err
	}
	if err := c.Series.Validate(); err != nil {
		return fmt.Errorf("series: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Sentry.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// Load reads a YAML or JSON file, applies K_ environment overrides
// (K_BATTERY__CAPACITY_KWH=10 sets battery.capacity_kwh), fills defaults and
// validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
