// Package scenarios replays YAML dispatch scenarios through the service and
// checks their expected outcomes.
package scenarios

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cavusmuhammed68/ICC-IEEE/core/dispatch"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

type BatteryDef struct {
	CapacityKWh  float64 `yaml:"capacity_kwh"`
	PowerLimitKW float64 `yaml:"power_limit_kw"`
	Efficiency   float64 `yaml:"efficiency"`
}

type FuelCellDef struct {
	PowerLimitKW     float64 `yaml:"power_limit_kw"`
	InitialEnergyKWh float64 `yaml:"initial_energy_kwh"`
}

type StepDef struct {
	Demand float64 `yaml:"demand"`
	PV     float64 `yaml:"pv"`
	Wind   float64 `yaml:"wind"`
	Price  float64 `yaml:"price"`
}

// Expected lists the figures checked after the run. Unset fields are ignored.
type Expected struct {
	BatteryDischarged *float64  `yaml:"battery_discharged"`
	BatteryCharged    *float64  `yaml:"battery_charged"`
	FuelCell          *float64  `yaml:"fuel_cell"`
	GridImport        *float64  `yaml:"grid_import"`
	Curtailed         *float64  `yaml:"curtailed"`
	FinalSoCKWh       *float64  `yaml:"final_soc_kwh"`
	FuelLeftKWh       *float64  `yaml:"fuel_left_kwh"`
	HighPriceSteps    *int      `yaml:"high_price_steps"`
	ShiftedLoad       []float64 `yaml:"shifted_load"`
}

type Scenario struct {
	Name              string       `yaml:"name"`
	Description       string       `yaml:"description,omitempty"`
	Variant           string       `yaml:"variant"`
	Battery           *BatteryDef  `yaml:"battery,omitempty"`
	FuelCell          *FuelCellDef `yaml:"fuel_cell,omitempty"`
	InitialSoCKWh     *float64     `yaml:"initial_soc_kwh,omitempty"`
	ChargeFromSurplus *bool        `yaml:"charge_from_surplus,omitempty"`
	FlexibleLoadRatio float64      `yaml:"flexible_load_ratio,omitempty"`
	Steps             []StepDef    `yaml:"steps"`
	Expected          Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", sc.Name)
	}
	return &sc, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	out := make([]*Scenario, 0, len(files))
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		out = append(out, sc)
	}
	return out, nil
}

// Apply overrides the variant configuration with the scenario settings.
func (sc *Scenario) Apply(cfg dispatch.Config) dispatch.Config {
	if sc.Battery != nil {
		cfg.Battery = model.BatteryParams(*sc.Battery)
	}
	if sc.FuelCell != nil {
		cfg.FuelCell = model.FuelCellParams(*sc.FuelCell)
	}
	if sc.InitialSoCKWh != nil {
		cfg.InitialSoCKWh = *sc.InitialSoCKWh
	}
	if sc.ChargeFromSurplus != nil {
		cfg.ChargeFromSurplus = *sc.ChargeFromSurplus
	}
	return cfg
}

func (sc *Scenario) TimeSteps() []model.TimeStep {
	out := make([]model.TimeStep, len(sc.Steps))
	for i, s := range sc.Steps {
		out[i] = model.TimeStep{Index: i, Demand: s.Demand, PV: s.PV, Wind: s.Wind, Price: s.Price}
	}
	return out
}
