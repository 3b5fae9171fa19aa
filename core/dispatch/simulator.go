package dispatch

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/core/logger"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// Observer receives every record right after it is produced.
type Observer interface {
	ObserveStep(variant string, rec model.DispatchRecord)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(variant string, rec model.DispatchRecord)

func (f ObserverFunc) ObserveStep(variant string, rec model.DispatchRecord) { f(variant, rec) }

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger used by the simulator.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver appends an observer notified synchronously for every step.
func WithObserver(o Observer) Option {
	return func(s *Simulator) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// Result is the dispatch trace of one run together with the final resource state.
type Result struct {
	Variant  string                 `json:"variant"`
	Records  []model.DispatchRecord `json:"records"`
	Battery  model.BatteryState     `json:"battery"`
	FuelCell model.FuelCellState    `json:"fuel_cell"`
}

// Simulator runs the greedy, causal dispatch over a pre-loaded horizon.
// It holds no state between runs.
type Simulator struct {
	cfg       Config
	logger    logger.Logger
	observers []Observer
}

// NewSimulator validates cfg and returns a Simulator.
func NewSimulator(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Rates == nil {
		cfg.Rates = FixedRate{}
	}
	if cfg.Name == "" {
		cfg.Name = VariantStandalone
	}
	s := &Simulator{cfg: cfg, logger: logger.Nop{}}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() Config { return s.cfg }

// Run dispatches steps in order. Resource state is created fresh for the run.
func (s *Simulator) Run(steps []model.TimeStep) (*Result, error) {
	if s == nil {
		return nil, errors.New("nil simulator")
	}
	start := time.Now()
	battery, err := model.NewBatteryState(s.cfg.Battery, s.cfg.InitialSoCKWh)
	if err != nil {
		return nil, fmt.Errorf("battery state: %w", err)
	}
	fuelCell, err := model.NewFuelCellState(s.cfg.FuelCell)
	if err != nil {
		return nil, fmt.Errorf("fuel cell state: %w", err)
	}

	records := make([]model.DispatchRecord, 0, len(steps))
	for i, st := range steps {
		rec := s.step(i, st, &battery, &fuelCell)
		records = append(records, rec)
		s.logger.Debugw("dispatch step", map[string]any{
			"variant":   s.cfg.Name,
			"index":     rec.Index,
			"battery":   rec.BatteryDispatch,
			"fuel_cell": rec.FuelCellDispatch,
			"grid":      rec.GridImport,
			"soc":       rec.SoCEnd,
		})
		for _, o := range s.observers {
			o.ObserveStep(s.cfg.Name, rec)
		}
	}
	observeRun(s.cfg.Name, records, time.Since(start))
	s.logger.Infof("%s dispatch finished: %d steps, soc %.3f kWh, fuel cell %.3f kWh left",
		s.cfg.Name, len(records), battery.SoCKWh, fuelCell.EnergyKWh)
	return &Result{Variant: s.cfg.Name, Records: records, Battery: battery, FuelCell: fuelCell}, nil
}

// step applies the dispatch policy to a single time step and mutates the
// resource state exactly once.
func (s *Simulator) step(i int, st model.TimeStep, b *model.BatteryState, f *model.FuelCellState) model.DispatchRecord {
	rec := model.DispatchRecord{
		Index:     i,
		Time:      st.Time,
		Demand:    st.Demand,
		Renewable: st.Renewable(),
		SoCStart:  b.SoCKWh,
		Price:     st.Price,
		HighPrice: st.IsHighPrice,
	}
	limits := effectiveLimits(s.cfg.Rates, st, s.cfg.Battery, s.cfg.FuelCell)

	net := st.NetLoad()
	if net < 0 {
		surplus := -net
		rec.RenewableUsed = math.Max(st.Demand, 0)
		charged := 0.0
		if s.cfg.ChargeFromSurplus {
			charged = b.Charge(math.Min(surplus, s.cfg.Battery.PowerLimitKW))
		}
		rec.BatteryDispatch = -charged
		rec.Curtailed = surplus - charged
	} else {
		rec.RenewableUsed = math.Max(st.Renewable(), 0)
		remaining := net
		// Battery always before the fuel cell.
		discharged := b.Discharge(math.Min(remaining, limits.BatteryKW))
		remaining -= discharged
		fc := f.Draw(math.Min(remaining, limits.FuelCellKW))
		remaining -= fc
		rec.BatteryDispatch = discharged
		rec.FuelCellDispatch = fc
		rec.GridImport = math.Max(remaining, 0)
	}
	if rec.BatteryDispatch == 0 {
		// normalise -0 from an empty charge
		rec.BatteryDispatch = 0
	}

	rec.OptimisedLoad = st.Demand - rec.BatteryDischarge() - rec.FuelCellDispatch
	rec.SoCEnd = b.SoCKWh
	rec.FuelCellEnergyEnd = f.EnergyKWh
	rec.Mode = model.ModeFromDispatch(rec.BatteryDispatch)
	return rec
}
