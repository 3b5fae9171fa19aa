package metrics

import (
	coremetrics "github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/core/stats"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes the latest simulation state as Prometheus metrics.
type PromSink struct {
	soc       *prometheus.GaugeVec
	fuel      *prometheus.GaugeVec
	grid      *prometheus.GaugeVec
	runs      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	runRatios *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	soc := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "microgrid_battery_soc_kwh",
		Help: "Battery state of charge after the last dispatched step",
	}, []string{"variant"})
	fuel := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "microgrid_fuel_cell_energy_kwh",
		Help: "Fuel cell energy left after the last dispatched step",
	}, []string{"variant"})
	grid := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "microgrid_grid_import_kw",
		Help: "Grid import of the last dispatched step",
	}, []string{"variant"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "microgrid_runs_recorded_total",
		Help: "Number of run summaries recorded",
	}, []string{"variant"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "microgrid_run_failures_total",
		Help: "Number of runs that failed before producing a trace",
	}, []string{"variant"})
	ratios := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "microgrid_run_ratio_percent",
		Help: "Headline ratios of the last run; absent when not computable",
	}, []string{"variant", "ratio"})

	var err error
	if soc, err = registerOrExisting(reg, soc); err != nil {
		return nil, err
	}
	if fuel, err = registerOrExisting(reg, fuel); err != nil {
		return nil, err
	}
	if grid, err = registerOrExisting(reg, grid); err != nil {
		return nil, err
	}
	if runs, err = registerOrExisting(reg, runs); err != nil {
		return nil, err
	}
	if failures, err = registerOrExisting(reg, failures); err != nil {
		return nil, err
	}
	if ratios, err = registerOrExisting(reg, ratios); err != nil {
		return nil, err
	}
	return &PromSink{soc: soc, fuel: fuel, grid: grid, runs: runs, failures: failures, runRatios: ratios}, nil
}

// registerOrExisting registers c or returns the collector already registered
// under the same descriptor.
func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordStep updates the resource gauges.
func (s *PromSink) RecordStep(ev coremetrics.StepEvent) error {
	s.soc.WithLabelValues(ev.Variant).Set(ev.Record.SoCEnd)
	s.fuel.WithLabelValues(ev.Variant).Set(ev.Record.FuelCellEnergyEnd)
	s.grid.WithLabelValues(ev.Variant).Set(ev.Record.GridImport)
	return nil
}

// RecordRun counts the run and publishes its computable ratios.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	s.runs.WithLabelValues(sum.Variant).Inc()
	s.setRatio(sum.Variant, "peak_reduction", sum.Load.PeakReductionPct)
	s.setRatio(sum.Variant, "renewable_coverage", sum.Energy.RenewableCoverage)
	s.setRatio(sum.Variant, "der_coverage", sum.Energy.DERCoverage)
	if sum.Market != nil {
		s.setRatio(sum.Variant, "cost_reduction", sum.Market.CostReductionPct)
		s.setRatio(sum.Variant, "peak_cost_reduction", sum.Market.PeakCostReductionPct)
	}
	return nil
}

// RecordFailure counts a failed run.
func (s *PromSink) RecordFailure(variant string) error {
	s.failures.WithLabelValues(variant).Inc()
	return nil
}

func (s *PromSink) setRatio(variant, name string, r stats.Ratio) {
	if !r.OK {
		s.runRatios.DeleteLabelValues(variant, name)
		return
	}
	s.runRatios.WithLabelValues(variant, name).Set(r.Value)
}
