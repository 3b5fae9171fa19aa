package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// energySources labels dispatch_energy_kwh_total.
var energySources = [...]string{"battery", "fuel_cell", "grid", "renewable"}

type runCollectors struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	steps    *prometheus.CounterVec
	energy   *prometheus.CounterVec
}

func newRunCollectors() *runCollectors {
	return &runCollectors{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "dispatch_run_duration_seconds",
			Help: "Wall time of a dispatch run",
			// Runs of a few hundred steps finish in microseconds.
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"variant"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_runs_total",
			Help: "Number of dispatch runs",
		}, []string{"variant"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_steps_total",
			Help: "Number of dispatched steps by battery mode",
		}, []string{"variant", "mode"}),
		energy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_energy_kwh_total",
			Help: "Energy delivered per source",
		}, []string{"variant", "source"}),
	}
}

func (c *runCollectors) all() []prometheus.Collector {
	return []prometheus.Collector{c.duration, c.runs, c.steps, c.energy}
}

func (c *runCollectors) observe(variant string, records []model.DispatchRecord, took time.Duration) {
	c.runs.WithLabelValues(variant).Inc()
	c.duration.WithLabelValues(variant).Observe(took.Seconds())
	byMode := map[model.Mode]float64{}
	var delivered [len(energySources)]float64
	for _, r := range records {
		byMode[r.Mode]++
		delivered[0] += r.BatteryDischarge()
		delivered[1] += r.FuelCellDispatch
		delivered[2] += r.GridImport
		delivered[3] += r.RenewableUsed
	}
	for mode, n := range byMode {
		c.steps.WithLabelValues(variant, string(mode)).Add(n)
	}
	for i, src := range energySources {
		c.energy.WithLabelValues(variant, src).Add(delivered[i])
	}
}

// collectors is replaced wholesale by ResetMetrics.
var collectors = newRunCollectors()

func init() {
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers the dispatch collectors on reg, or on
// prometheus.DefaultRegisterer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(collectors.all()...)
}

// ResetMetrics swaps in fresh collectors, registering them on reg when it is
// not nil. Tests use it to start from zero.
func ResetMetrics(reg prometheus.Registerer) {
	collectors = newRunCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func observeRun(variant string, records []model.DispatchRecord, took time.Duration) {
	collectors.observe(variant, records, took)
}
