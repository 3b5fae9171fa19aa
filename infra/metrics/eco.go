package metrics

import (
	"io"

	core "github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics/eco"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/prometheus/client_golang/prometheus"
)

// EcoSink accumulates the daily energy mix of every dispatched step.
type EcoSink struct {
	store  eco.Store
	factor float64
	self   *prometheus.GaugeVec
	co2    *prometheus.GaugeVec
}

// NewEcoSink creates a sink with Prometheus gauges registered on reg.
func NewEcoSink(store eco.Store, factor float64, reg prometheus.Registerer) (*EcoSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	self := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "microgrid_self_sufficiency_ratio",
		Help: "Daily share of demand served without grid import",
	}, []string{"variant", "day"})
	co2 := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "microgrid_co2_avoided_grams",
		Help: "Daily CO2 avoided by serving demand locally",
	}, []string{"variant", "day"})
	var err error
	if self, err = registerOrExisting(reg, self); err != nil {
		return nil, err
	}
	if co2, err = registerOrExisting(reg, co2); err != nil {
		return nil, err
	}
	return &EcoSink{store: store, factor: factor, self: self, co2: co2}, nil
}

// RecordStep adds the step to its day and refreshes the gauges.
func (s *EcoSink) RecordStep(ev core.StepEvent) error {
	for _, rec := range eco.FromRecords(ev.Variant, []model.DispatchRecord{ev.Record}, ev.Time) {
		if err := s.store.Add(rec); err != nil {
			return err
		}
		day := eco.Day(rec.Date)
		records, err := s.store.Query(ev.Variant, day, day)
		if err != nil || len(records) == 0 {
			continue
		}
		label := day.Format("2006-01-02")
		s.self.WithLabelValues(ev.Variant, label).Set(records[0].SelfSufficiency())
		s.co2.WithLabelValues(ev.Variant, label).Set(records[0].CO2Avoided(s.factor))
	}
	return nil
}

// RecordRun is a no-op; the daily mix is built from steps.
func (s *EcoSink) RecordRun(core.RunSummary) error { return nil }

// Close closes the underlying store when it holds a database.
func (s *EcoSink) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
