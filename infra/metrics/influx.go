package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/core/stats"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes dispatch steps and run summaries to an InfluxDB instance
// using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStep writes one dispatched step as a dispatch_step point.
func (s *InfluxSink) RecordStep(ev coremetrics.StepEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r := ev.Record
	ts := r.Time
	if ts.IsZero() {
		ts = ev.Time
	}
	p := write.NewPointWithMeasurement("dispatch_step").
		AddTag("variant", ev.Variant).
		AddTag("run_id", ev.RunID).
		AddTag("mode", string(r.Mode)).
		AddTag("high_price", strconv.FormatBool(r.HighPrice)).
		AddField("index", r.Index).
		AddField("demand_kw", round3(r.Demand)).
		AddField("renewable_kw", round3(r.Renewable)).
		AddField("battery_kw", round3(r.BatteryDispatch)).
		AddField("fuel_cell_kw", round3(r.FuelCellDispatch)).
		AddField("grid_import_kw", round3(r.GridImport)).
		AddField("curtailed_kw", round3(r.Curtailed)).
		AddField("soc_kwh", round3(r.SoCEnd)).
		AddField("fuel_cell_energy_kwh", round3(r.FuelCellEnergyEnd)).
		AddField("price", round3(r.Price)).
		SetTime(ts)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes the run summary as a dispatch_run point. Ratios that are
// not computable are omitted.
func (s *InfluxSink) RecordRun(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch_run").
		AddTag("variant", sum.Variant).
		AddTag("run_id", sum.RunID).
		AddField("steps", sum.Steps).
		AddField("peak_before_kw", round3(sum.Load.PeakBefore)).
		AddField("peak_after_kw", round3(sum.Load.PeakAfter)).
		AddField("battery_discharged_kwh", round3(sum.Energy.BatteryDischarged)).
		AddField("fuel_cell_kwh", round3(sum.Energy.FuelCell)).
		AddField("grid_import_kwh", round3(sum.Energy.GridImport)).
		AddField("curtailed_kwh", round3(sum.Energy.Curtailed)).
		AddField("duration_ms", round3(float64(sum.Duration)/float64(time.Millisecond))).
		SetTime(sum.Time)
	addRatio(p, "peak_reduction_pct", sum.Load.PeakReductionPct)
	addRatio(p, "renewable_coverage_pct", sum.Energy.RenewableCoverage)
	if sum.Market != nil {
		p.AddField("cost_without_der", round3(sum.Market.CostWithoutDER))
		p.AddField("cost_with_der", round3(sum.Market.CostWithDER))
		addRatio(p, "cost_reduction_pct", sum.Market.CostReductionPct)
		addRatio(p, "peak_cost_reduction_pct", sum.Market.PeakCostReductionPct)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func addRatio(p *write.Point, name string, r stats.Ratio) {
	if r.OK {
		p.AddField(name, round3(r.Value))
	}
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
