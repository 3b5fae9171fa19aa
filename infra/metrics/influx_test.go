package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/stats"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordStep(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.StepEvent{
		RunID:   "run-1",
		Variant: "standalone",
		Time:    now,
		Record: model.DispatchRecord{
			Index: 3, Demand: 5, BatteryDispatch: 0.3, FuelCellDispatch: 2, GridImport: 2.7,
			FuelCellEnergyEnd: 8, Mode: model.ModeDischarging, Price: 42.5,
		},
	}
	if err := sink.RecordStep(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("dispatch_step").
		AddTag("variant", "standalone").
		AddTag("run_id", "run-1").
		AddTag("mode", "DISCHARGING").
		AddTag("high_price", "false").
		AddField("index", 3).
		AddField("demand_kw", 5.0).
		AddField("renewable_kw", 0.0).
		AddField("battery_kw", 0.3).
		AddField("fuel_cell_kw", 2.0).
		AddField("grid_import_kw", 2.7).
		AddField("curtailed_kw", 0.0).
		AddField("soc_kwh", 0.0).
		AddField("fuel_cell_energy_kwh", 8.0).
		AddField("price", 42.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordRunSkipsMissingRatios(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	sum := coremetrics.RunSummary{
		RunID:   "run-2",
		Variant: "market",
		Steps:   24,
		Load:    stats.Load{PeakBefore: 5, PeakAfter: 4, PeakReductionPct: stats.Percent(1, 5)},
		Market:  &stats.Market{CostWithoutDER: 10, CostWithDER: 7, CostReductionPct: stats.Percent(3, 10)},
		Time:    now,
	}
	if err := sink.RecordRun(sum); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(rec.bodies) != 1 {
		t.Fatalf("expected one write, got %d", len(rec.bodies))
	}
	body := rec.bodies[0]
	if !strings.HasPrefix(body, "dispatch_run,") {
		t.Errorf("unexpected measurement: %s", body)
	}
	for _, want := range []string{"variant=market", "run_id=run-2", "peak_reduction_pct=20", "cost_reduction_pct=30", "steps=24i"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in %s", want, body)
		}
	}
	for _, absent := range []string{"renewable_coverage_pct", "peak_cost_reduction_pct"} {
		if strings.Contains(body, absent) {
			t.Errorf("non computable ratio %s written: %s", absent, body)
		}
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{
		URL:    srv.URL + "/api/v2/write",
		Token:  "tok",
		Org:    "org",
		Bucket: "bucket",
	})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
