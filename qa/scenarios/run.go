package scenarios

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/cavusmuhammed68/ICC-IEEE/app"
	"github.com/cavusmuhammed68/ICC-IEEE/config"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/mqtt"
)

const tolerance = 1e-9

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	pub := mqtt.NewMockPublisher()

	cfg := config.Default()
	if sc.FlexibleLoadRatio > 0 {
		cfg.Shifting.FlexibleLoadRatio = sc.FlexibleLoadRatio
	}
	svc, err := app.New(cfg, app.WithSink(sink), app.WithStore(trace.NopStore{}), app.WithPublisher(pub))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	dcfg, err := cfg.Variant(sc.Variant)
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	dcfg = sc.Apply(dcfg)
	out, err := svc.Run(context.Background(), dcfg, sc.TimeSteps())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	checkInvariants(t, dcfg.Battery.CapacityKWh, out.Records)

	exp := sc.Expected
	checkFloat(t, "battery_discharged", exp.BatteryDischarged, out.Energy.BatteryDischarged)
	checkFloat(t, "battery_charged", exp.BatteryCharged, out.Energy.BatteryCharged)
	checkFloat(t, "fuel_cell", exp.FuelCell, out.Energy.FuelCell)
	checkFloat(t, "grid_import", exp.GridImport, out.Energy.GridImport)
	checkFloat(t, "curtailed", exp.Curtailed, out.Energy.Curtailed)
	checkFloat(t, "final_soc_kwh", exp.FinalSoCKWh, out.Result.Battery.SoCKWh)
	checkFloat(t, "fuel_left_kwh", exp.FuelLeftKWh, out.Result.FuelCell.EnergyKWh)
	if exp.HighPriceSteps != nil {
		if out.Market == nil {
			t.Errorf("scenario %s: expected market statistics", sc.Name)
		} else if out.Market.HighPriceSteps != *exp.HighPriceSteps {
			t.Errorf("scenario %s: expected %d high price steps, got %d", sc.Name, *exp.HighPriceSteps, out.Market.HighPriceSteps)
		}
	}
	if exp.ShiftedLoad != nil {
		if len(out.Shifted) != len(exp.ShiftedLoad) {
			t.Fatalf("scenario %s: expected %d shifted steps, got %d", sc.Name, len(exp.ShiftedLoad), len(out.Shifted))
		}
		for i, v := range exp.ShiftedLoad {
			if math.Abs(out.Shifted[i]-v) > 1e-6 {
				t.Errorf("scenario %s: shifted[%d] = %v, want %v", sc.Name, i, out.Shifted[i], v)
			}
		}
	}

	if got := gaugeValue(t, reg, "microgrid_battery_soc_kwh", out.Variant); math.Abs(got-out.Result.Battery.SoCKWh) > tolerance {
		t.Errorf("scenario %s: soc gauge %v, final soc %v", sc.Name, got, out.Result.Battery.SoCKWh)
	}
	if want := len(out.Records) + 1; len(pub.Messages) != want {
		t.Errorf("scenario %s: expected %d mqtt messages, got %d", sc.Name, want, len(pub.Messages))
	}
}

// checkInvariants verifies energy conservation, the SoC bounds and that the
// fuel cell never refills.
func checkInvariants(t *testing.T, capacity float64, records []model.DispatchRecord) {
	t.Helper()
	prevFuel := math.Inf(1)
	for _, r := range records {
		served := r.RenewableUsed + r.BatteryDischarge() + r.FuelCellDispatch + r.GridImport
		if math.Abs(served-r.Demand) > tolerance {
			t.Errorf("step %d: served %v, demand %v", r.Index, served, r.Demand)
		}
		if r.SoCEnd < -tolerance || r.SoCEnd > capacity+tolerance {
			t.Errorf("step %d: soc %v outside [0, %v]", r.Index, r.SoCEnd, capacity)
		}
		if r.FuelCellEnergyEnd > prevFuel+tolerance {
			t.Errorf("step %d: fuel cell energy increased to %v", r.Index, r.FuelCellEnergyEnd)
		}
		prevFuel = r.FuelCellEnergyEnd
	}
}

func checkFloat(t *testing.T, name string, want *float64, got float64) {
	t.Helper()
	if want != nil && math.Abs(*want-got) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, *want)
	}
}

func gaugeValue(t *testing.T, g prometheus.Gatherer, name, variant string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, "variant", variant) {
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s{variant=%q} not found", name, variant)
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, l := range m.GetLabel() {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}
